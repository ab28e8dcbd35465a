package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/progress"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a progress event for a student",
}

var recordBlockCmd = &cobra.Command{
	Use:   "block <unit> <lesson> <block>",
	Short: "Record an attempt at an activity block",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		blockID, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("block id must be a number: %w", err)
		}
		return recordEvent(cmd, func(a *app.App, s progress.Student) (bool, error) {
			return a.Progress.RecordBlockCompleted(cmd.Context(), s, args[0], args[1], blockID)
		})
	},
}

var recordComponentCmd = &cobra.Command{
	Use:   "component <unit> <lesson> <instance-id>",
	Short: "Record an attempt at a lesson page component",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordEvent(cmd, func(a *app.App, s progress.Student) (bool, error) {
			return a.Progress.RecordComponentCompleted(cmd.Context(), s, args[0], args[1], args[2])
		})
	},
}

var recordAssessmentCmd = &cobra.Command{
	Use:   "assessment <assessment>",
	Short: "Record an assessment submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordEvent(cmd, func(a *app.App, s progress.Student) (bool, error) {
			applied, err := a.Progress.RecordAssessmentCompleted(cmd.Context(), s, args[0])
			if err != nil || !applied || !cmd.Flags().Changed("score") {
				return applied, err
			}
			score, _ := cmd.Flags().GetFloat64("score")
			if err := a.Store.StudentRepo().SetScore(cmd.Context(), s.ID, args[0], score); err != nil {
				return applied, fmt.Errorf("save score: %w", err)
			}
			return applied, nil
		})
	},
}

var recordActivityCmd = &cobra.Command{
	Use:   "activity <unit> <lesson>",
	Short: "Record that an activity was completed or opened",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accessed, _ := cmd.Flags().GetBool("accessed")
		return recordEvent(cmd, func(a *app.App, s progress.Student) (bool, error) {
			if accessed {
				return a.Progress.RecordActivityAccessed(cmd.Context(), s, args[0], args[1])
			}
			return a.Progress.RecordActivityCompleted(cmd.Context(), s, args[0], args[1])
		})
	},
}

var recordHTMLCmd = &cobra.Command{
	Use:   "html <unit> <lesson>",
	Short: "Record that a lesson page was completed or opened",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		accessed, _ := cmd.Flags().GetBool("accessed")
		return recordEvent(cmd, func(a *app.App, s progress.Student) (bool, error) {
			if accessed {
				return a.Progress.RecordHTMLAccessed(cmd.Context(), s, args[0], args[1])
			}
			return a.Progress.RecordHTMLCompleted(cmd.Context(), s, args[0], args[1])
		})
	},
}

// studentFromFlags reads --student and --preview.
func studentFromFlags(cmd *cobra.Command) (progress.Student, error) {
	id, _ := cmd.Flags().GetString("student")
	preview, _ := cmd.Flags().GetBool("preview")
	if id == "" && !preview {
		return progress.Student{}, fmt.Errorf("--student is required")
	}
	return progress.Student{ID: id, Transient: preview}, nil
}

func recordEvent(cmd *cobra.Command, fn func(*app.App, progress.Student) (bool, error)) error {
	student, err := studentFromFlags(cmd)
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app.App) error {
		applied, err := fn(a, student)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if applied {
			fmt.Fprintln(out, "recorded")
		} else {
			fmt.Fprintln(out, "ignored")
		}
		return nil
	})
}

func init() {
	recordCmd.PersistentFlags().String("student", "", "Student id")
	recordCmd.PersistentFlags().Bool("preview", false, "Treat the student as transient (nothing is stored)")

	recordAssessmentCmd.Flags().Float64("score", 0, "Also store this score for the student")
	recordActivityCmd.Flags().Bool("accessed", false, "Record an open instead of a completion")
	recordHTMLCmd.Flags().Bool("accessed", false, "Record an open instead of a completion")

	recordCmd.AddCommand(recordBlockCmd)
	recordCmd.AddCommand(recordComponentCmd)
	recordCmd.AddCommand(recordAssessmentCmd)
	recordCmd.AddCommand(recordActivityCmd)
	recordCmd.AddCommand(recordHTMLCmd)
}
