package cmd

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/stats"
	"github.com/abhisek/progresstrack/internal/ui/components"
	"github.com/abhisek/progresstrack/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compute course-wide statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			report, err := stats.Compute(cmd.Context(), a.Sources(), a.Course, a.StatsOptions(), a.Log)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd, report)
			}
			printProgressReport(cmd, report.Progress)
			fmt.Fprintln(cmd.OutOrStdout())
			printQuestionReport(cmd, report.Questions)
			fmt.Fprintln(cmd.OutOrStdout())
			printStudentReport(cmd, report.Students)
			return nil
		})
	},
}

var statsProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Count students in progress and completed per course entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			r, err := stats.ComputeProgress(cmd.Context(), a.Properties, a.Course, a.StatsOptions(), a.Log)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd, r)
			}
			printProgressReport(cmd, r)
			return nil
		})
	},
}

var statsQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Summarize answers to multiple-choice questions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			r, err := stats.ComputeQuestions(cmd.Context(), a.Store.EventRepo(), a.Course, a.StatsOptions(), a.Log)
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd, r)
			}
			printQuestionReport(cmd, r)
			return nil
		})
	},
}

var statsStudentsCmd = &cobra.Command{
	Use:   "students",
	Short: "Count enrollments and summarize assessment scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			r, err := stats.ComputeStudents(cmd.Context(), a.Store.StudentRepo(), a.StatsOptions())
			if err != nil {
				return err
			}
			if asJSON(cmd) {
				return writeJSON(cmd, r)
			}
			printStudentReport(cmd, r)
			return nil
		})
	},
}

func asJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printProgressReport(cmd *cobra.Command, r *stats.ProgressReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render(r.Structure.Label))
	fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%d students with progress", r.Students)))

	tbl := components.Table{Headers: []string{"Entity", "Key", "In progress", "Completed", ""}}
	r.Structure.Walk(func(key string, depth int, n *stats.Node) {
		t := r.Tally(key)
		pct := 0.0
		if r.Students > 0 {
			pct = float64(t.Completed) / float64(r.Students)
		}
		tbl.AddRow(
			strings.Repeat("  ", depth-1)+n.Label,
			key,
			strconv.Itoa(t.InProgress),
			strconv.Itoa(t.Completed),
			components.NewProgressBar("", pct, true, 24).View(),
		)
	})
	fmt.Fprint(out, tbl.View())
}

func printQuestionReport(cmd *cobra.Command, r *stats.QuestionReport) {
	out := cmd.OutOrStdout()
	for _, section := range []struct {
		title string
		items map[string]*stats.QuestionStat
	}{
		{"Lesson questions", r.Questions},
		{"Assessment questions", r.Assessments},
	} {
		fmt.Fprintln(out, theme.Heading.Render(section.title))
		tbl := components.Table{Headers: []string{"Question", "Attempts", "Avg score", "Answers"}}
		for _, id := range slices.Sorted(maps.Keys(section.items)) {
			q := section.items[id]
			avg := "-"
			if q.NumAttempts > 0 {
				avg = strconv.FormatFloat(q.Score/float64(q.NumAttempts), 'f', 2, 64)
			}
			counts := make([]string, len(q.AnswerCounts))
			for i, c := range q.AnswerCounts {
				counts[i] = strconv.Itoa(c)
			}
			tbl.AddRow(q.Label, strconv.Itoa(q.NumAttempts), avg, strings.Join(counts, " / "))
		}
		fmt.Fprint(out, tbl.View())
	}
}

func printStudentReport(cmd *cobra.Command, r *stats.StudentReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Heading.Render("Students"))
	fmt.Fprintf(out, "Enrolled:   %d\n", r.Enrollment.Enrolled)
	fmt.Fprintf(out, "Unenrolled: %d\n", r.Enrollment.Unenrolled)
	if len(r.Scores) == 0 {
		return
	}

	fmt.Fprintln(out)
	tbl := components.Table{Headers: []string{"Assessment", "Answers", "Average", "Median"}}
	for _, id := range slices.Sorted(maps.Keys(r.Scores)) {
		s := r.Scores[id]
		tbl.AddRow(id,
			strconv.Itoa(s.Count),
			strconv.FormatFloat(s.Average, 'f', 2, 64),
			strconv.FormatFloat(s.Median, 'f', 2, 64))
	}
	fmt.Fprint(out, tbl.View())
}

func init() {
	statsCmd.PersistentFlags().Bool("json", false, "Print JSON instead of tables")

	statsCmd.AddCommand(statsProgressCmd)
	statsCmd.AddCommand(statsQuestionsCmd)
	statsCmd.AddCommand(statsStudentsCmd)
}
