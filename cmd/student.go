package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/store"
	"github.com/abhisek/progresstrack/internal/ui/components"
	"github.com/abhisek/progresstrack/internal/ui/theme"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage students",
}

var studentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a student",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			id = uuid.NewString()
		}
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		unenrolled, _ := cmd.Flags().GetBool("unenrolled")

		return withApp(cmd, func(a *app.App) error {
			repo := a.Store.StudentRepo()
			s, err := repo.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if s == nil {
				s = &store.Student{ID: id, CreatedAt: time.Now().UTC()}
			}
			if name != "" {
				s.Name = name
			}
			if email != "" {
				s.Email = email
			}
			s.Enrolled = !unenrolled
			if err := repo.Put(cmd.Context(), s); err != nil {
				return fmt.Errorf("save student: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.ID)
			return nil
		})
	},
}

var studentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a student with scores and unit progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			s, err := a.Store.StudentRepo().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("student %q: %w", args[0], store.ErrStudentNotFound)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, theme.Title.Render(s.ID))
			fmt.Fprintf(out, "Name:     %s\n", s.Name)
			fmt.Fprintf(out, "Email:    %s\n", s.Email)
			fmt.Fprintf(out, "Enrolled: %t\n", s.Enrolled)

			if len(s.Scores) > 0 {
				fmt.Fprintln(out)
				tbl := components.Table{Headers: []string{"Assessment", "Score"}}
				for _, id := range slices.Sorted(maps.Keys(s.Scores)) {
					tbl.AddRow(id, strconv.FormatFloat(s.Scores[id], 'f', -1, 64))
				}
				fmt.Fprint(out, tbl.View())
			}

			fmt.Fprintln(out)
			return printUnitStatus(cmd, a, progress.Student{ID: s.ID})
		})
	},
}

func init() {
	studentAddCmd.Flags().String("id", "", "Student id (generated when empty)")
	studentAddCmd.Flags().String("name", "", "Display name")
	studentAddCmd.Flags().String("email", "", "Email address")
	studentAddCmd.Flags().Bool("unenrolled", false, "Mark the student as unenrolled")

	studentCmd.AddCommand(studentAddCmd)
	studentCmd.AddCommand(studentShowCmd)
}
