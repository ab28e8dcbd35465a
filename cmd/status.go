package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/app"
	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/progress"
	"github.com/abhisek/progresstrack/internal/ui/components"
	"github.com/abhisek/progresstrack/internal/ui/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a student's progress through the course",
	RunE: func(cmd *cobra.Command, args []string) error {
		student, err := studentFromFlags(cmd)
		if err != nil {
			return err
		}
		unitID, _ := cmd.Flags().GetString("unit")
		return withApp(cmd, func(a *app.App) error {
			if unitID != "" {
				return printLessonStatus(cmd, a, student, unitID)
			}
			return printUnitStatus(cmd, a, student)
		})
	},
}

func printUnitStatus(cmd *cobra.Command, a *app.App, student progress.Student) error {
	states, err := a.Progress.UnitProgress(cmd.Context(), student)
	if err != nil {
		return err
	}

	tbl := components.Table{Headers: []string{"ID", "Title", "Status"}}
	for _, u := range a.Course.Units {
		if u.Type == course.UnitTypeLink {
			continue
		}
		title := u.Title
		if u.Type == course.UnitTypeAssessment {
			title += theme.Hint.Render(" (assessment)")
		}
		tbl.AddRow(u.ID, title, theme.RenderState(states[u.ID]))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render(a.Course.Title))
	fmt.Fprint(out, tbl.View())
	return nil
}

func printLessonStatus(cmd *cobra.Command, a *app.App, student progress.Student, unitID string) error {
	u, ok := a.Course.FindUnit(unitID)
	if !ok || u.Type != course.UnitTypeUnit {
		return fmt.Errorf("unknown unit %q", unitID)
	}
	states, err := a.Progress.LessonProgress(cmd.Context(), student, unitID)
	if err != nil {
		return err
	}

	tbl := components.Table{Headers: []string{"#", "ID", "Title", "Page", "Activity"}}
	for _, l := range u.Lessons {
		activity := theme.Hint.Render("-")
		if l.HasActivity {
			activity = theme.RenderState(states[l.ID].Activity)
		}
		tbl.AddRow(strconv.Itoa(l.Index), l.ID, l.Title, theme.RenderState(states[l.ID].HTML), activity)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, theme.Title.Render(fmt.Sprintf("Unit %d: %s", u.Index, u.Title)))
	fmt.Fprint(out, tbl.View())
	return nil
}

func init() {
	statusCmd.Flags().String("student", "", "Student id")
	statusCmd.Flags().Bool("preview", false, "Treat the student as transient")
	statusCmd.Flags().String("unit", "", "Show lessons of this unit")
}
