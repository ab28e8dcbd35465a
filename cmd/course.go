package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/progresstrack/internal/course"
	"github.com/abhisek/progresstrack/internal/stats"
	"github.com/abhisek/progresstrack/internal/ui/theme"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Inspect the course definition",
}

var courseTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the trackable entities of the course with their keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCourse(cmd)
		if err != nil {
			return err
		}
		root, err := stats.BuildStructure(c)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, theme.Title.Render(root.Label))
		root.Walk(func(key string, depth int, n *stats.Node) {
			fmt.Fprintf(out, "%s%s %s\n", strings.Repeat("  ", depth), n.Label, theme.Hint.Render(key))
		})
		return nil
	},
}

var courseValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the course definition and its activity files",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCourse(cmd)
		if err != nil {
			return err
		}
		// Activity files are read lazily, so force them here.
		var problems []string
		for _, u := range c.UnitsOfType(course.UnitTypeUnit) {
			for _, l := range u.Lessons {
				if _, err := c.Activity(u.ID, l.ID); err != nil {
					problems = append(problems, err.Error())
				}
			}
		}
		if len(problems) > 0 {
			return fmt.Errorf("%w:\n  %s", course.ErrInvalidCourse, strings.Join(problems, "\n  "))
		}

		units, lessons := 0, 0
		for _, u := range c.UnitsOfType(course.UnitTypeUnit) {
			units++
			lessons += len(u.Lessons)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d units, %d lessons, %d assessments\n",
			theme.Title.Render("ok"), units, lessons, len(c.Assessments()))
		return nil
	},
}

func loadCourse(cmd *cobra.Command) (*course.Course, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return course.LoadFile(cfg.CoursePath)
}

func init() {
	courseCmd.AddCommand(courseTreeCmd)
	courseCmd.AddCommand(courseValidateCmd)
}
