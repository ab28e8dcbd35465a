// Package theme holds the colors and styles used by CLI output.
package theme

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/progresstrack/internal/progress"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Heading = lipgloss.NewStyle().
		Bold(true).
		Foreground(Secondary)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Tables
var (
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingRight(2)

	TableCell = lipgloss.NewStyle().
			Foreground(Text).
			PaddingRight(2)

	TableRule = lipgloss.NewStyle().
			Foreground(Border)
)

// Progress bars
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// StateStyle returns the style used to render a completion state.
func StateStyle(s progress.State) lipgloss.Style {
	switch s {
	case progress.StateCompleted:
		return lipgloss.NewStyle().Foreground(Success).Bold(true)
	case progress.StateInProgress:
		return lipgloss.NewStyle().Foreground(Accent)
	default:
		return lipgloss.NewStyle().Foreground(TextDim)
	}
}

// RenderState renders a state as its icon and label.
func RenderState(s progress.State) string {
	return StateStyle(s).Render(s.Icon() + " " + s.Label())
}
