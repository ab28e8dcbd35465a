package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestProgressBarWidth(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
	}{
		{"empty", 0},
		{"half", 0.5},
		{"full", 1},
		{"overflow", 1.7},
		{"negative", -0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewProgressBar("", tt.percent, false, 20)
			assert.Equal(t, 20, lipgloss.Width(bar.View()))
		})
	}
}

func TestProgressBarPercent(t *testing.T) {
	view := NewProgressBar("Unit 1", 0.25, true, 40).View()
	assert.Contains(t, view, "Unit 1")
	assert.Contains(t, view, "25%")
}

func TestTableAlignsColumns(t *testing.T) {
	tbl := Table{Headers: []string{"Key", "Done"}}
	tbl.AddRow("u.1", "3")
	tbl.AddRow("u.1.l.12", "10")
	tbl.AddRow("s.Fin")

	lines := strings.Split(strings.TrimRight(tbl.View(), "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Key")
	assert.Contains(t, lines[3], "u.1.l.12")
	// Every line renders at the same width.
	for _, l := range lines {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l))
	}
}
