package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/progresstrack/internal/ui/theme"
)

// Table renders rows as aligned columns under a header and a rule.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// View renders the table.
func (t Table) View() string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var header strings.Builder
	for i, h := range t.Headers {
		header.WriteString(theme.TableHeader.Width(widths[i] + 2).Render(h))
	}

	var b strings.Builder
	b.WriteString(header.String())
	b.WriteByte('\n')
	b.WriteString(theme.TableRule.Render(strings.Repeat("─", lipgloss.Width(header.String()))))
	b.WriteByte('\n')

	for _, row := range t.Rows {
		for i := range t.Headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(theme.TableCell.Width(widths[i] + 2).Render(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
