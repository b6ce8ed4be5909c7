// Package static provides non-interactive terminal output components.
//
// Record lists are turned into a [Table] and rendered either as an
// aligned borderless table or, for compact output, one line per record
// with cells joined by " | ".
package static

import (
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Table is a header row plus data rows. Cells may carry ANSI styling.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render returns the aligned table, or "" when there are no rows.
func (t Table) Render() string {
	return RenderTable(t.Headers, t.Rows)
}

// Compact returns one line per row, without headers.
func (t Table) Compact() string {
	var b strings.Builder
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderTable creates a formatted table with proper column alignment.
// Column widths come from lipgloss/table. No borders are rendered.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}
