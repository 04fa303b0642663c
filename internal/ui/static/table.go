// Package static renders non-interactive output like tables.
package static

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// RenderTable renders a borderless table with a bold header row.
func RenderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).PaddingRight(2)
	cellStyle := lipgloss.NewStyle().PaddingRight(2)

	t := table.New().
		Border(lipgloss.Border{}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.Render()
}
