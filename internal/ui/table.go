package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table lays out short listings (tables, datasets, sources) in borderless,
// space-aligned columns. Cells may carry ANSI styling.
type Table struct {
	cols int
	rows [][]string
}

func NewTable(cols int) *Table {
	return &Table{cols: cols}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, t.cols)
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *Table) String() string {
	widths := make([]int, t.cols)
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	gap := strings.Repeat(" ", columnPadding)
	var sb strings.Builder
	for _, row := range t.rows {
		var line strings.Builder
		line.WriteString(strings.Repeat(" ", leftMargin))
		for i, cell := range row {
			if i > 0 {
				line.WriteString(gap)
			}
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		sb.WriteString(strings.TrimRight(line.String(), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Bullets renders one indented "•" line per item.
func Bullets(items ...string) string {
	var sb strings.Builder
	for _, item := range items {
		sb.WriteString(strings.Repeat(" ", leftMargin))
		sb.WriteString("• ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	return sb.String()
}
