package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

const (
	// minColumnWidth is the narrowest a column is squeezed to before the
	// table is allowed to overflow the terminal.
	minColumnWidth = 6
	columnPadding  = 2
	leftMargin     = 2
)

// DataTable renders a view of rows under named column headers, sized to the
// terminal width.
type DataTable struct {
	display *DisplayContext
	columns []string
	rows    [][]string
	total   int
}

// NewDataTable creates a table for the given column headers.
func NewDataTable(display *DisplayContext, columns []string) *DataTable {
	if display == nil {
		display = NewDisplayContextWithWidth(DefaultTermWidth)
	}
	return &DataTable{
		display: display,
		columns: columns,
	}
}

// AddRow adds a row. Missing trailing cells render empty.
func (t *DataTable) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// SetTotal records how many rows the view held before display truncation.
func (t *DataTable) SetTotal(n int) {
	t.total = n
}

// Len returns the number of rows added.
func (t *DataTable) Len() int {
	return len(t.rows)
}

// Widths returns the rendered width of each column.
func (t *DataTable) Widths() []int {
	widths := make([]int, len(t.columns))
	for i, name := range t.columns {
		widths[i] = lipgloss.Width(name)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	available := t.display.AvailableWidth(leftMargin) - columnPadding*(len(widths)-1)
	for sum(widths) > available {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColumnWidth {
			break
		}
		widths[widest]--
	}
	return widths
}

func (t *DataTable) alignments() []Alignment {
	out := make([]Alignment, len(t.columns))
	for i := range t.columns {
		numeric := len(t.rows) > 0
		for _, row := range t.rows {
			if row[i] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(row[i], 64); err != nil {
				numeric = false
				break
			}
		}
		if numeric {
			out[i] = AlignRight
		}
	}
	return out
}

// Render generates the table followed by a "Showing N of M rows" line when
// the view was truncated.
func (t *DataTable) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	widths := t.Widths()
	aligns := t.alignments()

	headers := make([]string, len(t.columns))
	for i, name := range t.columns {
		headers[i] = TruncateWithEllipsis(name, widths[i])
	}
	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = TruncateWithEllipsis(cell, widths[i])
		}
		rows[r] = cells
	}

	tbl := table.New().
		Border(lipgloss.Border{
			Top:    "─",
			Bottom: "─",
			Middle: "─",
		}).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderRow(false).
		BorderColumn(false).
		BorderStyle(Muted).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle()
			if row == table.HeaderRow {
				style = AccentBold
			}
			// Width includes padding in lipgloss.
			padding := 0
			if col < len(t.columns)-1 {
				padding = columnPadding
				style = style.PaddingRight(padding)
			}
			if col < len(widths) {
				style = style.Width(widths[col] + padding)
				if aligns[col] == AlignRight && row != table.HeaderRow {
					style = style.Align(lipgloss.Right)
				}
			}
			return style
		}).
		Rows(rows...)

	var sb strings.Builder
	sb.WriteString(indent(tbl.Render(), leftMargin))
	sb.WriteString("\n")
	if t.total > len(t.rows) {
		sb.WriteString(strings.Repeat(" ", leftMargin))
		sb.WriteString(Hint(fmt.Sprintf("Showing %d of %d rows", len(t.rows), t.total)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// TruncateWithEllipsis shortens s to at most maxWidth terminal cells.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
