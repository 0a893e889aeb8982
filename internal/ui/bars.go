package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aidanlsb/tabula/internal/chart"
)

const barGlyph = "█"

// RenderBars draws a series as horizontal bars, one line per bucket:
//
//	Berlin       ████████     1 (33.3%)
func RenderBars(series chart.Series, display *DisplayContext) string {
	if len(series.Points) == 0 {
		return ""
	}
	if display == nil {
		display = NewDisplayContextWithWidth(DefaultTermWidth)
	}

	labelWidth := 0
	valueWidth := 0
	var peak float64
	for _, p := range series.Points {
		if w := lipgloss.Width(p.Label); w > labelWidth {
			labelWidth = w
		}
		if w := len(formatValue(p.Value)); w > valueWidth {
			valueWidth = w
		}
		if p.Value > peak {
			peak = p.Value
		}
	}
	if labelWidth > 30 {
		labelWidth = 30
	}

	// label, gap, bar, gap, value, " (100.0%)"
	barWidth := display.AvailableWidth(leftMargin) - labelWidth - valueWidth - 13
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 50 {
		barWidth = 50
	}

	total := series.Total()
	var sb strings.Builder
	for _, p := range series.Points {
		n := 0
		if peak > 0 {
			n = int(p.Value / peak * float64(barWidth))
		}
		if n == 0 && p.Value > 0 {
			n = 1
		}
		label := TruncateWithEllipsis(p.Label, labelWidth)
		sb.WriteString(strings.Repeat(" ", leftMargin))
		sb.WriteString(label)
		sb.WriteString(strings.Repeat(" ", labelWidth-lipgloss.Width(label)+1))
		sb.WriteString(Accent.Render(strings.Repeat(barGlyph, n)))
		sb.WriteString(strings.Repeat(" ", barWidth-n+1))
		sb.WriteString(fmt.Sprintf("%*s %s", valueWidth, formatValue(p.Value), Hint(percent(p.Value, total))))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Tooltip formats a bucket as "label: n (p%)".
func Tooltip(p chart.Point, total float64) string {
	return fmt.Sprintf("%s: %s %s", p.Label, formatValue(p.Value), percent(p.Value, total))
}

func percent(v, total float64) string {
	if total <= 0 {
		return "(0.0%)"
	}
	return fmt.Sprintf("(%.1f%%)", v/total*100)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
