package ui

import (
	"strings"
	"testing"
)

func TestDataTableRender(t *testing.T) {
	tbl := NewDataTable(NewDisplayContextWithWidth(80), []string{"City", "count"})
	tbl.AddRow("Berlin", "1")
	tbl.AddRow("México D.F.", "2")

	out := tbl.Render()
	for _, want := range []string{"City", "count", "Berlin", "México D.F."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Showing") {
		t.Fatalf("did not expect a truncation footer:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows on 4 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[3], "México D.F.") || !strings.Contains(lines[3], "2") {
		t.Fatalf("widest cell wrapped:\n%s", out)
	}
}

func TestDataTableTruncationFooter(t *testing.T) {
	tbl := NewDataTable(NewDisplayContextWithWidth(80), []string{"ID"})
	tbl.AddRow("1")
	tbl.AddRow("2")
	tbl.SetTotal(1500)

	out := tbl.Render()
	if !strings.Contains(out, "Showing 2 of 1500 rows") {
		t.Fatalf("expected truncation footer, got:\n%s", out)
	}
}

func TestDataTableWidthsFitTerminal(t *testing.T) {
	tbl := NewDataTable(NewDisplayContextWithWidth(40), []string{"A", "B"})
	tbl.AddRow(strings.Repeat("x", 60), strings.Repeat("y", 60))

	widths := tbl.Widths()
	if total := widths[0] + widths[1]; total > 40-leftMargin-columnPadding {
		t.Fatalf("expected widths to fit, got %v", widths)
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Berlin", 10, "Berlin"},
		{"Berlin", 4, "Ber…"},
		{"México D.F.", 6, "Méxic…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
