package ui

import "fmt"

// Status symbols. Messages carry no color; the symbol is the signal.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
)

func Success(msg string) string { return SymbolSuccess + " " + msg }

func Successf(format string, args ...any) string { return Success(fmt.Sprintf(format, args...)) }

func Error(msg string) string { return SymbolError + " " + msg }

func Warning(msg string) string { return SymbolWarning + " " + msg }

// Header renders a section title in bold.
func Header(msg string) string { return Bold.Render(msg) }

// Name renders a table, column, dataset, or source name in the accent color.
func Name(name string) string { return Accent.Render(name) }

// Hint renders secondary text (counts, relations, suggestions) muted.
func Hint(msg string) string { return Muted.Render(msg) }

// Count renders "(1 row)" or "(3 rows)".
func Count(n int, singular, plural string) string {
	unit := plural
	if n == 1 {
		unit = singular
	}
	return fmt.Sprintf("(%d %s)", n, unit)
}
