package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultTermWidth is used when stdout is not a terminal or its size is unknown.
const DefaultTermWidth = 120

// DisplayContext is the output geometry tables and charts are fitted to.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext measures stdout.
func NewDisplayContext() *DisplayContext {
	d := &DisplayContext{TermWidth: DefaultTermWidth}
	fd := os.Stdout.Fd()
	if !term.IsTerminal(fd) {
		return d
	}
	d.IsTTY = true
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		d.TermWidth = w
	}
	return d
}

// NewDisplayContextWithWidth is a terminal of the given width.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width, IsTTY: true}
}

// AvailableWidth is the width left after a left margin.
func (d *DisplayContext) AvailableWidth(margin int) int {
	return d.TermWidth - margin
}

// ColorEnabled reports whether output to f should be colored: f is a
// terminal (or a Cygwin pty) and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
