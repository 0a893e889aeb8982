package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates on stderr while a source fetch runs, leaving stdout to
// tables and JSON. Off a terminal every method is a no-op.
type Spinner struct {
	message string
	out     io.Writer
	animate bool

	startOnce sync.Once
	stopOnce  sync.Once
	quit      chan struct{}
	exited    chan struct{}
}

func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		out:     os.Stderr,
		animate: isatty.IsTerminal(os.Stderr.Fd()),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Disable silences the spinner. Call it before Start.
func (s *Spinner) Disable() {
	s.animate = false
}

func (s *Spinner) Start() {
	if !s.animate {
		return
	}
	s.startOnce.Do(func() {
		go s.loop()
	})
}

func (s *Spinner) loop() {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s %s", Bold.Render(spinnerFrames[i%len(spinnerFrames)]), s.message)
		select {
		case <-s.quit:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop clears the spinner line. Safe to call more than once, and without Start.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		started := true
		s.startOnce.Do(func() { started = false })
		if started {
			<-s.exited
		}
	})
}

// StopWithCheck stops the spinner and, on a terminal, leaves "✓ message".
func (s *Spinner) StopWithCheck(message string) {
	s.Stop()
	if s.animate {
		fmt.Fprintln(s.out, Success(message))
	}
}
