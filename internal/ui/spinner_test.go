package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerOffTerminalIsSilent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Loading Customers")
	s.out = &buf
	s.Disable()

	s.Start()
	s.StopWithCheck("Loaded")
	s.Stop()

	assert.Empty(t, buf.String())
}

func TestSpinnerAnimatesAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Loading Customers")
	s.out = &buf
	s.animate = true

	s.Start()
	s.Start()
	s.StopWithCheck("Loaded Customers")
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Loading Customers")
	assert.Contains(t, out, "\r\033[K")
	assert.True(t, strings.HasSuffix(out, "✓ Loaded Customers\n"))
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := NewSpinner("idle")
	s.animate = true
	s.out = &bytes.Buffer{}
	s.Stop()
	s.Start()
	s.Stop()
}
