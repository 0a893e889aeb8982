package ui

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayContextWithWidth(t *testing.T) {
	d := NewDisplayContextWithWidth(80)
	assert.True(t, d.IsTTY)
	assert.Equal(t, 78, d.AvailableWidth(leftMargin))
}

func TestColorEnabledHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(os.Stderr))
}
