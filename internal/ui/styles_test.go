package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAccentColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", false},
		{"none", "", false},
		{"OFF", "", false},
		{"default", "", false},
		{"39", "39", true},
		{"  244 ", "244", true},
		{"256", "", false},
		{"-1", "", false},
		{"#7AA2F7", "#7aa2f7", true},
		{"#abc", "#aabbcc", true},
		{"#zzzzzz", "", false},
		{"#abcd", "", false},
		{"purple", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := normalizeAccentColor(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigureTheme(t *testing.T) {
	origAccent, origBold, origColor := Accent, AccentBold, accentColor
	t.Cleanup(func() {
		Accent, AccentBold, accentColor = origAccent, origBold, origColor
	})

	ConfigureTheme("39")
	got, ok := AccentColor()
	assert.True(t, ok)
	assert.Equal(t, "39", got)

	ConfigureTheme("  ")
	got, _ = AccentColor()
	assert.Equal(t, "39", got, "blank keeps the current accent")

	ConfigureTheme("none")
	_, ok = AccentColor()
	assert.False(t, ok)
}
