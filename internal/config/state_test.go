package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStatePath(t *testing.T) {
	tests := []struct {
		name      string
		stateFile string
		want      string
	}{
		{"sibling of config", "", "/home/me/.config/tabula/state.toml"},
		{"absolute", "/var/tmp/tabula-state.toml", "/var/tmp/tabula-state.toml"},
		{"relative to config dir", "runtime/state.toml", "/home/me/.config/tabula/runtime/state.toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveStatePath("/home/me/.config/tabula/config.toml", &Config{StateFile: tt.stateFile})
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}

	assert.Equal(t, filepath.FromSlash("/etc/tabula/state.toml"), ResolveStatePath("/etc/tabula/config.toml", nil))
}

func TestLoadStateMissingFile(t *testing.T) {
	state, err := LoadState(filepath.Join(t.TempDir(), "state.toml"))
	require.NoError(t, err)
	assert.Equal(t, &State{Version: StateVersion}, state)
}

func TestLoadStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	require.NoError(t, os.WriteFile(path, []byte("last_table = ["), 0o644))

	_, err := LoadState(path)
	assert.ErrorContains(t, err, "failed to parse state")
}

func TestSaveStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.toml")

	require.NoError(t, SaveState(path, &State{ActiveSource: " api ", LastTable: "Customers"}))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, &State{Version: StateVersion, ActiveSource: "api", LastTable: "Customers"}, loaded)
}

func TestStateRememberAndUse(t *testing.T) {
	s := &State{}
	assert.True(t, s.Remember("Orders"))
	assert.False(t, s.Remember("Orders"))
	assert.False(t, s.Remember("  "))
	assert.Equal(t, "Orders", s.LastTable)

	s.Use(" warehouse ")
	assert.Equal(t, "warehouse", s.ActiveSource)
	assert.Empty(t, s.LastTable)
}

func TestSaveToOmitsEmptySections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, SaveTo(path, &Config{
		DefaultSource: "api",
		StateFile:     "state.toml",
		Sources: map[string]SourceConfig{
			"api": {Kind: "http", URL: "https://localhost:7129"},
		},
		UI: UIConfig{MaxRows: 200},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	for _, want := range []string{`default_source = "api"`, `state_file = "state.toml"`, "[sources.api]", "max_rows = 200"} {
		assert.Contains(t, content, want)
	}
	assert.NotContains(t, content, "[store]")
}
