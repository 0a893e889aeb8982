package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/tabula/internal/atomicfile"
)

// StateVersion is written to every state.toml.
const StateVersion = 1

// State is what tabula remembers between runs on this machine. Unlike
// config.toml it is rewritten by ordinary commands.
type State struct {
	Version      int    `toml:"version"`
	ActiveSource string `toml:"active_source,omitempty"`
	LastTable    string `toml:"last_table,omitempty"`
}

// Use makes name the active source. The remembered table belonged to the
// previous source, so it is forgotten.
func (s *State) Use(name string) {
	s.ActiveSource = strings.TrimSpace(name)
	s.LastTable = ""
}

// Remember records table as the last one used and reports whether that
// changed anything.
func (s *State) Remember(table string) bool {
	table = strings.TrimSpace(table)
	if table == "" || table == s.LastTable {
		return false
	}
	s.LastTable = table
	return true
}

func (s *State) normalize() {
	if s.Version == 0 {
		s.Version = StateVersion
	}
	s.ActiveSource = strings.TrimSpace(s.ActiveSource)
	s.LastTable = strings.TrimSpace(s.LastTable)
}

// ResolveStatePath returns where state.toml lives: cfg.StateFile when set
// (relative to the config directory), otherwise next to config.toml.
func ResolveStatePath(configPath string, cfg *Config) string {
	dir := filepath.Dir(ResolveConfigPath(configPath))
	if cfg == nil || strings.TrimSpace(cfg.StateFile) == "" {
		return filepath.Join(dir, "state.toml")
	}

	p := filepath.FromSlash(strings.TrimSpace(cfg.StateFile))
	// "/x" counts as absolute on every OS.
	if filepath.IsAbs(p) || strings.HasPrefix(filepath.ToSlash(p), "/") {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// LoadState reads state.toml. A missing file is an empty state.
func LoadState(path string) (*State, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state path is required")
	}

	state := &State{}
	if _, err := toml.DecodeFile(path, state); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to parse state %s: %w", path, err)
	}
	state.normalize()
	return state, nil
}

// SaveState replaces state.toml atomically.
func SaveState(path string, state *State) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("state path is required")
	}
	out := State{}
	if state != nil {
		out = *state
	}
	out.normalize()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write state %s: %w", path, err)
	}
	return nil
}
