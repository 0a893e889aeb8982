package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/tabula/internal/atomicfile"
)

type persistedConfig struct {
	DefaultSource *string                    `toml:"default_source,omitempty"`
	StateFile     *string                    `toml:"state_file,omitempty"`
	Source        *persistedSource           `toml:"source,omitempty"`
	Sources       map[string]persistedSource `toml:"sources,omitempty"`
	Store         *persistedStore            `toml:"store,omitempty"`
	UI            *persistedUISettings       `toml:"ui,omitempty"`
	LogLevel      *string                    `toml:"log_level,omitempty"`
}

type persistedSource struct {
	Kind     *string `toml:"kind,omitempty"`
	URL      *string `toml:"url,omitempty"`
	Path     *string `toml:"path,omitempty"`
	DSN      *string `toml:"dsn,omitempty"`
	Fallback *bool   `toml:"fallback,omitempty"`
}

type persistedStore struct {
	Kind *string `toml:"kind,omitempty"`
	Path *string `toml:"path,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
	MaxRows   *int    `toml:"max_rows,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func persistSource(s SourceConfig) persistedSource {
	return persistedSource{
		Kind:     nonEmptyPtr(s.Kind),
		URL:      nonEmptyPtr(s.URL),
		Path:     nonEmptyPtr(s.Path),
		DSN:      nonEmptyPtr(s.DSN),
		Fallback: s.Fallback,
	}
}

func (p persistedSource) empty() bool {
	return p.Kind == nil && p.URL == nil && p.Path == nil && p.DSN == nil && p.Fallback == nil
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DefaultSource: nonEmptyPtr(cfg.DefaultSource),
		StateFile:     nonEmptyPtr(cfg.StateFile),
		LogLevel:      nonEmptyPtr(cfg.LogLevel),
	}
	if src := persistSource(cfg.Source); !src.empty() {
		out.Source = &src
	}
	if len(cfg.Sources) > 0 {
		out.Sources = make(map[string]persistedSource, len(cfg.Sources))
		for name, s := range cfg.Sources {
			out.Sources[name] = persistSource(s)
		}
	}

	storeKind := nonEmptyPtr(cfg.Store.Kind)
	storePath := nonEmptyPtr(cfg.Store.Path)
	if storeKind != nil || storePath != nil {
		out.Store = &persistedStore{Kind: storeKind, Path: storePath}
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	var maxRows *int
	if cfg.UI.MaxRows > 0 {
		n := cfg.UI.MaxRows
		maxRows = &n
	}
	if accent != nil || codeTheme != nil || maxRows != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
			MaxRows:   maxRows,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
