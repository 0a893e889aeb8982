// Package config handles global tabula configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Source kinds.
const (
	SourceSample   = "sample"
	SourceHTTP     = "http"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config represents the global tabula configuration.
type Config struct {
	// DefaultSource names the entry in Sources used when no --source is given.
	// When empty, the [source] table is used.
	DefaultSource string `toml:"default_source"`

	// StateFile overrides where state.toml lives. Relative paths are resolved
	// against the config file's directory.
	StateFile string `toml:"state_file"`

	// Source is the unnamed default data source.
	Source SourceConfig `toml:"source"`

	// Sources holds named data sources selectable with --source.
	Sources map[string]SourceConfig `toml:"sources"`

	// Store configures where saved datasets are persisted.
	Store StoreConfig `toml:"store"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`

	// LogLevel is debug, info, warn, error, or off. --verbose wins.
	LogLevel string `toml:"log_level"`
}

// SourceConfig describes one data source.
type SourceConfig struct {
	// Kind is one of sample, http, sqlite, postgres. Empty means sample.
	Kind string `toml:"kind"`

	// URL is the base URL of the REST API (kind = "http").
	URL string `toml:"url"`

	// Path is the database file (kind = "sqlite").
	Path string `toml:"path"`

	// DSN is the connection string (kind = "postgres").
	DSN string `toml:"dsn"`

	// Fallback controls whether failures fall back to the sample data.
	// Defaults to true.
	Fallback *bool `toml:"fallback"`
}

// StoreConfig describes the dataset store.
type StoreConfig struct {
	// Kind is file or sqlite. Empty means file.
	Kind string `toml:"kind"`

	// Path is the directory (file) or database file (sqlite). Relative paths
	// are resolved against the config file's directory.
	Path string `toml:"path"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	CodeTheme string `toml:"code_theme"`

	// MaxRows caps the rows shown in a table view. Zero means 1000.
	MaxRows int `toml:"max_rows"`
}

// KindOrDefault returns the source kind, defaulting to sample.
func (s SourceConfig) KindOrDefault() string {
	kind := strings.ToLower(strings.TrimSpace(s.Kind))
	if kind == "" {
		return SourceSample
	}
	return kind
}

// FallbackEnabled reports whether failures should fall back to sample data.
func (s SourceConfig) FallbackEnabled() bool {
	return s.Fallback == nil || *s.Fallback
}

// Validate checks that the fields the kind needs are present.
func (s SourceConfig) Validate() error {
	switch s.KindOrDefault() {
	case SourceSample:
		return nil
	case SourceHTTP:
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("source kind %q requires url", SourceHTTP)
		}
	case SourceSQLite:
		if strings.TrimSpace(s.Path) == "" {
			return fmt.Errorf("source kind %q requires path", SourceSQLite)
		}
	case SourcePostgres:
		if strings.TrimSpace(s.DSN) == "" {
			return fmt.Errorf("source kind %q requires dsn", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown source kind %q (expected sample, http, sqlite, or postgres)", s.Kind)
	}
	return nil
}

// GetSource returns the source named name. An empty name selects the
// default source. A bare kind name such as "sample" is accepted when no
// named source shadows it.
func (c *Config) GetSource(name string) (SourceConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.TrimSpace(c.DefaultSource)
	}
	if name == "" {
		return c.Source, nil
	}

	if src, ok := c.Sources[name]; ok {
		return src, nil
	}
	if name == SourceSample {
		return SourceConfig{Kind: SourceSample}, nil
	}
	return SourceConfig{}, fmt.Errorf("source '%s' not found in config", name)
}

// SourceNames returns the named sources in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxRows returns the display cap, defaulting to 1000.
func (c *Config) MaxRows() int {
	if c.UI.MaxRows > 0 {
		return c.UI.MaxRows
	}
	return 1000
}

// StorePath resolves the dataset store location for a config file at
// configPath.
func (c *Config) StorePath(configPath string) string {
	p := strings.TrimSpace(c.Store.Path)
	if p == "" {
		if strings.EqualFold(c.Store.Kind, StoreSQLite) {
			p = "tabula.db"
		} else {
			p = "datasets"
		}
	}
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(filepath.Dir(ResolveConfigPath(configPath)), p)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

// Load loads the configuration from the default location.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := config.Source.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: [source]: %w", path, err)
	}
	for _, name := range config.SourceNames() {
		if err := config.Sources[name].Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: [sources.%s]: %w", path, name, err)
		}
	}
	return &config, nil
}

// ResolveConfigPath returns explicit when set, otherwise DefaultPath.
func ResolveConfigPath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
// Checks ~/.config/tabula/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "tabula", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "tabula", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}

const defaultConfig = `# tabula configuration

# Diagnostics on stderr: debug | info | warn | error | off
# log_level = "warn"

# Data source used when --source is not given.
# kind: sample | http | sqlite | postgres
[source]
kind = "sample"
# url = "https://localhost:7129"        # http
# path = "/path/to/northwind.db"        # sqlite
# dsn = "postgres://localhost/northwind" # postgres
# fallback = true                       # use sample data when the source fails

# Named sources, selected with --source <name>.
# [sources.api]
# kind = "http"
# url = "https://localhost:7129"

# Where saved datasets are kept.
# kind: file | sqlite
[store]
kind = "file"
# path = "datasets"

# [ui]
# accent = "39"
# code_theme = "monokai"
# max_rows = 1000
`

// CreateDefault writes a commented default config to path if no file exists
// there. It reports whether a file was created.
func CreateDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}
