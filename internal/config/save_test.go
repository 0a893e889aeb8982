package config

import (
	"path/filepath"
	"testing"
)

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	off := false
	cfg := &Config{
		Source: SourceConfig{Kind: "sqlite", Path: "northwind.db"},
		Sources: map[string]SourceConfig{
			"api": {Kind: "http", URL: "https://localhost:7129", Fallback: &off},
		},
		Store:    StoreConfig{Kind: "sqlite", Path: "tabula.db"},
		UI:       UIConfig{Accent: "#ff8800"},
		LogLevel: "debug",
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo returned error: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom returned error: %v", err)
	}

	if loaded.Source.Path != "northwind.db" {
		t.Fatalf("expected source.path kept, got %q", loaded.Source.Path)
	}
	api := loaded.Sources["api"]
	if api.URL != "https://localhost:7129" || api.FallbackEnabled() {
		t.Fatalf("unexpected sources.api: %+v", api)
	}
	if loaded.Store.Kind != "sqlite" || loaded.Store.Path != "tabula.db" {
		t.Fatalf("unexpected store: %+v", loaded.Store)
	}
	if loaded.LogLevel != "debug" {
		t.Fatalf("expected log_level kept, got %q", loaded.LogLevel)
	}
	if loaded.UI.Accent != "#ff8800" {
		t.Fatalf("expected ui.accent kept, got %q", loaded.UI.Accent)
	}
}

func TestSaveToRequiresPath(t *testing.T) {
	if err := SaveTo(" ", &Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
