package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timer.Comparison != nil || len(cfg.Comparisons.Generators) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[timer]
timing-method = "game"
comparison = "Best Segments"
history-limit = 50
decimals = 3

[comparisons]
generators = ["Best Segments", "Average Segments"]

[keys]
split = ["space", "enter"]
quit = ["ctrl+c"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Timer.TimingMethod == nil || *cfg.Timer.TimingMethod != "game" {
		t.Fatalf("unexpected timing method: %v", cfg.Timer.TimingMethod)
	}
	if cfg.Timer.HistoryLimit == nil || *cfg.Timer.HistoryLimit != 50 {
		t.Fatalf("unexpected history limit: %v", cfg.Timer.HistoryLimit)
	}
	if cfg.Timer.Debug != nil {
		t.Fatalf("expected debug to be unset")
	}
	if len(cfg.Comparisons.Generators) != 2 {
		t.Fatalf("unexpected generators: %v", cfg.Comparisons.Generators)
	}
	if strings.Join(cfg.Keys.Split, ",") != "space,enter" {
		t.Fatalf("unexpected split keys: %v", cfg.Keys.Split)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[timer]\nspeed = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestDefaultPathsUseXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))

	if got, want := DefaultConfigPath(), filepath.Join(dir, "cfg", "tuisplit", "config.toml"); got != want {
		t.Fatalf("config path: got %q want %q", got, want)
	}
	if got, want := DefaultDBPath(), filepath.Join(dir, "data", "tuisplit", "tuisplit.db"); got != want {
		t.Fatalf("db path: got %q want %q", got, want)
	}
	if got, want := DefaultExportDir(), filepath.Join(dir, "data", "tuisplit", "exports"); got != want {
		t.Fatalf("export dir: got %q want %q", got, want)
	}
}
