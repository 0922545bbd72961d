// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer       TimerConfig      `toml:"timer"`
	Comparisons ComparisonConfig `toml:"comparisons"`
	Keys        KeysConfig       `toml:"keys"`
}

// TimerConfig maps timer-related settings.
type TimerConfig struct {
	TimingMethod *string `toml:"timing-method"`
	Comparison   *string `toml:"comparison"`
	HistoryLimit *int    `toml:"history-limit"`
	Decimals     *int    `toml:"decimals"`
	Debug        *bool   `toml:"debug"`
}

// ComparisonConfig selects the comparison generators attached to new runs.
type ComparisonConfig struct {
	Generators []string `toml:"generators"`
}

// KeysConfig overrides key bindings. Each entry lists one or more keys.
type KeysConfig struct {
	Split     []string `toml:"split"`
	Skip      []string `toml:"skip"`
	Undo      []string `toml:"undo"`
	Pause     []string `toml:"pause"`
	Reset     []string `toml:"reset"`
	Discard   []string `toml:"discard"`
	Previous  []string `toml:"previous"`
	Next      []string `toml:"next"`
	Method    []string `toml:"method"`
	UndoState []string `toml:"undo-state"`
	RedoState []string `toml:"redo-state"`
	Quit      []string `toml:"quit"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
