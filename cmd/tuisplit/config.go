package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/config"
	"github.com/verte-zerg/tuisplit/internal/run"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Lookup(name) != nil && cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	gens := comparison.Defaults()
	names := make([]string, len(gens))
	for i, g := range gens {
		names[i] = fmt.Sprintf("%q", g.Name())
	}
	return fmt.Sprintf(`# tuisplit configuration
# Uncomment a value to enable it. CLI flags override config values.

[timer]
# timing-method = %q      # real or game
# comparison = %q         # Comparison shown first
# history-limit = %d      # Undoable timer states (0 keeps all)
# decimals = %d           # Fraction digits shown (0-3)
# debug = false           # Debug logging

[comparisons]
# Generators attached to runs created with "tuisplit new".
# generators = [%s]

[keys]
# split = ["space", "enter"]
# skip = ["s"]
# undo = ["backspace"]
# pause = ["p"]
# reset = ["r"]
# discard = ["x"]
# previous = ["left"]
# next = ["right"]
# method = ["t"]
# undo-state = ["ctrl+z"]
# redo-state = ["ctrl+y"]
# quit = ["q", "ctrl+c"]
`,
		defaultTimingMethod,
		run.PersonalBestComparison,
		defaultHistoryLimit,
		defaultDecimals,
		strings.Join(names, ", "),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
