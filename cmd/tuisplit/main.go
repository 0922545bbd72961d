// Package main provides the CLI entrypoint for tuisplit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/schollz/logger"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuisplit/internal/config"
	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/store"
	"github.com/verte-zerg/tuisplit/internal/timer"
	"github.com/verte-zerg/tuisplit/internal/timing"
	"github.com/verte-zerg/tuisplit/internal/tui"
)

const (
	defaultTimingMethod = "real"
	defaultHistoryLimit = 1000
	defaultDecimals     = 2
	defaultCurveWindow  = 10
)

var (
	timerRunID        int64
	timerTimingMethod string
	timerComparison   string
	timerHistoryLimit int
	timerDecimals     int
	debugMode         bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuisplit",
		Short:         "TUI speedrun split timer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTimerCmd,
	}

	rootCmd.Flags().Int64Var(&timerRunID, "run", 0, "run id (default: most recently updated run)")
	rootCmd.Flags().StringVar(&timerTimingMethod, "timing-method", defaultTimingMethod, "timing method: real or game")
	rootCmd.Flags().StringVar(&timerComparison, "comparison", run.PersonalBestComparison, "comparison shown first")
	rootCmd.Flags().IntVar(&timerHistoryLimit, "history-limit", defaultHistoryLimit, "number of undoable timer states (0 keeps all)")
	rootCmd.Flags().IntVar(&timerDecimals, "decimals", defaultDecimals, "fraction digits shown (0-3)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newNewCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newSegmentsCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "timing-method", &timerTimingMethod, fileCfg.Timer.TimingMethod)
	applyStringConfig(cmd, "comparison", &timerComparison, fileCfg.Timer.Comparison)
	applyIntConfig(cmd, "history-limit", &timerHistoryLimit, fileCfg.Timer.HistoryLimit)
	applyIntConfig(cmd, "decimals", &timerDecimals, fileCfg.Timer.Decimals)

	method, err := timing.ParseTimingMethod(timerTimingMethod)
	if err != nil {
		return fmt.Errorf("invalid --timing-method: %w", err)
	}
	cfg := model.Config{
		RunID:        timerRunID,
		TimingMethod: method,
		Comparison:   timerComparison,
		HistoryLimit: timerHistoryLimit,
		Decimals:     timerDecimals,
		Keys:         keyBindings(fileCfg.Keys),
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	cfg.RunID, err = resolveRunID(ctx, st, cfg.RunID)
	if err != nil {
		return err
	}
	r, err := st.LoadRun(ctx, cfg.RunID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	tm, err := timer.New(r, timer.WithTimingMethod(cfg.TimingMethod), timer.WithComparison(cfg.Comparison))
	if err != nil {
		return fmt.Errorf("failed to create timer: %w", err)
	}

	m := tui.NewModel(cfg, st, timer.NewShared(tm, cfg.HistoryLimit))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// loadFileConfig reads the config file and sets the log level from it.
func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "debug", &debugMode, fileCfg.Timer.Debug)
	if debugMode {
		log.SetLevel("debug")
	} else {
		log.SetLevel("warn")
	}
	return fileCfg, nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

// resolveRunID falls back to the most recently updated run when id is zero.
func resolveRunID(ctx context.Context, st *store.Store, id int64) (int64, error) {
	if id != 0 {
		return id, nil
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		logErrln("No runs found. Create one with: tuisplit new --game <name> --segment <name>...")
		return 0, errors.New("no runs found")
	}
	return runs[0].ID, nil
}

func keyBindings(k config.KeysConfig) model.KeyBindings {
	def := tui.DefaultKeys()
	pick := func(v, fallback []string) []string {
		if len(v) == 0 {
			return fallback
		}
		return v
	}
	return model.KeyBindings{
		Split:     pick(k.Split, def.Split),
		Skip:      pick(k.Skip, def.Skip),
		Undo:      pick(k.Undo, def.Undo),
		Pause:     pick(k.Pause, def.Pause),
		Reset:     pick(k.Reset, def.Reset),
		Discard:   pick(k.Discard, def.Discard),
		Previous:  pick(k.Previous, def.Previous),
		Next:      pick(k.Next, def.Next),
		Method:    pick(k.Method, def.Method),
		UndoState: pick(k.UndoState, def.UndoState),
		RedoState: pick(k.RedoState, def.RedoState),
		Quit:      pick(k.Quit, def.Quit),
	}
}

func validateConfig(cfg model.Config) error {
	if cfg.Decimals < 0 || cfg.Decimals > 3 {
		return fmt.Errorf("--decimals must be between 0 and 3")
	}
	if cfg.HistoryLimit < 0 {
		return fmt.Errorf("--history-limit must be >= 0")
	}
	if cfg.Comparison == "" {
		return fmt.Errorf("--comparison must not be empty")
	}
	return nil
}
