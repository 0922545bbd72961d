package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuisplit/internal/config"
	"github.com/verte-zerg/tuisplit/internal/export"
	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/stats"
	"github.com/verte-zerg/tuisplit/internal/statsui"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

var (
	statsRunID        int64
	statsSince        string
	statsLast         int
	statsCurveWindow  int
	statsTimingMethod string
	statsPlain        bool

	exportRunID int64
	exportOut   string
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats for a run",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().Int64Var(&statsRunID, "run", 0, "run id (default: most recently updated run)")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N attempts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().StringVar(&statsTimingMethod, "timing-method", defaultTimingMethod, "timing method: real or game")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain-text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "timing-method", &statsTimingMethod, fileCfg.Timer.TimingMethod)
	decimals := defaultDecimals
	if fileCfg.Timer.Decimals != nil {
		decimals = *fileCfg.Timer.Decimals
	}

	sinceTime, err := parseSince(statsSince)
	if err != nil {
		return err
	}
	method, err := timing.ParseTimingMethod(statsTimingMethod)
	if err != nil {
		return fmt.Errorf("invalid --timing-method: %w", err)
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	id, err := resolveRunID(ctx, st, statsRunID)
	if err != nil {
		return err
	}
	cfg := model.StatsConfig{
		RunID:        id,
		Since:        sinceTime,
		Last:         statsLast,
		CurveWindow:  statsCurveWindow,
		TimingMethod: method,
	}

	if statsPlain {
		report, err := stats.BuildReport(ctx, st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return stats.Render(cmd.OutOrStdout(), report, cfg, decimals)
	}

	m := statsui.NewModel(st, cfg, decimals)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func parseSince(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --since value: %w", err)
	}
	return &parsed, nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a run as YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().Int64Var(&exportRunID, "run", 0, "run id (default: most recently updated run)")
	cmd.Flags().StringVar(&exportOut, "out", "", "output directory, or - for stdout (default: XDG data dir)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	id, err := resolveRunID(ctx, st, exportRunID)
	if err != nil {
		return err
	}
	r, err := st.LoadRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	if exportOut == "-" {
		return export.Write(cmd.OutOrStdout(), r)
	}
	dir := exportOut
	if dir == "" {
		dir = config.DefaultExportDir()
	}
	path, err := export.WriteFile(dir, r)
	if err != nil {
		return err
	}
	logErrf("Wrote %s\n", path)
	return nil
}
