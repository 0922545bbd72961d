package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/segfile"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

var (
	newGame     string
	newCategory string
	newSegments []string
	newOffset   string
	newSegFile  string

	segmentsRunID int64
	deleteRunID   int64
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a run",
		Args:  cobra.NoArgs,
		RunE:  runNewCmd,
	}
	cmd.Flags().StringVar(&newGame, "game", "", "game name")
	cmd.Flags().StringVar(&newCategory, "category", "", "category name")
	cmd.Flags().StringArrayVar(&newSegments, "segment", nil, "segment name (repeat for each segment)")
	cmd.Flags().StringVar(&newOffset, "offset", "0", "start offset, negative for a countdown (e.g. -5s)")
	cmd.Flags().StringVar(&newSegFile, "segments-file", "", "file with one segment name per line")
	return cmd
}

func runNewCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	segments := newSegments
	if newSegFile != "" {
		fromFile, err := segfile.Load(newSegFile)
		if err != nil {
			return err
		}
		segments = append(segments, fromFile...)
	}
	r, err := buildRun(newGame, newCategory, segments, newOffset, fileCfg.Comparisons.Generators)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	id, err := st.SaveRun(context.Background(), 0, r)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Created run %d: %s (%d segments)\n", id, r.ExtendedName(), r.Len()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// buildRun assembles a new run; generators falls back to the defaults when empty.
func buildRun(game, category string, segments []string, offset string, generators []string) (*run.Run, error) {
	if strings.TrimSpace(game) == "" && strings.TrimSpace(category) == "" {
		return nil, fmt.Errorf("--game or --category must be set")
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("at least one --segment or --segments-file is required")
	}
	span, err := timing.ParseSpan(offset)
	if err != nil {
		return nil, fmt.Errorf("invalid --offset: %w", err)
	}

	r := comparison.NewRun()
	if len(generators) > 0 {
		gens, err := comparison.FromNames(generators)
		if err != nil {
			return nil, fmt.Errorf("invalid comparison generators: %w", err)
		}
		r.SetComparisonGenerators(gens)
	}
	r.GameName = strings.TrimSpace(game)
	r.CategoryName = strings.TrimSpace(category)
	r.Offset = span
	for _, name := range segments {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("segment names must not be empty")
		}
		r.PushSegment(run.NewSegment(name))
	}
	r.RegenerateComparisons()
	return r, nil
}

func newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Args:  cobra.NoArgs,
		RunE:  runRunsCmd,
	}
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		logErrln("No runs found. Create one with: tuisplit new --game <name> --segment <name>...")
		return nil
	}
	out := cmd.OutOrStdout()
	for _, r := range runs {
		name := r.GameName
		if r.CategoryName != "" {
			name += " - " + r.CategoryName
		}
		line := fmt.Sprintf("%4d  %-32s  %3d segments  %s attempts (%d finished)  PB %s  updated %s",
			r.ID, name, r.Segments, humanize.Comma(int64(r.AttemptCount)), r.Finished,
			timing.FormatSpan(r.PersonalBest, defaultDecimals), humanize.Time(r.UpdatedAt))
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newSegmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "List the segments of a run",
		Args:  cobra.NoArgs,
		RunE:  runSegmentsCmd,
	}
	cmd.Flags().Int64Var(&segmentsRunID, "run", 0, "run id (default: most recently updated run)")
	return cmd
}

func runSegmentsCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	id, err := resolveRunID(ctx, st, segmentsRunID)
	if err != nil {
		return err
	}
	r, err := st.LoadRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintln(out, r.ExtendedName()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for i, seg := range r.Segments() {
		line := fmt.Sprintf("%3d  %-24s  PB %10s  Best %10s",
			i+1, seg.Name,
			timing.FormatSpan(seg.PersonalBestSplitTime().RealTime, defaultDecimals),
			timing.FormatSpan(seg.BestSegmentTime().RealTime, defaultDecimals))
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a run and its attempts",
		Args:  cobra.NoArgs,
		RunE:  runDeleteCmd,
	}
	cmd.Flags().Int64Var(&deleteRunID, "run", 0, "run id")
	if err := cmd.MarkFlagRequired("run"); err != nil {
		panic(err)
	}
	return cmd
}

func runDeleteCmd(cmd *cobra.Command, _ []string) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if err := st.DeleteRun(context.Background(), deleteRunID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	logErrf("Deleted run %d\n", deleteRunID)
	return nil
}
