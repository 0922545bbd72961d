package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	terminalWidthBackup = 80
	trendLabelWidth     = 10
	minTrendWidth       = 10
)

// Render prints the full plain-text report.
func Render(w io.Writer, rep Report, cfg model.StatsConfig, decimals int) error {
	if err := RenderSummary(w, rep, decimals); err != nil {
		return err
	}
	if err := RenderTrend(w, rep.Window, cfg.TimingMethod, cfg.CurveWindow, terminalWidth()); err != nil {
		return err
	}
	if err := RenderSegmentTable(w, rep.Segments, decimals); err != nil {
		return err
	}
	return RenderAttempts(w, rep.Attempts, cfg.TimingMethod, decimals)
}

// RenderSummary prints the headline numbers of a report.
func RenderSummary(w io.Writer, rep Report, decimals int) error {
	s := rep.Summary
	if _, err := fmt.Fprintln(w, rep.Run.ExtendedName()); err != nil {
		return err
	}
	lines := [][]string{
		{"Attempts started", humanize.Comma(int64(s.Started))},
		{"Attempts recorded", humanize.Comma(int64(s.Recorded))},
		{"Finished", fmt.Sprintf("%d (%.1f%%)", s.Finished, s.FinishRate*100)},
		{"Personal best", timing.FormatSpan(s.PersonalBest, decimals)},
		{"Best finish", timing.FormatSpan(s.BestFinish, decimals)},
		{"Average finish", timing.FormatSpan(s.AverageFinish, decimals)},
		{"Sum of best", timing.FormatSpan(s.SumOfBest, decimals)},
		{"Possible time save", timing.FormatSpan(s.PossibleTimeSave, decimals)},
		{"Play time", timing.FormatSpan(timing.Known(s.PlayTime), 0)},
	}
	for _, line := range formatTable(nil, lines, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints a sparkline of finishing times smoothed over window,
// sized to fit within totalWidth.
func RenderTrend(w io.Writer, attempts []model.AttemptAggregate, m timing.TimingMethod, window, totalWidth int) error {
	values := FinishSeconds(attempts, m)
	if len(values) == 0 {
		return nil
	}
	values = resample(MovingAverage(values, window), TrendWidthFor(totalWidth))
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if _, err := fmt.Fprintln(w, "Finish Trend"); err != nil {
		return err
	}
	label := runewidth.FillLeft(timing.FormatSpan(timing.Known(timing.FromSeconds(hi)), 0), trendLabelWidth)
	if _, err := fmt.Fprintf(w, "%s |%s\n", label, Sparkline(values)); err != nil {
		return err
	}
	label = runewidth.FillLeft(timing.FormatSpan(timing.Known(timing.FromSeconds(lo)), 0), trendLabelWidth)
	if _, err := fmt.Fprintf(w, "%s |\n\n", label); err != nil {
		return err
	}
	return nil
}

// TrendWidthFor computes a sparkline width that fits within the total width.
func TrendWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minTrendWidth
	}
	return max(totalWidth-trendLabelWidth-2, minTrendWidth)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// resample shrinks values to at most width points by averaging buckets.
func resample(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	out := make([]float64, width)
	for i := range width {
		start := i * len(values) / width
		end := max((i+1)*len(values)/width, start+1)
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// RenderSegmentTable prints per-segment aggregates.
func RenderSegmentTable(w io.Writer, rows []SegmentRow, decimals int) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No segments found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Segments"); err != nil {
		return err
	}
	headers := []string{"Segment", "PB", "Best", "Average", "Median", "Worst", "Samples"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Name,
			timing.FormatSpan(r.PBSegment, decimals),
			timing.FormatSpan(r.Best, decimals),
			timing.FormatSpan(r.Average, decimals),
			timing.FormatSpan(r.Median, decimals),
			timing.FormatSpan(r.Worst, decimals),
			fmt.Sprintf("%d", r.Samples),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAttempts prints the recorded attempts, newest first.
func RenderAttempts(w io.Writer, attempts []model.AttemptAggregate, m timing.TimingMethod, decimals int) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Attempts"); err != nil {
		return err
	}
	headers := []string{"#", "Time", "Pause", "Reached", "Ended"}
	rows := make([][]string, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		ended := "-"
		if !a.EndedAt.IsZero() {
			ended = humanize.Time(a.EndedAt)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", a.Index),
			timing.FormatSpan(a.Final(m), decimals),
			timing.FormatSpan(a.PauseTime, decimals),
			fmt.Sprintf("%d", a.Reached),
			ended,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{0: true, 1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
