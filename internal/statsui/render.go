package statsui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/stats"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

func renderOverview(rep stats.Report, cfg model.StatsConfig, decimals, width int) string {
	if rep.Run == nil {
		return "No run loaded."
	}
	cards := renderSummaryCards(rep.Summary, decimals, width)
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, rep.Window, cfg.TimingMethod, cfg.CurveWindow, width); err != nil {
		return cards + "\n\n" + fmt.Sprintf("Failed to render trend: %v", err)
	}
	if buf.Len() == 0 {
		return cards + "\n\nNo finished attempts yet."
	}
	return strings.TrimRight(cards+"\n\n"+buf.String(), "\n")
}

func renderSummaryCards(s stats.Summary, decimals, width int) string {
	cards := []string{
		metricCard("Attempts", humanize.Comma(int64(s.Started))),
		metricCard("Finished", fmt.Sprintf("%d (%.1f%%)", s.Finished, s.FinishRate*100)),
		metricCard("Personal Best", timing.FormatSpan(s.PersonalBest, decimals)),
		metricCard("Sum of Best", timing.FormatSpan(s.SumOfBest, decimals)),
		metricCard("Time Save", timing.FormatSpan(s.PossibleTimeSave, decimals)),
		metricCard("Avg Finish", timing.FormatSpan(s.AverageFinish, decimals)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newTable() table.Model {
	t := table.New(table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func segmentColumns() []table.Column {
	return []table.Column{
		{Title: "Segment", Width: 20},
		{Title: "PB", Width: 10},
		{Title: "Best", Width: 10},
		{Title: "Average", Width: 10},
		{Title: "Median", Width: 10},
		{Title: "Worst", Width: 10},
		{Title: "Samples", Width: 7},
	}
}

func segmentRows(rows []stats.SegmentRow, decimals int) []table.Row {
	out := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, table.Row{
			truncateLine(r.Name, 20),
			timing.FormatSpan(r.PBSegment, decimals),
			timing.FormatSpan(r.Best, decimals),
			timing.FormatSpan(r.Average, decimals),
			timing.FormatSpan(r.Median, decimals),
			timing.FormatSpan(r.Worst, decimals),
			fmt.Sprintf("%d", r.Samples),
		})
	}
	return out
}

func attemptColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: "Time", Width: 12},
		{Title: "Pause", Width: 10},
		{Title: "Reached", Width: 7},
		{Title: "Ended", Width: 16},
	}
}

// attemptRows lists attempts newest first.
func attemptRows(attempts []model.AttemptAggregate, m timing.TimingMethod, decimals int) []table.Row {
	out := make([]table.Row, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		ended := "-"
		if !a.EndedAt.IsZero() {
			ended = humanize.Time(a.EndedAt)
		}
		out = append(out, table.Row{
			fmt.Sprintf("%d", a.Index),
			timing.FormatSpan(a.Final(m), decimals),
			timing.FormatSpan(a.PauseTime, decimals),
			fmt.Sprintf("%d", a.Reached),
			ended,
		})
	}
	return out
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
