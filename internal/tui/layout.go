package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuisplit/internal/timer"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	timeColumnWidth  = 10
	deltaColumnWidth = 9
	minNameWidth     = 6
)

// fitName truncates or pads name to exactly width display cells.
func fitName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(name) > width {
		name = runewidth.Truncate(name, width, "…")
	}
	return runewidth.FillRight(name, width)
}

func nameWidth(total int) int {
	return max(total-timeColumnWidth-deltaColumnWidth-2, minNameWidth)
}

// segmentLine renders one row of the split list: name, delta and time.
func segmentLine(v timer.SegmentView, current bool, done bool, decimals, width int) string {
	name := fitName(v.Name, nameWidth(width))
	delta := ""
	if done {
		delta = timing.FormatDelta(v.Delta, decimals)
	}
	shown := v.Comparison
	if done {
		shown = v.SplitTime
	}
	timeCell := runewidth.FillLeft(timing.FormatSpan(shown, decimals), timeColumnWidth)
	deltaCell := runewidth.FillLeft(delta, deltaColumnWidth)
	if done && v.Delta.IsKnown() {
		deltaCell = deltaStyle(v).Render(deltaCell)
	}
	line := name + " " + deltaCell + " " + timeCell
	if current {
		return currentStyle.Render(line)
	}
	return line
}

// deltaStyle picks gold for a new best segment, then ahead or behind.
func deltaStyle(v timer.SegmentView) lipgloss.Style {
	if v.BestSegmentBeaten {
		return bestStyle
	}
	if d, ok := v.Delta.Get(); ok && d > 0 {
		return behindStyle
	}
	return aheadStyle
}

// footerLine lays out pairs of label and value separated by two spaces.
func footerLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+pairs[i+1])
	}
	return strings.Join(parts, "  ")
}
