// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const sparkChars = " .:-=+*#%@"

// Summary holds the headline numbers of a run.
type Summary struct {
	Started       int
	Recorded      int
	Finished      int
	FinishRate    float64
	PersonalBest  timing.OptionalSpan
	BestFinish    timing.OptionalSpan
	AverageFinish timing.OptionalSpan
	SumOfBest     timing.OptionalSpan
	// PossibleTimeSave is the personal best minus the sum of best segments.
	PossibleTimeSave timing.OptionalSpan
	PlayTime         timing.TimeSpan
}

// SegmentRow aggregates one segment's durations over a set of attempts.
type SegmentRow struct {
	Name    string
	Samples int
	Best    timing.OptionalSpan
	Average timing.OptionalSpan
	Median  timing.OptionalSpan
	Worst   timing.OptionalSpan
	// PBSegment is the segment duration within the personal best.
	PBSegment timing.OptionalSpan
}

// Summarize computes the summary for attempts of r.
func Summarize(r *run.Run, attempts []model.AttemptAggregate, sumOfBest timing.OptionalSpan, m timing.TimingMethod) Summary {
	s := Summary{
		Started:   r.AttemptCount(),
		Recorded:  len(attempts),
		SumOfBest: sumOfBest,
	}
	if r.Len() > 0 {
		s.PersonalBest = r.Segment(r.Len() - 1).PersonalBestSplitTime().Get(m)
	}
	var total timing.TimeSpan
	for _, a := range attempts {
		if !a.StartedAt.IsZero() && !a.EndedAt.IsZero() {
			s.PlayTime += timing.FromDuration(a.EndedAt.Sub(a.StartedAt))
		}
		final, ok := a.Final(m).Get()
		if !ok {
			continue
		}
		s.Finished++
		total += final
		if best, ok := s.BestFinish.Get(); !ok || final < best {
			s.BestFinish = timing.Known(final)
		}
	}
	if s.Recorded > 0 {
		s.FinishRate = float64(s.Finished) / float64(s.Recorded)
	}
	if s.Finished > 0 {
		s.AverageFinish = timing.Known(total / timing.TimeSpan(s.Finished))
	}
	s.PossibleTimeSave = s.PersonalBest.Sub(s.SumOfBest)
	return s
}

// SegmentRows aggregates every segment's durations for the given attempts. A
// duration only counts when the previous split of the same attempt is known.
func SegmentRows(r *run.Run, attempts []model.AttemptAggregate, m timing.TimingMethod) []SegmentRow {
	rows := make([]SegmentRow, r.Len())
	prevPB := timing.Known(0)
	for i := range r.Len() {
		seg := r.Segment(i)
		var samples []timing.TimeSpan
		for _, a := range attempts {
			entry, ok := seg.History().Get(a.Index)
			if !ok {
				continue
			}
			d, ok := entry.Get(m).Get()
			if !ok {
				continue
			}
			if i > 0 {
				prev, ok := r.Segment(i - 1).History().Get(a.Index)
				if !ok || !prev.Get(m).IsKnown() {
					continue
				}
			}
			samples = append(samples, d)
		}
		pb := seg.PersonalBestSplitTime().Get(m)
		rows[i] = SegmentRow{
			Name:      seg.Name,
			Samples:   len(samples),
			PBSegment: pb.Sub(prevPB),
		}
		prevPB = pb
		if len(samples) == 0 {
			continue
		}
		sort.Slice(samples, func(a, b int) bool { return samples[a] < samples[b] })
		var sum timing.TimeSpan
		for _, d := range samples {
			sum += d
		}
		rows[i].Best = timing.Known(samples[0])
		rows[i].Worst = timing.Known(samples[len(samples)-1])
		rows[i].Average = timing.Known(sum / timing.TimeSpan(len(samples)))
		rows[i].Median = timing.Known(median(samples))
	}
	return rows
}

// median expects sorted input.
func median(sorted []timing.TimeSpan) timing.TimeSpan {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// FinishSeconds returns the finishing times of finished attempts in seconds.
func FinishSeconds(attempts []model.AttemptAggregate, m timing.TimingMethod) []float64 {
	var out []float64
	for _, a := range attempts {
		if v, ok := a.Final(m).Get(); ok {
			out = append(out, v.TotalSeconds())
		}
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
