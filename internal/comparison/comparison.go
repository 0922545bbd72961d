// Package comparison implements the built-in comparison generators.
//
// Generators only look at attempts present in the attempt history, so the
// provisional history entries written while an attempt is in progress never
// leak into a comparison before the attempt is committed.
package comparison

import (
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

type sample struct {
	index int32
	span  timing.TimeSpan
}

// qualifyingSamples collects the durations recorded for segment i. A duration
// only counts when the same attempt also has a known duration for the
// previous segment; otherwise it may cover a skipped split as well.
func qualifyingSamples(segments []run.Segment, attempts []run.Attempt, i int, m timing.TimingMethod) []sample {
	var out []sample
	for _, a := range attempts {
		t, ok := segments[i].History().Get(a.Index)
		if !ok {
			continue
		}
		span, ok := t.Get(m).Get()
		if !ok {
			continue
		}
		if i > 0 {
			prev, ok := segments[i-1].History().Get(a.Index)
			if !ok || !prev.Get(m).IsKnown() {
				continue
			}
		}
		out = append(out, sample{index: a.Index, span: span})
	}
	return out
}

func setComparison(seg *run.Segment, name string, m timing.TimingMethod, v timing.OptionalSpan) {
	t := seg.Comparison(name)
	t.Set(m, v)
	seg.SetComparison(name, t)
}

// propagateAttempt writes the cumulative times of one attempt. An absent
// history entry ends the chain; a skipped entry leaves only that segment
// empty because the next entry holds the combined duration.
func propagateAttempt(segments []run.Segment, name string, m timing.TimingMethod, index int32, found bool) {
	total := timing.Known(0)
	reached := found
	for i := range segments {
		var value timing.OptionalSpan
		if reached {
			t, ok := segments[i].History().Get(index)
			switch {
			case !ok:
				reached = false
			case t.Get(m).IsKnown():
				total = total.Add(t.Get(m))
				value = total
			}
		}
		setComparison(&segments[i], name, m, value)
	}
}
