package comparison

import (
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

// BestSplitTimesName is the comparison key written by BestSplitTimes.
const BestSplitTimesName = "Best Split Times"

// BestSplitTimes compares against the fastest time each split was ever
// reached in a single attempt.
type BestSplitTimes struct{}

// Name implements run.ComparisonGenerator.
func (BestSplitTimes) Name() string { return BestSplitTimesName }

// Clone implements run.ComparisonGenerator.
func (g BestSplitTimes) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (BestSplitTimes) Generate(segments []run.Segment, attempts []run.Attempt) {
	if len(segments) == 0 {
		return
	}
	for _, m := range timing.Methods {
		best := make([]timing.OptionalSpan, len(segments))
		best[0] = segments[0].BestSegmentTime().Get(m)
		for i := 1; i < len(segments); i++ {
			best[i] = segments[i].PersonalBestSplitTime().Get(m)
		}

		for _, a := range attempts {
			var total timing.TimeSpan
			for i := range segments {
				t, ok := segments[i].History().Get(a.Index)
				if !ok {
					break
				}
				span, ok := t.Get(m).Get()
				if !ok {
					continue
				}
				total += span
				if current, ok := best[i].Get(); !ok || total < current {
					best[i] = timing.Known(total)
				}
			}
		}

		for i := range segments {
			setComparison(&segments[i], BestSplitTimesName, m, best[i])
		}
	}
}
