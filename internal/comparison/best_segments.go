package comparison

import (
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	// BestSegmentsName is the comparison key written by BestSegments.
	BestSegmentsName = "Best Segments"
	// WorstSegmentsName is the comparison key written by WorstSegments.
	WorstSegmentsName = "Worst Segments"
)

// BestSegments compares against the fastest possible run built from the best
// duration ever seen for each segment.
type BestSegments struct{}

// Name implements run.ComparisonGenerator.
func (BestSegments) Name() string { return BestSegmentsName }

// Clone implements run.ComparisonGenerator.
func (g BestSegments) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (BestSegments) Generate(segments []run.Segment, attempts []run.Attempt) {
	writePredictions(segments, attempts, BestSegmentsName, false)
}

// WorstSegments compares against the slowest duration seen for each segment.
type WorstSegments struct{}

// Name implements run.ComparisonGenerator.
func (WorstSegments) Name() string { return WorstSegmentsName }

// Clone implements run.ComparisonGenerator.
func (g WorstSegments) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (WorstSegments) Generate(segments []run.Segment, attempts []run.Attempt) {
	writePredictions(segments, attempts, WorstSegmentsName, true)
}

// SumOfBest returns the sum of best segments. It is zero for a run without
// segments and missing when a segment has no recorded duration.
func SumOfBest(segments []run.Segment, attempts []run.Attempt, m timing.TimingMethod) timing.OptionalSpan {
	return predict(segments, attempts, m, false)[len(segments)]
}

// SumOfWorst returns the sum of worst segments.
func SumOfWorst(segments []run.Segment, attempts []run.Attempt, m timing.TimingMethod) timing.OptionalSpan {
	return predict(segments, attempts, m, true)[len(segments)]
}

func writePredictions(segments []run.Segment, attempts []run.Attempt, name string, worst bool) {
	for _, m := range timing.Methods {
		preds := predict(segments, attempts, m, worst)
		for i := range segments {
			setComparison(&segments[i], name, m, preds[i+1])
		}
	}
}

// predict returns len(segments)+1 cumulative times; preds[i] is the time to
// reach the start of segment i.
func predict(segments []run.Segment, attempts []run.Attempt, m timing.TimingMethod, worst bool) []timing.OptionalSpan {
	preds := make([]timing.OptionalSpan, len(segments)+1)
	preds[0] = timing.Known(0)
	for i := range segments {
		candidate := segments[i].BestSegmentTime().Get(m)
		for _, s := range qualifyingSamples(segments, attempts, i, m) {
			v := timing.Known(s.span)
			switch {
			case !candidate.IsKnown():
				candidate = v
			case worst && candidate.Less(v):
				candidate = v
			case !worst && v.Less(candidate):
				candidate = v
			}
		}
		if !candidate.IsKnown() {
			break
		}
		preds[i+1] = preds[i].Add(candidate)
	}
	return preds
}
