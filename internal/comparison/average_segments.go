package comparison

import (
	"math"
	"sort"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	// AverageSegmentsName is the comparison key written by AverageSegments.
	AverageSegmentsName = "Average Segments"
	// MedianSegmentsName is the comparison key written by MedianSegments.
	MedianSegmentsName = "Median Segments"

	// recencyWeight is the decay applied per older attempt.
	recencyWeight = 0.75
)

// AverageSegments compares against a recency-weighted average of every
// segment's durations.
type AverageSegments struct{}

// Name implements run.ComparisonGenerator.
func (AverageSegments) Name() string { return AverageSegmentsName }

// Clone implements run.ComparisonGenerator.
func (g AverageSegments) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (AverageSegments) Generate(segments []run.Segment, attempts []run.Attempt) {
	accumulate(segments, attempts, AverageSegmentsName, weightedAverage)
}

// MedianSegments compares against a recency-weighted median of every
// segment's durations.
type MedianSegments struct{}

// Name implements run.ComparisonGenerator.
func (MedianSegments) Name() string { return MedianSegmentsName }

// Clone implements run.ComparisonGenerator.
func (g MedianSegments) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (MedianSegments) Generate(segments []run.Segment, attempts []run.Attempt) {
	accumulate(segments, attempts, MedianSegmentsName, weightedMedian)
}

// accumulate sums one statistic per segment. Once a segment has no samples
// every later segment stays missing.
func accumulate(segments []run.Segment, attempts []run.Attempt, name string, combine func([]sample) timing.TimeSpan) {
	for _, m := range timing.Methods {
		total := timing.Known(0)
		for i := range segments {
			if total.IsKnown() {
				samples := qualifyingSamples(segments, attempts, i, m)
				if len(samples) == 0 {
					total = timing.OptionalSpan{}
				} else {
					total = total.Add(timing.Known(combine(samples)))
				}
			}
			setComparison(&segments[i], name, m, total)
		}
	}
}

// weightedAverage expects samples in ascending attempt order; the newest
// sample has weight 1.
func weightedAverage(samples []sample) timing.TimeSpan {
	var totalWeight, total float64
	weight := 1.0
	for i := len(samples) - 1; i >= 0; i-- {
		totalWeight += weight
		total += weight * samples[i].span.TotalSeconds()
		weight *= recencyWeight
	}
	return timing.FromSeconds(total / totalWeight)
}

func weightedMedian(samples []sample) timing.TimeSpan {
	type weighted struct {
		weight float64
		span   timing.TimeSpan
	}
	n := len(samples)
	items := make([]weighted, n)
	var totalWeight float64
	for i, s := range samples {
		w := math.Pow(recencyWeight, float64(n-1-i))
		items[i] = weighted{weight: w, span: s.span}
		totalWeight += w
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].span < items[b].span
	})
	half := totalWeight / 2
	var acc float64
	for _, item := range items {
		acc += item.weight
		if acc >= half {
			return item.span
		}
	}
	return items[n-1].span
}
