package comparison

import (
	"math"
	"sort"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	// BalancedPBName is the comparison key written by BalancedPB.
	BalancedPBName = "Balanced PB"

	balancedWeight     = 0.9375
	balancedIterations = 50
)

// BalancedPB spreads the personal best over the segments so that every
// segment sits at the same percentile of its own history. The final split
// always equals the personal best.
type BalancedPB struct{}

// Name implements run.ComparisonGenerator.
func (BalancedPB) Name() string { return BalancedPBName }

// Clone implements run.ComparisonGenerator.
func (g BalancedPB) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (BalancedPB) Generate(segments []run.Segment, attempts []run.Attempt) {
	for _, m := range timing.Methods {
		values := balance(segments, attempts, m)
		for i := range segments {
			setComparison(&segments[i], BalancedPBName, m, values[i])
		}
	}
}

type distribution struct {
	spans     []float64
	positions []float64
}

func newDistribution(samples []sample) distribution {
	type weighted struct {
		weight float64
		span   float64
	}
	n := len(samples)
	items := make([]weighted, n)
	var total float64
	for i, s := range samples {
		w := math.Pow(balancedWeight, float64(n-1-i))
		items[i] = weighted{weight: w, span: s.span.TotalSeconds()}
		total += w
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].span < items[b].span
	})
	d := distribution{spans: make([]float64, n), positions: make([]float64, n)}
	var acc float64
	for i, item := range items {
		d.spans[i] = item.span
		d.positions[i] = (acc + item.weight/2) / total
		acc += item.weight
	}
	return d
}

// at returns the interpolated duration at percentile p.
func (d distribution) at(p float64) float64 {
	last := len(d.spans) - 1
	if p <= d.positions[0] {
		return d.spans[0]
	}
	if p >= d.positions[last] {
		return d.spans[last]
	}
	k := sort.SearchFloat64s(d.positions, p)
	lo, hi := k-1, k
	frac := (p - d.positions[lo]) / (d.positions[hi] - d.positions[lo])
	return d.spans[lo] + frac*(d.spans[hi]-d.spans[lo])
}

func balance(segments []run.Segment, attempts []run.Attempt, m timing.TimingMethod) []timing.OptionalSpan {
	out := make([]timing.OptionalSpan, len(segments))
	if len(segments) == 0 {
		return out
	}
	goal, ok := segments[len(segments)-1].PersonalBestSplitTime().Get(m).Get()
	if !ok {
		return out
	}

	dists := make([]distribution, len(segments))
	previousPB := timing.Known(0)
	for i := range segments {
		pb := segments[i].PersonalBestSplitTime().Get(m)
		samples := qualifyingSamples(segments, attempts, i, m)
		if len(samples) == 0 {
			fallback, ok := pb.Sub(previousPB).Get()
			if !ok {
				fallback, ok = segments[i].BestSegmentTime().Get(m).Get()
			}
			if !ok {
				return out
			}
			samples = []sample{{span: fallback}}
		}
		dists[i] = newDistribution(samples)
		previousPB = pb
	}

	goalSeconds := goal.TotalSeconds()
	sumAt := func(p float64) float64 {
		var total float64
		for _, d := range dists {
			total += d.at(p)
		}
		return total
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < balancedIterations; i++ {
		mid := (lo + hi) / 2
		if sumAt(mid) < goalSeconds {
			lo = mid
		} else {
			hi = mid
		}
	}
	p := (lo + hi) / 2

	durations := make([]float64, len(dists))
	var total float64
	for i, d := range dists {
		durations[i] = d.at(p)
		total += durations[i]
	}
	scale := 0.0
	if total > 0 {
		scale = goalSeconds / total
	}
	var cumulative float64
	for i := range durations {
		cumulative += durations[i] * scale
		out[i] = timing.Known(timing.FromSeconds(cumulative))
	}
	out[len(out)-1] = timing.Known(goal)
	return out
}
