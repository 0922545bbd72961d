package comparison

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

var skipped = math.NaN()

func realTime(secs float64) timing.Time {
	return timing.Time{RealTime: timing.Known(timing.FromSeconds(secs))}
}

// buildRun records one attempt per durations slice. NaN marks a skipped
// split; a short slice is an attempt reset before the end.
func buildRun(names []string, attempts ...[]float64) *run.Run {
	r := run.New()
	for _, name := range names {
		r.PushSegment(run.NewSegment(name))
	}
	for _, durations := range attempts {
		idx := r.NextAttemptIndex()
		var total float64
		for i, d := range durations {
			if math.IsNaN(d) {
				r.Segment(i).History().Insert(idx, timing.Time{})
				continue
			}
			total += d
			r.Segment(i).History().Insert(idx, realTime(d))
		}
		final := timing.Time{}
		if len(durations) == len(names) {
			final = realTime(total)
		}
		r.AddAttemptWithIndex(idx, final, time.Time{}, time.Time{}, timing.OptionalSpan{})
	}
	return r
}

func comparisonSeconds(t *testing.T, r *run.Run, name string) []float64 {
	t.Helper()
	out := make([]float64, r.Len())
	for i := range out {
		span, ok := r.Segment(i).Comparison(name).RealTime.Get()
		if !ok {
			out[i] = skipped
			continue
		}
		out[i] = span.TotalSeconds()
	}
	return out
}

func requireSeconds(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			require.True(t, math.IsNaN(got[i]), "segment %d: expected missing, got %v", i, got[i])
			continue
		}
		require.InDelta(t, want[i], got[i], 1e-9, "segment %d", i)
	}
}

func TestGeneratorsHandleEmptyRun(t *testing.T) {
	for _, g := range All() {
		require.NotPanics(t, func() { g.Generate(nil, nil) }, g.Name())
	}
	r := run.New()
	require.True(t, SumOfBest(r.Segments(), r.AttemptHistory(), timing.RealTime).Equal(timing.Known(0)))
	require.True(t, SumOfWorst(r.Segments(), r.AttemptHistory(), timing.GameTime).Equal(timing.Known(0)))
}

func TestGeneratorsAreIdempotent(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{12, skipped, 40},
		[]float64{9},
		[]float64{11, 19, 33},
	)
	r.Segment(0).SetPersonalBestSplitTime(realTime(10))
	r.Segment(1).SetPersonalBestSplitTime(realTime(30))
	r.Segment(2).SetPersonalBestSplitTime(realTime(60))

	for _, g := range All() {
		g.Generate(r.Segments(), r.AttemptHistory())
		first := make([]timing.Time, r.Len())
		for i := range first {
			first[i] = r.Segment(i).Comparison(g.Name())
		}
		g.Generate(r.Segments(), r.AttemptHistory())
		for i := range first {
			require.True(t, first[i].Equal(r.Segment(i).Comparison(g.Name())), "%s segment %d", g.Name(), i)
		}
	}
}

func TestBestAndWorstSegments(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{12, 18, 35},
	)
	BestSegments{}.Generate(r.Segments(), r.AttemptHistory())
	WorstSegments{}.Generate(r.Segments(), r.AttemptHistory())

	requireSeconds(t, []float64{10, 28, 58}, comparisonSeconds(t, r, BestSegmentsName))
	requireSeconds(t, []float64{12, 32, 67}, comparisonSeconds(t, r, WorstSegmentsName))

	sob, ok := SumOfBest(r.Segments(), r.AttemptHistory(), timing.RealTime).Get()
	require.True(t, ok)
	require.Equal(t, timing.FromSeconds(58), sob)
	require.False(t, SumOfBest(r.Segments(), r.AttemptHistory(), timing.GameTime).IsKnown())
}

func TestBestSegmentsIgnoresCombinedDurations(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{10, skipped, 25},
	)
	BestSegments{}.Generate(r.Segments(), r.AttemptHistory())

	got := comparisonSeconds(t, r, BestSegmentsName)
	requireSeconds(t, []float64{10, 30, 60}, got)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i], got[i-1])
	}
}

func TestBestSegmentsUsesStoredBestSegment(t *testing.T) {
	r := buildRun([]string{"A", "B"}, []float64{10, 20})
	r.Segment(1).SetBestSegmentTime(realTime(15))
	BestSegments{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{10, 25}, comparisonSeconds(t, r, BestSegmentsName))
}

func TestBestSplitTimes(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{12, 10, 35},
		[]float64{8, skipped, 30},
	)
	BestSplitTimes{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{8, 22, 38}, comparisonSeconds(t, r, BestSplitTimesName))
}

func TestBestSplitTimesStopsAtMissingEntry(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"}, []float64{10, 20, 30})
	second := r.NextAttemptIndex()
	// Attempt with no entry for A but entries later: must be ignored.
	r.Segment(1).History().Insert(second, realTime(1))
	r.Segment(2).History().Insert(second, realTime(1))
	r.AddAttemptWithIndex(second, timing.Time{}, time.Time{}, time.Time{}, timing.OptionalSpan{})

	BestSplitTimes{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{10, 30, 60}, comparisonSeconds(t, r, BestSplitTimesName))
}

func TestAverageSegments(t *testing.T) {
	r := buildRun([]string{"First"})
	AverageSegments{}.Generate(r.Segments(), r.AttemptHistory())
	require.False(t, r.Segment(0).Comparison(AverageSegmentsName).RealTime.IsKnown())

	r = buildRun([]string{"First"}, []float64{0})
	AverageSegments{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{0}, comparisonSeconds(t, r, AverageSegmentsName))

	r = buildRun([]string{"First"}, []float64{0}, []float64{1})
	AverageSegments{}.Generate(r.Segments(), r.AttemptHistory())
	got := comparisonSeconds(t, r, AverageSegmentsName)[0]
	require.Greater(t, got, 0.5)
	require.Less(t, got, 1.0)
	require.InDelta(t, 1/1.75, got, 1e-9)
}

func TestAverageSegmentsMissingStaysMissing(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"}, []float64{10})
	r.Segment(2).History().Insert(1, realTime(5))
	AverageSegments{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{10, skipped, skipped}, comparisonSeconds(t, r, AverageSegmentsName))
}

func TestMedianSegments(t *testing.T) {
	r := buildRun([]string{"A"}, []float64{1}, []float64{2}, []float64{10})
	MedianSegments{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{2}, comparisonSeconds(t, r, MedianSegmentsName))
}

func TestLatestRunUsesUnfinishedAttempt(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{11, skipped, 40},
		[]float64{9},
	)
	LatestRun{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{9, skipped, skipped}, comparisonSeconds(t, r, LatestRunName))

	LastFinishedRun{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{11, skipped, 51}, comparisonSeconds(t, r, LastFinishedRunName))
}

func TestLatestRunWithoutHistory(t *testing.T) {
	r := buildRun([]string{"A", "B"})
	r.AddAttempt(timing.Time{}, time.Time{}, time.Time{}, timing.OptionalSpan{})
	LatestRun{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{skipped, skipped}, comparisonSeconds(t, r, LatestRunName))
}

func TestBalancedPBMatchesPersonalBest(t *testing.T) {
	r := buildRun([]string{"A", "B", "C"},
		[]float64{10, 20, 30},
		[]float64{12, 18, 35},
		[]float64{11, 22, 28},
	)
	r.Segment(0).SetPersonalBestSplitTime(realTime(11))
	r.Segment(1).SetPersonalBestSplitTime(realTime(33))
	r.Segment(2).SetPersonalBestSplitTime(realTime(61))

	BalancedPB{}.Generate(r.Segments(), r.AttemptHistory())
	got := comparisonSeconds(t, r, BalancedPBName)
	require.InDelta(t, 61, got[2], 1e-9)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i], got[i-1])
	}
	require.False(t, r.Segment(2).Comparison(BalancedPBName).GameTime.IsKnown())
}

func TestBalancedPBWithoutPersonalBest(t *testing.T) {
	r := buildRun([]string{"A", "B"}, []float64{10, 20})
	BalancedPB{}.Generate(r.Segments(), r.AttemptHistory())
	requireSeconds(t, []float64{skipped, skipped}, comparisonSeconds(t, r, BalancedPBName))
}

func TestNoneWritesEmptyTime(t *testing.T) {
	r := buildRun([]string{"A"}, []float64{10})
	r.Segment(0).SetComparison(run.NoneComparison, realTime(3))
	None{}.Generate(r.Segments(), r.AttemptHistory())
	require.True(t, r.Segment(0).Comparison(run.NoneComparison).IsEmpty())
}

func TestFromNames(t *testing.T) {
	gens, err := FromNames([]string{"best segments", "Latest Run", "None"})
	require.NoError(t, err)
	require.Len(t, gens, 3)
	require.Equal(t, BestSegmentsName, gens[0].Name())

	_, err = FromNames([]string{"Best Segments", "best segments"})
	require.Error(t, err)
	_, err = FromNames([]string{"Vibes"})
	require.Error(t, err)

	all := All()
	require.Equal(t, run.NoneComparison, all[len(all)-1].Name())
	require.Len(t, all, len(Defaults())+1)
}

func TestDefaultRunNamesEndWithNone(t *testing.T) {
	r := NewRun()
	r.PushSegment(run.NewSegment("A"))
	names := r.ComparisonNames()
	require.Equal(t, run.PersonalBestComparison, names[0])
	require.Equal(t, run.NoneComparison, names[len(names)-1])
	require.Len(t, names, len(Defaults())+1)
}

func TestGeneratorListWithoutNone(t *testing.T) {
	gens, err := FromNames([]string{"Best Segments"})
	require.NoError(t, err)
	r := buildRun([]string{"A", "B"}, []float64{10, 20})
	r.SetComparisonGenerators(gens)
	r.RegenerateComparisons()
	require.True(t, r.HasComparison(run.NoneComparison))
	require.Equal(t, []string{run.PersonalBestComparison, BestSegmentsName, run.NoneComparison}, r.ComparisonNames())
	require.True(t, r.Segment(1).Comparison(run.NoneComparison).IsEmpty())
}

// copyGenerator writes the real time of another comparison plus one second.
type copyGenerator struct {
	name, from string
}

func (g copyGenerator) Name() string { return g.name }

func (g copyGenerator) Clone() run.ComparisonGenerator { return g }

func (g copyGenerator) Generate(segments []run.Segment, _ []run.Attempt) {
	for i := range segments {
		v := segments[i].Comparison(g.from).RealTime.Add(timing.Known(timing.FromSeconds(1)))
		segments[i].SetComparison(g.name, timing.Time{RealTime: v})
	}
}

func TestRegenerateRunsInOrder(t *testing.T) {
	r := buildRun([]string{"A", "B"}, []float64{10, 20})
	r.SetComparisonGenerators([]run.ComparisonGenerator{BestSegments{}, copyGenerator{name: "Copy", from: BestSegmentsName}})
	r.RegenerateComparisons()
	requireSeconds(t, []float64{11, 31}, comparisonSeconds(t, r, "Copy"))

	// Reversed, Copy reads Best Segments before it is written.
	reversed := buildRun([]string{"A", "B"}, []float64{10, 20})
	reversed.SetComparisonGenerators([]run.ComparisonGenerator{copyGenerator{name: "Copy", from: BestSegmentsName}, BestSegments{}})
	reversed.RegenerateComparisons()
	requireSeconds(t, []float64{skipped, skipped}, comparisonSeconds(t, reversed, "Copy"))
	requireSeconds(t, []float64{10, 30}, comparisonSeconds(t, reversed, BestSegmentsName))
}
