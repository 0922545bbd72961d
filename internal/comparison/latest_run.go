package comparison

import (
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	// LatestRunName is the comparison key written by LatestRun.
	LatestRunName = "Latest Run"
	// LastFinishedRunName is the comparison key written by LastFinishedRun.
	LastFinishedRunName = "Last Finished Run"
)

// LatestRun compares against the most recent attempt that recorded at least
// one segment, finished or not.
type LatestRun struct{}

// Name implements run.ComparisonGenerator.
func (LatestRun) Name() string { return LatestRunName }

// Clone implements run.ComparisonGenerator.
func (g LatestRun) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (LatestRun) Generate(segments []run.Segment, attempts []run.Attempt) {
	index, found := latestAttemptWithHistory(segments, attempts)
	for _, m := range timing.Methods {
		propagateAttempt(segments, LatestRunName, m, index, found)
	}
}

func latestAttemptWithHistory(segments []run.Segment, attempts []run.Attempt) (int32, bool) {
	for i := len(attempts) - 1; i >= 0; i-- {
		idx := attempts[i].Index
		for j := range segments {
			if _, ok := segments[j].History().Get(idx); ok {
				return idx, true
			}
		}
	}
	return 0, false
}

// LastFinishedRun compares against the most recent attempt that reached the
// final split for the timing method.
type LastFinishedRun struct{}

// Name implements run.ComparisonGenerator.
func (LastFinishedRun) Name() string { return LastFinishedRunName }

// Clone implements run.ComparisonGenerator.
func (g LastFinishedRun) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (LastFinishedRun) Generate(segments []run.Segment, attempts []run.Attempt) {
	for _, m := range timing.Methods {
		var index int32
		found := false
		for i := len(attempts) - 1; i >= 0; i-- {
			if attempts[i].Finished(m) {
				index, found = attempts[i].Index, true
				break
			}
		}
		propagateAttempt(segments, LastFinishedRunName, m, index, found)
	}
}
