package timer

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

func newTestTimer(t *testing.T, names ...string) (*Timer, *timing.ManualClock) {
	t.Helper()
	r := comparison.NewRun()
	r.GameName = "Celeste"
	r.CategoryName = "Any%"
	for _, name := range names {
		r.PushSegment(run.NewSegment(name))
	}
	clock := timing.NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	tm, err := New(r, WithClock(clock))
	require.NoError(t, err)
	return tm, clock
}

func secs(s float64) timing.TimeSpan {
	return timing.FromSeconds(s)
}

func knownSecs(s float64) timing.OptionalSpan {
	return timing.Known(secs(s))
}

// playAttempt starts an attempt and splits after each duration in seconds.
func playAttempt(t *testing.T, tm *Timer, clock *timing.ManualClock, durations ...float64) {
	t.Helper()
	require.NoError(t, tm.Start())
	for _, d := range durations {
		clock.Advance(time.Duration(d * float64(time.Second)))
		require.NoError(t, tm.Split())
	}
}

func requireRealTime(t *testing.T, want float64, got timing.Time) {
	t.Helper()
	require.True(t, got.RealTime.Equal(knownSecs(want)), "want %vs, got %s", want, got.RealTime)
}

func TestNewRejectsEmptyRun(t *testing.T) {
	_, err := New(run.New())
	require.ErrorIs(t, err, ErrEmptyRun)
	_, err = New(nil)
	require.ErrorIs(t, err, ErrEmptyRun)

	r := run.New()
	r.PushSegment(run.NewSegment("A"))
	_, err = New(r, WithComparison("Nope"))
	require.ErrorIs(t, err, ErrUnknownComparison)
}

func TestSplitAdvancesAndRecordsHistory(t *testing.T) {
	names := []string{"A", "B", "C", "D"}
	for n := 0; n <= len(names); n++ {
		t.Run(fmt.Sprintf("%d splits", n), func(t *testing.T) {
			tm, clock := newTestTimer(t, names...)
			require.NoError(t, tm.Start())
			for i := 0; i < n; i++ {
				clock.Advance(time.Second)
				require.NoError(t, tm.Split())
			}
			idx, ok := tm.CurrentSplitIndex()
			require.True(t, ok)
			require.Equal(t, n, idx)
			for i := range names {
				_, has := tm.Run().Segment(i).History().Get(tm.attemptIndex)
				require.Equal(t, i < n, has, "segment %d", i)
			}
			if n == len(names) {
				require.Equal(t, Ended, tm.Phase())
			} else {
				require.Equal(t, Running, tm.Phase())
			}
		})
	}
}

func TestRejectedOperationsLeaveStateUnchanged(t *testing.T) {
	tm, _ := newTestTimer(t, "A", "B")
	for _, op := range []func() error{tm.Split, tm.SkipSplit, tm.UndoSplit, tm.Pause, tm.Resume, tm.TogglePause} {
		require.ErrorIs(t, op(), ErrInvalidPhaseTransition)
	}
	require.ErrorIs(t, tm.Reset(true), ErrInvalidPhaseTransition)
	require.Equal(t, NotRunning, tm.Phase())
	require.Equal(t, 0, tm.Run().AttemptCount())
	_, ok := tm.CurrentSplitIndex()
	require.False(t, ok)
	require.True(t, tm.CurrentTime().IsEmpty())

	require.NoError(t, tm.Start())
	require.ErrorIs(t, tm.Start(), ErrInvalidPhaseTransition)
	require.ErrorIs(t, tm.Resume(), ErrInvalidPhaseTransition)
	require.Equal(t, 1, tm.Run().AttemptCount())
}

func TestResetWithoutSavingKeepsRunUntouched(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B", "C")
	playAttempt(t, tm, clock, 10, 20, 30)
	require.NoError(t, tm.Reset(true))

	before := tm.Run().Clone()
	playAttempt(t, tm, clock, 5, 5)
	require.NoError(t, tm.Reset(false))

	after := tm.Run()
	require.Len(t, after.AttemptHistory(), len(before.AttemptHistory()))
	for i := range after.Len() {
		a, b := after.Segment(i), before.Segment(i)
		require.Equal(t, b.History().Len(), a.History().Len())
		require.True(t, b.PersonalBestSplitTime().Equal(a.PersonalBestSplitTime()))
		require.True(t, b.BestSegmentTime().Equal(a.BestSegmentTime()))
		require.True(t, a.SplitTime().IsEmpty())
	}
	require.Equal(t, NotRunning, tm.Phase())
}

func TestResetSavesAttemptAndPersonalBest(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B", "C")

	playAttempt(t, tm, clock, 10, 20, 30)
	require.NoError(t, tm.Reset(true))
	r := tm.Run()
	require.Len(t, r.AttemptHistory(), 1)
	requireRealTime(t, 60, r.AttemptHistory()[0].Time)
	for i, want := range []float64{10, 30, 60} {
		requireRealTime(t, want, r.Segment(i).PersonalBestSplitTime())
		require.False(t, r.Segment(i).PersonalBestSplitTime().GameTime.IsKnown())
	}
	for i, want := range []float64{10, 20, 30} {
		requireRealTime(t, want, r.Segment(i).BestSegmentTime())
	}

	// Slower overall: PB stays, best segment for B improves.
	playAttempt(t, tm, clock, 12, 15, 40)
	require.NoError(t, tm.Reset(true))
	r = tm.Run()
	require.Len(t, r.AttemptHistory(), 2)
	requireRealTime(t, 60, r.Segment(2).PersonalBestSplitTime())
	requireRealTime(t, 15, r.Segment(1).BestSegmentTime())
	requireRealTime(t, 30, r.Segment(2).BestSegmentTime())

	// Faster overall: PB replaced.
	playAttempt(t, tm, clock, 9, 20, 28)
	require.NoError(t, tm.Reset(true))
	r = tm.Run()
	for i, want := range []float64{9, 29, 57} {
		requireRealTime(t, want, r.Segment(i).PersonalBestSplitTime())
	}
	requireRealTime(t, 9, r.Segment(0).BestSegmentTime())
	requireRealTime(t, 28, r.Segment(2).BestSegmentTime())
	requireRealTime(t, 9+15+28, r.Segment(2).Comparison(comparison.BestSegmentsName))
}

func TestResetOfUnfinishedAttempt(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	playAttempt(t, tm, clock, 10)
	require.NoError(t, tm.Reset(true))

	r := tm.Run()
	require.Len(t, r.AttemptHistory(), 1)
	require.True(t, r.AttemptHistory()[0].Time.IsEmpty())
	require.True(t, r.Segment(0).PersonalBestSplitTime().IsEmpty())
	requireRealTime(t, 10, r.Segment(0).BestSegmentTime())
}

func TestAverageSegmentsAcrossAttempts(t *testing.T) {
	tm, clock := newTestTimer(t, "First")
	average := func() timing.OptionalSpan {
		return tm.Run().Segment(0).Comparison(comparison.AverageSegmentsName).RealTime
	}
	require.False(t, average().IsKnown())

	playAttempt(t, tm, clock, 0)
	require.NoError(t, tm.Reset(true))
	require.True(t, average().Equal(knownSecs(0)))

	playAttempt(t, tm, clock, 1)
	require.NoError(t, tm.Reset(true))
	got, ok := average().Get()
	require.True(t, ok)
	require.Greater(t, got, secs(0.5))
	require.Less(t, got, secs(1))
}

func TestProvisionalHistoryIsIgnoredByComparisons(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	playAttempt(t, tm, clock, 10, 10)
	require.NoError(t, tm.Reset(true))

	playAttempt(t, tm, clock, 1)
	tm.Run().RegenerateComparisons()
	requireRealTime(t, 10, tm.Run().Segment(0).Comparison(comparison.BestSegmentsName))
}

func TestPauseExcludesPausedTime(t *testing.T) {
	tm, clock := newTestTimer(t, "A")
	require.NoError(t, tm.Start())
	clock.Advance(10 * time.Second)
	require.NoError(t, tm.Pause())
	clock.Advance(5 * time.Second)
	requireRealTime(t, 10, tm.CurrentTime())
	require.True(t, tm.PauseTime().Equal(knownSecs(5)))

	require.NoError(t, tm.TogglePause())
	require.Equal(t, Running, tm.Phase())
	clock.Advance(2 * time.Second)
	requireRealTime(t, 12, tm.CurrentTime())

	require.NoError(t, tm.Split())
	require.Equal(t, Ended, tm.Phase())
	clock.Advance(time.Minute)
	requireRealTime(t, 12, tm.CurrentTime())

	require.NoError(t, tm.Reset(true))
	require.True(t, tm.Run().AttemptHistory()[0].PauseTime.Equal(knownSecs(5)))
}

func TestSplitWhilePaused(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	require.NoError(t, tm.Start())
	clock.Advance(3 * time.Second)
	require.NoError(t, tm.Pause())
	clock.Advance(3 * time.Second)
	require.NoError(t, tm.Split())
	require.Equal(t, Paused, tm.Phase())
	requireRealTime(t, 3, tm.Run().Segment(0).SplitTime())
}

func TestSkipSplit(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B", "C")
	require.NoError(t, tm.Start())
	clock.Advance(10 * time.Second)
	require.NoError(t, tm.Split())
	clock.Advance(10 * time.Second)
	require.NoError(t, tm.SkipSplit())
	require.ErrorIs(t, tm.SkipSplit(), ErrInvalidPhaseTransition)

	entry, ok := tm.Run().Segment(1).History().Get(tm.attemptIndex)
	require.True(t, ok)
	require.True(t, entry.IsEmpty())

	clock.Advance(10 * time.Second)
	require.NoError(t, tm.Split())
	entry, ok = tm.Run().Segment(2).History().Get(tm.attemptIndex)
	require.True(t, ok)
	requireRealTime(t, 20, entry)

	require.NoError(t, tm.Reset(true))
	// The combined duration is not a best segment.
	require.True(t, tm.Run().Segment(2).BestSegmentTime().IsEmpty())
}

func TestUndoSplit(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	require.NoError(t, tm.Start())
	require.ErrorIs(t, tm.UndoSplit(), ErrInvalidPhaseTransition)

	clock.Advance(time.Second)
	require.NoError(t, tm.Split())
	clock.Advance(time.Second)
	require.NoError(t, tm.Split())
	require.Equal(t, Ended, tm.Phase())

	require.NoError(t, tm.UndoSplit())
	require.Equal(t, Running, tm.Phase())
	idx, _ := tm.CurrentSplitIndex()
	require.Equal(t, 1, idx)
	require.True(t, tm.Run().Segment(1).SplitTime().IsEmpty())
	_, ok := tm.Run().Segment(1).History().Get(tm.attemptIndex)
	require.False(t, ok)
}

func TestCountdownOffset(t *testing.T) {
	tm, clock := newTestTimer(t, "A")
	tm.run.Offset = secs(-5)
	require.NoError(t, tm.Start())
	requireRealTime(t, -5, tm.CurrentTime())
	clock.Advance(time.Second)
	require.ErrorIs(t, tm.Split(), ErrInvalidPhaseTransition)

	clock.Advance(6 * time.Second)
	require.NoError(t, tm.Split())
	requireRealTime(t, 2, tm.Run().Segment(0).SplitTime())
}

func TestGameTime(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	require.ErrorIs(t, tm.InitializeGameTime(), ErrInvalidPhaseTransition)
	require.NoError(t, tm.Start())

	for _, op := range []func() error{tm.PauseGameTime, tm.ResumeGameTime, tm.DeinitializeGameTime} {
		require.True(t, errors.Is(op(), ErrGameTimeNotInitialized))
	}
	require.ErrorIs(t, tm.SetGameTime(0), ErrGameTimeNotInitialized)
	_, err := tm.LoadingTimes()
	require.ErrorIs(t, err, ErrGameTimeNotInitialized)
	require.False(t, tm.CurrentTime().GameTime.IsKnown())

	require.NoError(t, tm.InitializeGameTime())
	clock.Advance(10 * time.Second)
	require.NoError(t, tm.PauseGameTime())
	clock.Advance(5 * time.Second)
	now := tm.CurrentTime()
	require.True(t, now.GameTime.Equal(knownSecs(10)))
	require.True(t, now.RealTime.Equal(knownSecs(15)))

	require.NoError(t, tm.ResumeGameTime())
	clock.Advance(time.Second)
	require.True(t, tm.CurrentTime().GameTime.Equal(knownSecs(11)))
	loading, err := tm.LoadingTimes()
	require.NoError(t, err)
	require.Equal(t, secs(5), loading)

	require.NoError(t, tm.SetGameTime(secs(3)))
	require.True(t, tm.CurrentTime().GameTime.Equal(knownSecs(3)))

	require.NoError(t, tm.SetLoadingTimes(secs(1)))
	require.True(t, tm.CurrentTime().GameTime.Equal(knownSecs(15)))

	require.NoError(t, tm.Split())
	clock.Advance(time.Second)
	require.NoError(t, tm.Split())
	require.NoError(t, tm.Reset(true))
	r := tm.Run()
	require.True(t, r.Segment(1).PersonalBestSplitTime().GameTime.Equal(knownSecs(16)))
	require.True(t, r.Segment(1).BestSegmentTime().GameTime.Equal(knownSecs(1)))
	require.False(t, tm.IsGameTimeInitialized())
}

func TestComparisonSelection(t *testing.T) {
	tm, _ := newTestTimer(t, "A")
	names := tm.Run().ComparisonNames()
	require.Equal(t, run.PersonalBestComparison, tm.CurrentComparison())

	tm.SwitchToNextComparison()
	require.Equal(t, names[1], tm.CurrentComparison())
	tm.SwitchToPreviousComparison()
	tm.SwitchToPreviousComparison()
	require.Equal(t, names[len(names)-1], tm.CurrentComparison())

	require.ErrorIs(t, tm.SetCurrentComparison("Nope"), ErrUnknownComparison)
	require.NoError(t, tm.SetCurrentComparison(comparison.BalancedPBName))
	require.Equal(t, comparison.BalancedPBName, tm.CurrentComparison())

	tm.ToggleTimingMethod()
	require.Equal(t, timing.GameTime, tm.CurrentTimingMethod())
	tm.SetCurrentTimingMethod(timing.RealTime)
	require.Equal(t, timing.RealTime, tm.CurrentTimingMethod())
}

func TestIntoRunLeavesTimerRunning(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	playAttempt(t, tm, clock, 10)

	saved := tm.IntoRun(true)
	require.Len(t, saved.AttemptHistory(), 1)
	requireRealTime(t, 10, saved.Segment(0).BestSegmentTime())

	discarded := tm.IntoRun(false)
	require.Empty(t, discarded.AttemptHistory())
	require.Zero(t, discarded.Segment(0).History().Len())

	require.Equal(t, Running, tm.Phase())
	require.Empty(t, tm.Run().AttemptHistory())
	requireRealTime(t, 10, tm.Run().Segment(0).SplitTime())
}

func TestEditRun(t *testing.T) {
	tm, _ := newTestTimer(t, "A")
	require.NoError(t, tm.Start())
	require.ErrorIs(t, tm.EditRun(func(r *run.Run) error { return nil }), ErrRunInProgress)
	require.ErrorIs(t, tm.SetRun(run.New()), ErrRunInProgress)
	require.NoError(t, tm.Reset(false))

	require.NoError(t, tm.EditRun(func(r *run.Run) error {
		r.PushSegment(run.NewSegment("B"))
		return r.AddCustomComparison("Race")
	}))
	require.Equal(t, 2, tm.Run().Len())
	require.NoError(t, tm.SetCurrentComparison("Race"))

	boom := errors.New("boom")
	require.ErrorIs(t, tm.EditRun(func(r *run.Run) error {
		r.PushSegment(run.NewSegment("C"))
		return boom
	}), boom)
	require.ErrorIs(t, tm.EditRun(func(r *run.Run) error {
		_ = r.RemoveSegment(0)
		return r.RemoveSegment(0)
	}), ErrEmptyRun)
	require.Equal(t, 2, tm.Run().Len())

	other := run.New()
	other.PushSegment(run.NewSegment("X"))
	require.NoError(t, tm.SetRun(other))
	require.Equal(t, run.PersonalBestComparison, tm.CurrentComparison())
}

func TestSnapshot(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B", "C")
	playAttempt(t, tm, clock, 10, 20, 30)
	require.NoError(t, tm.Reset(true))

	snap := tm.Snapshot()
	require.Equal(t, NotRunning, snap.Phase)
	require.Equal(t, -1, snap.SplitIndex)
	require.False(t, snap.CurrentTime.IsKnown())
	require.True(t, snap.SumOfBest.Equal(knownSecs(60)))
	require.True(t, snap.PersonalBest.Equal(knownSecs(60)))

	require.NoError(t, tm.Start())
	clock.Advance(11 * time.Second)
	require.NoError(t, tm.Split())
	clock.Advance(25 * time.Second)

	snap = tm.Snapshot()
	require.Equal(t, 1, snap.SplitIndex)
	require.Equal(t, 2, snap.AttemptCount)
	require.Equal(t, "Celeste", snap.GameName)
	require.True(t, snap.Segments[0].Delta.Equal(knownSecs(1)))
	require.True(t, snap.Segments[0].Duration.Equal(knownSecs(11)))
	require.False(t, snap.Segments[0].BestSegmentBeaten)
	require.False(t, snap.Segments[1].Delta.IsKnown())
	require.True(t, snap.LiveDelta.Equal(knownSecs(6)))
}

func TestSharedConcurrentSplits(t *testing.T) {
	const n = 24
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("S%d", i)
	}
	tm, _ := newTestTimer(t, names...)
	shared := NewShared(tm, 0)
	require.NoError(t, shared.Start())

	var g errgroup.Group
	for range n {
		g.Go(shared.Split)
	}
	require.NoError(t, g.Wait())

	shared.View(func(tm *Timer) {
		idx, ok := tm.CurrentSplitIndex()
		require.True(t, ok)
		require.Equal(t, n, idx)
		require.Equal(t, Ended, tm.Phase())
		for i := range n {
			_, has := tm.Run().Segment(i).History().Get(tm.attemptIndex)
			require.True(t, has, "segment %d", i)
		}
	})
	require.ErrorIs(t, shared.Split(), ErrInvalidPhaseTransition)
}

func TestSharedUndoRedo(t *testing.T) {
	tm, clock := newTestTimer(t, "A", "B")
	shared := NewShared(tm, 0)
	require.NoError(t, shared.Start())
	clock.Advance(time.Second)
	require.NoError(t, shared.Split())

	require.True(t, shared.Undo())
	snap := shared.Snapshot()
	require.Equal(t, 0, snap.SplitIndex)
	require.True(t, shared.Undo())
	require.Equal(t, NotRunning, shared.Snapshot().Phase)
	require.False(t, shared.Undo())

	require.True(t, shared.Redo())
	require.True(t, shared.Redo())
	require.Equal(t, 1, shared.Snapshot().SplitIndex)
	require.False(t, shared.Redo())

	require.NoError(t, shared.Reset(true))
	r := shared.Run()
	require.Len(t, r.AttemptHistory(), 1)
}

func TestSharedRejectedUpdateDoesNotCommit(t *testing.T) {
	tm, _ := newTestTimer(t, "A")
	shared := NewShared(tm, 0)
	require.ErrorIs(t, shared.Split(), ErrInvalidPhaseTransition)
	require.False(t, shared.Undo())
	require.ErrorIs(t, shared.SetCurrentComparison("Nope"), ErrUnknownComparison)
	require.NoError(t, shared.SwitchToNextComparison())
	require.True(t, shared.Undo())
	require.Equal(t, run.PersonalBestComparison, shared.Snapshot().Comparison)
}

func TestNoneComparisonWithoutNoneGenerator(t *testing.T) {
	r := run.New()
	r.PushSegment(run.NewSegment("A"))
	r.SetComparisonGenerators([]run.ComparisonGenerator{comparison.BestSegments{}})
	tm, err := New(r, WithComparison(run.NoneComparison))
	require.NoError(t, err)
	require.Equal(t, run.NoneComparison, tm.CurrentComparison())

	require.NoError(t, tm.SetCurrentComparison(run.PersonalBestComparison))
	require.NoError(t, tm.SetCurrentComparison(run.NoneComparison))
	tm.SwitchToNextComparison()
	require.Equal(t, run.PersonalBestComparison, tm.CurrentComparison())
}
