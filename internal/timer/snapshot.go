package timer

import (
	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

// SegmentView is one row of a Snapshot, in the selected timing method.
type SegmentView struct {
	Name        string
	SplitTime   timing.OptionalSpan
	Comparison  timing.OptionalSpan
	Delta       timing.OptionalSpan
	BestSegment timing.OptionalSpan
	// Duration is the segment time of the attempt in progress.
	Duration timing.OptionalSpan
	// BestSegmentBeaten is set when Duration is a new best segment.
	BestSegmentBeaten bool
}

// Snapshot is a consistent read of the timer at one instant, for rendering.
type Snapshot struct {
	GameName     string
	CategoryName string
	Phase        Phase
	CurrentTime  timing.OptionalSpan
	// SplitIndex is -1 while not running.
	SplitIndex   int
	Comparison   string
	Method       timing.TimingMethod
	AttemptCount int
	Offset       timing.TimeSpan
	Segments     []SegmentView
	// LiveDelta is set when the current segment is already behind its comparison.
	LiveDelta      timing.OptionalSpan
	SumOfBest      timing.OptionalSpan
	PersonalBest   timing.OptionalSpan
	GameTimeActive bool
}

// Snapshot captures the timer for display.
func (t *Timer) Snapshot() Snapshot {
	m := t.method
	now := t.CurrentTime().Get(m)
	s := Snapshot{
		GameName:       t.run.GameName,
		CategoryName:   t.run.CategoryName,
		Phase:          t.phase,
		CurrentTime:    now,
		SplitIndex:     -1,
		Comparison:     t.comparison,
		Method:         m,
		AttemptCount:   t.run.AttemptCount(),
		Offset:         t.run.Offset,
		Segments:       make([]SegmentView, t.run.Len()),
		SumOfBest:      comparison.SumOfBest(t.run.Segments(), t.run.AttemptHistory(), m),
		PersonalBest:   t.run.Segment(t.run.Len() - 1).PersonalBestSplitTime().Get(m),
		GameTimeActive: t.game.initialized,
	}
	if t.phase != NotRunning {
		s.SplitIndex = t.splitIndex
	}

	for i := range t.run.Len() {
		seg := t.run.Segment(i)
		v := SegmentView{
			Name:        seg.Name,
			SplitTime:   seg.SplitTime().Get(m),
			Comparison:  seg.Comparison(t.comparison).Get(m),
			BestSegment: seg.BestSegmentTime().Get(m),
		}
		v.Delta = v.SplitTime.Sub(v.Comparison)
		if t.phase != NotRunning && i < t.splitIndex {
			if entry, ok := seg.History().Get(t.attemptIndex); ok {
				v.Duration = entry.Get(m)
			}
			if i == 0 || t.run.Segment(i-1).SplitTime().Get(m).IsKnown() {
				v.BestSegmentBeaten = v.Duration.IsKnown() &&
					(!v.BestSegment.IsKnown() || v.Duration.Less(v.BestSegment))
			}
		}
		s.Segments[i] = v
	}

	if (t.phase == Running || t.phase == Paused) && t.splitIndex < len(s.Segments) {
		cur := s.Segments[t.splitIndex]
		if delta, ok := now.Sub(cur.Comparison).Get(); ok && delta > 0 {
			s.LiveDelta = timing.Known(delta)
		}
	}
	return s
}
