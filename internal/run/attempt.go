package run

import (
	"time"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

// Attempt records one pass through the segments, finished or not.
type Attempt struct {
	Index int32
	// Time is the final split time; missing for attempts reset before the end.
	Time      timing.Time
	Started   time.Time
	Ended     time.Time
	PauseTime timing.OptionalSpan
}

// Finished reports whether the attempt has a final time for the method.
func (a Attempt) Finished(m timing.TimingMethod) bool {
	return a.Time.Get(m).IsKnown()
}

// Duration returns the wall-clock length of the attempt, pauses included.
func (a Attempt) Duration() timing.OptionalSpan {
	if a.Started.IsZero() || a.Ended.IsZero() {
		return timing.OptionalSpan{}
	}
	return timing.Known(timing.FromDuration(a.Ended.Sub(a.Started)))
}
