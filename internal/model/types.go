// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

// Config defines timer session settings.
type Config struct {
	RunID        int64
	TimingMethod timing.TimingMethod
	Comparison   string
	HistoryLimit int
	Decimals     int
	Keys         KeyBindings
}

// KeyBindings lists the keys bound to each timer action.
type KeyBindings struct {
	Split     []string
	Skip      []string
	Undo      []string
	Pause     []string
	Reset     []string
	Discard   []string
	Previous  []string
	Next      []string
	Method    []string
	UndoState []string
	RedoState []string
	Quit      []string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	RunID        int64
	Since        *time.Time
	Last         int
	CurveWindow  int
	TimingMethod timing.TimingMethod
}

// RunSummary describes a stored run for listings.
type RunSummary struct {
	ID           int64
	GameName     string
	CategoryName string
	Segments     int
	AttemptCount int
	Finished     int
	PersonalBest timing.OptionalSpan
	UpdatedAt    time.Time
}

// AttemptAggregate summarizes a recorded attempt for reporting.
type AttemptAggregate struct {
	Index     int32
	StartedAt time.Time
	EndedAt   time.Time
	RealTime  timing.OptionalSpan
	GameTime  timing.OptionalSpan
	PauseTime timing.OptionalSpan
	// Reached counts the segments with a history entry for the attempt.
	Reached int
}

// Final returns the finishing time for the timing method.
func (a AttemptAggregate) Final(m timing.TimingMethod) timing.OptionalSpan {
	if m == timing.GameTime {
		return a.GameTime
	}
	return a.RealTime
}
