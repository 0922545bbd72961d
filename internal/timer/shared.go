package timer

import (
	"github.com/verte-zerg/tuisplit/internal/cow"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

// Shared is a Timer that several goroutines may read and mutate. Every
// successful mutation is a new entry in an undo/redo history.
type Shared struct {
	history *cow.History[Timer]
}

// NewShared takes ownership of t. limit bounds the number of stored states;
// zero keeps all of them.
func NewShared(t *Timer, limit int) *Shared {
	return &Shared{history: cow.NewHistory(*t, cow.WithLimit(limit))}
}

// Get returns a handle on the current timer state. The state must only be
// read; release the handle when done.
func (s *Shared) Get() cow.Cow[Timer] {
	return s.history.Get()
}

// View calls fn with the current timer state for reading.
func (s *Shared) View(fn func(*Timer)) {
	c := s.history.Get()
	defer c.Release()
	fn(c.Get())
}

// Snapshot captures the current timer state for display.
func (s *Shared) Snapshot() Snapshot {
	var snap Snapshot
	s.View(func(t *Timer) { snap = t.Snapshot() })
	return snap
}

// Run returns a copy of the current run.
func (s *Shared) Run() *run.Run {
	var r *run.Run
	s.View(func(t *Timer) { r = t.run.Clone() })
	return r
}

// IntoRun returns a copy of the run with any attempt in progress reset.
func (s *Shared) IntoRun(updateTimes bool) *run.Run {
	var r *run.Run
	s.View(func(t *Timer) { r = t.IntoRun(updateTimes) })
	return r
}

// Update applies fn to a copy of the current state and commits it. fn may
// run more than once under contention.
func (s *Shared) Update(fn func(*Timer) error) error {
	return s.history.CommitWith(fn)
}

// Undo restores the previous state.
func (s *Shared) Undo() bool { return s.history.Undo() }

// Redo restores the state undone last.
func (s *Shared) Redo() bool { return s.history.Redo() }

// Conflicts returns how many commits had to be retried.
func (s *Shared) Conflicts() uint64 { return s.history.Conflicts() }

// Start commits Timer.Start.
func (s *Shared) Start() error { return s.Update((*Timer).Start) }

// Split commits Timer.Split.
func (s *Shared) Split() error { return s.Update((*Timer).Split) }

// SplitOrStart starts the attempt or splits.
func (s *Shared) SplitOrStart() error { return s.Update((*Timer).SplitOrStart) }

// SkipSplit commits Timer.SkipSplit.
func (s *Shared) SkipSplit() error { return s.Update((*Timer).SkipSplit) }

// UndoSplit commits Timer.UndoSplit.
func (s *Shared) UndoSplit() error { return s.Update((*Timer).UndoSplit) }

// Pause commits Timer.Pause.
func (s *Shared) Pause() error { return s.Update((*Timer).Pause) }

// Resume commits Timer.Resume.
func (s *Shared) Resume() error { return s.Update((*Timer).Resume) }

// TogglePause pauses a running timer or resumes a paused one.
func (s *Shared) TogglePause() error { return s.Update((*Timer).TogglePause) }

// TogglePauseOrStart also starts an attempt when none is running.
func (s *Shared) TogglePauseOrStart() error {
	return s.Update((*Timer).TogglePauseOrStart)
}

// Reset ends the attempt, recording it when updateSplits is set.
func (s *Shared) Reset(updateSplits bool) error {
	return s.Update(func(t *Timer) error { return t.Reset(updateSplits) })
}

// SwitchToNextComparison cycles forward through the comparisons.
func (s *Shared) SwitchToNextComparison() error {
	return s.Update(func(t *Timer) error {
		t.SwitchToNextComparison()
		return nil
	})
}

// SwitchToPreviousComparison cycles backward through the comparisons.
func (s *Shared) SwitchToPreviousComparison() error {
	return s.Update(func(t *Timer) error {
		t.SwitchToPreviousComparison()
		return nil
	})
}

// SetCurrentComparison selects a comparison by name.
func (s *Shared) SetCurrentComparison(name string) error {
	return s.Update(func(t *Timer) error { return t.SetCurrentComparison(name) })
}

// ToggleTimingMethod switches between real and game time.
func (s *Shared) ToggleTimingMethod() error {
	return s.Update(func(t *Timer) error {
		t.ToggleTimingMethod()
		return nil
	})
}

// InitializeGameTime starts tracking game time for the attempt.
func (s *Shared) InitializeGameTime() error { return s.Update((*Timer).InitializeGameTime) }

// DeinitializeGameTime stops tracking game time.
func (s *Shared) DeinitializeGameTime() error { return s.Update((*Timer).DeinitializeGameTime) }

// PauseGameTime freezes the game clock, e.g. during loads.
func (s *Shared) PauseGameTime() error { return s.Update((*Timer).PauseGameTime) }

// ResumeGameTime unfreezes the game clock.
func (s *Shared) ResumeGameTime() error { return s.Update((*Timer).ResumeGameTime) }

// SetGameTime overrides the current game time.
func (s *Shared) SetGameTime(gt timing.TimeSpan) error {
	return s.Update(func(t *Timer) error { return t.SetGameTime(gt) })
}

// SetLoadingTimes sets the time subtracted from real time.
func (s *Shared) SetLoadingTimes(loading timing.TimeSpan) error {
	return s.Update(func(t *Timer) error { return t.SetLoadingTimes(loading) })
}

// SetRun replaces the run with a copy of r.
func (s *Shared) SetRun(r *run.Run) error {
	return s.Update(func(t *Timer) error { return t.SetRun(r.Clone()) })
}

// EditRun applies edit to a copy of the run.
func (s *Shared) EditRun(edit func(*run.Run) error) error {
	return s.Update(func(t *Timer) error { return t.EditRun(edit) })
}
