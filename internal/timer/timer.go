// Package timer drives a run through one attempt at a time.
//
// A Timer is not safe for concurrent use. Share one through Shared, which
// versions every state in a copy-on-write history.
package timer

import (
	"fmt"
	"time"

	log "github.com/schollz/logger"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

// Timer owns a run and the state of the attempt in progress.
type Timer struct {
	run        *run.Run
	clock      timing.Clock
	phase      Phase
	splitIndex int
	comparison string
	method     timing.TimingMethod

	attemptIndex int32
	startedAt    time.Time
	endedAt      time.Time
	pausedAt     time.Time
	pauseTime    timing.TimeSpan

	game gameClock
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the system clock.
func WithClock(c timing.Clock) Option {
	return func(t *Timer) {
		t.clock = c
	}
}

// WithTimingMethod selects the timing method shown first.
func WithTimingMethod(m timing.TimingMethod) Option {
	return func(t *Timer) {
		t.method = m
	}
}

// WithComparison selects the comparison shown first.
func WithComparison(name string) Option {
	return func(t *Timer) {
		t.comparison = name
	}
}

// New takes ownership of r and regenerates its comparisons.
func New(r *run.Run, opts ...Option) (*Timer, error) {
	if r == nil || r.IsEmpty() {
		return nil, ErrEmptyRun
	}
	t := &Timer{
		run:        r,
		clock:      timing.SystemClock{},
		splitIndex: -1,
		comparison: run.PersonalBestComparison,
		method:     timing.RealTime,
	}
	for _, opt := range opts {
		opt(t)
	}
	if !r.HasComparison(t.comparison) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComparison, t.comparison)
	}
	r.RegenerateComparisons()
	return t, nil
}

// Clone returns a deep copy. The clock is shared.
func (t *Timer) Clone() Timer {
	out := *t
	out.run = t.run.Clone()
	return out
}

// Run returns the owned run. Callers must not modify it; use EditRun.
func (t *Timer) Run() *run.Run {
	return t.run
}

// Phase returns the current phase.
func (t *Timer) Phase() Phase {
	return t.phase
}

// CurrentSplitIndex returns the index of the segment being timed. It equals
// the segment count once the attempt ended and is unset while not running.
func (t *Timer) CurrentSplitIndex() (int, bool) {
	if t.phase == NotRunning {
		return 0, false
	}
	return t.splitIndex, true
}

// CurrentComparison returns the selected comparison name.
func (t *Timer) CurrentComparison() string {
	return t.comparison
}

// CurrentTimingMethod returns the selected timing method.
func (t *Timer) CurrentTimingMethod() timing.TimingMethod {
	return t.method
}

// AttemptStarted returns the wall time the current attempt started.
func (t *Timer) AttemptStarted() (time.Time, bool) {
	return t.startedAt, t.phase != NotRunning
}

// PauseTime returns how long the current attempt has been paused in total.
func (t *Timer) PauseTime() timing.OptionalSpan {
	if t.phase == NotRunning {
		return timing.OptionalSpan{}
	}
	total := t.pauseTime
	if t.phase == Paused {
		total += timing.FromDuration(t.clock.Now().Sub(t.pausedAt))
	}
	return timing.Known(total)
}

// CurrentTime returns the attempt time for both methods. It is missing while
// not running and frozen at the final split once the attempt ended.
func (t *Timer) CurrentTime() timing.Time {
	switch t.phase {
	case NotRunning:
		return timing.Time{}
	case Ended:
		return t.run.Segment(t.run.Len() - 1).SplitTime()
	}
	rt := t.realTime()
	return timing.Time{RealTime: timing.Known(rt), GameTime: t.game.time(rt)}
}

func (t *Timer) realTime() timing.TimeSpan {
	now := t.clock.Now()
	if t.phase == Paused {
		now = t.pausedAt
	}
	return t.run.Offset + timing.FromDuration(now.Sub(t.startedAt)) - t.pauseTime
}

func (t *Timer) requirePhase(op string, allowed ...Phase) error {
	for _, p := range allowed {
		if t.phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidPhaseTransition, op, t.phase)
}

// Start begins a new attempt.
func (t *Timer) Start() error {
	if err := t.requirePhase("start", NotRunning); err != nil {
		return err
	}
	t.run.IncrementAttemptCount()
	t.attemptIndex = t.run.NextAttemptIndex()
	t.startedAt = t.clock.Now()
	t.endedAt = time.Time{}
	t.pausedAt = time.Time{}
	t.pauseTime = 0
	t.game = gameClock{}
	t.splitIndex = 0
	t.phase = Running
	log.Debugf("timer: started attempt %d", t.attemptIndex)
	return nil
}

// Split records the current time for the current segment and moves to the
// next one. Splitting the last segment ends the attempt.
func (t *Timer) Split() error {
	if err := t.requirePhase("split", Running, Paused); err != nil {
		return err
	}
	now := t.CurrentTime()
	if span, _ := now.RealTime.Get(); span.IsNegative() {
		return fmt.Errorf("%w: cannot split before the countdown reaches zero", ErrInvalidPhaseTransition)
	}

	i := t.splitIndex
	seg := t.run.Segment(i)
	seg.SetSplitTime(now)
	var duration timing.Time
	for _, m := range timing.Methods {
		duration.Set(m, now.Get(m).Sub(t.previousSplit(i, m)))
	}
	seg.History().Insert(t.attemptIndex, duration)
	t.splitIndex++
	log.Debugf("timer: split %q at %s", seg.Name, now.RealTime)

	if t.splitIndex == t.run.Len() {
		if t.phase == Paused {
			t.pauseTime += timing.FromDuration(t.clock.Now().Sub(t.pausedAt))
		}
		t.endedAt = t.clock.Now()
		t.phase = Ended
		log.Debugf("timer: attempt %d ended", t.attemptIndex)
	}
	return nil
}

// previousSplit returns the last known split time before segment i, or zero
// at the start of the run.
func (t *Timer) previousSplit(i int, m timing.TimingMethod) timing.OptionalSpan {
	for j := i - 1; j >= 0; j-- {
		if v := t.run.Segment(j).SplitTime().Get(m); v.IsKnown() {
			return v
		}
	}
	return timing.Known(0)
}

// SplitOrStart starts a new attempt when none is running and splits otherwise.
func (t *Timer) SplitOrStart() error {
	if t.phase == NotRunning {
		return t.Start()
	}
	return t.Split()
}

// SkipSplit moves past the current segment without recording a time. The
// last segment cannot be skipped.
func (t *Timer) SkipSplit() error {
	if err := t.requirePhase("skip a split", Running, Paused); err != nil {
		return err
	}
	if t.splitIndex >= t.run.Len()-1 {
		return fmt.Errorf("%w: cannot skip the last split", ErrInvalidPhaseTransition)
	}
	seg := t.run.Segment(t.splitIndex)
	seg.SetSplitTime(timing.Time{})
	seg.History().Insert(t.attemptIndex, timing.Time{})
	t.splitIndex++
	log.Debugf("timer: skipped %q", seg.Name)
	return nil
}

// UndoSplit steps back to the previous segment and forgets its split.
func (t *Timer) UndoSplit() error {
	if err := t.requirePhase("undo a split", Running, Paused, Ended); err != nil {
		return err
	}
	if t.splitIndex == 0 {
		return fmt.Errorf("%w: no split to undo", ErrInvalidPhaseTransition)
	}
	if t.phase == Ended {
		t.phase = Running
		t.endedAt = time.Time{}
	}
	t.splitIndex--
	seg := t.run.Segment(t.splitIndex)
	seg.SetSplitTime(timing.Time{})
	seg.History().Remove(t.attemptIndex)
	log.Debugf("timer: undid split %q", seg.Name)
	return nil
}

// Pause stops the clock.
func (t *Timer) Pause() error {
	if err := t.requirePhase("pause", Running); err != nil {
		return err
	}
	t.pausedAt = t.clock.Now()
	t.phase = Paused
	return nil
}

// Resume restarts the clock after Pause.
func (t *Timer) Resume() error {
	if err := t.requirePhase("resume", Paused); err != nil {
		return err
	}
	t.pauseTime += timing.FromDuration(t.clock.Now().Sub(t.pausedAt))
	t.pausedAt = time.Time{}
	t.phase = Running
	return nil
}

// TogglePause pauses a running timer and resumes a paused one.
func (t *Timer) TogglePause() error {
	if t.phase == Paused {
		return t.Resume()
	}
	return t.Pause()
}

// TogglePauseOrStart starts a new attempt when none is running and toggles
// pause otherwise.
func (t *Timer) TogglePauseOrStart() error {
	if t.phase == NotRunning {
		return t.Start()
	}
	return t.TogglePause()
}

// Reset ends the attempt. With updateSplits the attempt is recorded and the
// best segments and personal best are updated; otherwise every trace of the
// attempt is dropped.
func (t *Timer) Reset(updateSplits bool) error {
	if err := t.requirePhase("reset", Running, Paused, Ended); err != nil {
		return err
	}
	if updateSplits {
		t.recordAttempt()
		t.updateBestSegments()
		t.updatePersonalBest()
		t.run.RegenerateComparisons()
	} else {
		for i := range t.run.Len() {
			t.run.Segment(i).History().Remove(t.attemptIndex)
		}
	}
	for i := range t.run.Len() {
		t.run.Segment(i).SetSplitTime(timing.Time{})
	}
	log.Debugf("timer: reset attempt %d (saved=%t)", t.attemptIndex, updateSplits)
	t.phase = NotRunning
	t.splitIndex = -1
	t.startedAt = time.Time{}
	t.endedAt = time.Time{}
	t.pausedAt = time.Time{}
	t.pauseTime = 0
	t.game = gameClock{}
	return nil
}

func (t *Timer) recordAttempt() {
	var final timing.Time
	if t.phase == Ended {
		final = t.run.Segment(t.run.Len() - 1).SplitTime()
	}
	ended := t.endedAt
	if ended.IsZero() {
		ended = t.clock.Now()
	}
	var pause timing.OptionalSpan
	if total, _ := t.PauseTime().Get(); total > 0 {
		pause = timing.Known(total)
	}
	t.run.AddAttemptWithIndex(t.attemptIndex, final, t.startedAt, ended, pause)
}

// updateBestSegments only considers durations whose previous split is known,
// so a duration covering skipped splits never becomes a best segment.
func (t *Timer) updateBestSegments() {
	for i := range t.run.Len() {
		seg := t.run.Segment(i)
		entry, ok := seg.History().Get(t.attemptIndex)
		if !ok {
			break
		}
		best := seg.BestSegmentTime()
		for _, m := range timing.Methods {
			if i > 0 && !t.run.Segment(i-1).SplitTime().Get(m).IsKnown() {
				continue
			}
			d := entry.Get(m)
			if !d.IsKnown() {
				continue
			}
			if cur := best.Get(m); !cur.IsKnown() || d.Less(cur) {
				best.Set(m, d)
			}
		}
		seg.SetBestSegmentTime(best)
	}
}

func (t *Timer) updatePersonalBest() {
	if t.phase != Ended {
		return
	}
	last := t.run.Segment(t.run.Len() - 1)
	for _, m := range timing.Methods {
		final := last.SplitTime().Get(m)
		if !final.IsKnown() {
			continue
		}
		if pb := last.PersonalBestSplitTime().Get(m); pb.IsKnown() && !final.Less(pb) {
			continue
		}
		for i := range t.run.Len() {
			seg := t.run.Segment(i)
			pb := seg.PersonalBestSplitTime()
			pb.Set(m, seg.SplitTime().Get(m))
			seg.SetPersonalBestSplitTime(pb)
		}
		log.Debugf("timer: new %s personal best %s", m, final)
	}
}

// SwitchToNextComparison selects the comparison after the current one.
func (t *Timer) SwitchToNextComparison() {
	t.cycleComparison(1)
}

// SwitchToPreviousComparison selects the comparison before the current one.
func (t *Timer) SwitchToPreviousComparison() {
	t.cycleComparison(-1)
}

func (t *Timer) cycleComparison(step int) {
	names := t.run.ComparisonNames()
	if len(names) == 0 {
		return
	}
	pos := 0
	for i, name := range names {
		if name == t.comparison {
			pos = i
			break
		}
	}
	pos = (pos + step + len(names)) % len(names)
	t.comparison = names[pos]
}

// SetCurrentComparison selects a comparison by name.
func (t *Timer) SetCurrentComparison(name string) error {
	if !t.run.HasComparison(name) {
		return fmt.Errorf("%w: %q", ErrUnknownComparison, name)
	}
	t.comparison = name
	return nil
}

// SetCurrentTimingMethod selects the timing method.
func (t *Timer) SetCurrentTimingMethod(m timing.TimingMethod) {
	t.method = m
}

// ToggleTimingMethod switches between real time and game time.
func (t *Timer) ToggleTimingMethod() {
	t.method = t.method.Other()
}

// IntoRun returns a copy of the run. An attempt in progress is reset on the
// copy first, saving its times when updateTimes is set.
func (t *Timer) IntoRun(updateTimes bool) *run.Run {
	c := t.Clone()
	if c.phase != NotRunning {
		// Reset cannot fail from a running phase.
		_ = c.Reset(updateTimes)
	}
	return c.run
}

// SetRun replaces the owned run between attempts.
func (t *Timer) SetRun(r *run.Run) error {
	if t.phase != NotRunning {
		return ErrRunInProgress
	}
	if r == nil || r.IsEmpty() {
		return ErrEmptyRun
	}
	r.RegenerateComparisons()
	t.run = r
	t.fixComparison()
	return nil
}

// EditRun applies edit to a copy of the run and keeps it when edit succeeds.
// Edits are only allowed between attempts.
func (t *Timer) EditRun(edit func(*run.Run) error) error {
	if t.phase != NotRunning {
		return ErrRunInProgress
	}
	r := t.run.Clone()
	if err := edit(r); err != nil {
		return err
	}
	if r.IsEmpty() {
		return ErrEmptyRun
	}
	r.RegenerateComparisons()
	t.run = r
	t.fixComparison()
	return nil
}

func (t *Timer) fixComparison() {
	if !t.run.HasComparison(t.comparison) {
		t.comparison = run.PersonalBestComparison
	}
}
