package timer

import (
	"fmt"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

// gameClock derives game time from real time minus loading times. While
// paused the game time is frozen and loading times absorb the difference.
type gameClock struct {
	initialized bool
	paused      bool
	frozen      timing.TimeSpan
	loading     timing.TimeSpan
}

func (g gameClock) time(realTime timing.TimeSpan) timing.OptionalSpan {
	switch {
	case !g.initialized:
		return timing.OptionalSpan{}
	case g.paused:
		return timing.Known(g.frozen)
	default:
		return timing.Known(realTime - g.loading)
	}
}

func (t *Timer) requireGameTime() error {
	if !t.game.initialized {
		return ErrGameTimeNotInitialized
	}
	return nil
}

// InitializeGameTime starts tracking game time for the attempt in progress.
func (t *Timer) InitializeGameTime() error {
	if t.phase == NotRunning {
		return fmt.Errorf("%w: cannot initialize game time while %s", ErrInvalidPhaseTransition, t.phase)
	}
	if !t.game.initialized {
		t.game = gameClock{initialized: true}
	}
	return nil
}

// DeinitializeGameTime stops tracking game time. Later splits record no game time.
func (t *Timer) DeinitializeGameTime() error {
	if err := t.requireGameTime(); err != nil {
		return err
	}
	t.game = gameClock{}
	return nil
}

// IsGameTimeInitialized reports whether game time is tracked.
func (t *Timer) IsGameTimeInitialized() bool {
	return t.game.initialized
}

// IsGameTimePaused reports whether game time is frozen.
func (t *Timer) IsGameTimePaused() bool {
	return t.game.initialized && t.game.paused
}

// PauseGameTime freezes game time, typically during a loading screen.
func (t *Timer) PauseGameTime() error {
	if err := t.requireGameTime(); err != nil {
		return err
	}
	if t.game.paused {
		return nil
	}
	t.game.frozen, _ = t.CurrentTime().GameTime.Get()
	t.game.paused = true
	return nil
}

// ResumeGameTime lets game time follow real time again from its frozen value.
func (t *Timer) ResumeGameTime() error {
	if err := t.requireGameTime(); err != nil {
		return err
	}
	if !t.game.paused {
		return nil
	}
	t.game.loading = t.currentRealTime() - t.game.frozen
	t.game.paused = false
	return nil
}

// SetGameTime forces the current game time.
func (t *Timer) SetGameTime(gt timing.TimeSpan) error {
	if err := t.requireGameTime(); err != nil {
		return err
	}
	if t.game.paused {
		t.game.frozen = gt
		return nil
	}
	t.game.loading = t.currentRealTime() - gt
	return nil
}

// SetLoadingTimes replaces the total time excluded from game time.
func (t *Timer) SetLoadingTimes(loading timing.TimeSpan) error {
	if err := t.requireGameTime(); err != nil {
		return err
	}
	t.game.loading = loading
	if t.game.paused {
		t.game.frozen = t.currentRealTime() - loading
	}
	return nil
}

// LoadingTimes returns the total time excluded from game time.
func (t *Timer) LoadingTimes() (timing.TimeSpan, error) {
	if err := t.requireGameTime(); err != nil {
		return 0, err
	}
	if t.game.paused {
		return t.currentRealTime() - t.game.frozen, nil
	}
	return t.game.loading, nil
}

func (t *Timer) currentRealTime() timing.TimeSpan {
	rt, _ := t.CurrentTime().RealTime.Get()
	return rt
}
