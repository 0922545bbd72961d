package timer

import "errors"

var (
	// ErrInvalidPhaseTransition is returned when an operation is not allowed
	// in the current phase.
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")
	// ErrEmptyRun is returned when a timer would own a run without segments.
	ErrEmptyRun = errors.New("run has no segments")
	// ErrGameTimeNotInitialized is returned by game clock operations before
	// InitializeGameTime.
	ErrGameTimeNotInitialized = errors.New("game time is not initialized")
	// ErrRunInProgress is returned by run edits while an attempt is running.
	ErrRunInProgress = errors.New("attempt in progress")
	// ErrUnknownComparison is returned when selecting a comparison the run
	// does not have.
	ErrUnknownComparison = errors.New("unknown comparison")
)
