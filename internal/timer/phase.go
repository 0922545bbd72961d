package timer

// Phase is the state of the timer within an attempt.
type Phase int

// Timer phases. Only NotRunning accepts Start; Ended waits for Reset.
const (
	NotRunning Phase = iota
	Running
	Paused
	Ended
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	switch p {
	case NotRunning:
		return "not running"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// InProgress reports whether an attempt has been started and not reset.
func (p Phase) InProgress() bool {
	return p != NotRunning
}
