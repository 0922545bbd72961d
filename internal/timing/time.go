package timing

import (
	"fmt"
	"strings"
)

// TimingMethod selects one of the two clocks tracked per segment.
type TimingMethod int

const (
	// RealTime is wall-clock time minus pauses.
	RealTime TimingMethod = iota
	// GameTime is the clock reported by the game, usually real time minus loads.
	GameTime
)

// Methods lists both timing methods in order.
var Methods = [...]TimingMethod{RealTime, GameTime}

func (m TimingMethod) String() string {
	switch m {
	case RealTime:
		return "Real Time"
	case GameTime:
		return "Game Time"
	default:
		return fmt.Sprintf("TimingMethod(%d)", int(m))
	}
}

// Other returns the opposite timing method.
func (m TimingMethod) Other() TimingMethod {
	if m == RealTime {
		return GameTime
	}
	return RealTime
}

// ParseTimingMethod parses "real" or "game" (case-insensitive).
func ParseTimingMethod(s string) (TimingMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "real", "realtime", "real-time", "rta":
		return RealTime, nil
	case "game", "gametime", "game-time", "igt":
		return GameTime, nil
	default:
		return RealTime, fmt.Errorf("unknown timing method %q (expected real or game)", s)
	}
}

// Time pairs an optional span for each timing method.
type Time struct {
	RealTime OptionalSpan
	GameTime OptionalSpan
}

// NewTime builds a Time from both spans.
func NewTime(realTime, gameTime OptionalSpan) Time {
	return Time{RealTime: realTime, GameTime: gameTime}
}

// ZeroTime returns a Time with both methods set to zero.
func ZeroTime() Time {
	return Time{RealTime: Known(0), GameTime: Known(0)}
}

// Get returns the span for the method.
func (t Time) Get(m TimingMethod) OptionalSpan {
	if m == GameTime {
		return t.GameTime
	}
	return t.RealTime
}

// Set replaces the span for the method.
func (t *Time) Set(m TimingMethod, v OptionalSpan) {
	if m == GameTime {
		t.GameTime = v
		return
	}
	t.RealTime = v
}

// With returns a copy of t with the method's span replaced.
func (t Time) With(m TimingMethod, v OptionalSpan) Time {
	t.Set(m, v)
	return t
}

// Add adds per method; a missing operand gives a missing result.
func (t Time) Add(o Time) Time {
	return Time{RealTime: t.RealTime.Add(o.RealTime), GameTime: t.GameTime.Add(o.GameTime)}
}

// Sub subtracts per method; a missing operand gives a missing result.
func (t Time) Sub(o Time) Time {
	return Time{RealTime: t.RealTime.Sub(o.RealTime), GameTime: t.GameTime.Sub(o.GameTime)}
}

// IsEmpty reports whether both methods are missing.
func (t Time) IsEmpty() bool {
	return !t.RealTime.IsKnown() && !t.GameTime.IsKnown()
}

// Equal compares both methods.
func (t Time) Equal(o Time) bool {
	return t.RealTime.Equal(o.RealTime) && t.GameTime.Equal(o.GameTime)
}
