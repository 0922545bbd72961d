// Package timing defines the time values tracked by the timer.
package timing

import (
	"math"
	"time"
)

// TimeSpan is a signed duration with nanosecond precision.
type TimeSpan int64

// Zero returns an empty span.
func Zero() TimeSpan {
	return 0
}

// FromSeconds converts seconds to a span, rounding to the nearest nanosecond.
func FromSeconds(seconds float64) TimeSpan {
	return TimeSpan(math.Round(seconds * float64(time.Second)))
}

// FromDuration converts a time.Duration to a span.
func FromDuration(d time.Duration) TimeSpan {
	return TimeSpan(d)
}

// TotalSeconds returns the span in seconds.
func (t TimeSpan) TotalSeconds() float64 {
	return float64(t) / float64(time.Second)
}

// Duration returns the span as a time.Duration.
func (t TimeSpan) Duration() time.Duration {
	return time.Duration(t)
}

// Add returns t+o.
func (t TimeSpan) Add(o TimeSpan) TimeSpan {
	return t + o
}

// Sub returns t-o.
func (t TimeSpan) Sub(o TimeSpan) TimeSpan {
	return t - o
}

// Neg returns -t.
func (t TimeSpan) Neg() TimeSpan {
	return -t
}

// IsNegative reports whether t is below zero.
func (t TimeSpan) IsNegative() bool {
	return t < 0
}

// OptionalSpan is a span that may be missing. The zero value is missing.
type OptionalSpan struct {
	span  TimeSpan
	known bool
}

// Known wraps a span as a present value.
func Known(t TimeSpan) OptionalSpan {
	return OptionalSpan{span: t, known: true}
}

// Get returns the span and whether it is present.
func (o OptionalSpan) Get() (TimeSpan, bool) {
	return o.span, o.known
}

// IsKnown reports whether the span is present.
func (o OptionalSpan) IsKnown() bool {
	return o.known
}

// Add returns o+other, missing if either side is missing.
func (o OptionalSpan) Add(other OptionalSpan) OptionalSpan {
	if !o.known || !other.known {
		return OptionalSpan{}
	}
	return Known(o.span + other.span)
}

// Sub returns o-other, missing if either side is missing.
func (o OptionalSpan) Sub(other OptionalSpan) OptionalSpan {
	if !o.known || !other.known {
		return OptionalSpan{}
	}
	return Known(o.span - other.span)
}

// Less reports whether both spans are present and o < other.
func (o OptionalSpan) Less(other OptionalSpan) bool {
	return o.known && other.known && o.span < other.span
}

// Min returns the smaller span, missing if either side is missing.
func (o OptionalSpan) Min(other OptionalSpan) OptionalSpan {
	if !o.known || !other.known {
		return OptionalSpan{}
	}
	if other.span < o.span {
		return other
	}
	return o
}

// Max returns the larger span, missing if either side is missing.
func (o OptionalSpan) Max(other OptionalSpan) OptionalSpan {
	if !o.known || !other.known {
		return OptionalSpan{}
	}
	if other.span > o.span {
		return other
	}
	return o
}

// Equal reports whether both spans are missing or both hold the same value.
func (o OptionalSpan) Equal(other OptionalSpan) bool {
	if o.known != other.known {
		return false
	}
	return !o.known || o.span == other.span
}

// String formats the span with two decimals.
func (o OptionalSpan) String() string {
	return FormatSpan(o, 2)
}
