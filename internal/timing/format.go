package timing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const missingSpan = "-"

// FormatSpan renders a span as h:mm:ss.ff, m:ss.ff or s.ff. Fractions are
// truncated, not rounded, so a running clock never shows a value ahead of time.
func FormatSpan(o OptionalSpan, decimals int) string {
	span, ok := o.Get()
	if !ok {
		return missingSpan
	}
	return formatSpan(span, decimals, false)
}

// FormatDelta renders a span with an explicit sign.
func FormatDelta(o OptionalSpan, decimals int) string {
	span, ok := o.Get()
	if !ok {
		return missingSpan
	}
	return formatSpan(span, decimals, true)
}

func formatSpan(span TimeSpan, decimals int, signed bool) string {
	if decimals < 0 {
		decimals = 0
	}
	if decimals > 3 {
		decimals = 3
	}
	sign := ""
	if span < 0 {
		sign = "-"
		span = -span
	} else if signed {
		sign = "+"
	}

	total := time.Duration(span)
	hours := total / time.Hour
	minutes := (total % time.Hour) / time.Minute
	seconds := (total % time.Minute) / time.Second
	frac := total % time.Second

	var b strings.Builder
	b.WriteString(sign)
	switch {
	case hours > 0:
		fmt.Fprintf(&b, "%d:%02d:%02d", hours, minutes, seconds)
	case minutes > 0:
		fmt.Fprintf(&b, "%d:%02d", minutes, seconds)
	default:
		fmt.Fprintf(&b, "%d", seconds)
	}
	if decimals > 0 {
		digits := fmt.Sprintf("%09d", int64(frac))
		b.WriteByte('.')
		b.WriteString(digits[:decimals])
	}
	return b.String()
}

// maxSpanSeconds is the largest whole number of seconds a TimeSpan holds.
const maxSpanSeconds = float64(math.MaxInt64 / int64(time.Second))

// ParseSpan parses "[-]h:mm:ss.fff", "m:ss", "ss.fff" or a Go duration such as "-5s".
func ParseSpan(s string) (TimeSpan, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("invalid time span %q: empty", s)
	}
	if strings.ContainsAny(raw, "hmsµun") && !strings.Contains(raw, ":") {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid time span %q: %w", s, err)
		}
		return FromDuration(d), nil
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}
	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time span %q: too many components", s)
	}
	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || math.IsNaN(secs) || secs < 0 {
		return 0, fmt.Errorf("invalid time span %q: bad seconds", s)
	}
	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time span %q: bad component %q", s, parts[i])
		}
		secs += float64(n) * multiplier
		multiplier *= 60
	}
	if math.IsInf(secs, 0) || secs > maxSpanSeconds {
		return 0, fmt.Errorf("invalid time span %q: out of range", s)
	}
	total := FromSeconds(secs)
	if negative {
		total = -total
	}
	return total, nil
}
