package run

import (
	"sort"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	// PersonalBestComparison is the reserved comparison holding the PB split times.
	PersonalBestComparison = "Personal Best"
	// NoneComparison is the comparison that is always empty.
	NoneComparison = "None"
)

// Segment is one named part of a run.
type Segment struct {
	Name string
	Icon []byte

	bestSegmentTime timing.Time
	splitTime       timing.Time
	history         SegmentHistory
	comparisons     map[string]timing.Time
}

// NewSegment creates a segment with an empty Personal Best comparison.
func NewSegment(name string) Segment {
	return Segment{
		Name:        name,
		comparisons: map[string]timing.Time{PersonalBestComparison: {}},
	}
}

// BestSegmentTime returns the fastest duration observed for the segment.
func (s *Segment) BestSegmentTime() timing.Time {
	return s.bestSegmentTime
}

// SetBestSegmentTime replaces the best segment time.
func (s *Segment) SetBestSegmentTime(t timing.Time) {
	s.bestSegmentTime = t
}

// SplitTime returns the cumulative time recorded for the segment in the
// attempt in progress.
func (s *Segment) SplitTime() timing.Time {
	return s.splitTime
}

// SetSplitTime replaces the split time of the attempt in progress.
func (s *Segment) SetSplitTime(t timing.Time) {
	s.splitTime = t
}

// History returns the segment history for in-place access.
func (s *Segment) History() *SegmentHistory {
	return &s.history
}

// Comparison returns the stored comparison, or the empty Time when absent.
func (s *Segment) Comparison(name string) timing.Time {
	return s.comparisons[name]
}

// SetComparison inserts or replaces a comparison value.
func (s *Segment) SetComparison(name string, t timing.Time) {
	if s.comparisons == nil {
		s.comparisons = map[string]timing.Time{}
	}
	s.comparisons[name] = t
}

// RemoveComparison drops a comparison. The Personal Best entry is kept.
func (s *Segment) RemoveComparison(name string) {
	if name == PersonalBestComparison {
		return
	}
	delete(s.comparisons, name)
}

// ComparisonNames lists the comparisons stored on the segment, sorted.
func (s *Segment) ComparisonNames() []string {
	names := make([]string, 0, len(s.comparisons))
	for name := range s.comparisons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PersonalBestSplitTime returns the cumulative PB time at this segment.
func (s *Segment) PersonalBestSplitTime() timing.Time {
	return s.Comparison(PersonalBestComparison)
}

// SetPersonalBestSplitTime replaces the cumulative PB time at this segment.
func (s *Segment) SetPersonalBestSplitTime(t timing.Time) {
	s.SetComparison(PersonalBestComparison, t)
}

// Clone returns a deep copy.
func (s Segment) Clone() Segment {
	out := s
	if s.Icon != nil {
		out.Icon = append([]byte(nil), s.Icon...)
	}
	out.history = s.history.Clone()
	out.comparisons = make(map[string]timing.Time, len(s.comparisons))
	for k, v := range s.comparisons {
		out.comparisons[k] = v
	}
	if _, ok := out.comparisons[PersonalBestComparison]; !ok {
		out.comparisons[PersonalBestComparison] = timing.Time{}
	}
	return out
}
