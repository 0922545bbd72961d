// Package run holds the splits data model: segments, their histories and the
// attempts recorded for a game and category.
package run

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/verte-zerg/tuisplit/internal/timing"
)

// ComparisonGenerator derives a named comparison from segment histories.
//
// Generate must tolerate an empty segment slice, must be idempotent and must
// write both timing methods of the comparison for every segment.
type ComparisonGenerator interface {
	Name() string
	Generate(segments []Segment, attempts []Attempt)
	Clone() ComparisonGenerator
}

// ErrDuplicateComparison is returned when a comparison name is already taken.
var ErrDuplicateComparison = errors.New("comparison already exists")

// Run is the full splits data for one game and category.
type Run struct {
	GameName     string
	CategoryName string
	// Offset is the time shown when an attempt starts. Negative values count down.
	Offset timing.TimeSpan

	attemptCount      int
	segments          []Segment
	attemptHistory    []Attempt
	customComparisons []string
	generators        []ComparisonGenerator
}

// New returns an empty run without comparison generators.
func New() *Run {
	return &Run{customComparisons: []string{PersonalBestComparison}}
}

// Segments returns the segments in order. The slice must not be resized.
func (r *Run) Segments() []Segment {
	return r.segments
}

// Segment returns the segment at index i for in-place access.
func (r *Run) Segment(i int) *Segment {
	return &r.segments[i]
}

// Len returns the number of segments.
func (r *Run) Len() int {
	return len(r.segments)
}

// IsEmpty reports whether the run has no segments.
func (r *Run) IsEmpty() bool {
	return len(r.segments) == 0
}

// PushSegment appends a segment.
func (r *Run) PushSegment(s Segment) {
	if s.comparisons == nil {
		s.comparisons = map[string]timing.Time{PersonalBestComparison: {}}
	}
	r.segments = append(r.segments, s)
}

// RemoveSegment deletes the segment at index i.
func (r *Run) RemoveSegment(i int) error {
	if i < 0 || i >= len(r.segments) {
		return fmt.Errorf("segment index %d out of range [0,%d)", i, len(r.segments))
	}
	r.segments = append(r.segments[:i], r.segments[i+1:]...)
	return nil
}

// AttemptCount returns how many attempts were started, including discarded ones.
func (r *Run) AttemptCount() int {
	return r.attemptCount
}

// SetAttemptCount replaces the attempt counter.
func (r *Run) SetAttemptCount(n int) {
	r.attemptCount = n
}

// IncrementAttemptCount bumps the attempt counter.
func (r *Run) IncrementAttemptCount() {
	r.attemptCount++
}

// AttemptHistory returns the recorded attempts in ascending index order.
func (r *Run) AttemptHistory() []Attempt {
	return r.attemptHistory
}

// NextAttemptIndex returns the index the next attempt will be recorded under.
// It is larger than every attempt and every segment history key.
func (r *Run) NextAttemptIndex() int32 {
	var maxIndex int32
	if n := len(r.attemptHistory); n > 0 {
		maxIndex = r.attemptHistory[n-1].Index
	}
	for i := range r.segments {
		if idx := r.segments[i].history.MaxIndex(); idx > maxIndex {
			maxIndex = idx
		}
	}
	return maxIndex + 1
}

// AddAttempt appends an attempt under the next free index.
func (r *Run) AddAttempt(t timing.Time, started, ended time.Time, pause timing.OptionalSpan) Attempt {
	return r.AddAttemptWithIndex(r.NextAttemptIndex(), t, started, ended, pause)
}

// AddAttemptWithIndex appends an attempt under a given index. Indices must be
// appended in ascending order.
func (r *Run) AddAttemptWithIndex(index int32, t timing.Time, started, ended time.Time, pause timing.OptionalSpan) Attempt {
	a := Attempt{Index: index, Time: t, Started: started, Ended: ended, PauseTime: pause}
	r.attemptHistory = append(r.attemptHistory, a)
	return a
}

// ClearHistory drops every attempt, segment history entry and best segment.
func (r *Run) ClearHistory() {
	r.attemptHistory = nil
	for i := range r.segments {
		r.segments[i].history = SegmentHistory{}
		r.segments[i].bestSegmentTime = timing.Time{}
	}
}

// CustomComparisons lists the user comparisons, Personal Best first.
func (r *Run) CustomComparisons() []string {
	return r.customComparisons
}

// AddCustomComparison registers a comparison that is edited by hand rather
// than generated.
func (r *Run) AddCustomComparison(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("comparison name must not be empty")
	}
	if r.HasComparison(name) || name == NoneComparison {
		return fmt.Errorf("%w: %q", ErrDuplicateComparison, name)
	}
	r.customComparisons = append(r.customComparisons, name)
	for i := range r.segments {
		r.segments[i].SetComparison(name, timing.Time{})
	}
	return nil
}

// ComparisonGenerators returns the generators in the order they run.
func (r *Run) ComparisonGenerators() []ComparisonGenerator {
	return r.generators
}

// SetComparisonGenerators replaces the generator list.
func (r *Run) SetComparisonGenerators(gens []ComparisonGenerator) {
	r.generators = append([]ComparisonGenerator(nil), gens...)
}

// AddComparisonGenerator appends a generator unless one with the same name
// is registered.
func (r *Run) AddComparisonGenerator(g ComparisonGenerator) error {
	if r.hasGenerator(g.Name()) || slices.Contains(r.customComparisons, g.Name()) {
		return fmt.Errorf("%w: %q", ErrDuplicateComparison, g.Name())
	}
	r.generators = append(r.generators, g)
	return nil
}

// RemoveComparisonGenerator removes the generator and the values it wrote.
func (r *Run) RemoveComparisonGenerator(name string) bool {
	for i, g := range r.generators {
		if g.Name() != name {
			continue
		}
		r.generators = append(r.generators[:i], r.generators[i+1:]...)
		for j := range r.segments {
			r.segments[j].RemoveComparison(name)
		}
		return true
	}
	return false
}

// ComparisonNames lists custom comparisons followed by generated ones. None
// is always present, last unless a generator places it.
func (r *Run) ComparisonNames() []string {
	names := make([]string, 0, len(r.customComparisons)+len(r.generators)+1)
	names = append(names, r.customComparisons...)
	for _, g := range r.generators {
		names = append(names, g.Name())
	}
	if !r.hasGenerator(NoneComparison) {
		names = append(names, NoneComparison)
	}
	return names
}

func (r *Run) hasGenerator(name string) bool {
	for _, g := range r.generators {
		if g.Name() == name {
			return true
		}
	}
	return false
}

// HasComparison reports whether name is a custom or generated comparison.
func (r *Run) HasComparison(name string) bool {
	for _, n := range r.ComparisonNames() {
		if n == name {
			return true
		}
	}
	return false
}

// RegenerateComparisons runs every generator in list order. Later generators
// may read values written by earlier ones.
func (r *Run) RegenerateComparisons() {
	for _, g := range r.generators {
		g.Generate(r.segments, r.attemptHistory)
	}
}

// ExtendedName joins game and category names.
func (r *Run) ExtendedName() string {
	switch {
	case r.GameName == "":
		return r.CategoryName
	case r.CategoryName == "":
		return r.GameName
	default:
		return r.GameName + " - " + r.CategoryName
	}
}

// Clone returns a deep copy, generators included.
func (r *Run) Clone() *Run {
	out := &Run{
		GameName:     r.GameName,
		CategoryName: r.CategoryName,
		Offset:       r.Offset,
		attemptCount: r.attemptCount,
	}
	out.segments = make([]Segment, len(r.segments))
	for i := range r.segments {
		out.segments[i] = r.segments[i].Clone()
	}
	out.attemptHistory = append([]Attempt(nil), r.attemptHistory...)
	out.customComparisons = append([]string(nil), r.customComparisons...)
	out.generators = make([]ComparisonGenerator, len(r.generators))
	for i, g := range r.generators {
		out.generators[i] = g.Clone()
	}
	return out
}
