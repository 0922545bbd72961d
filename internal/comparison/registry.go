package comparison

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

// None is the comparison that never holds a value.
type None struct{}

// Name implements run.ComparisonGenerator.
func (None) Name() string { return run.NoneComparison }

// Clone implements run.ComparisonGenerator.
func (g None) Clone() run.ComparisonGenerator { return g }

// Generate implements run.ComparisonGenerator.
func (None) Generate(segments []run.Segment, _ []run.Attempt) {
	for i := range segments {
		segments[i].SetComparison(run.NoneComparison, timing.Time{})
	}
}

// Defaults returns the generators attached to a new run, in order.
func Defaults() []run.ComparisonGenerator {
	return []run.ComparisonGenerator{
		BestSegments{},
		BestSplitTimes{},
		AverageSegments{},
		MedianSegments{},
		WorstSegments{},
		BalancedPB{},
		LatestRun{},
		None{},
	}
}

// All returns every built-in generator.
func All() []run.ComparisonGenerator {
	gens := Defaults()
	// Keep None last.
	gens[len(gens)-1] = LastFinishedRun{}
	return append(gens, None{})
}

// ByName finds a built-in generator by its comparison name, ignoring case.
func ByName(name string) (run.ComparisonGenerator, bool) {
	want := strings.TrimSpace(name)
	for _, g := range All() {
		if strings.EqualFold(g.Name(), want) {
			return g, true
		}
	}
	return nil, false
}

// FromNames resolves an ordered list of generator names.
func FromNames(names []string) ([]run.ComparisonGenerator, error) {
	seen := map[string]struct{}{}
	out := make([]run.ComparisonGenerator, 0, len(names))
	for _, name := range names {
		g, ok := ByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown comparison generator %q", name)
		}
		if _, dup := seen[g.Name()]; dup {
			return nil, fmt.Errorf("comparison generator %q listed twice", g.Name())
		}
		seen[g.Name()] = struct{}{}
		out = append(out, g)
	}
	return out, nil
}

// NewRun returns an empty run with the default generators attached.
func NewRun() *run.Run {
	r := run.New()
	r.SetComparisonGenerators(Defaults())
	return r
}
