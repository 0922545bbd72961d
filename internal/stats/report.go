package stats

import (
	"context"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Run      *run.Run
	Attempts []model.AttemptAggregate
	// Window holds the attempts the trend curve is computed over.
	Window   []model.AttemptAggregate
	Summary  Summary
	Segments []SegmentRow
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	r, err := st.LoadRun(ctx, cfg.RunID)
	if err != nil {
		return Report{}, err
	}
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	sob := comparison.SumOfBest(r.Segments(), r.AttemptHistory(), cfg.TimingMethod)
	return Report{
		Run:      r,
		Attempts: attempts,
		Window:   lastAttempts(attempts, cfg.CurveWindow),
		Summary:  Summarize(r, attempts, sob, cfg.TimingMethod),
		Segments: SegmentRows(r, attempts, cfg.TimingMethod),
	}, nil
}

func lastAttempts(attempts []model.AttemptAggregate, window int) []model.AttemptAggregate {
	if window <= 0 || len(attempts) <= window {
		return attempts
	}
	return attempts[len(attempts)-window:]
}
