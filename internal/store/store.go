// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/schollz/logger"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/timing"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for runs and their attempts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			game_name TEXT NOT NULL,
			category_name TEXT NOT NULL,
			offset_ns INTEGER NOT NULL,
			attempt_count INTEGER NOT NULL,
			custom_comparisons TEXT NOT NULL,
			generators TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS segments (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			icon BLOB,
			best_real_ns INTEGER,
			best_game_ns INTEGER,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS segment_comparisons (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			real_ns INTEGER,
			game_ns INTEGER,
			PRIMARY KEY (run_id, position, name)
		);`,
		`CREATE TABLE IF NOT EXISTS segment_history (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			attempt_index INTEGER NOT NULL,
			real_ns INTEGER,
			game_ns INTEGER,
			PRIMARY KEY (run_id, position, attempt_index)
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			run_id INTEGER NOT NULL,
			attempt_index INTEGER NOT NULL,
			started_at TEXT,
			ended_at TEXT,
			real_ns INTEGER,
			game_ns INTEGER,
			pause_ns INTEGER,
			PRIMARY KEY (run_id, attempt_index)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(run_id, ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

var childTables = []string{"segments", "segment_comparisons", "segment_history", "attempts"}

// SaveRun stores r under id, replacing what was there. An id of zero inserts
// a new run. It returns the id the run was stored under.
func (s *Store) SaveRun(ctx context.Context, id int64, r *run.Run) (savedID int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	gens := make([]string, 0, len(r.ComparisonGenerators()))
	for _, g := range r.ComparisonGenerators() {
		gens = append(gens, g.Name())
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	runArgs := []any{
		r.GameName,
		r.CategoryName,
		int64(r.Offset),
		r.AttemptCount(),
		joinNames(r.CustomComparisons()),
		joinNames(gens),
		now,
	}

	if id == 0 {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO runs (game_name, category_name, offset_ns, attempt_count, custom_comparisons, generators, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`, runArgs...)
		if err != nil {
			return 0, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE runs SET game_name = ?, category_name = ?, offset_ns = ?, attempt_count = ?,
			 custom_comparisons = ?, generators = ?, updated_at = ? WHERE id = ?`,
			append(runArgs, id)...)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: %d", ErrRunNotFound, id)
		}
		for _, table := range childTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
				return 0, err
			}
		}
	}

	if err := insertSegments(ctx, tx, id, r); err != nil {
		return 0, err
	}
	if err := insertAttempts(ctx, tx, id, r.AttemptHistory()); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	log.Debugf("store: saved run %d (%d segments, %d attempts)", id, r.Len(), len(r.AttemptHistory()))
	return id, nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, id int64, r *run.Run) error {
	segStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (run_id, position, name, icon, best_real_ns, best_game_ns) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := segStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	cmpStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segment_comparisons (run_id, position, name, real_ns, game_ns) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cmpStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	histStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO segment_history (run_id, position, attempt_index, real_ns, game_ns) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := histStmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for pos := range r.Len() {
		seg := r.Segment(pos)
		best := seg.BestSegmentTime()
		if _, err := segStmt.ExecContext(ctx, id, pos, seg.Name, seg.Icon, spanArg(best.RealTime), spanArg(best.GameTime)); err != nil {
			return err
		}
		// Generated comparisons are rebuilt on load; only hand-kept ones are stored.
		for _, name := range r.CustomComparisons() {
			t := seg.Comparison(name)
			if _, err := cmpStmt.ExecContext(ctx, id, pos, name, spanArg(t.RealTime), spanArg(t.GameTime)); err != nil {
				return err
			}
		}
		for idx, t := range seg.History().All() {
			if _, err := histStmt.ExecContext(ctx, id, pos, idx, spanArg(t.RealTime), spanArg(t.GameTime)); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertAttempts(ctx context.Context, tx *sql.Tx, id int64, attempts []run.Attempt) error {
	if len(attempts) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attempts (run_id, attempt_index, started_at, ended_at, real_ns, game_ns, pause_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, a := range attempts {
		if _, err := stmt.ExecContext(ctx, id, a.Index, timeArg(a.Started), timeArg(a.Ended),
			spanArg(a.Time.RealTime), spanArg(a.Time.GameTime), spanArg(a.PauseTime)); err != nil {
			return err
		}
	}
	return nil
}

// LoadRun reads a run and regenerates its comparisons.
func (s *Store) LoadRun(ctx context.Context, id int64) (*run.Run, error) {
	r := run.New()
	var offset int64
	var attemptCount int
	var customs, gens string
	err := s.db.QueryRowContext(ctx,
		`SELECT game_name, category_name, offset_ns, attempt_count, custom_comparisons, generators FROM runs WHERE id = ?`, id,
	).Scan(&r.GameName, &r.CategoryName, &offset, &attemptCount, &customs, &gens)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	r.Offset = timing.TimeSpan(offset)
	r.SetAttemptCount(attemptCount)

	generators, err := comparison.FromNames(splitNames(gens))
	if err != nil {
		return nil, fmt.Errorf("failed to restore comparison generators: %w", err)
	}
	r.SetComparisonGenerators(generators)

	if err := s.loadSegments(ctx, id, r); err != nil {
		return nil, err
	}
	for _, name := range splitNames(customs) {
		if name == run.PersonalBestComparison {
			continue
		}
		if err := r.AddCustomComparison(name); err != nil {
			return nil, fmt.Errorf("failed to restore comparison %q: %w", name, err)
		}
	}
	if err := s.loadComparisons(ctx, id, r); err != nil {
		return nil, err
	}
	if err := s.loadHistory(ctx, id, r); err != nil {
		return nil, err
	}
	if err := s.loadAttempts(ctx, id, r); err != nil {
		return nil, err
	}
	r.RegenerateComparisons()
	return r, nil
}

func (s *Store) loadSegments(ctx context.Context, id int64, r *run.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, icon, best_real_ns, best_game_ns FROM segments WHERE run_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var name string
		var icon []byte
		var bestReal, bestGame sql.NullInt64
		if err := rows.Scan(&name, &icon, &bestReal, &bestGame); err != nil {
			return err
		}
		seg := run.NewSegment(name)
		seg.Icon = icon
		seg.SetBestSegmentTime(timing.NewTime(spanFromNull(bestReal), spanFromNull(bestGame)))
		r.PushSegment(seg)
	}
	return rows.Err()
}

func (s *Store) loadComparisons(ctx context.Context, id int64, r *run.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, name, real_ns, game_ns FROM segment_comparisons WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var pos int
		var name string
		var realNs, gameNs sql.NullInt64
		if err := rows.Scan(&pos, &name, &realNs, &gameNs); err != nil {
			return err
		}
		if pos < 0 || pos >= r.Len() {
			return fmt.Errorf("comparison for unknown segment %d", pos)
		}
		r.Segment(pos).SetComparison(name, timing.NewTime(spanFromNull(realNs), spanFromNull(gameNs)))
	}
	return rows.Err()
}

func (s *Store) loadHistory(ctx context.Context, id int64, r *run.Run) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, attempt_index, real_ns, game_ns FROM segment_history WHERE run_id = ?`, id)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for rows.Next() {
		var pos int
		var idx int32
		var realNs, gameNs sql.NullInt64
		if err := rows.Scan(&pos, &idx, &realNs, &gameNs); err != nil {
			return err
		}
		if pos < 0 || pos >= r.Len() {
			return fmt.Errorf("history for unknown segment %d", pos)
		}
		r.Segment(pos).History().Insert(idx, timing.NewTime(spanFromNull(realNs), spanFromNull(gameNs)))
	}
	return rows.Err()
}

func (s *Store) loadAttempts(ctx context.Context, id int64, r *run.Run) error {
	attempts, err := s.queryAttempts(ctx, `WHERE run_id = ? ORDER BY attempt_index ASC`, id)
	if err != nil {
		return err
	}
	for _, a := range attempts {
		r.AddAttemptWithIndex(a.Index, timing.NewTime(a.RealTime, a.GameTime), a.StartedAt, a.EndedAt, a.PauseTime)
	}
	return nil
}

// DeleteRun removes a run and everything recorded for it.
func (s *Store) DeleteRun(ctx context.Context, id int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	for _, table := range childTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns a summary of every stored run, most recently updated first.
func (s *Store) ListRuns(ctx context.Context) ([]model.RunSummary, error) {
	query := `SELECT r.id, r.game_name, r.category_name, r.attempt_count, r.updated_at,
		(SELECT COUNT(*) FROM segments s WHERE s.run_id = r.id),
		(SELECT COUNT(*) FROM attempts a WHERE a.run_id = r.id AND a.real_ns IS NOT NULL),
		(SELECT c.real_ns FROM segment_comparisons c WHERE c.run_id = r.id AND c.name = ?
			ORDER BY c.position DESC LIMIT 1)
		FROM runs r
		ORDER BY r.updated_at DESC, r.id DESC`
	rows, err := s.db.QueryContext(ctx, query, run.PersonalBestComparison)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.RunSummary
	for rows.Next() {
		var sum model.RunSummary
		var updatedAt string
		var pb sql.NullInt64
		if err := rows.Scan(&sum.ID, &sum.GameName, &sum.CategoryName, &sum.AttemptCount, &updatedAt,
			&sum.Segments, &sum.Finished, &pb); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, updatedAt)
		if err != nil {
			return nil, err
		}
		sum.UpdatedAt = parsed
		sum.PersonalBest = spanFromNull(pb)
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAttempts returns the attempts of a run filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"run_id = ?"}
	args := []any{cfg.RunID}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	tail := fmt.Sprintf(`WHERE %s ORDER BY attempt_index ASC`, strings.Join(clauses, " AND "))
	attempts, err := s.queryAttempts(ctx, tail, args...)
	if err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

func (s *Store) queryAttempts(ctx context.Context, tail string, args ...any) ([]model.AttemptAggregate, error) {
	query := `SELECT attempt_index, started_at, ended_at, real_ns, game_ns, pause_ns,
		(SELECT COUNT(*) FROM segment_history h WHERE h.run_id = attempts.run_id AND h.attempt_index = attempts.attempt_index)
		FROM attempts ` + tail
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var startedAt, endedAt sql.NullString
		var realNs, gameNs, pauseNs sql.NullInt64
		if err := rows.Scan(&agg.Index, &startedAt, &endedAt, &realNs, &gameNs, &pauseNs, &agg.Reached); err != nil {
			return nil, err
		}
		if agg.StartedAt, err = timeFromNull(startedAt); err != nil {
			return nil, err
		}
		if agg.EndedAt, err = timeFromNull(endedAt); err != nil {
			return nil, err
		}
		agg.RealTime = spanFromNull(realNs)
		agg.GameTime = spanFromNull(gameNs)
		agg.PauseTime = spanFromNull(pauseNs)
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func spanArg(o timing.OptionalSpan) any {
	if v, ok := o.Get(); ok {
		return int64(v)
	}
	return nil
}

func spanFromNull(v sql.NullInt64) timing.OptionalSpan {
	if !v.Valid {
		return timing.OptionalSpan{}
	}
	return timing.Known(timing.TimeSpan(v.Int64))
}

func timeArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func timeFromNull(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, v.String)
}

// Names are stored one per line; comparison names never contain newlines.
func joinNames(names []string) string {
	return strings.Join(names, "\n")
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
