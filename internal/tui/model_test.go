package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuisplit/internal/comparison"
	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/store"
	"github.com/verte-zerg/tuisplit/internal/timer"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	resetKey = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}
	undoKey  = tea.KeyMsg{Type: tea.KeyCtrlZ}
	redoKey  = tea.KeyMsg{Type: tea.KeyCtrlY}
	skipKey  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}
)

func newTestModel(t *testing.T) (*Model, *timing.ManualClock, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuisplit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	r := comparison.NewRun()
	r.GameName = "Celeste"
	r.CategoryName = "Any%"
	for _, name := range []string{"Prologue", "City"} {
		r.PushSegment(run.NewSegment(name))
	}
	clock := timing.NewManualClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	tm, err := timer.New(r, timer.WithClock(clock))
	if err != nil {
		t.Fatalf("new timer: %v", err)
	}
	cfg := model.Config{Decimals: 2}
	return NewModel(cfg, st, timer.NewShared(tm, 0)), clock, st
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestSplitKeysDriveTimer(t *testing.T) {
	m, clock, _ := newTestModel(t)
	press(m, enterKey)
	if got := m.shared.Snapshot().Phase; got != timer.Running {
		t.Fatalf("expected running, got %v", got)
	}
	clock.Advance(10 * time.Second)
	press(m, enterKey)
	clock.Advance(15 * time.Second)
	press(m, enterKey)
	snap := m.shared.Snapshot()
	if snap.Phase != timer.Ended {
		t.Fatalf("expected ended, got %v", snap.Phase)
	}
	if !snap.CurrentTime.Equal(timing.Known(timing.FromSeconds(25))) {
		t.Fatalf("unexpected final time %v", snap.CurrentTime)
	}
	if m.status != "" {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestRejectedActionSetsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, skipKey)
	if m.status == "" {
		t.Fatalf("expected status for skip while not running")
	}
	press(m, enterKey)
	if m.status != "" {
		t.Fatalf("expected status cleared, got %q", m.status)
	}
}

func TestResetSavesRun(t *testing.T) {
	m, clock, st := newTestModel(t)
	press(m, enterKey)
	clock.Advance(10 * time.Second)
	press(m, enterKey)
	clock.Advance(20 * time.Second)
	press(m, enterKey, resetKey)

	if m.RunID() == 0 {
		t.Fatalf("expected run to be saved")
	}
	attempts, err := st.ListAttempts(context.Background(), model.StatsConfig{RunID: m.RunID()})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 || !attempts[0].RealTime.Equal(timing.Known(timing.FromSeconds(30))) {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
	loaded, err := st.LoadRun(context.Background(), m.RunID())
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if !loaded.Segment(1).PersonalBestSplitTime().RealTime.Equal(timing.Known(timing.FromSeconds(30))) {
		t.Fatalf("personal best not saved")
	}
}

func TestUndoRedoState(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, undoKey)
	if m.status != "nothing to undo" {
		t.Fatalf("unexpected status %q", m.status)
	}
	press(m, enterKey, undoKey)
	if got := m.shared.Snapshot().Phase; got != timer.NotRunning {
		t.Fatalf("expected undo to restore not running, got %v", got)
	}
	press(m, redoKey)
	if got := m.shared.Snapshot().Phase; got != timer.Running {
		t.Fatalf("expected redo to restore running, got %v", got)
	}
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	m, _, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if m.RunID() == 0 {
		t.Fatalf("expected run saved on quit")
	}
}

func TestQuitKeepsFinishedAttempt(t *testing.T) {
	m, clock, st := newTestModel(t)
	press(m, enterKey)
	clock.Advance(10 * time.Second)
	press(m, enterKey)
	clock.Advance(20 * time.Second)
	press(m, enterKey, tea.KeyMsg{Type: tea.KeyCtrlC})

	ctx := context.Background()
	attempts, err := st.ListAttempts(ctx, model.StatsConfig{RunID: m.RunID()})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("expected the finished attempt saved, got %+v", attempts)
	}
	loaded, err := st.LoadRun(ctx, m.RunID())
	if err != nil {
		t.Fatalf("load run: %v", err)
	}
	if !loaded.Segment(1).PersonalBestSplitTime().RealTime.Equal(timing.Known(timing.FromSeconds(30))) {
		t.Fatalf("personal best not saved on quit")
	}
}

func TestQuitDropsAttemptInProgress(t *testing.T) {
	m, clock, st := newTestModel(t)
	press(m, enterKey)
	clock.Advance(10 * time.Second)
	press(m, enterKey, tea.KeyMsg{Type: tea.KeyCtrlC})

	attempts, err := st.ListAttempts(context.Background(), model.StatsConfig{RunID: m.RunID()})
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 0 {
		t.Fatalf("expected no attempts, got %+v", attempts)
	}
}

func TestViewRendersSplits(t *testing.T) {
	m, clock, _ := newTestModel(t)
	press(m, enterKey)
	clock.Advance(12 * time.Second)
	out := m.View()
	for _, want := range []string{"Celeste - Any%", "Prologue", "City", "12.00", "Comparison Personal Best", "split"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view:\n%s", want, out)
		}
	}
}

func TestSpaceBindingMatchesSpaceBar(t *testing.T) {
	m, _, _ := newTestModel(t)
	press(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if got := m.shared.Snapshot().Phase; got != timer.Running {
		t.Fatalf("expected space to start the timer, got %v", got)
	}
}
