// Package tui provides the Bubble Tea timer interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/schollz/logger"

	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/run"
	"github.com/verte-zerg/tuisplit/internal/store"
	"github.com/verte-zerg/tuisplit/internal/timer"
	"github.com/verte-zerg/tuisplit/internal/timing"
)

const (
	tickInterval = 50 * time.Millisecond
	defaultWidth = 48
)

type tickMsg time.Time

// Model implements the Bubble Tea timer UI.
type Model struct {
	config model.Config
	store  *store.Store
	shared *timer.Shared
	keys   keyMap
	help   help.Model

	width  int
	height int
	status string
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	currentStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2A2F3A"))
	aheadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	behindStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	bestStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	timerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// NewModel constructs a timer TUI model. The run is written to st under
// cfg.RunID after every reset and on quit; st may be nil.
func NewModel(cfg model.Config, st *store.Store, shared *timer.Shared) *Model {
	return &Model{
		config: cfg,
		store:  st,
		shared: shared,
		keys:   newKeyMap(cfg.Keys),
		help:   help.New(),
	}
}

// RunID returns the id the run was last saved under.
func (m *Model) RunID() int64 {
	return m.config.RunID
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		// A finished attempt is recorded; one still in progress is dropped.
		m.save(m.shared.IntoRun(m.shared.Snapshot().Phase == timer.Ended))
		return m, tea.Quit
	case key.Matches(msg, m.keys.Split):
		m.apply("split", m.shared.SplitOrStart())
	case key.Matches(msg, m.keys.Skip):
		m.apply("skip", m.shared.SkipSplit())
	case key.Matches(msg, m.keys.Undo):
		m.apply("undo split", m.shared.UndoSplit())
	case key.Matches(msg, m.keys.Pause):
		m.apply("pause", m.shared.TogglePauseOrStart())
	case key.Matches(msg, m.keys.Reset):
		m.reset(true)
	case key.Matches(msg, m.keys.Discard):
		m.reset(false)
	case key.Matches(msg, m.keys.Previous):
		m.apply("switch comparison", m.shared.SwitchToPreviousComparison())
	case key.Matches(msg, m.keys.Next):
		m.apply("switch comparison", m.shared.SwitchToNextComparison())
	case key.Matches(msg, m.keys.Method):
		m.apply("toggle timing method", m.shared.ToggleTimingMethod())
	case key.Matches(msg, m.keys.UndoState):
		if !m.shared.Undo() {
			m.status = "nothing to undo"
		} else {
			m.status = ""
		}
	case key.Matches(msg, m.keys.RedoState):
		if !m.shared.Redo() {
			m.status = "nothing to redo"
		} else {
			m.status = ""
		}
	}
	return m, nil
}

func (m *Model) apply(action string, err error) {
	if err != nil {
		log.Debugf("%s rejected: %v", action, err)
		m.status = err.Error()
		return
	}
	m.status = ""
}

func (m *Model) reset(updateSplits bool) {
	if err := m.shared.Reset(updateSplits); err != nil {
		m.apply("reset", err)
		return
	}
	m.status = ""
	m.save(m.shared.Run())
}

func (m *Model) save(r *run.Run) {
	if m.store == nil {
		return
	}
	id, err := m.store.SaveRun(context.Background(), m.config.RunID, r)
	if err != nil {
		m.status = fmt.Sprintf("failed to save run: %v", err)
		return
	}
	m.config.RunID = id
}

// View implements tea.Model.
func (m *Model) View() string {
	snap := m.shared.Snapshot()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	contentWidth := min(width, max(defaultWidth, width*2/3))

	lines := []string{m.renderHeader(snap, contentWidth), ""}
	for i, v := range snap.Segments {
		current := snap.Phase.InProgress() && i == snap.SplitIndex
		done := snap.SplitIndex >= 0 && i < snap.SplitIndex
		lines = append(lines, segmentLine(v, current, done, m.config.Decimals, contentWidth))
	}
	lines = append(lines, "", m.renderTimer(snap, contentWidth), "", m.renderFooter(snap))
	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}
	lines = append(lines, m.help.View(m.keys))
	content := strings.Join(lines, "\n")
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader(snap timer.Snapshot, width int) string {
	title := snap.GameName
	if snap.CategoryName != "" {
		if title != "" {
			title += " - "
		}
		title += snap.CategoryName
	}
	attempts := fmt.Sprintf("#%d", snap.AttemptCount)
	return titleStyle.Render(fitName(title, width-len(attempts)-1)) + " " + footerStyle.Render(attempts)
}

func (m *Model) renderTimer(snap timer.Snapshot, width int) string {
	current := snap.CurrentTime
	if snap.Phase == timer.NotRunning {
		current = timing.Known(snap.Offset)
	}
	text := timing.FormatSpan(current, m.config.Decimals)
	style := timerStyle
	switch {
	case snap.Phase == timer.Paused:
		style = pausedStyle
	case snap.LiveDelta.IsKnown():
		style = behindStyle
	case snap.Phase == timer.Ended && len(snap.Segments) > 0:
		style = deltaStyle(snap.Segments[len(snap.Segments)-1])
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, style.Render(text))
}

func (m *Model) renderFooter(snap timer.Snapshot) string {
	pairs := []string{
		"Comparison", snap.Comparison,
		"Method", snap.Method.String(),
		"Sum of best", timing.FormatSpan(snap.SumOfBest, m.config.Decimals),
		"PB", timing.FormatSpan(snap.PersonalBest, m.config.Decimals),
	}
	if snap.GameTimeActive {
		pairs = append(pairs, "Game time", "on")
	}
	return footerStyle.Render(footerLine(pairs...))
}
