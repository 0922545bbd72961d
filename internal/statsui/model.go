// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuisplit/internal/model"
	"github.com/verte-zerg/tuisplit/internal/stats"
	"github.com/verte-zerg/tuisplit/internal/store"
)

const (
	tabOverview = iota
	tabSegments
	tabAttempts
)

const defaultWidth = 80

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store    *store.Store
	cfg      model.StatsConfig
	decimals int

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig, decimals int) *Model {
	m := &Model{
		store:    st,
		cfg:      cfg,
		decimals: decimals,
		tabs:     []string{"Overview", "Segments", "Attempts"},
		overview: viewport.New(0, 0),
	}
	segments := newTable()
	attempts := newTable()
	m.tables = map[int]*table.Model{tabSegments: &segments, tabAttempts: &attempts}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "t":
			m.cfg.TimingMethod = m.cfg.TimingMethod.Other()
			m.refreshReport()
			return m, nil
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if t, ok := m.tables[m.activeTab]; ok {
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(max(1, bodyHeight-1))
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	for tab, t := range m.tables {
		if tab == m.activeTab {
			t.Focus()
		} else {
			t.Blur()
		}
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	return tabs + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFilterSummary() string {
	name := "-"
	if m.report.Run != nil {
		name = m.report.Run.ExtendedName()
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("%s  since=%s  last=%s  window=%d  method=%s",
		name, since, last, m.cfg.CurveWindow, m.cfg.TimingMethod)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Method: t  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if t, ok := m.tables[m.activeTab]; ok {
		if len(t.Rows()) == 0 {
			return "No data found."
		}
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report
	m.tables[tabSegments].SetColumns(segmentColumns())
	m.tables[tabSegments].SetRows(segmentRows(report.Segments, m.decimals))
	m.tables[tabAttempts].SetColumns(attemptColumns())
	m.tables[tabAttempts].SetRows(attemptRows(report.Attempts, m.cfg.TimingMethod, m.decimals))
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg, m.decimals, width))
}
