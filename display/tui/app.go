// Package tui is the live full-screen view of the sampler (vmas -tui).
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/GameboyEsc95/VMAS/collectors"
	"github.com/GameboyEsc95/VMAS/display/widgets"
	"github.com/GameboyEsc95/VMAS/status"
)

// Tab identifies the active tab.
type Tab int

const (
	TabOverview Tab = iota
	TabProcesses
	TabEvents
	tabCount
)

var tabNames = map[Tab]string{
	TabOverview:  "Overview",
	TabProcesses: "Processes",
	TabEvents:    "Events",
}

// maxEvents bounds the event log.
const maxEvents = 100

// SampleMsg delivers a new sample and the CPU history after it.
type SampleMsg struct {
	Sample    collectors.Sample
	History   []float64
	Iteration uint64
}

// EventMsg appends a line to the event log.
type EventMsg struct {
	At   time.Time
	Text string
}

var evaluator = status.NewEvaluator(status.DefaultEvaluatorConfig())

// Model is the bubbletea model.
type Model struct {
	activeTab Tab
	width     int
	height    int
	ready     bool

	sample    *collectors.Sample
	history   []float64
	iteration uint64
	events    []EventMsg

	bar  progress.Model
	help help.Model
	// zones maps mouse clicks to tabs. Shared by every copy of the model.
	zones *zone.Manager
}

// NewModel returns a Model on the overview tab.
func NewModel() Model {
	return Model{
		activeTab: TabOverview,
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:      help.New(),
		zones:     zone.New(),
	}
}

func tabZoneID(t Tab) string { return fmt.Sprintf("tab-%d", int(t)) }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextTab):
			m.activeTab = (m.activeTab + 1) % tabCount
		case key.Matches(msg, keys.PrevTab):
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case key.Matches(msg, keys.Tab1):
			m.activeTab = TabOverview
		case key.Matches(msg, keys.Tab2):
			m.activeTab = TabProcesses
		case key.Matches(msg, keys.Tab3):
			m.activeTab = TabEvents
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			break
		}
		for t := Tab(0); t < tabCount; t++ {
			if z := m.zones.Get(tabZoneID(t)); z != nil && z.InBounds(msg) {
				m.activeTab = t
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.bar.Width = barWidth(msg.Width)

	case SampleMsg:
		s := msg.Sample
		m.sample = &s
		m.history = msg.History
		m.iteration = msg.Iteration

	case EventMsg:
		m.events = append(m.events, msg)
		if over := len(m.events) - maxEvents; over > 0 {
			m.events = m.events[over:]
		}
	}

	return m, nil
}

func barWidth(termWidth int) int {
	w := termWidth - 24
	switch {
	case w < 10:
		return 10
	case w > 60:
		return 60
	default:
		return w
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderTabContent(), m.renderFooter()))
}

func (m Model) renderHeader() string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		style := styleInactiveTab
		if i == m.activeTab {
			style = styleActiveTab
		}
		tabs = append(tabs, m.zones.Mark(tabZoneID(i), style.Render(tabNames[i])))
	}
	return styleHeader.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (m Model) renderTabContent() string {
	var content string
	switch m.activeTab {
	case TabOverview:
		content = m.renderOverview()
	case TabProcesses:
		content = m.renderProcesses()
	case TabEvents:
		content = m.renderEvents()
	}
	return styleContent.Width(m.width).Render(content)
}

func (m Model) renderOverview() string {
	if m.sample == nil {
		return styleMuted.Render("Waiting for the first sample...")
	}

	row := func(label string, pct float64) string {
		return fmt.Sprintf("%s %s %6.1f%%",
			styleLabel.Render(fmt.Sprintf("%-7s", label)),
			m.bar.ViewAs(pct/100),
			pct,
		)
	}

	lines := []string{
		styleTitle.Render("Utilisation") + "  " + styleMuted.Render(m.sample.Timestamp.Format("15:04:05")),
		"",
		row("CPU", m.sample.CPU),
		row("Memory", m.sample.Memory),
		row("Disk", m.sample.Disk),
	}
	if len(m.history) > 0 {
		lines = append(lines, "", fmt.Sprintf("%s %s",
			styleLabel.Render(fmt.Sprintf("%-7s", "Trend")),
			widgets.RenderPercentSparkline(m.history, len(m.history), colorSecondary),
		))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProcesses() string {
	if m.sample == nil {
		return styleMuted.Render("Waiting for the first sample...")
	}
	return widgets.RenderProcessTable(widgets.ProcessTableConfig{
		Processes:   m.sample.TopProcesses,
		HeaderStyle: styleTitle,
	})
}

func (m Model) renderEvents() string {
	if len(m.events) == 0 {
		return styleMuted.Render("No events yet.")
	}

	visible := m.events
	if limit := m.height - 8; limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	lines := make([]string, len(visible))
	for i, e := range visible {
		lines[i] = styleMuted.Render(e.At.Format("15:04:05")) + " " + e.Text
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	info := styleMuted.Render(fmt.Sprintf("samples: %d", m.iteration))
	if m.sample != nil {
		level := evaluator.Evaluate(m.sample).Overall
		info += styleMuted.Render("  status: ") + levelStyle(level).Render(level.String())
	}
	return styleFooter.Width(m.width).Render(m.help.View(keys) + "  " + info)
}
