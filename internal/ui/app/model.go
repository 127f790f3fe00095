package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	measurementdto "stridekit/internal/modules/measurement/dto"
	sessiondto "stridekit/internal/modules/session/dto"
	"stridekit/internal/ui/components"
	"stridekit/internal/ui/theme"
	historyview "stridekit/internal/ui/views/history"
	recorderview "stridekit/internal/ui/views/recorder"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error)
	Stop(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Analyze(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Reset(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Current(ctx context.Context) sessiondto.SnapshotOutput
	Watch(ctx context.Context) <-chan sessiondto.SnapshotOutput
}

type historyPort interface {
	List(ctx context.Context, activity, completeness string, limit int) ([]measurementdto.MeasurementOutput, error)
	Insights(ctx context.Context, measurementID string) ([]measurementdto.InsightOutput, error)
	Weekly(ctx context.Context) (measurementdto.WeeklyOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabRecorder tabID = iota
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{
	"Recorder", "History",
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	Stop    key.Binding
	Analyze key.Binding
	Reset   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start recording")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop recording")),
		Analyze: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "analyze")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Analyze, k.Reset},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the snapshot
// subscription, the help overlay and the command palette. Rendering is
// delegated to the recorder and history views.
type Model struct {
	session   sessionPort
	snapshots <-chan sessiondto.SnapshotOutput
	lastSeen  string

	recView  recorderview.Model
	histView historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// NewModel wires the views. ctx bounds the snapshot subscription and should
// be cancelled when the program exits.
func NewModel(ctx context.Context, session sessionPort, history historyPort, defaults sessiondto.StartInput) Model {
	return Model{
		session:   session,
		snapshots: session.Watch(ctx),
		recView:   recorderview.New(session, defaults),
		histView:  historyview.New(history),
		activeTab: tabRecorder,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.recView.Init(),
		m.histView.Init(),
		recorderview.WaitForSnapshot(m.snapshots),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case recorderview.SnapshotMsg:
		m.recView, _ = m.recView.Update(msg)
		cmds = append(cmds, recorderview.WaitForSnapshot(m.snapshots))
		if res := msg.Snapshot.Result; res != nil && res.MeasurementID != m.lastSeen {
			m.lastSeen = res.MeasurementID
			m.status = "measurement " + res.Completeness + ": " + res.MeasurementID
			cmds = append(cmds, m.histView.Refresh())
		}
		return m, tea.Batch(cmds...)

	case recorderview.CommandDoneMsg:
		m.recView, _ = m.recView.Update(msg)
		if msg.Err != nil {
			m.status = msg.Action + " failed: " + msg.Err.Error()
		} else {
			m.status = msg.Action + ": " + msg.Snapshot.UIState
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.activeTab == tabHistory && m.histView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			return m, m.recView.StartCmd(sessiondto.StartInput{})
		case "x":
			return m, m.recView.StopCmd()
		case "a":
			return m, m.recView.AnalyzeCmd()
		case "r":
			return m, m.recView.ResetCmd()
		}
	}

	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabRecorder:
		m.recView, tabCmd = m.recView.Update(msg)
		cmds = append(cmds, tabCmd)
		// The history spinner must keep ticking while hidden.
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.histView, tabCmd = m.histView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	case tabHistory:
		m.histView, tabCmd = m.histView.Update(msg)
		cmds = append(cmds, tabCmd)
		if _, ok := msg.(tea.KeyMsg); !ok {
			m.recView, tabCmd = m.recView.Update(msg)
			cmds = append(cmds, tabCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabHistory:
		content = m.histView.View()
	default:
		content = lipgloss.NewStyle().Padding(1, 2).Render(m.recView.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "stridekit  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.recView.Active() {
		snap := m.recView.Snapshot()
		left = theme.Hot.Render(fmt.Sprintf("● %s %02d:%02d", snap.UIState, snap.ElapsedSeconds/60, snap.ElapsedSeconds%60)) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "start":
		start := sessiondto.StartInput{}
		if len(parts) >= 2 {
			start.ActivityType = parts[1]
		}
		if len(parts) >= 3 {
			seconds, err := strconv.Atoi(parts[2])
			if err != nil {
				m.status = "usage: start [activity] [seconds]"
				return m, nil
			}
			start.DurationSeconds = seconds
		}
		m.activeTab = tabRecorder
		return m, m.recView.StartCmd(start)

	case "stop":
		return m, m.recView.StopCmd()

	case "analyze":
		return m, m.recView.AnalyzeCmd()

	case "reset":
		return m, m.recView.ResetCmd()

	case "history:refresh", "history:weekly":
		m.activeTab = tabHistory
		m.status = "history refreshed"
		return m, m.histView.Refresh()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.recView, _ = m.recView.Update(sz)
	m.histView, _ = m.histView.Update(sz)
}
