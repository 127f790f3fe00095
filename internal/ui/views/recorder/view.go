package recorder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "stridekit/internal/modules/session/dto"
	"stridekit/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type SessionPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SnapshotOutput, error)
	Stop(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Analyze(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Reset(ctx context.Context) (sessiondto.SnapshotOutput, error)
	Current(ctx context.Context) sessiondto.SnapshotOutput
}

// ─── messages ────────────────────────────────────────────────────────────────

// SnapshotMsg carries a coordinator snapshot into the view.
type SnapshotMsg struct {
	Snapshot sessiondto.SnapshotOutput
}

// CommandDoneMsg reports the synchronous outcome of a start/stop/analyze/reset.
type CommandDoneMsg struct {
	Action   string
	Snapshot sessiondto.SnapshotOutput
	Err      error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     SessionPort
	defaults sessiondto.StartInput
	snap     sessiondto.SnapshotOutput
	spinner  spinner.Model
	notice   string
	width    int
	height   int
}

func New(port SessionPort, defaults sessiondto.StartInput) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, defaults: defaults, spinner: sp, snap: sessiondto.SnapshotOutput{Phase: "Idle", UIState: "Idle"}}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case SnapshotMsg:
		if msg.Snapshot.Seq >= m.snap.Seq {
			m.snap = msg.Snapshot
		}

	case CommandDoneMsg:
		if msg.Err != nil {
			m.notice = msg.Action + ": " + msg.Err.Error()
		} else {
			m.notice = ""
		}
		if msg.Snapshot.Seq >= m.snap.Seq {
			m.snap = msg.Snapshot
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	s := m.snap
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recorder") + "\n\n")
	sb.WriteString(theme.Muted.Render("state:    ") + m.renderState() + "\n")
	sb.WriteString(theme.Muted.Render("timer:    ") + formatElapsed(s.ElapsedSeconds) + "\n")
	if s.ActivityType != "" {
		sb.WriteString(theme.Muted.Render("activity: ") + s.ActivityType + "\n")
	}
	if s.SessionID != "" {
		sb.WriteString(theme.Muted.Render("session:  ") + s.SessionID + "\n")
	}
	if s.IsLoading || s.ProgressLabel != "" {
		line := s.ProgressLabel
		if s.IsLoading {
			line = m.spinner.View() + " " + line
		}
		sb.WriteString(theme.Muted.Render("progress: ") + line + "\n")
	}

	result := s.ResultText
	if result == "" {
		result = theme.Muted.Render("No result yet")
	} else if s.LastError != "" {
		result = theme.Bad.Render(result)
	} else if !s.IsLoading {
		result = theme.Ok.Render(result)
	}
	resultPane := theme.Pane.Width(max(m.width-6, 30)).Render(result)

	var hint string
	switch s.Phase {
	case "Idle":
		hint = "s: start  r: reset"
	case "Recording":
		hint = "x: stop  r: reset"
	default:
		if !s.AutoAnalyze && !s.AnalysisAsked {
			hint = "a: analyze  r: reset"
		} else {
			hint = "r: reset"
		}
	}
	out := sb.String() + "\n" + resultPane + "\n\n" + theme.Muted.Render(hint)
	if m.notice != "" {
		out += "\n" + theme.Hot.Render(m.notice)
	}
	return out
}

// Active reports whether a session is in flight.
func (m Model) Active() bool { return m.snap.Active() }

// Snapshot returns the last snapshot shown.
func (m Model) Snapshot() sessiondto.SnapshotOutput { return m.snap }

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) StartCmd(input sessiondto.StartInput) tea.Cmd {
	if input.ActivityType == "" {
		input.ActivityType = m.defaults.ActivityType
	}
	if input.DurationSeconds == 0 {
		input.DurationSeconds = m.defaults.DurationSeconds
	}
	return func() tea.Msg {
		snap, err := m.port.Start(context.Background(), input)
		return CommandDoneMsg{Action: "start", Snapshot: snap, Err: err}
	}
}

func (m Model) StopCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Stop(context.Background())
		return CommandDoneMsg{Action: "stop", Snapshot: snap, Err: err}
	}
}

func (m Model) AnalyzeCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Analyze(context.Background())
		return CommandDoneMsg{Action: "analyze", Snapshot: snap, Err: err}
	}
}

func (m Model) ResetCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.port.Reset(context.Background())
		return CommandDoneMsg{Action: "reset", Snapshot: snap, Err: err}
	}
}

// WaitForSnapshot blocks on the watch channel and turns the next snapshot into
// a message. It returns nil once the channel is closed.
func WaitForSnapshot(ch <-chan sessiondto.SnapshotOutput) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderState() string {
	switch m.snap.Phase {
	case "Recording":
		return theme.Hot.Render("● Recording")
	case "Analyzing":
		return theme.Warn.Render("Analyzing")
	default:
		return theme.Ok.Render(m.snap.UIState)
	}
}

func formatElapsed(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
