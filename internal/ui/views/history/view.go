package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	measurementdto "stridekit/internal/modules/measurement/dto"
	apperrors "stridekit/internal/platform/errors"
	"stridekit/internal/ui/theme"
)

const listLimit = 200

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	List(ctx context.Context, activity, completeness string, limit int) ([]measurementdto.MeasurementOutput, error)
	Insights(ctx context.Context, measurementID string) ([]measurementdto.InsightOutput, error)
	Weekly(ctx context.Context) (measurementdto.WeeklyOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type MeasurementsLoadedMsg struct {
	Items  []measurementdto.MeasurementOutput
	Weekly measurementdto.WeeklyOutput
	Err    error
}

type InsightsLoadedMsg struct {
	MeasurementID string
	Insights      []measurementdto.InsightOutput
	Err           error
}

// ─── list item ───────────────────────────────────────────────────────────────

type measurementItem struct {
	m measurementdto.MeasurementOutput
}

func (i measurementItem) Title() string {
	return fmt.Sprintf("%s  %s", i.m.RecordedAt.Local().Format("2006-01-02 15:04"), i.m.ActivityType)
}

func (i measurementItem) Description() string {
	if score, ok := i.m.Parameters["walk_score"]; ok {
		return fmt.Sprintf("%s  %ds  score %.1f", i.m.Completeness, i.m.DurationSeconds, score)
	}
	return fmt.Sprintf("%s  %ds", i.m.Completeness, i.m.DurationSeconds)
}

func (i measurementItem) FilterValue() string {
	return i.m.ActivityType + " " + i.m.Completeness + " " + strings.Join(i.m.Tags, " ")
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     HistoryPort
	list     list.Model
	selected measurementdto.MeasurementOutput
	insights []measurementdto.InsightOutput
	weekly   measurementdto.WeeklyOutput
	hasWeek  bool
	preview  viewport.Model
	spinner  spinner.Model
	loading  bool
	width    int
	height   int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case MeasurementsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "History: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "History"
		m.weekly = msg.Weekly
		m.hasWeek = msg.Weekly.Walks > 0
		items := make([]list.Item, len(msg.Items))
		for i, item := range msg.Items {
			items[i] = measurementItem{m: item}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Items) > 0 {
			m.selected = msg.Items[0]
			cmds = append(cmds, m.loadInsightsCmd(msg.Items[0].MeasurementID))
		}
		m.preview.SetContent(m.renderDetail())

	case InsightsLoadedMsg:
		if msg.Err == nil && msg.MeasurementID == m.selected.MeasurementID {
			m.insights = msg.Insights
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(measurementItem); ok {
				m.selected = item.m
				m.insights = nil
				m.preview.SetContent(m.renderDetail())
				cmds = append(cmds, m.loadInsightsCmd(item.m.MeasurementID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Refresh reloads the measurement list and the weekly score.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return MeasurementsLoadedMsg{Err: fmt.Errorf("history is not configured")}
		}
		ctx := context.Background()
		items, err := m.port.List(ctx, "", "", listLimit)
		if err != nil {
			return MeasurementsLoadedMsg{Err: err}
		}
		weekly, err := m.port.Weekly(ctx)
		if err != nil && !errors.Is(err, apperrors.ErrNoData) {
			return MeasurementsLoadedMsg{Err: err}
		}
		return MeasurementsLoadedMsg{Items: items, Weekly: weekly}
	}
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	var sb strings.Builder
	if m.hasWeek {
		sb.WriteString(theme.Title.Render(fmt.Sprintf("Weekly walk score: %.1f", m.weekly.Average)))
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("  (%d walks)", m.weekly.Walks)) + "\n\n")
	}
	d := m.selected
	if d.MeasurementID == "" {
		sb.WriteString(theme.Muted.Render("No measurements recorded yet"))
		return sb.String()
	}
	sb.WriteString(theme.Title.Render(d.ActivityType+" "+d.Completeness) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:       ") + d.MeasurementID + "\n")
	sb.WriteString(theme.Muted.Render("session:  ") + d.SessionID + "\n")
	sb.WriteString(theme.Muted.Render("recorded: ") + d.RecordedAt.Local().Format("2006-01-02 15:04:05") + "\n")
	sb.WriteString(fmt.Sprintf("%s%ds\n", theme.Muted.Render("duration: "), d.DurationSeconds))
	if d.StepCount != nil {
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("steps:    "), *d.StepCount))
	}
	if d.Note != "" {
		sb.WriteString(theme.Muted.Render("note:     ") + d.Note + "\n")
	}
	if len(d.Tags) > 0 {
		sb.WriteString(theme.Muted.Render("tags:     ") + strings.Join(d.Tags, ", ") + "\n")
	}
	if d.Error != "" {
		sb.WriteString(theme.Bad.Render("error:    "+d.Error) + "\n")
	}
	if len(m.insights) > 0 {
		sb.WriteString("\n" + theme.Title.Render("Parameters") + "\n")
		for _, in := range m.insights {
			sb.WriteString(theme.Score(in.Score).Render("● ") + in.Summary + "\n")
		}
	}
	return sb.String()
}

func (m Model) loadInsightsCmd(id string) tea.Cmd {
	return func() tea.Msg {
		insights, err := m.port.Insights(context.Background(), id)
		return InsightsLoadedMsg{MeasurementID: id, Insights: insights, Err: err}
	}
}
