package timers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type TimerPort interface {
	Dashboard(ctx context.Context) (trackerdto.Dashboard, error)
	StartTimer(ctx context.Context, subjectID int) error
	PauseTimer(ctx context.Context, subjectID int) (bool, error)
	ResetTimer(ctx context.Context, subjectID int) error
}

// ─── messages ────────────────────────────────────────────────────────────────

type DashboardLoadedMsg struct {
	Dashboard trackerdto.Dashboard
	Err       error
}

// ActionDoneMsg reports the outcome of a start, pause or reset.
type ActionDoneMsg struct {
	Action  string
	Subject string
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type subjectItem struct {
	subject trackerdto.SubjectView
}

func (i subjectItem) Title() string {
	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(i.subject.Color)).Render("■")
	title := dot + " " + i.subject.Name
	if i.subject.Running {
		title += " " + theme.Hot.Render("●")
	}
	return title
}

func (i subjectItem) Description() string {
	return fmt.Sprintf("#%s  %s", i.subject.Tag, Clock(i.subject.LiveSeconds))
}

func (i subjectItem) FilterValue() string { return i.subject.Name + " " + i.subject.Tag }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port      TimerPort
	list      list.Model
	spinner   spinner.Model
	dashboard trackerdto.Dashboard
	loading   bool
	err       error
	width     int
	height    int
}

func New(port TimerPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Subjects"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
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
		m.list.SetSize(m.width*4/10, m.height)

	case DashboardLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.dashboard = msg.Dashboard
		items := make([]list.Item, len(msg.Dashboard.Subjects))
		for i, s := range msg.Dashboard.Subjects {
			items[i] = subjectItem{subject: s}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case ActionDoneMsg:
		cmds = append(cmds, m.Refresh())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter", " ":
			if s, ok := m.selected(); ok {
				cmds = append(cmds, m.toggleCmd(s))
			}
		case "r":
			if s, ok := m.selected(); ok {
				cmds = append(cmds, m.resetCmd(s))
			}
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading timers…")
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
		Padding(1).
		Width(max(detailW-2, 10)).
		Height(max(m.height-2, 1)).
		Render(m.renderDetail())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Refresh reloads the dashboard.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		d, err := m.port.Dashboard(context.Background())
		return DashboardLoadedMsg{Dashboard: d, Err: err}
	}
}

// SelectedSubjectID returns the highlighted subject's ID, if any.
func (m Model) SelectedSubjectID() (int, bool) {
	s, ok := m.selected()
	return s.ID, ok
}

// Running returns the subject whose timer is running.
func (m Model) Running() (trackerdto.SubjectView, bool) {
	for _, s := range m.dashboard.Subjects {
		if s.Running {
			return s, true
		}
	}
	return trackerdto.SubjectView{}, false
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Clock renders seconds as HH:MM:SS.
func Clock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) selected() (trackerdto.SubjectView, bool) {
	if item, ok := m.list.SelectedItem().(subjectItem); ok {
		return item.subject, true
	}
	return trackerdto.SubjectView{}, false
}

func (m Model) renderDetail() string {
	if m.err != nil {
		return theme.Bad.Render(m.err.Error())
	}
	d := m.dashboard
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Today "+d.Date) + "\n\n")
	sb.WriteString(theme.Muted.Render("total:  ") + Clock(d.Stats.Today) + "\n")
	if d.Stats.Goal.Goal > 0 {
		sb.WriteString(theme.Muted.Render("goal:   ") + d.Stats.Goal.Text + "\n")
	}
	sb.WriteString(fmt.Sprintf("%s%d days\n\n", theme.Muted.Render("streak: "), d.Stats.Streak))

	s, ok := m.selected()
	if !ok {
		sb.WriteString(theme.Muted.Render("No subjects yet. Press : then subject:add <tag> <name>"))
		return sb.String()
	}
	clock := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Bold(true).Render(Clock(s.LiveSeconds))
	sb.WriteString(theme.Title.Render(s.Name) + "  " + theme.Muted.Render("#"+s.Tag) + "\n")
	sb.WriteString(clock + "\n")
	sb.WriteString(theme.Muted.Render("archived: ") + Clock(s.TotalSeconds) + "\n\n")
	if s.Running {
		sb.WriteString(theme.Hot.Render("running") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("enter: start/pause  r: reset"))
	return sb.String()
}

func (m Model) toggleCmd(s trackerdto.SubjectView) tea.Cmd {
	return func() tea.Msg {
		if s.Running {
			_, err := m.port.PauseTimer(context.Background(), s.ID)
			return ActionDoneMsg{Action: "paused", Subject: s.Name, Err: err}
		}
		err := m.port.StartTimer(context.Background(), s.ID)
		return ActionDoneMsg{Action: "started", Subject: s.Name, Err: err}
	}
}

func (m Model) resetCmd(s trackerdto.SubjectView) tea.Cmd {
	return func() tea.Msg {
		err := m.port.ResetTimer(context.Background(), s.ID)
		return ActionDoneMsg{Action: "reset", Subject: s.Name, Err: err}
	}
}
