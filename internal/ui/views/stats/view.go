package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/ui/theme"
	"studytrack/internal/ui/views/timers"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatsPort interface {
	Stats(ctx context.Context) (trackerdto.StatsOutput, error)
	SessionsForDate(ctx context.Context, date string) ([]trackerdto.SessionOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Stats    trackerdto.StatsOutput
	Sessions []trackerdto.SessionOutput
	Err      error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     StatsPort
	bar      progress.Model
	sessions viewport.Model
	renderer *glamour.TermRenderer
	list     []trackerdto.SessionOutput
	stats    trackerdto.StatsOutput
	err      error
	width    int
	height   int
}

func New(port StatsPort) Model {
	bar := progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Green)))
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text)
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Model{port: port, bar: bar, sessions: vp, renderer: r}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = max(m.width-8, 10)
		m.sessions.Width = max(m.width-4, 10)
		m.sessions.Height = max(m.height-12, 1)
		m.sessions.SetContent(m.renderSessions())
		return m, nil

	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.stats = msg.Stats
		m.list = msg.Sessions
		m.sessions.SetContent(m.renderSessions())
		return m, nil
	}

	var cmd tea.Cmd
	m.sessions, cmd = m.sessions.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Bad.Render("stats: " + m.err.Error())
	}
	s := m.stats
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Stats "+s.Date) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%s   %s%s   %s%s   %s%d days\n\n",
		theme.Muted.Render("today "), timers.Clock(s.Today),
		theme.Muted.Render("week "), timers.Clock(s.Week),
		theme.Muted.Render("month "), timers.Clock(s.Month),
		theme.Muted.Render("streak "), s.Streak,
	))
	if s.Goal.Goal > 0 {
		sb.WriteString(m.bar.ViewAs(min(s.Goal.Ratio, 1)) + "\n")
		text := s.Goal.Text
		if s.Goal.State == "achieved" {
			text = theme.Good.Render(text)
		}
		sb.WriteString(text + "\n\n")
	} else {
		sb.WriteString(theme.Muted.Render("no daily goal set") + "\n\n")
	}
	sb.WriteString(theme.Title.Render("Sessions") + "\n")
	sb.WriteString(m.sessions.View())
	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}

// Refresh reloads today's stats and sessions.
func (m Model) Refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		st, err := m.port.Stats(ctx)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		sessions, err := m.port.SessionsForDate(ctx, "")
		return LoadedMsg{Stats: st, Sessions: sessions, Err: err}
	}
}

func (m Model) renderSessions() string {
	if len(m.list) == 0 {
		return theme.Muted.Render("no sessions archived today")
	}
	md := SessionsMarkdown(m.list)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// SessionsMarkdown renders sessions as a markdown table.
func SessionsMarkdown(sessions []trackerdto.SessionOutput) string {
	var sb strings.Builder
	sb.WriteString("| ended | subject | tag | time |\n|---|---|---|---|\n")
	for _, s := range sessions {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			s.EndTime.Local().Format("15:04"),
			strings.ReplaceAll(s.Subject, "|", "\\|"),
			s.Tag,
			timers.Clock(s.Duration),
		))
	}
	return sb.String()
}
