package heatmap

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/ui/theme"
	"studytrack/internal/ui/views/timers"
)

type HeatmapPort interface {
	Heatmap(ctx context.Context, input trackerdto.HeatmapInput) (trackerdto.HeatmapOutput, error)
}

type LoadedMsg struct {
	Output trackerdto.HeatmapOutput
	Err    error
}

// Model renders one tag's or one subject's heatmap. tab cycles tags.
type Model struct {
	port    HeatmapPort
	tags    []string
	tagIdx  int
	subject int
	out     trackerdto.HeatmapOutput
	err     error
	width   int
	height  int
}

func New(port HeatmapPort, tags []string) Model {
	return Model{port: port, tags: tags}
}

func (m Model) Init() tea.Cmd {
	return m.Refresh()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case LoadedMsg:
		m.out = msg.Output
		m.err = msg.Err

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			return m.cycle(-1)
		case "right", "l":
			return m.cycle(1)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return theme.Bad.Render("heatmap: " + m.err.Error())
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Heatmap "+m.out.Label) + "  " +
		theme.Muted.Render(m.out.From+" → "+m.out.To) + "\n\n")

	weeks := m.out.Weeks
	// Keep the most recent weeks when the terminal is narrow.
	if fit := (m.width - 6) / 2; fit > 0 && len(weeks) > fit {
		weeks = weeks[len(weeks)-fit:]
	}
	for d := 0; d < 7; d++ {
		label := ""
		if d%2 == 0 {
			label = m.out.Rows[d]
		}
		sb.WriteString(theme.Muted.Render(padRight(label, 4)))
		for _, week := range weeks {
			sb.WriteString(renderCell(week[d]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + theme.Muted.Render("total ") + timers.Clock(m.out.Total) + "   ")
	sb.WriteString(theme.Muted.Render("less "))
	for _, c := range theme.HeatLevels {
		sb.WriteString(lipgloss.NewStyle().Foreground(c).Render("■ "))
	}
	sb.WriteString(theme.Muted.Render("more"))
	sb.WriteString("\n\n" + theme.Muted.Render("←/→: switch tag"))
	return lipgloss.NewStyle().Padding(0, 1).Render(sb.String())
}

// SetTag shows the heatmap for tag.
func (m *Model) SetTag(tag string) tea.Cmd {
	m.subject = 0
	for i, t := range m.tags {
		if t == tag {
			m.tagIdx = i
			return m.Refresh()
		}
	}
	m.tags = append(m.tags, tag)
	m.tagIdx = len(m.tags) - 1
	return m.Refresh()
}

// SetSubject shows the heatmap for one subject.
func (m *Model) SetSubject(subjectID int) tea.Cmd {
	m.subject = subjectID
	return m.Refresh()
}

// Refresh reloads the current selection.
func (m Model) Refresh() tea.Cmd {
	input := trackerdto.HeatmapInput{SubjectID: m.subject}
	if m.subject == 0 {
		if len(m.tags) == 0 {
			return nil
		}
		input.Tag = m.tags[m.tagIdx]
	}
	return func() tea.Msg {
		out, err := m.port.Heatmap(context.Background(), input)
		return LoadedMsg{Output: out, Err: err}
	}
}

func (m Model) cycle(step int) (Model, tea.Cmd) {
	if len(m.tags) == 0 {
		return m, nil
	}
	m.subject = 0
	m.tagIdx = (m.tagIdx + step + len(m.tags)) % len(m.tags)
	return m, m.Refresh()
}

func renderCell(c trackerdto.HeatCell) string {
	if c.Future || c.Date == "" {
		return "  "
	}
	level := c.Level
	if level < 0 || level >= len(theme.HeatLevels) {
		level = 0
	}
	return lipgloss.NewStyle().Foreground(theme.HeatLevels[level]).Render("■ ")
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
