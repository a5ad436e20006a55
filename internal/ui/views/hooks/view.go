package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hookdto "studytrack/internal/modules/hook/dto"
	"studytrack/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the hook use-case.
type Port interface {
	List(ctx context.Context) ([]hookdto.HookInfo, error)
	Doctor(ctx context.Context) ([]hookdto.DoctorResult, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type HooksLoadedMsg struct {
	Hooks []hookdto.HookInfo
	Err   error
}

type DoctorDoneMsg struct {
	Results []hookdto.DoctorResult
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type hookItem struct{ hook hookdto.HookInfo }

func (i hookItem) Title() string {
	if !i.hook.Enabled {
		return i.hook.Name + " (disabled)"
	}
	return i.hook.Name
}
func (i hookItem) Description() string {
	return i.hook.Version + "  " + strings.Join(i.hook.Events, ",")
}
func (i hookItem) FilterValue() string { return i.hook.Name }

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the self-contained Bubble Tea model for the Hooks tab.
type Model struct {
	port    Port
	list    list.Model
	output  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Hooks"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	vp.SetContent(theme.Muted.Render("d: run doctor"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, output: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return m.loadHooksCmd()
}

// Filtering reports whether the hook list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// RunDoctor checks every installed hook; used by the command palette.
func (m *Model) RunDoctor() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.doctorCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)
		m.output.Width = m.width - m.width*4/10 - 4
		m.output.Height = m.height - 4

	case HooksLoadedMsg:
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error loading hooks: " + msg.Err.Error()))
			return m, nil
		}
		items := make([]list.Item, len(msg.Hooks))
		for i, h := range msg.Hooks {
			items[i] = hookItem{hook: h}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case DoctorDoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
		} else {
			m.output.SetContent(renderDoctor(msg.Results))
		}
		m.output.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		if msg.String() == "d" && !m.Filtering() {
			cmds = append(cmds, m.RunDoctor())
			return m, tea.Batch(cmds...)
		}
	}

	var lCmd, vCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	m.output, vCmd = m.output.Update(msg)
	cmds = append(cmds, lCmd, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Checking hooks…")
	}
	listW := m.width * 4 / 10
	detailW := m.width - listW
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Surface1).
		Background(theme.Mantle).Width(max(detailW-2, 10)).Height(max(m.height-2, 1)).
		Render(m.output.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func renderDoctor(results []hookdto.DoctorResult) string {
	if len(results) == 0 {
		return theme.Muted.Render("no hooks installed")
	}
	var sb strings.Builder
	for _, r := range results {
		status := theme.Good.Render("ok")
		if r.Error != "" {
			status = theme.Hot.Render("fail")
		}
		sb.WriteString(fmt.Sprintf("%s  %s\n", theme.Title.Render(r.Name), status))
		sb.WriteString(fmt.Sprintf("  checksum=%t reachable=%t lifecycle=%t\n", r.ChecksumValid, r.BinaryReachable, r.LifecycleOK))
		if r.Error != "" {
			sb.WriteString("  " + theme.Muted.Render(r.Error) + "\n")
		}
	}
	return sb.String()
}

func (m Model) loadHooksCmd() tea.Cmd {
	return func() tea.Msg {
		hooks, err := m.port.List(context.Background())
		return HooksLoadedMsg{Hooks: hooks, Err: err}
	}
}

func (m Model) doctorCmd() tea.Cmd {
	return func() tea.Msg {
		results, err := m.port.Doctor(context.Background())
		return DoctorDoneMsg{Results: results, Err: err}
	}
}
