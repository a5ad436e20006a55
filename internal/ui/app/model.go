package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hookdto "studytrack/internal/modules/hook/dto"
	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/ui/components"
	"studytrack/internal/ui/theme"
	heatmapview "studytrack/internal/ui/views/heatmap"
	hooksview "studytrack/internal/ui/views/hooks"
	statsview "studytrack/internal/ui/views/stats"
	timersview "studytrack/internal/ui/views/timers"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type trackerPort interface {
	Dashboard(ctx context.Context) (trackerdto.Dashboard, error)
	CreateSubject(ctx context.Context, input trackerdto.CreateSubjectInput) (trackerdto.SubjectView, error)
	DeleteSubject(ctx context.Context, subjectID int) (trackerdto.SubjectView, error)
	StartTimer(ctx context.Context, subjectID int) error
	PauseTimer(ctx context.Context, subjectID int) (bool, error)
	PauseAll(ctx context.Context) (bool, error)
	ResetTimer(ctx context.Context, subjectID int) error
	SetDailyGoal(ctx context.Context, input trackerdto.SetGoalInput) error
	Stats(ctx context.Context) (trackerdto.StatsOutput, error)
	SessionsForDate(ctx context.Context, date string) ([]trackerdto.SessionOutput, error)
	Heatmap(ctx context.Context, input trackerdto.HeatmapInput) (trackerdto.HeatmapOutput, error)
	CheckRollover(ctx context.Context) (trackerdto.RolloverOutput, error)
	Resume(ctx context.Context) (trackerdto.RolloverOutput, error)
}

type hookPort interface {
	List(ctx context.Context) ([]hookdto.HookInfo, error)
	Doctor(ctx context.Context) ([]hookdto.DoctorResult, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimers tabID = iota
	tabStats
	tabHeatmap
	tabHooks
	tabCount
)

var tabLabels = [tabCount]string{
	"Timers", "Stats", "Heatmap", "Hooks",
}

// ─── async messages ───────────────────────────────────────────────────────────

type tickMsg time.Time

type rolloverMsg struct {
	out trackerdto.RolloverOutput
	err error
}

type commandDoneMsg struct {
	status string
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Toggle  key.Binding
	Reset   key.Binding
	Pause   key.Binding
	Doctor  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "start/pause")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset timer")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause all")),
		Doctor:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "hook doctor")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Toggle, k.Reset, k.Pause},
		{k.Doctor},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the once-a-second
// refresh, the global help overlay, and the command palette.
type Model struct {
	userName string

	tracker trackerPort
	hooks   hookPort

	timerView   timersview.Model
	statsView   statsview.Model
	heatmapView heatmapview.Model
	hookView    hooksview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(userName string, categories []string, tracker trackerPort, hooks hookPort) Model {
	var hookV hooksview.Model
	if hooks != nil {
		hookV = hooksview.New(hooks)
	} else {
		hookV = hooksview.New(nil)
	}
	return Model{
		userName:    userName,
		tracker:     tracker,
		hooks:       hooks,
		timerView:   timersview.New(tracker),
		statsView:   statsview.New(tracker),
		heatmapView: heatmapview.New(tracker, categories),
		hookView:    hookV,
		activeTab:   tabTimers,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.statsView.Init(),
		m.heatmapView.Init(),
		m.hookView.Init(),
		tick(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case tickMsg:
		cmds = append(cmds, tick(), m.timerView.Refresh())
		if m.activeTab == tabStats {
			cmds = append(cmds, m.statsView.Refresh())
		}
		return m, tea.Batch(cmds...)

	case tea.FocusMsg:
		return m, m.resumeCmd()

	case rolloverMsg:
		if msg.err != nil {
			m.status = "rollover check: " + msg.err.Error()
		} else if msg.out.Rolled {
			m.status = fmt.Sprintf("closed %s: %d sessions archived", msg.out.Previous, msg.out.Archived)
		}
		return m, m.refreshAll()

	case commandDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else {
			m.status = msg.status
		}
		return m, m.refreshAll()

	case timersview.DashboardLoadedMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd

	case timersview.ActionDoneMsg:
		if msg.Err != nil {
			m.status = msg.Action + " failed: " + msg.Err.Error()
		} else {
			m.status = msg.Subject + " " + msg.Action
		}
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, tea.Batch(cmd, m.statsView.Refresh())

	case statsview.LoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case heatmapview.LoadedMsg:
		var cmd tea.Cmd
		m.heatmapView, cmd = m.heatmapView.Update(msg)
		return m, cmd

	case hooksview.HooksLoadedMsg, hooksview.DoctorDoneMsg:
		var cmd tea.Cmd
		m.hookView, cmd = m.hookView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, m.refreshActive()
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, m.refreshActive()
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "p":
			return m, m.pauseAllCmd()
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimers:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabStats:
		m.statsView, tabCmd = m.statsView.Update(msg)
	case tabHeatmap:
		m.heatmapView, tabCmd = m.heatmapView.Update(msg)
	case tabHooks:
		m.hookView, tabCmd = m.hookView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
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
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimers:
		return m.timerView.View()
	case tabStats:
		return m.statsView.View()
	case tabHeatmap:
		return m.heatmapView.View()
	case tabHooks:
		return m.hookView.View()
	}
	return ""
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
	bar := "studytrack  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := theme.Muted.Render(m.userName) + "  " + m.status
	if running, ok := m.timerView.Running(); ok {
		left = theme.Hot.Render("● "+running.Name+" "+timersview.Clock(running.LiveSeconds)) + "  " + left
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
	selected, hasSelected := m.timerView.SelectedSubjectID()

	switch parts[0] {
	case "subject:add":
		if len(parts) < 3 {
			m.status = "usage: subject:add <tag> <name>"
			return m, nil
		}
		name := strings.Join(parts[2:], " ")
		return m, m.trackerCmd(func(ctx context.Context) (string, error) {
			s, err := m.tracker.CreateSubject(ctx, trackerdto.CreateSubjectInput{Name: name, Tag: parts[1]})
			return "added " + s.Name, err
		})

	case "subject:delete":
		if !hasSelected {
			m.status = "no subject selected"
			return m, nil
		}
		return m, m.trackerCmd(func(ctx context.Context) (string, error) {
			s, err := m.tracker.DeleteSubject(ctx, selected)
			return "deleted " + s.Name, err
		})

	case "timer:pause-all":
		return m, m.pauseAllCmd()

	case "timer:reset":
		if !hasSelected {
			m.status = "no subject selected"
			return m, nil
		}
		return m, m.trackerCmd(func(ctx context.Context) (string, error) {
			return "timer reset", m.tracker.ResetTimer(ctx, selected)
		})

	case "goal:set":
		if len(parts) < 2 {
			m.status = "usage: goal:set <minutes>"
			return m, nil
		}
		minutes, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			m.status = "invalid minutes"
			return m, nil
		}
		return m, m.trackerCmd(func(ctx context.Context) (string, error) {
			return fmt.Sprintf("daily goal %d min", minutes), m.tracker.SetDailyGoal(ctx, trackerdto.SetGoalInput{Seconds: minutes * 60})
		})

	case "heatmap:tag":
		if len(parts) < 2 {
			m.status = "usage: heatmap:tag <tag>"
			return m, nil
		}
		m.activeTab = tabHeatmap
		return m, m.heatmapView.SetTag(parts[1])

	case "heatmap:subject":
		if !hasSelected {
			m.status = "no subject selected"
			return m, nil
		}
		m.activeTab = tabHeatmap
		return m, m.heatmapView.SetSubject(selected)

	case "rollover:check":
		return m, func() tea.Msg {
			out, err := m.tracker.CheckRollover(context.Background())
			return rolloverMsg{out: out, err: err}
		}

	case "hook:doctor":
		m.activeTab = tabHooks
		return m, m.hookView.RunDoctor()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabTimers:
		return m.timerView.Filtering()
	case tabHooks:
		return m.hookView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.statsView, _ = m.statsView.Update(sz)
	m.heatmapView, _ = m.heatmapView.Update(sz)
	m.hookView, _ = m.hookView.Update(sz)
}

func (m Model) refreshActive() tea.Cmd {
	switch m.activeTab {
	case tabStats:
		return m.statsView.Refresh()
	case tabHeatmap:
		return m.heatmapView.Refresh()
	}
	return nil
}

func (m Model) refreshAll() tea.Cmd {
	return tea.Batch(m.timerView.Refresh(), m.statsView.Refresh(), m.heatmapView.Refresh())
}

// ─── async commands ───────────────────────────────────────────────────────────

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Resume(context.Background())
		return rolloverMsg{out: out, err: err}
	}
}

func (m Model) pauseAllCmd() tea.Cmd {
	return m.trackerCmd(func(ctx context.Context) (string, error) {
		paused, err := m.tracker.PauseAll(ctx)
		if !paused {
			return "no timer running", err
		}
		return "paused", err
	})
}

func (m Model) trackerCmd(run func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := run(context.Background())
		return commandDoneMsg{status: status, err: err}
	}
}
