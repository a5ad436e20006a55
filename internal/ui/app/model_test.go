package app

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	hookdto "studytrack/internal/modules/hook/dto"
	trackerdto "studytrack/internal/modules/tracker/dto"
	"studytrack/internal/ui/components"
)

type fakeTracker struct {
	created   []trackerdto.CreateSubjectInput
	goal      int64
	pausedAll bool
}

func (f *fakeTracker) Dashboard(context.Context) (trackerdto.Dashboard, error) {
	return trackerdto.Dashboard{Date: "2025-03-01", Active: -1}, nil
}
func (f *fakeTracker) CreateSubject(_ context.Context, in trackerdto.CreateSubjectInput) (trackerdto.SubjectView, error) {
	f.created = append(f.created, in)
	return trackerdto.SubjectView{ID: 1, Name: in.Name, Tag: in.Tag}, nil
}
func (f *fakeTracker) DeleteSubject(context.Context, int) (trackerdto.SubjectView, error) {
	return trackerdto.SubjectView{}, nil
}
func (f *fakeTracker) StartTimer(context.Context, int) error         { return nil }
func (f *fakeTracker) PauseTimer(context.Context, int) (bool, error) { return true, nil }
func (f *fakeTracker) PauseAll(context.Context) (bool, error) {
	f.pausedAll = true
	return true, nil
}
func (f *fakeTracker) ResetTimer(context.Context, int) error { return nil }
func (f *fakeTracker) SetDailyGoal(_ context.Context, in trackerdto.SetGoalInput) error {
	if in.Seconds <= 0 {
		return errors.New("invalid goal")
	}
	f.goal = in.Seconds
	return nil
}
func (f *fakeTracker) Stats(context.Context) (trackerdto.StatsOutput, error) {
	return trackerdto.StatsOutput{}, nil
}
func (f *fakeTracker) SessionsForDate(context.Context, string) ([]trackerdto.SessionOutput, error) {
	return nil, nil
}
func (f *fakeTracker) Heatmap(context.Context, trackerdto.HeatmapInput) (trackerdto.HeatmapOutput, error) {
	return trackerdto.HeatmapOutput{}, nil
}
func (f *fakeTracker) CheckRollover(context.Context) (trackerdto.RolloverOutput, error) {
	return trackerdto.RolloverOutput{}, nil
}
func (f *fakeTracker) Resume(context.Context) (trackerdto.RolloverOutput, error) {
	return trackerdto.RolloverOutput{}, nil
}

type fakeHooks struct{}

func (fakeHooks) List(context.Context) ([]hookdto.HookInfo, error)       { return nil, nil }
func (fakeHooks) Doctor(context.Context) ([]hookdto.DoctorResult, error) { return nil, nil }

func runPalette(t *testing.T, m Model, input string) (Model, tea.Msg) {
	t.Helper()
	next, cmd := m.Update(components.PaletteSubmitMsg{Input: input})
	model := next.(Model)
	if cmd == nil {
		return model, nil
	}
	return model, cmd()
}

func TestPaletteSubjectAddCallsTracker(t *testing.T) {
	t.Parallel()
	tracker := &fakeTracker{}
	m := NewModel("default", []string{"국어"}, tracker, fakeHooks{})

	_, msg := runPalette(t, m, "subject:add 국어 독서 연습")
	done, ok := msg.(commandDoneMsg)
	if !ok {
		t.Fatalf("expected commandDoneMsg, got %T", msg)
	}
	if done.err != nil {
		t.Fatalf("unexpected error: %v", done.err)
	}
	if len(tracker.created) != 1 || tracker.created[0].Name != "독서 연습" || tracker.created[0].Tag != "국어" {
		t.Fatalf("unexpected create input: %+v", tracker.created)
	}
}

func TestPaletteGoalSetConvertsMinutes(t *testing.T) {
	t.Parallel()
	tracker := &fakeTracker{}
	m := NewModel("default", nil, tracker, fakeHooks{})

	_, msg := runPalette(t, m, "goal:set 90")
	if done := msg.(commandDoneMsg); done.err != nil {
		t.Fatalf("unexpected error: %v", done.err)
	}
	if tracker.goal != 5400 {
		t.Fatalf("expected goal 5400s, got %d", tracker.goal)
	}
}

func TestPaletteRejectsBadInput(t *testing.T) {
	t.Parallel()
	m := NewModel("default", nil, &fakeTracker{}, fakeHooks{})

	cases := map[string]string{
		"goal:set abc":   "invalid minutes",
		"subject:add x":  "usage: subject:add <tag> <name>",
		"timer:reset":    "no subject selected",
		"does:not-exist": "unknown command: does:not-exist",
	}
	for input, want := range cases {
		next, msg := runPalette(t, m, input)
		if msg != nil {
			t.Fatalf("%q: expected no command, got %T", input, msg)
		}
		if next.status != want {
			t.Fatalf("%q: expected status %q, got %q", input, want, next.status)
		}
	}
}

func TestPauseKeyPausesAll(t *testing.T) {
	t.Parallel()
	tracker := &fakeTracker{}
	m := NewModel("default", nil, tracker, fakeHooks{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	done, ok := cmd().(commandDoneMsg)
	if !ok || done.status != "paused" {
		t.Fatalf("unexpected result: %+v", done)
	}
	if !tracker.pausedAll {
		t.Fatalf("expected PauseAll to be called")
	}
}
