package out_test

import (
	"context"
	"strings"
	"testing"
	"time"

	hookdto "studytrack/internal/modules/hook/dto"
	trackerout "studytrack/internal/modules/tracker/adapter/out"
	"studytrack/internal/modules/tracker/domain"
	"studytrack/internal/platform/logging"
)

type fakeHooks struct {
	got     []hookdto.DayClosedInput
	results []hookdto.DispatchResult
}

func (f *fakeHooks) List(context.Context) ([]hookdto.HookInfo, error)       { return nil, nil }
func (f *fakeHooks) Doctor(context.Context) ([]hookdto.DoctorResult, error) { return nil, nil }
func (f *fakeHooks) DispatchDayClosed(_ context.Context, in hookdto.DayClosedInput) ([]hookdto.DispatchResult, error) {
	f.got = append(f.got, in)
	return f.results, nil
}

func TestHookNotifierForwardsSummary(t *testing.T) {
	t.Parallel()
	hooks := &fakeHooks{results: []hookdto.DispatchResult{{Name: "daylog", Accepted: true}}}
	notifier := trackerout.NewHookNotifier(hooks, logging.Discard())
	summary := domain.DaySummary{
		UserID:   "u1",
		Date:     "2024-01-01",
		Total:    90,
		Subjects: []domain.SubjectTotal{{SubjectID: 1, Name: "Math", Tag: "수학", Seconds: 90}},
		Archived: []domain.Session{{ID: "s1"}},
		ClosedAt: time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
	}
	if err := notifier.DayClosed(context.Background(), summary); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(hooks.got) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(hooks.got))
	}
	in := hooks.got[0]
	if in.Date != "2024-01-01" || in.TotalSeconds != 90 || in.Archived != 1 || len(in.Subjects) != 1 || in.Subjects[0].Name != "Math" {
		t.Fatalf("unexpected dispatch input %+v", in)
	}

	hooks.results = []hookdto.DispatchResult{{Name: "daylog", Error: "boom"}}
	err := notifier.DayClosed(context.Background(), summary)
	if err == nil || !strings.Contains(err.Error(), "daylog") {
		t.Fatalf("expected failing hook to be reported, got %v", err)
	}
}
