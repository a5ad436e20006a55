package domain_test

import (
	"testing"

	"studytrack/internal/modules/tracker/domain"
	"studytrack/internal/platform/calendar"
)

func sessionOn(date, subject string, seconds int64) domain.Session {
	return domain.Session{ID: date + "-" + subject, Subject: subject, Tag: "수학", Duration: seconds, Date: date}
}

func TestStreakStopsAtFirstDayBelowThreshold(t *testing.T) {
	t.Parallel()
	cal := calendar.Default()
	m := domain.NewModel()
	m.Sessions = []domain.Session{
		sessionOn("2024-01-01", "Math", 3600),
		sessionOn("2024-01-02", "Math", 59), // gap day, below 60s
		sessionOn("2024-01-03", "Math", 60),
		sessionOn("2024-01-04", "Math", 120),
		sessionOn("2024-01-05", "Math", 600),
	}
	if got := domain.Streak(m, "2024-01-05", cal, 60); got != 3 {
		t.Fatalf("expected streak 3, got %d", got)
	}
}

func TestStreakStartsYesterdayWhenTodayHasNotQualified(t *testing.T) {
	t.Parallel()
	cal := calendar.Default()
	m := domain.NewModel()
	m.Sessions = []domain.Session{
		sessionOn("2024-01-03", "Math", 300),
		sessionOn("2024-01-04", "Math", 300),
	}
	m.SubjectTimers["Math"] = 30
	if got := domain.Streak(m, "2024-01-05", cal, 60); got != 2 {
		t.Fatalf("expected streak 2 from yesterday, got %d", got)
	}
	m.SubjectTimers["Math"] = 90
	if got := domain.Streak(m, "2024-01-05", cal, 60); got != 3 {
		t.Fatalf("expected live time to extend streak to 3, got %d", got)
	}
}

func TestStreakIsCapped(t *testing.T) {
	t.Parallel()
	cal := calendar.Default()
	m := domain.NewModel()
	day := "2024-12-31"
	for i := 0; i < 400; i++ {
		m.Sessions = append(m.Sessions, sessionOn(day, "Math", 100))
		day = cal.AddDays(day, -1)
	}
	if got := domain.Streak(m, "2024-12-31", cal, 60); got != domain.MaxStreakDays {
		t.Fatalf("expected streak capped at %d, got %d", domain.MaxStreakDays, got)
	}
}

func TestGoalProgressStates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		total     int64
		goal      int64
		state     domain.GoalState
		ratio     float64
		remaining int64
		exceeded  int64
		text      string
	}{
		{"no goal", 500, 0, domain.GoalNone, 0, 0, 0, "no goal"},
		{"in progress", 900, 3600, domain.GoalInProgress, 0.25, 2700, 0, "45m 0s remaining"},
		{"exactly met", 3600, 3600, domain.GoalAchieved, 1, 0, 0, "achieved +0s"},
		{"exceeded", 4000, 3600, domain.GoalAchieved, 1, 0, 400, "achieved +6m 40s"},
	}
	for _, tc := range tests {
		got := domain.Progress(tc.total, tc.goal)
		if got.State != tc.state || got.Ratio != tc.ratio || got.Remaining != tc.remaining || got.Exceeded != tc.exceeded {
			t.Fatalf("%s: unexpected progress %+v", tc.name, got)
		}
		if got.Text() != tc.text {
			t.Fatalf("%s: expected text %q, got %q", tc.name, tc.text, got.Text())
		}
	}
}

func TestComputeStatsCountsLiveTimeOnceAndSkipsFutureSessions(t *testing.T) {
	t.Parallel()
	cal := calendar.Default()
	m := domain.NewModel()
	m.Sessions = []domain.Session{
		sessionOn("2024-01-31", "Math", 1000), // previous month, same week
		sessionOn("2024-02-01", "Math", 200),
		sessionOn("2024-02-02", "Math", 50),
		sessionOn("2024-02-03", "Math", 7000), // future: clock moved back
		sessionOn("2024-01-28", "Math", 9000), // previous week
	}
	m.SubjectTimers = map[string]int64{"Math": 30, "English": 20}
	m.DailyGoal = 100

	stats := domain.ComputeStats(m, "2024-02-02", cal, 60)
	if stats.Today != 100 {
		t.Fatalf("expected today 100, got %d", stats.Today)
	}
	// week of 2024-02-02 starts Monday 2024-01-29
	if stats.Week != 1000+200+50+50 {
		t.Fatalf("expected week 1300, got %d", stats.Week)
	}
	if stats.Month != 200+50+50 {
		t.Fatalf("expected month 300, got %d", stats.Month)
	}
	if stats.Goal.State != domain.GoalAchieved {
		t.Fatalf("expected goal achieved, got %s", stats.Goal.State)
	}
	if stats.Streak != 3 {
		t.Fatalf("expected streak 3 (01-31..02-02), got %d", stats.Streak)
	}
}

func TestFormatting(t *testing.T) {
	t.Parallel()
	if got := domain.FormatDuration(3725); got != "1h 2m 5s" {
		t.Fatalf("unexpected duration %q", got)
	}
	if got := domain.FormatDuration(59); got != "59s" {
		t.Fatalf("unexpected duration %q", got)
	}
	if got := domain.FormatClock(3725); got != "01:02:05" {
		t.Fatalf("unexpected clock %q", got)
	}
}
