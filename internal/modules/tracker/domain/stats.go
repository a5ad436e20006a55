package domain

import (
	"studytrack/internal/platform/calendar"
)

const (
	// MaxStreakDays bounds the streak lookback.
	MaxStreakDays = 365
	// DefaultStreakThreshold is the daily total, in seconds, that keeps a streak alive.
	DefaultStreakThreshold int64 = 60
)

type GoalState string

const (
	GoalNone       GoalState = "no_goal"
	GoalInProgress GoalState = "in_progress"
	GoalAchieved   GoalState = "achieved"
)

type GoalProgress struct {
	Goal      int64
	Total     int64
	Ratio     float64
	State     GoalState
	Remaining int64
	Exceeded  int64
}

// Text renders the progress line shown under the goal bar.
func (g GoalProgress) Text() string {
	switch g.State {
	case GoalAchieved:
		return "achieved +" + FormatDuration(g.Exceeded)
	case GoalInProgress:
		return FormatDuration(g.Remaining) + " remaining"
	default:
		return "no goal"
	}
}

type Stats struct {
	Date   string
	Today  int64
	Week   int64
	Month  int64
	Streak int
	Goal   GoalProgress
}

// LiveTotal sums unarchived accumulator seconds.
func LiveTotal(timers map[string]int64) int64 {
	var total int64
	for _, v := range timers {
		if v > 0 {
			total += v
		}
	}
	return total
}

// DayTotals groups archived session seconds by date.
func DayTotals(sessions []Session) map[string]int64 {
	out := map[string]int64{}
	for _, s := range sessions {
		out[s.Date] += s.Duration
	}
	return out
}

// TodayTotal is today's archived time plus every live accumulator.
func TodayTotal(m Model, today string) int64 {
	var total int64
	for _, s := range m.Sessions {
		if s.Date == today {
			total += s.Duration
		}
	}
	return total + LiveTotal(m.SubjectTimers)
}

// RangeTotal sums sessions dated in [from, today] and adds live time once,
// as today's. Sessions dated after today are ignored.
func RangeTotal(m Model, from, today string) int64 {
	var total int64
	for _, s := range m.Sessions {
		if s.Date >= from && s.Date <= today {
			total += s.Duration
		}
	}
	return total + LiveTotal(m.SubjectTimers)
}

// Streak counts consecutive days at or above threshold seconds. The walk starts
// today, or yesterday when today has not reached the threshold yet.
func Streak(m Model, today string, cal calendar.Calendar, threshold int64) int {
	totals := DayTotals(m.Sessions)
	totals[today] += LiveTotal(m.SubjectTimers)
	qualifies := func(date string) bool {
		t := totals[date]
		return t > 0 && t >= threshold
	}

	day := today
	if !qualifies(day) {
		day = cal.AddDays(today, -1)
	}
	streak := 0
	for i := 0; i < MaxStreakDays && qualifies(day); i++ {
		streak++
		day = cal.AddDays(day, -1)
	}
	return streak
}

func Progress(total, goal int64) GoalProgress {
	p := GoalProgress{Goal: goal, Total: total, State: GoalNone}
	if goal <= 0 {
		return p
	}
	p.Ratio = float64(total) / float64(goal)
	if p.Ratio > 1 {
		p.Ratio = 1
	}
	if total >= goal {
		p.State = GoalAchieved
		p.Exceeded = total - goal
		return p
	}
	p.State = GoalInProgress
	p.Remaining = goal - total
	return p
}

// ComputeStats derives every dashboard figure from one model snapshot.
func ComputeStats(m Model, today string, cal calendar.Calendar, threshold int64) Stats {
	todayTotal := TodayTotal(m, today)
	return Stats{
		Date:   today,
		Today:  todayTotal,
		Week:   RangeTotal(m, cal.WeekStart(today), today),
		Month:  RangeTotal(m, cal.MonthStart(today), today),
		Streak: Streak(m, today, cal, threshold),
		Goal:   Progress(todayTotal, m.DailyGoal),
	}
}

// SessionsOn returns the sessions dated date in recorded order.
func SessionsOn(m Model, date string) []Session {
	out := []Session{}
	for _, s := range m.Sessions {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out
}
