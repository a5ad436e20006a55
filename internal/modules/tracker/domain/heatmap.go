package domain

import (
	"time"

	"studytrack/internal/platform/calendar"
)

const (
	DefaultHeatmapDays = 270
	MinHeatmapDays     = 7
)

type HeatCell struct {
	Date    string
	Seconds int64
	Level   int
	Future  bool
}

// Heatmap is a Monday-first grid: Weeks[w][d] with d=0 for Monday.
type Heatmap struct {
	Label string
	From  string
	To    string
	Weeks [][7]HeatCell
	Total int64
}

// HeatLevel buckets a day's seconds by minutes: 0, up to 30, 60, 120, more.
func HeatLevel(seconds int64) int {
	switch {
	case seconds <= 0:
		return 0
	case seconds <= 30*60:
		return 1
	case seconds <= 60*60:
		return 2
	case seconds <= 120*60:
		return 3
	default:
		return 4
	}
}

// BuildHeatmap covers at most maxDays back from today, starting no earlier
// than the first matching session and aligned back to a Monday. match selects
// subjects; live seconds only count on today. A zero window means the default
// and shorter windows are raised to one week.
func BuildHeatmap(m Model, today string, cal calendar.Calendar, maxDays int, label string, match func(Subject) bool) Heatmap {
	switch {
	case maxDays <= 0:
		maxDays = DefaultHeatmapDays
	case maxDays < MinHeatmapDays:
		maxDays = MinHeatmapDays
	}
	if !cal.Valid(today) {
		return Heatmap{Label: label}
	}
	matched := map[string]bool{}
	for _, s := range m.Subjects {
		if match(s) {
			matched[s.Name] = true
		}
	}
	sessionMatches := func(s Session) bool {
		for _, sub := range m.Subjects {
			if matched[sub.Name] && s.BelongsTo(sub) {
				return true
			}
		}
		return false
	}

	totals := map[string]int64{}
	earliest := today
	for _, s := range m.Sessions {
		if !sessionMatches(s) || s.Date > today {
			continue
		}
		totals[s.Date] += s.Duration
		if s.Date < earliest {
			earliest = s.Date
		}
	}
	for name, secs := range m.SubjectTimers {
		if matched[name] && secs > 0 {
			totals[today] += secs
		}
	}

	start := cal.AddDays(today, -maxDays)
	if earliest > start {
		start = earliest
	}
	start = cal.WeekStart(start)

	hm := Heatmap{Label: label, From: start, To: today}
	for day := start; day <= today; {
		var week [7]HeatCell
		for d := 0; d < 7; d++ {
			secs := totals[day]
			week[d] = HeatCell{Date: day, Seconds: secs, Level: HeatLevel(secs), Future: day > today}
			if day <= today {
				hm.Total += secs
			}
			day = cal.AddDays(day, 1)
		}
		hm.Weeks = append(hm.Weeks, week)
	}
	return hm
}

// ByTag selects subjects carrying tag.
func ByTag(tag string) func(Subject) bool {
	return func(s Subject) bool { return s.Tag == tag }
}

// BySubject selects one subject.
func BySubject(id int) func(Subject) bool {
	return func(s Subject) bool { return s.ID == id }
}

// RowWeekday maps a heatmap row index to its weekday.
func RowWeekday(row int) time.Weekday {
	return time.Weekday((row + 1) % 7)
}

// RowLabels returns the short weekday names of the seven heatmap rows.
func RowLabels() [7]string {
	var labels [7]string
	for row := range labels {
		labels[row] = RowWeekday(row).String()[:3]
	}
	return labels
}
