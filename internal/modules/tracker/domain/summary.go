package domain

import (
	"sort"
	"time"
)

type SubjectTotal struct {
	SubjectID int    `json:"subjectId"`
	Name      string `json:"name"`
	Tag       string `json:"tag"`
	Seconds   int64  `json:"seconds"`
}

// DaySummary describes a closed day: everything archived for Date, and the
// sessions the closing rollover produced.
type DaySummary struct {
	UserID   string         `json:"userId"`
	Date     string         `json:"date"`
	Total    int64          `json:"total"`
	Subjects []SubjectTotal `json:"subjects"`
	Archived []Session      `json:"archived"`
	ClosedAt time.Time      `json:"closedAt"`
}

// Summarize aggregates the sessions dated date, largest subject first.
func Summarize(userID string, m Model, date string, archived []Session, at time.Time) DaySummary {
	byName := map[string]*SubjectTotal{}
	order := []string{}
	var total int64
	for _, s := range m.Sessions {
		if s.Date != date {
			continue
		}
		total += s.Duration
		st, ok := byName[s.Subject]
		if !ok {
			st = &SubjectTotal{SubjectID: s.SubjectID, Name: s.Subject, Tag: s.Tag}
			byName[s.Subject] = st
			order = append(order, s.Subject)
		}
		st.Seconds += s.Duration
	}
	subjects := make([]SubjectTotal, 0, len(order))
	for _, name := range order {
		subjects = append(subjects, *byName[name])
	}
	sort.SliceStable(subjects, func(i, j int) bool { return subjects[i].Seconds > subjects[j].Seconds })
	if archived == nil {
		archived = []Session{}
	}
	return DaySummary{UserID: userID, Date: date, Total: total, Subjects: subjects, Archived: archived, ClosedAt: at}
}
