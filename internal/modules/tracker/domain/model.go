package domain

import (
	"fmt"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

const SchemaVersion = 1

var (
	ErrEmptyName     = fmt.Errorf("%w: subject name is required", apperrors.ErrInvalidInput)
	ErrDuplicateName = fmt.Errorf("%w: subject name already exists", apperrors.ErrInvalidInput)
	ErrMissingTag    = fmt.Errorf("%w: subject tag is required", apperrors.ErrInvalidInput)
	ErrUnknownTag    = fmt.Errorf("%w: unknown subject tag", apperrors.ErrInvalidInput)
	ErrInvalidGoal   = fmt.Errorf("%w: daily goal must be positive", apperrors.ErrInvalidInput)
)

// Palette holds the subject display colors, assigned per tag in order.
var Palette = []string{
	"#74c7ec", // sapphire
	"#a6e3a1", // green
	"#fab387", // peach
	"#cba6f7", // mauve
	"#f9e2af", // yellow
	"#94e2d5", // teal
	"#f38ba8", // red
	"#b4befe", // lavender
}

type Subject struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Color     string    `json:"color"`
	TotalTime int64     `json:"totalTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is an archived, immutable block of study time attributed to Date.
// SubjectID is zero for sessions imported from documents that only carry names.
type Session struct {
	ID        string    `json:"id"`
	SubjectID int       `json:"subjectId,omitempty"`
	Subject   string    `json:"subject"`
	Tag       string    `json:"tag"`
	Duration  int64     `json:"duration"`
	Date      string    `json:"date"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// BelongsTo reports whether the session was recorded for sub.
func (s Session) BelongsTo(sub Subject) bool {
	if s.SubjectID != 0 {
		return s.SubjectID == sub.ID
	}
	return s.Subject == sub.Name
}

// Model is the whole persisted state of one user.
type Model struct {
	Subjects         []Subject        `json:"subjects"`
	Sessions         []Session        `json:"sessions"`
	SubjectTimers    map[string]int64 `json:"subjectTimers"`
	DailyGoal        int64            `json:"dailyGoal"`
	LastRolloverDate string           `json:"lastRolloverDate,omitempty"`
}

func NewModel() Model {
	return Model{Subjects: []Subject{}, Sessions: []Session{}, SubjectTimers: map[string]int64{}}
}

// Normalize replaces nil collections so the model always encodes as arrays
// and objects.
func (m *Model) Normalize() {
	if m.Subjects == nil {
		m.Subjects = []Subject{}
	}
	if m.Sessions == nil {
		m.Sessions = []Session{}
	}
	if m.SubjectTimers == nil {
		m.SubjectTimers = map[string]int64{}
	}
}

func (m Model) Clone() Model {
	out := Model{
		Subjects:         append([]Subject{}, m.Subjects...),
		Sessions:         append([]Session{}, m.Sessions...),
		SubjectTimers:    make(map[string]int64, len(m.SubjectTimers)),
		DailyGoal:        m.DailyGoal,
		LastRolloverDate: m.LastRolloverDate,
	}
	for k, v := range m.SubjectTimers {
		out.SubjectTimers[k] = v
	}
	return out
}

func (m Model) SubjectIndex(id int) int {
	for i, s := range m.Subjects {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (m Model) HasName(name string) bool {
	for _, s := range m.Subjects {
		if s.Name == name {
			return true
		}
	}
	return false
}

func (m Model) NextSubjectID() int {
	next := 1
	for _, s := range m.Subjects {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	return next
}

// ColorFor keeps colors stable per tag: an existing subject's color is reused,
// otherwise the next palette entry is taken by number of tags in use.
func (m Model) ColorFor(tag string) string {
	seen := map[string]struct{}{}
	for _, s := range m.Subjects {
		if s.Tag == tag && s.Color != "" {
			return s.Color
		}
		seen[s.Tag] = struct{}{}
	}
	return Palette[len(seen)%len(Palette)]
}

// RemoveSubject drops the subject at index i with its accumulator and every
// session recorded for it.
func (m *Model) RemoveSubject(i int) Subject {
	sub := m.Subjects[i]
	m.Subjects = append(m.Subjects[:i:i], m.Subjects[i+1:]...)
	delete(m.SubjectTimers, sub.Name)
	kept := make([]Session, 0, len(m.Sessions))
	for _, s := range m.Sessions {
		if !s.BelongsTo(sub) {
			kept = append(kept, s)
		}
	}
	m.Sessions = kept
	return sub
}

// Archive folds seconds of subject i into a new session dated date, treated
// as one contiguous block ending at end, and credits the subject total.
func (m *Model) Archive(i int, seconds int64, date string, end time.Time, sessionID string) Session {
	sub := &m.Subjects[i]
	s := Session{
		ID:        sessionID,
		SubjectID: sub.ID,
		Subject:   sub.Name,
		Tag:       sub.Tag,
		Duration:  seconds,
		Date:      date,
		StartTime: end.Add(-time.Duration(seconds) * time.Second),
		EndTime:   end,
	}
	m.Sessions = append(m.Sessions, s)
	sub.TotalTime += seconds
	return s
}

// ValidateTag checks tag against the configured categories.
func ValidateTag(tag string, categories []string) error {
	if tag == "" {
		return ErrMissingTag
	}
	for _, c := range categories {
		if c == tag {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownTag, tag)
}
