package domain

import (
	"encoding/json"
	"fmt"
	"time"

	apperrors "studytrack/internal/platform/errors"
)

// ExportDocument is the portable backup of one user's data.
type ExportDocument struct {
	UserID        string           `json:"userId"`
	Sessions      []Session        `json:"sessions"`
	Subjects      []Subject        `json:"subjects"`
	SubjectTimers map[string]int64 `json:"subjectTimers"`
	DailyGoal     int64            `json:"dailyGoal"`
	ExportDate    time.Time        `json:"exportDate"`
}

// importDocument tells a missing array apart from an empty one.
type importDocument struct {
	UserID        *string          `json:"userId"`
	Sessions      *[]Session       `json:"sessions"`
	Subjects      *[]Subject       `json:"subjects"`
	SubjectTimers map[string]int64 `json:"subjectTimers"`
	DailyGoal     int64            `json:"dailyGoal"`
}

func NewExport(userID string, m Model, at time.Time) ExportDocument {
	c := m.Clone()
	return ExportDocument{
		UserID:        userID,
		Sessions:      c.Sessions,
		Subjects:      c.Subjects,
		SubjectTimers: c.SubjectTimers,
		DailyGoal:     c.DailyGoal,
		ExportDate:    at,
	}
}

// ParseImport validates a backup for userID and returns the model it
// describes. The rollover date is not part of a backup and stays empty.
func ParseImport(payload []byte, userID string) (Model, error) {
	doc := importDocument{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Model{}, fmt.Errorf("%w: decode import: %v", apperrors.ErrInvalidInput, err)
	}
	if doc.Sessions == nil || doc.Subjects == nil {
		return Model{}, fmt.Errorf("%w: import requires sessions and subjects", apperrors.ErrInvalidInput)
	}
	if doc.UserID != nil && *doc.UserID != "" && *doc.UserID != userID {
		return Model{}, fmt.Errorf("%w: export of %s", apperrors.ErrForeignData, *doc.UserID)
	}
	if doc.DailyGoal < 0 {
		return Model{}, ErrInvalidGoal
	}
	m := Model{
		Subjects:      *doc.Subjects,
		Sessions:      *doc.Sessions,
		SubjectTimers: doc.SubjectTimers,
		DailyGoal:     doc.DailyGoal,
	}
	m.Normalize()
	names := map[string]struct{}{}
	ids := map[int]struct{}{}
	for _, s := range m.Subjects {
		if s.Name == "" {
			return Model{}, ErrEmptyName
		}
		if _, dup := names[s.Name]; dup {
			return Model{}, fmt.Errorf("%w: %s", ErrDuplicateName, s.Name)
		}
		if s.ID <= 0 {
			return Model{}, fmt.Errorf("%w: subject %s has id %d", apperrors.ErrInvalidInput, s.Name, s.ID)
		}
		if _, dup := ids[s.ID]; dup {
			return Model{}, fmt.Errorf("%w: duplicate subject id %d", apperrors.ErrInvalidInput, s.ID)
		}
		names[s.Name] = struct{}{}
		ids[s.ID] = struct{}{}
		if _, ok := m.SubjectTimers[s.Name]; !ok {
			m.SubjectTimers[s.Name] = 0
		}
	}
	for name, secs := range m.SubjectTimers {
		if _, ok := names[name]; !ok {
			return Model{}, fmt.Errorf("%w: timer for unknown subject %s", apperrors.ErrInvalidInput, name)
		}
		if secs < 0 {
			return Model{}, fmt.Errorf("%w: negative timer for %s", apperrors.ErrInvalidInput, name)
		}
	}
	for _, s := range m.Sessions {
		if s.Duration <= 0 {
			return Model{}, fmt.Errorf("%w: session %s has duration %d", apperrors.ErrInvalidInput, s.ID, s.Duration)
		}
	}
	return m, nil
}
