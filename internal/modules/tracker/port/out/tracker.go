package out

import (
	"context"

	"studytrack/internal/modules/tracker/domain"
)

// SessionStore persists the whole per-user model. Save is atomic: a failed
// save leaves the previous model readable.
type SessionStore interface {
	Load(ctx context.Context, userID string) (domain.Model, error)
	Save(ctx context.Context, userID string, model domain.Model) error
	Delete(ctx context.Context, userID string) error
}

// DayClosedListener is told about every completed rollover.
type DayClosedListener interface {
	DayClosed(ctx context.Context, summary domain.DaySummary) error
}
