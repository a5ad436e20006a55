package out

import (
	"context"

	"studytrack/internal/modules/account/domain"
)

type UserStore interface {
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, users []domain.User) error
}
