package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"studytrack/internal/modules/account/domain"
	accountout "studytrack/internal/modules/account/port/out"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/kv"
)

const usersKey = "users"

// BlobUserStore keeps the whole user registry in one blob.
type BlobUserStore struct {
	blobs kv.Store
}

func NewBlobUserStore(blobs kv.Store) accountout.UserStore {
	return &BlobUserStore{blobs: blobs}
}

func (s *BlobUserStore) Load(ctx context.Context) ([]domain.User, error) {
	raw, err := s.blobs.Get(ctx, usersKey)
	if errors.Is(err, apperrors.ErrNotFound) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *BlobUserStore) Save(ctx context.Context, users []domain.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return s.blobs.Set(ctx, usersKey, raw)
}
