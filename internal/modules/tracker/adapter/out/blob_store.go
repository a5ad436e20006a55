package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"studytrack/internal/modules/tracker/domain"
	trackerout "studytrack/internal/modules/tracker/port/out"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/kv"
)

const studyDataPrefix = "study_data_"

// BlobSessionStore keeps each user's whole model as one JSON blob.
type BlobSessionStore struct {
	blobs kv.Store
}

func NewBlobSessionStore(blobs kv.Store) trackerout.SessionStore {
	return &BlobSessionStore{blobs: blobs}
}

func StudyDataKey(userID string) string {
	return studyDataPrefix + userID
}

func (s *BlobSessionStore) Load(ctx context.Context, userID string) (domain.Model, error) {
	raw, err := s.blobs.Get(ctx, StudyDataKey(userID))
	if errors.Is(err, apperrors.ErrNotFound) {
		return domain.NewModel(), nil
	}
	if err != nil {
		return domain.Model{}, err
	}
	m := domain.Model{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Model{}, fmt.Errorf("decode study data for %s: %w", userID, err)
	}
	m.Normalize()
	return m, nil
}

func (s *BlobSessionStore) Save(ctx context.Context, userID string, model domain.Model) error {
	model.Normalize()
	raw, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode study data: %w", err)
	}
	return s.blobs.Set(ctx, StudyDataKey(userID), raw)
}

func (s *BlobSessionStore) Delete(ctx context.Context, userID string) error {
	return s.blobs.Delete(ctx, StudyDataKey(userID))
}
