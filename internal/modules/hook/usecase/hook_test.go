package usecase_test

import (
	"context"
	"testing"

	"studytrack/internal/modules/hook/domain"
	"studytrack/internal/modules/hook/dto"
	"studytrack/internal/modules/hook/service"
	"studytrack/internal/modules/hook/usecase"
	"studytrack/internal/platform/logging"
)

type fakeManifestStore struct {
	manifests []domain.Manifest
}

func (s fakeManifestStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

func TestUsecaseListAndEmptyDispatch(t *testing.T) {
	t.Parallel()
	manifest := domain.Manifest{
		Name:    "daylog",
		Version: "1.0.0",
		Binary:  "/nonexistent/daylog",
		SHA256:  "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Enabled: false,
		Events:  []domain.Event{domain.EventDayClosed},
	}
	uc := usecase.NewInteractor(service.NewHookService(fakeManifestStore{manifests: []domain.Manifest{manifest}}, nil, logging.Discard()))

	list, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "daylog" || list[0].Events[0] != "day_closed" {
		t.Fatalf("unexpected list: %+v", list)
	}

	results, err := uc.DispatchDayClosed(context.Background(), dto.DayClosedInput{UserID: "u1", Date: "2024-01-01"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("disabled hook must not run, got %+v", results)
	}

	docs, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(docs) != 1 || docs[0].BinaryReachable {
		t.Fatalf("unexpected doctor result: %+v", docs)
	}
}
