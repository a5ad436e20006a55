package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"studytrack/internal/modules/hook/domain"
	"studytrack/internal/modules/hook/dto"
	"studytrack/internal/modules/hook/service"
	"studytrack/internal/platform/logging"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	delivered []string
	failFor   string
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }

func (h *fakeHost) GetMetadata(_ context.Context, m domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: m.Name, Version: m.Version, Events: m.Events}, nil
}

func (h *fakeHost) DayClosed(_ context.Context, m domain.Manifest, event domain.DayClosed) (domain.Ack, error) {
	if m.Name == h.failFor {
		return domain.Ack{}, errors.New("boom")
	}
	h.delivered = append(h.delivered, m.Name+":"+event.Date)
	return domain.Ack{Accepted: true, Message: "ok"}, nil
}

func writeBinary(t *testing.T, name string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	payload := []byte("binary-" + name)
	if err := os.WriteFile(path, payload, 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	sum := sha256.Sum256(payload)
	return path, hex.EncodeToString(sum[:])
}

func manifest(t *testing.T, name string, enabled bool) domain.Manifest {
	t.Helper()
	bin, sum := writeBinary(t, name)
	return domain.Manifest{Name: name, Version: "1.0.0", Binary: bin, SHA256: sum, Enabled: enabled, Events: []domain.Event{domain.EventDayClosed}}
}

func dayInput() dto.DayClosedInput {
	return dto.DayClosedInput{
		UserID:       "u1",
		Date:         "2024-01-01",
		TotalSeconds: 90,
		Subjects:     []dto.SubjectTotal{{Name: "Math", Tag: "수학", Seconds: 90}},
		Archived:     1,
		ClosedAt:     time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC),
	}
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	good := manifest(t, "good", true)
	tampered := manifest(t, "tampered", true)
	tampered.SHA256 = strings.Repeat("0", 64)
	missing := manifest(t, "missing", true)
	missing.Binary = filepath.Join(t.TempDir(), "nope")

	svc := service.NewHookService(fakeStore{manifests: []domain.Manifest{good, tampered, missing}}, &fakeHost{}, logging.Discard())
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected three results, got %d", len(results))
	}
	if !results[0].ChecksumValid || !results[0].LifecycleOK {
		t.Fatalf("expected healthy hook, got %+v", results[0])
	}
	if results[1].ChecksumValid || results[1].Error != "checksum mismatch" {
		t.Fatalf("expected checksum mismatch, got %+v", results[1])
	}
	if results[2].BinaryReachable {
		t.Fatalf("expected unreachable binary, got %+v", results[2])
	}
}

func TestDispatchSkipsDisabledAndIsolatesFailures(t *testing.T) {
	t.Parallel()
	host := &fakeHost{failFor: "broken"}
	tampered := manifest(t, "tampered", true)
	tampered.SHA256 = strings.Repeat("1", 64)
	manifests := []domain.Manifest{
		manifest(t, "first", true),
		manifest(t, "off", false),
		manifest(t, "broken", true),
		tampered,
		manifest(t, "last", true),
	}
	svc := service.NewHookService(fakeStore{manifests: manifests}, host, logging.Discard())

	results, err := svc.DispatchDayClosed(context.Background(), dayInput())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected four attempted hooks, got %+v", results)
	}
	if results[0].Name != "first" || !results[0].Accepted {
		t.Fatalf("unexpected first result %+v", results[0])
	}
	if results[1].Name != "broken" || results[1].Error == "" {
		t.Fatalf("expected broken hook error, got %+v", results[1])
	}
	if results[2].Name != "tampered" || !strings.Contains(results[2].Error, "checksum") {
		t.Fatalf("expected checksum refusal, got %+v", results[2])
	}
	if len(host.delivered) != 2 || host.delivered[1] != "last:2024-01-01" {
		t.Fatalf("unexpected deliveries %v", host.delivered)
	}
}

func TestDispatchRejectsInvalidEventAndManifests(t *testing.T) {
	t.Parallel()
	svc := service.NewHookService(fakeStore{}, &fakeHost{}, logging.Discard())
	bad := dayInput()
	bad.Date = "yesterday"
	if _, err := svc.DispatchDayClosed(context.Background(), bad); err == nil {
		t.Fatalf("expected invalid event error")
	}

	dup := manifest(t, "dup", true)
	svc = service.NewHookService(fakeStore{manifests: []domain.Manifest{dup, dup}}, &fakeHost{}, logging.Discard())
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected duplicate name error")
	}
}
