package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	hookout "studytrack/internal/modules/hook/adapter/out"
	"studytrack/internal/modules/hook/domain"
	"studytrack/internal/platform/logging"
)

func TestGRPCHostIntegrationDaylogHook(t *testing.T) {
	binPath, checksum := buildDaylogHook(t)
	logPath := filepath.Join(t.TempDir(), "days.jsonl")
	t.Setenv("STUDYTRACK_DAYLOG", logPath)
	manifest := domain.Manifest{
		Name:    "daylog",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
		Events:  []domain.Event{domain.EventDayClosed},
	}

	host := hookout.NewGRPCHost(logging.Discard())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	metadata, err := host.GetMetadata(ctx, manifest)
	if err != nil {
		t.Fatalf("get metadata: %v", err)
	}
	if metadata.Name != "daylog" || len(metadata.Events) != 1 || metadata.Events[0] != domain.EventDayClosed {
		t.Fatalf("unexpected metadata: %+v", metadata)
	}

	ack, err := host.DayClosed(ctx, manifest, domain.DayClosed{
		UserID:       "u1",
		Date:         "2024-03-09",
		TotalSeconds: 5400,
		Subjects:     []domain.SubjectTotal{{Name: "Math", Tag: "수학", Seconds: 5400}},
		Archived:     1,
		ClosedAt:     time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("day closed: %v", err)
	}
	if !ack.Accepted {
		t.Fatalf("expected hook to accept, got %+v", ack)
	}

	raw, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read day log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one logged day, got %d", len(lines))
	}
	logged := map[string]any{}
	if err := json.Unmarshal([]byte(lines[0]), &logged); err != nil {
		t.Fatalf("decode logged day: %v", err)
	}
	if logged["date"] != "2024-03-09" || logged["total_seconds"] != float64(5400) {
		t.Fatalf("unexpected logged day: %v", logged)
	}
}

func buildDaylogHook(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "daylog")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/daylog")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build daylog hook: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built hook: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
