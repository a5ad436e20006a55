package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"

	"studytrack/internal/modules/hook/domain"
	"studytrack/internal/modules/hook/dto"
	hookout "studytrack/internal/modules/hook/port/out"
)

type HookService struct {
	store  hookout.ManifestStore
	host   hookout.Host
	logger hclog.Logger
}

func NewHookService(store hookout.ManifestStore, host hookout.Host, logger hclog.Logger) *HookService {
	return &HookService{store: store, host: host, logger: logger.Named("hooks")}
}

func (s *HookService) List(ctx context.Context) ([]dto.HookInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HookInfo, 0, len(manifests))
	for _, m := range manifests {
		events := make([]string, 0, len(m.Events))
		for _, e := range m.Events {
			events = append(events, string(e))
		}
		out = append(out, dto.HookInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Events: events})
	}
	return out, nil
}

func (s *HookService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

// DispatchDayClosed delivers the event to every enabled hook subscribed to
// it. One failing hook does not stop the others; failures are reported per
// hook in the results.
func (s *HookService) DispatchDayClosed(ctx context.Context, input dto.DayClosedInput) ([]dto.DispatchResult, error) {
	event := domain.DayClosed{
		UserID:       input.UserID,
		Date:         input.Date,
		TotalSeconds: input.TotalSeconds,
		Archived:     input.Archived,
		ClosedAt:     input.ClosedAt,
	}
	for _, st := range input.Subjects {
		event.Subjects = append(event.Subjects, domain.SubjectTotal{Name: st.Name, Tag: st.Tag, Seconds: st.Seconds})
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	results := []dto.DispatchResult{}
	for _, m := range manifests {
		if !m.Enabled || !m.Subscribes(domain.EventDayClosed) {
			continue
		}
		result := dto.DispatchResult{Name: m.Name}
		if err := s.deliver(ctx, m, event, &result); err != nil {
			result.Error = err.Error()
			s.logger.Warn("hook failed", "hook", m.Name, "event", domain.EventDayClosed, "error", err)
		} else {
			s.logger.Debug("hook delivered", "hook", m.Name, "accepted", result.Accepted)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *HookService) deliver(ctx context.Context, m domain.Manifest, event domain.DayClosed, result *dto.DispatchResult) error {
	if s.host == nil {
		return fmt.Errorf("hook host is not configured")
	}
	if err := checksumMatches(m.Binary, m.SHA256); err != nil {
		return err
	}
	ack, err := s.host.DayClosed(ctx, m, event)
	if err != nil {
		return err
	}
	result.Accepted = ack.Accepted
	result.Message = ack.Message
	return nil
}

func (s *HookService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("hook %q: %w", m.Name, err)
		}
		if _, ok := seen[m.Name]; ok {
			return nil, fmt.Errorf("duplicate hook name: %s", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return manifests, nil
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read hook binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
