package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"studytrack/internal/modules/tracker/domain"
	"studytrack/internal/modules/tracker/service"
	"studytrack/internal/platform/calendar"
	"studytrack/internal/platform/clock"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/logging"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type manualTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *manualTicker) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type manualTickers struct {
	mu      sync.Mutex
	created []*manualTicker
}

func (f *manualTickers) NewTicker(time.Duration) clock.Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{c: make(chan time.Time)}
	f.created = append(f.created, t)
	return t
}

func (f *manualTickers) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *manualTickers) Last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		return nil
	}
	return f.created[len(f.created)-1]
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "sess-" + string(rune('a'+s.n-1))
}

// memStore keeps the last saved model as JSON, like the real stores do.
type memStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	failing bool
}

func newMemStore() *memStore { return &memStore{blobs: map[string][]byte{}} }

func (s *memStore) Load(_ context.Context, userID string) (domain.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.blobs[userID]
	if !ok {
		return domain.NewModel(), nil
	}
	m := domain.Model{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return domain.Model{}, err
	}
	m.Normalize()
	return m, nil
}

func (s *memStore) Save(_ context.Context, userID string, m domain.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("disk full")
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	s.blobs[userID] = raw
	s.saves++
	return nil
}

func (s *memStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, userID)
	return nil
}

func (s *memStore) Has(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[userID]
	return ok
}

func (s *memStore) SetFailing(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = v
}

func (s *memStore) Stored(t *testing.T, userID string) domain.Model {
	t.Helper()
	m, err := s.Load(context.Background(), userID)
	if err != nil {
		t.Fatalf("load stored model: %v", err)
	}
	return m
}

type recordingListener struct {
	mu        sync.Mutex
	summaries []domain.DaySummary
	err       error
}

func (l *recordingListener) DayClosed(_ context.Context, s domain.DaySummary) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.summaries = append(l.summaries, s)
	return l.err
}

func (l *recordingListener) All() []domain.DaySummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.DaySummary(nil), l.summaries...)
}

type harness struct {
	clock    *fakeClock
	tickers  *manualTickers
	store    *memStore
	listener *recordingListener
	engine   *service.Engine
	cal      calendar.Calendar
}

// at returns a time given in the default calendar's local wall clock.
func at(year int, month time.Month, day, hour, minute, second int) time.Time {
	return time.Date(year, month, day, hour, minute, second, 0, calendar.Default().Location()).UTC()
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	h := &harness{
		clock:    &fakeClock{now: now},
		tickers:  &manualTickers{},
		store:    newMemStore(),
		listener: &recordingListener{},
		cal:      calendar.Default(),
	}
	h.engine = service.NewEngine("u1", h.clock, h.tickers, h.cal, &seqID{}, h.store, logging.Discard(), service.EngineConfig{
		Categories: []string{"국어", "수학", "영어"},
	})
	h.engine.AddListener(h.listener)
	if err := h.engine.Load(context.Background()); err != nil {
		t.Fatalf("load engine: %v", err)
	}
	t.Cleanup(h.engine.Close)
	return h
}

func (h *harness) subject(t *testing.T, name, tag string) domain.Subject {
	t.Helper()
	sub, err := h.engine.CreateSubject(context.Background(), name, tag)
	if err != nil {
		t.Fatalf("create subject %s: %v", name, err)
	}
	return sub
}

func (h *harness) timers() map[string]int64 {
	return h.engine.Snapshot().Model.SubjectTimers
}

func isStorage(err error) bool { return errors.Is(err, apperrors.ErrStorage) }
