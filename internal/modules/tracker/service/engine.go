package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"studytrack/internal/modules/tracker/domain"
	trackerout "studytrack/internal/modules/tracker/port/out"
	"studytrack/internal/platform/calendar"
	"studytrack/internal/platform/clock"
	apperrors "studytrack/internal/platform/errors"
	"studytrack/internal/platform/id"
)

const DefaultTickInterval = time.Second

type EngineConfig struct {
	Categories   []string
	TickInterval time.Duration
}

// Snapshot is a consistent copy of the engine state. Model.SubjectTimers
// already includes whole seconds elapsed since the last tick.
type Snapshot struct {
	Model  domain.Model
	Active int
	Now    time.Time
	Today  string
}

// Engine owns one user's model and the single running stopwatch. All state
// changes go through mu; the tick goroutine is just another caller.
type Engine struct {
	userID  string
	clock   clock.Clock
	tickers clock.TickerFactory
	cal     calendar.Calendar
	ids     id.Generator
	store   trackerout.SessionStore
	logger  hclog.Logger
	cfg     EngineConfig

	mu        sync.Mutex
	listeners []trackerout.DayClosedListener
	model     domain.Model
	active    int
	lastTick  time.Time
	gen       uint64
	stop      chan struct{}
	done      chan struct{}
	closed    []domain.DaySummary
}

func NewEngine(userID string, clk clock.Clock, tickers clock.TickerFactory, cal calendar.Calendar, ids id.Generator, store trackerout.SessionStore, logger hclog.Logger, cfg EngineConfig) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	return &Engine{
		userID:  userID,
		clock:   clk,
		tickers: tickers,
		cal:     cal,
		ids:     ids,
		store:   store,
		logger:  logger.Named("engine").With("user", userID),
		cfg:     cfg,
		model:   domain.NewModel(),
	}
}

func (e *Engine) UserID() string { return e.userID }

func (e *Engine) Calendar() calendar.Calendar { return e.cal }

func (e *Engine) Categories() []string { return append([]string(nil), e.cfg.Categories...) }

// AddListener registers l for day-closed notifications.
func (e *Engine) AddListener(l trackerout.DayClosedListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Load replaces the in-memory model with the stored one and stops any timer.
func (e *Engine) Load(ctx context.Context) error {
	m, err := e.store.Load(ctx, e.userID)
	if err != nil {
		return fmt.Errorf("%w: load model: %w", apperrors.ErrStorage, err)
	}
	m.Normalize()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickerLocked()
	e.active = 0
	e.model = m
	return nil
}

// Close stops the tick goroutine and waits for it to exit.
func (e *Engine) Close() {
	e.mu.Lock()
	done := e.done
	e.done = nil
	e.stopTickerLocked()
	e.mu.Unlock()
	if done != nil {
		<-done
	}
}

// ─── timer operations ───────────────────────────────────────────────────────

func (e *Engine) Start(ctx context.Context, subjectID int) error {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if e.model.SubjectIndex(subjectID) < 0 {
		return subjectNotFound(subjectID)
	}
	now := e.clock.Now()
	e.prepareLocked(ctx, now)
	if e.active == subjectID {
		return nil
	}
	if e.active != 0 {
		e.logger.Debug("switching timer", "from", e.active, "to", subjectID)
		e.haltLocked()
	}
	name := e.model.Subjects[e.model.SubjectIndex(subjectID)].Name
	if _, ok := e.model.SubjectTimers[name]; !ok {
		e.model.SubjectTimers[name] = 0
	}
	e.active = subjectID
	e.lastTick = now
	e.startTickerLocked()
	e.logger.Debug("timer started", "subject", name)
	return e.saveLocked(ctx)
}

// Pause stops subjectID when it is the running timer and reports whether
// anything stopped. Pausing any other subject is a no-op.
func (e *Engine) Pause(ctx context.Context, subjectID int) (bool, error) {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if subjectID == 0 || e.active != subjectID {
		return false, nil
	}
	return e.pauseActiveLocked(ctx)
}

// PauseAll stops whatever is running.
func (e *Engine) PauseAll(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if e.active == 0 {
		return false, nil
	}
	return e.pauseActiveLocked(ctx)
}

func (e *Engine) pauseActiveLocked(ctx context.Context) (bool, error) {
	e.settleLocked(ctx, e.clock.Now())
	e.haltLocked()
	return true, e.saveLocked(ctx)
}

// Reset zeroes a subject's live seconds without touching its history.
func (e *Engine) Reset(ctx context.Context, subjectID int) error {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if e.model.SubjectIndex(subjectID) < 0 {
		return subjectNotFound(subjectID)
	}
	e.prepareLocked(ctx, e.clock.Now())
	if e.active == subjectID {
		e.haltLocked()
	}
	name := e.model.Subjects[e.model.SubjectIndex(subjectID)].Name
	e.model.SubjectTimers[name] = 0
	return e.saveLocked(ctx)
}

// Tick credits elapsed whole seconds to the running subject and persists.
// A tick that crosses local midnight credits up to midnight and closes the day.
func (e *Engine) Tick(ctx context.Context) error {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	return e.tickLocked(ctx)
}

func (e *Engine) tickLocked(ctx context.Context) error {
	if e.active == 0 {
		return nil
	}
	changed, err := e.settleLocked(ctx, e.clock.Now())
	if err != nil || !changed {
		return err
	}
	return e.saveLocked(ctx)
}

// ─── subjects and goal ──────────────────────────────────────────────────────

func (e *Engine) CreateSubject(ctx context.Context, name, tag string) (domain.Subject, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if name == "" {
		return domain.Subject{}, domain.ErrEmptyName
	}
	if e.model.HasName(name) {
		return domain.Subject{}, fmt.Errorf("%w: %s", domain.ErrDuplicateName, name)
	}
	if err := domain.ValidateTag(tag, e.cfg.Categories); err != nil {
		return domain.Subject{}, err
	}
	now := e.clock.Now()
	e.prepareLocked(ctx, now)
	sub := domain.Subject{
		ID:        e.model.NextSubjectID(),
		Name:      name,
		Tag:       tag,
		Color:     e.model.ColorFor(tag),
		CreatedAt: now,
	}
	e.model.Subjects = append(e.model.Subjects, sub)
	e.model.SubjectTimers[name] = 0
	e.logger.Info("subject created", "id", sub.ID, "name", name, "tag", tag)
	return sub, e.saveLocked(ctx)
}

// DeleteSubject removes the subject, its live seconds and all of its sessions.
func (e *Engine) DeleteSubject(ctx context.Context, subjectID int) (domain.Subject, error) {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if e.model.SubjectIndex(subjectID) < 0 {
		return domain.Subject{}, subjectNotFound(subjectID)
	}
	e.prepareLocked(ctx, e.clock.Now())
	if e.active == subjectID {
		e.haltLocked()
	}
	removed := e.model.RemoveSubject(e.model.SubjectIndex(subjectID))
	e.logger.Info("subject deleted", "id", removed.ID, "name", removed.Name)
	return removed, e.saveLocked(ctx)
}

func (e *Engine) SetDailyGoal(ctx context.Context, seconds int64) error {
	if seconds <= 0 {
		return domain.ErrInvalidGoal
	}
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	e.prepareLocked(ctx, e.clock.Now())
	e.model.DailyGoal = seconds
	return e.saveLocked(ctx)
}

// ─── rollover and flush ─────────────────────────────────────────────────────

// Rollover archives every live accumulator as sessions dated oldDate and
// starts newDate empty. It runs at most once per newDate; the bool reports
// whether this call did the work.
func (e *Engine) Rollover(ctx context.Context, oldDate, newDate string) (domain.DaySummary, bool, error) {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	now := e.clock.Now()
	e.settleLocked(ctx, now)
	return e.rolloverLocked(ctx, oldDate, newDate, now)
}

func (e *Engine) rolloverLocked(ctx context.Context, oldDate, newDate string, at time.Time) (domain.DaySummary, bool, error) {
	if e.model.LastRolloverDate == newDate {
		return domain.DaySummary{}, false, nil
	}
	archived := []domain.Session{}
	archive := func(i int) {
		name := e.model.Subjects[i].Name
		if secs := e.model.SubjectTimers[name]; secs > 0 {
			archived = append(archived, e.model.Archive(i, secs, oldDate, at, e.ids.New()))
			e.model.SubjectTimers[name] = 0
		}
	}
	if e.active != 0 {
		activeIdx := e.model.SubjectIndex(e.active)
		e.haltLocked()
		if activeIdx >= 0 {
			archive(activeIdx)
		}
	}
	for i := range e.model.Subjects {
		archive(i)
	}
	for name := range e.model.SubjectTimers {
		e.model.SubjectTimers[name] = 0
	}
	e.model.DailyGoal = 0
	e.model.LastRolloverDate = newDate

	summary := domain.Summarize(e.userID, e.model, oldDate, archived, at)
	e.closed = append(e.closed, summary)
	e.logger.Info("day closed", "date", oldDate, "next", newDate, "archived", len(archived), "total", summary.Total)
	return summary, true, e.saveLocked(ctx)
}

// LastRolloverDate is the local date of the last rollover check, empty
// before the first one.
func (e *Engine) LastRolloverDate() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.LastRolloverDate
}

// MarkRolloverDate records date as checked and persists it.
func (e *Engine) MarkRolloverDate(ctx context.Context, date string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model.LastRolloverDate = date
	return e.saveLocked(ctx)
}

// Flush archives the running subject's live seconds under today and stops
// it, so nothing is lost when the process exits.
func (e *Engine) Flush(ctx context.Context) (domain.Session, bool, error) {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	now := e.clock.Now()
	e.prepareLocked(ctx, now)
	if e.active == 0 {
		return domain.Session{}, false, nil
	}
	idx := e.model.SubjectIndex(e.active)
	e.haltLocked()
	if idx < 0 {
		return domain.Session{}, false, e.saveLocked(ctx)
	}
	name := e.model.Subjects[idx].Name
	secs := e.model.SubjectTimers[name]
	if secs <= 0 {
		return domain.Session{}, false, e.saveLocked(ctx)
	}
	session := e.model.Archive(idx, secs, e.cal.DateOf(now), now, e.ids.New())
	e.model.SubjectTimers[name] = 0
	e.logger.Info("flushed running timer", "subject", name, "seconds", secs)
	return session, true, e.saveLocked(ctx)
}

// ─── backup ─────────────────────────────────────────────────────────────────

func (e *Engine) Export() domain.ExportDocument {
	snap := e.Snapshot()
	return domain.NewExport(e.userID, snap.Model, snap.Now)
}

// Import replaces all local data with a validated backup. A rejected payload
// leaves the model untouched.
func (e *Engine) Import(ctx context.Context, payload []byte) (domain.Model, error) {
	m, err := domain.ParseImport(payload, e.userID)
	if err != nil {
		return domain.Model{}, err
	}
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	e.haltLocked()
	m.LastRolloverDate = e.model.LastRolloverDate
	e.model = m
	e.logger.Info("data imported", "subjects", len(m.Subjects), "sessions", len(m.Sessions))
	return m.Clone(), e.saveLocked(ctx)
}

// Clear wipes subjects, sessions, live seconds and the goal. The stored
// document is removed; only a known rollover date is written back.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	if err := e.store.Delete(ctx, e.userID); err != nil {
		e.logger.Error("delete stored model failed", "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	e.haltLocked()
	last := e.model.LastRolloverDate
	e.model = domain.NewModel()
	e.model.LastRolloverDate = last
	e.logger.Info("data cleared")
	if last == "" {
		return nil
	}
	return e.saveLocked(ctx)
}

// ─── reads ──────────────────────────────────────────────────────────────────

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	m := e.model.Clone()
	if e.active != 0 && now.After(e.lastTick) {
		if idx := m.SubjectIndex(e.active); idx >= 0 {
			until := now
			if midnight := e.cal.NextMidnight(e.lastTick); until.After(midnight) {
				until = midnight
			}
			m.SubjectTimers[m.Subjects[idx].Name] += int64(until.Sub(e.lastTick) / time.Second)
		}
	}
	return Snapshot{Model: m, Active: e.active, Now: now, Today: e.cal.DateOf(now)}
}

// ─── internals ──────────────────────────────────────────────────────────────

// prepareLocked brings state up to now: credits the running timer and closes
// any day that ended since the last rollover.
func (e *Engine) prepareLocked(ctx context.Context, now time.Time) {
	e.settleLocked(ctx, now)
	today := e.cal.DateOf(now)
	if last := e.model.LastRolloverDate; last != "" && last < today {
		_, _, _ = e.rolloverLocked(ctx, last, today, now)
	}
}

// settleLocked credits whole seconds since lastTick to the running subject.
// It reports whether the model changed and still needs saving; a rollover
// it triggers saves on its own.
func (e *Engine) settleLocked(ctx context.Context, now time.Time) (bool, error) {
	if e.active == 0 {
		return false, nil
	}
	idx := e.model.SubjectIndex(e.active)
	if idx < 0 {
		e.haltLocked()
		return false, nil
	}
	if now.Before(e.lastTick) {
		e.logger.Warn("clock moved backwards, dropping interval", "last", e.lastTick, "now", now)
		e.lastTick = now
		return false, nil
	}
	name := e.model.Subjects[idx].Name
	lastDate, nowDate := e.cal.DateOf(e.lastTick), e.cal.DateOf(now)
	if lastDate != nowDate {
		midnight := e.cal.NextMidnight(e.lastTick)
		e.credit(name, midnight)
		if e.model.LastRolloverDate == nowDate {
			// today is already marked, so only the running credit is left to close
			e.haltLocked()
			if secs := e.model.SubjectTimers[name]; secs > 0 {
				e.model.Archive(idx, secs, lastDate, midnight, e.ids.New())
				e.model.SubjectTimers[name] = 0
				e.logger.Info("archived running timer at midnight", "subject", name, "date", lastDate, "seconds", secs)
			}
			return false, e.saveLocked(ctx)
		}
		_, _, err := e.rolloverLocked(ctx, lastDate, nowDate, midnight)
		return false, err
	}
	return e.credit(name, now) > 0, nil
}

func (e *Engine) credit(name string, until time.Time) int64 {
	secs := int64(until.Sub(e.lastTick) / time.Second)
	if secs <= 0 {
		return 0
	}
	e.model.SubjectTimers[name] += secs
	e.lastTick = e.lastTick.Add(time.Duration(secs) * time.Second)
	return secs
}

// haltLocked stops the running timer without crediting anything.
func (e *Engine) haltLocked() {
	e.stopTickerLocked()
	e.active = 0
}

func (e *Engine) saveLocked(ctx context.Context) error {
	if err := e.store.Save(ctx, e.userID, e.model); err != nil {
		e.logger.Error("persist model failed", "error", err)
		return fmt.Errorf("%w: %w", apperrors.ErrStorage, err)
	}
	return nil
}

func (e *Engine) startTickerLocked() {
	e.stopTickerLocked()
	e.gen++
	gen := e.gen
	t := e.tickers.NewTicker(e.cfg.TickInterval)
	stop := make(chan struct{})
	done := make(chan struct{})
	e.stop, e.done = stop, done
	go func() {
		defer close(done)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				e.onTick(gen)
			}
		}
	}()
}

// stopTickerLocked bumps the generation so a tick already waiting on mu
// becomes a no-op.
func (e *Engine) stopTickerLocked() {
	if e.stop == nil {
		return
	}
	close(e.stop)
	e.stop = nil
	e.gen++
}

func (e *Engine) onTick(gen uint64) {
	ctx := context.Background()
	e.mu.Lock()
	defer e.unlockAndNotify(ctx)
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tick panicked", "panic", r)
		}
	}()
	if gen != e.gen {
		return
	}
	if err := e.tickLocked(ctx); err != nil {
		e.logger.Warn("tick failed", "error", err)
	}
}

// unlockAndNotify releases mu, then delivers day-closed summaries queued
// while it was held.
func (e *Engine) unlockAndNotify(ctx context.Context) {
	closed := e.closed
	e.closed = nil
	listeners := append([]trackerout.DayClosedListener(nil), e.listeners...)
	e.mu.Unlock()
	for _, summary := range closed {
		for _, l := range listeners {
			if err := l.DayClosed(ctx, summary); err != nil {
				e.logger.Warn("day closed listener failed", "date", summary.Date, "error", err)
			}
		}
	}
}

func subjectNotFound(id int) error {
	return fmt.Errorf("%w: subject %d", apperrors.ErrNotFound, id)
}
