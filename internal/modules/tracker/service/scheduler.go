package service

import (
	"context"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"studytrack/internal/modules/tracker/domain"
	"studytrack/internal/platform/clock"
)

const DefaultRolloverInterval = time.Minute

type CheckResult struct {
	Previous string
	Current  string
	Rolled   bool
	Summary  domain.DaySummary
}

// Scheduler detects local day changes and closes the previous day on the
// engine. Run polls; Resume is called when the app regains focus.
type Scheduler struct {
	engine   *Engine
	clock    clock.Clock
	tickers  clock.TickerFactory
	interval time.Duration
	logger   hclog.Logger
}

func NewScheduler(engine *Engine, clk clock.Clock, tickers clock.TickerFactory, interval time.Duration, logger hclog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultRolloverInterval
	}
	return &Scheduler{
		engine:   engine,
		clock:    clk,
		tickers:  tickers,
		interval: interval,
		logger:   logger.Named("rollover"),
	}
}

// Check compares today's local date with the last recorded one. The first
// check only records the date. Any difference, including a clock that moved
// backwards, closes the recorded day.
func (s *Scheduler) Check(ctx context.Context) (CheckResult, error) {
	current := s.engine.Calendar().DateOf(s.clock.Now())
	last := s.engine.LastRolloverDate()
	result := CheckResult{Previous: last, Current: current}
	if last != "" && last != current {
		summary, rolled, err := s.engine.Rollover(ctx, last, current)
		if err != nil {
			return result, err
		}
		result.Rolled = rolled
		result.Summary = summary
	}
	if last == current {
		return result, nil
	}
	return result, s.engine.MarkRolloverDate(ctx, current)
}

func (s *Scheduler) Resume(ctx context.Context) (CheckResult, error) {
	return s.Check(ctx)
}

// Run checks immediately and then every interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.Check(ctx); err != nil {
		s.logger.Warn("rollover check failed", "error", err)
	}
	t := s.tickers.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C():
			if _, err := s.Check(ctx); err != nil {
				s.logger.Warn("rollover check failed", "error", err)
			}
		}
	}
}
