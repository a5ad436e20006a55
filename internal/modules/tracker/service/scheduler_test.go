package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytrack/internal/modules/tracker/service"
	"studytrack/internal/platform/logging"
)

func TestSchedulerFirstCheckOnlyRecordsDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, at(2024, 1, 1, 10, 0, 0))
	sched := service.NewScheduler(h.engine, h.clock, h.tickers, time.Minute, logging.Discard())

	res, err := sched.Check(ctx)
	require.NoError(t, err)
	assert.False(t, res.Rolled)
	assert.Equal(t, "2024-01-01", res.Current)
	assert.Equal(t, "2024-01-01", h.store.Stored(t, "u1").LastRolloverDate)

	res, err = sched.Check(ctx)
	require.NoError(t, err)
	assert.False(t, res.Rolled)
	assert.Empty(t, h.listener.All())
}

func TestSchedulerClosesPreviousDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, at(2024, 1, 1, 23, 0, 0))
	sched := service.NewScheduler(h.engine, h.clock, h.tickers, time.Minute, logging.Discard())
	math := h.subject(t, "Math", "수학")

	_, err := sched.Check(ctx)
	require.NoError(t, err)
	require.NoError(t, h.engine.Start(ctx, math.ID))
	h.clock.Advance(10 * time.Minute)
	_, err = h.engine.PauseAll(ctx)
	require.NoError(t, err)

	// the app was closed overnight and reopened two days later
	h.clock.Set(at(2024, 1, 3, 7, 0, 0))
	res, err := sched.Resume(ctx)
	require.NoError(t, err)
	require.True(t, res.Rolled)
	assert.Equal(t, "2024-01-01", res.Previous)
	assert.Equal(t, "2024-01-01", res.Summary.Date)
	assert.Equal(t, int64(600), res.Summary.Total)

	stored := h.store.Stored(t, "u1")
	assert.Equal(t, "2024-01-03", stored.LastRolloverDate)
	require.Len(t, stored.Sessions, 1)
	assert.Equal(t, "2024-01-01", stored.Sessions[0].Date)
}

func TestSchedulerTreatsBackwardClockAsNewDay(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, at(2024, 1, 5, 10, 0, 0))
	sched := service.NewScheduler(h.engine, h.clock, h.tickers, time.Minute, logging.Discard())
	_, err := sched.Check(ctx)
	require.NoError(t, err)

	h.clock.Set(at(2024, 1, 4, 10, 0, 0))
	res, err := sched.Check(ctx)
	require.NoError(t, err)
	assert.True(t, res.Rolled)
	assert.Equal(t, "2024-01-04", h.engine.LastRolloverDate())
}

func TestSchedulerRunPollsUntilCancelled(t *testing.T) {
	t.Parallel()
	h := newHarness(t, at(2024, 1, 1, 23, 59, 0))
	sched := service.NewScheduler(h.engine, h.clock, h.tickers, time.Minute, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	require.Eventually(t, func() bool { return h.engine.LastRolloverDate() == "2024-01-01" }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return h.tickers.Count() == 1 }, time.Second, 5*time.Millisecond)

	h.clock.Set(at(2024, 1, 2, 0, 0, 30))
	h.tickers.Last().c <- time.Time{}
	require.Eventually(t, func() bool { return len(h.listener.All()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("scheduler did not stop")
	}
	assert.True(t, h.tickers.Last().Stopped())
}
