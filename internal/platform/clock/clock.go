package clock

import "time"

// Clock abstracts time to keep timers and rollover checks deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Ticker delivers periodic wakeups. Stop must be safe to call more than once.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates tickers; engines own the tickers they create.
type TickerFactory interface {
	NewTicker(d time.Duration) Ticker
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }

func (s *systemTicker) Stop() { s.t.Stop() }
