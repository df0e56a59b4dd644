package layout

import "time"

// Ticker delivers interpolation ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker with the given period.
type TickerFactory func(period time.Duration) Ticker

type timeTicker struct {
	t *time.Ticker
}

// NewTimeTicker is the TickerFactory backed by time.Ticker.
func NewTimeTicker(period time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(period)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }
