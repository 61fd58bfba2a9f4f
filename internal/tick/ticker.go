package tick

import "time"

// StdTicker polls a time.Ticker channel without blocking.
type StdTicker struct {
	t        *time.Ticker
	interval time.Duration
}

// NewTicker starts a StdTicker firing every interval.
func NewTicker(interval time.Duration) *StdTicker {
	return &StdTicker{t: time.NewTicker(interval), interval: interval}
}

// Tick reports whether the channel has a pending tick.
func (s *StdTicker) Tick() bool {
	select {
	case <-s.t.C:
		return true
	default:
		return false
	}
}

func (s *StdTicker) Reset() { s.t.Reset(s.interval) }

func (s *StdTicker) Stop() { s.t.Stop() }

// Interval returns the dispatch period.
func (s *StdTicker) Interval() time.Duration { return s.interval }
