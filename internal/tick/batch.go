package tick

import "time"

// BatchTicker reads the clock only on every Nth poll.
//
// With every=64 and a 1ms interval a busy scheduler loop pays for one
// time.Now per 64 passes; the step may start up to 63 polls late.
// Not safe for concurrent use.
type BatchTicker struct {
	interval time.Duration
	every    int
	polls    int
	last     time.Time
}

// NewBatch returns a BatchTicker; every < 1 is treated as 1.
func NewBatch(interval time.Duration, every int) *BatchTicker {
	return &BatchTicker{
		interval: interval,
		every:    max(every, 1),
		last:     time.Now(),
	}
}

// Tick reports whether interval has elapsed, checking the clock only when
// the poll count reaches a multiple of every.
func (b *BatchTicker) Tick() bool {
	b.polls++
	if b.polls < b.every {
		return false
	}
	b.polls = 0

	if now := time.Now(); now.Sub(b.last) >= b.interval {
		b.last = now
		return true
	}
	return false
}

func (b *BatchTicker) Reset() {
	b.polls = 0
	b.last = time.Now()
}

func (b *BatchTicker) Stop() {}

// Every returns the poll batch size.
func (b *BatchTicker) Every() int { return b.every }

// Interval returns the dispatch period.
func (b *BatchTicker) Interval() time.Duration { return b.interval }
