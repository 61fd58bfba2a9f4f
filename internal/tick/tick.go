// Package tick paces the scheduler's dispatch loop.
//
// The scheduler polls Tick() on every pass of its loop and only runs a
// dispatch step when it returns true. Implementations trade precision for
// polling cost:
//   - StdTicker: time.Ticker channel, one select per poll
//   - BatchTicker: reads the clock once every N polls
//   - AtomicTicker: runtime monotonic clock and a CAS
//   - Always: every poll is a tick (step as fast as the loop spins)
//   - Manual: ticks only after Fire(), for deterministic tests
package tick

import (
	"sync/atomic"
	"time"
)

// Ticker signals that the next dispatch step is due.
type Ticker interface {
	// Tick reports whether a step is due. It never blocks.
	Tick() bool

	// Reset restarts the current interval from now.
	Reset()

	// Stop releases resources. The ticker must not be used afterwards.
	Stop()
}

// DefaultInterval is the dispatch period used when none is configured.
const DefaultInterval = time.Millisecond

// Always ticks on every poll.
type Always struct{}

func (Always) Tick() bool { return true }
func (Always) Reset()     {}
func (Always) Stop()      {}

// Manual ticks once for each call to Fire. Safe for concurrent use.
type Manual struct {
	pending atomic.Int64
}

// Fire queues one tick.
func (m *Manual) Fire() {
	m.pending.Add(1)
}

// Tick consumes one queued tick, if any.
func (m *Manual) Tick() bool {
	for {
		n := m.pending.Load()
		if n == 0 {
			return false
		}
		if m.pending.CompareAndSwap(n, n-1) {
			return true
		}
	}
}

// Reset drops queued ticks.
func (m *Manual) Reset() {
	m.pending.Store(0)
}

// Stop is a no-op.
func (m *Manual) Stop() {}

// New returns the ticker named by kind: "std", "batch", "atomic" or
// "always". Unknown kinds fall back to AtomicTicker. every is only used by
// "batch".
func New(kind string, interval time.Duration, every int) Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	switch kind {
	case "std":
		return NewTicker(interval)
	case "batch":
		return NewBatch(interval, every)
	case "always":
		return Always{}
	default:
		return NewAtomicTicker(interval)
	}
}
