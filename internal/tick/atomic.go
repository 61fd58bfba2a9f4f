package tick

import (
	"sync/atomic"
	"time"
	_ "unsafe" // go:linkname
)

// nanotime is the runtime's monotonic clock; cheaper than time.Now.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// AtomicTicker compares the monotonic clock with the last tick and claims
// the tick with a CAS, so only one poller wins each interval.
type AtomicTicker struct {
	interval int64
	last     atomic.Int64
}

// NewAtomicTicker returns an AtomicTicker whose first tick is one interval away.
func NewAtomicTicker(interval time.Duration) *AtomicTicker {
	a := &AtomicTicker{interval: int64(interval)}
	a.last.Store(nanotime())
	return a
}

func (a *AtomicTicker) Tick() bool {
	now := nanotime()
	last := a.last.Load()
	return now-last >= a.interval && a.last.CompareAndSwap(last, now)
}

func (a *AtomicTicker) Reset() { a.last.Store(nanotime()) }

func (a *AtomicTicker) Stop() {}

// Interval returns the dispatch period.
func (a *AtomicTicker) Interval() time.Duration { return time.Duration(a.interval) }
