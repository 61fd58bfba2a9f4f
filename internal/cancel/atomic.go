package cancel

import "sync/atomic"

// AtomicCanceler is a stop flag backed by atomic.Bool.
type AtomicCanceler struct {
	done atomic.Bool
}

// NewAtomic returns an AtomicCanceler that is not done.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

func (a *AtomicCanceler) Done() bool { return a.done.Load() }

func (a *AtomicCanceler) Cancel() { a.done.Store(true) }

// Reset clears the flag so a stopped scheduler can be run again.
// Must not race with Run.
func (a *AtomicCanceler) Reset() { a.done.Store(false) }
