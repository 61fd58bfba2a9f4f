// Package cancel tells the scheduler loop when to stop.
//
// The loop polls Done() once per pass, so the check has to be cheap:
//   - ContextCanceler: select on ctx.Done(), for callers that already have a context
//   - AtomicCanceler: one atomic load
//
// Watch bridges the two: it cancels an AtomicCanceler when a context ends,
// so signal handling can use contexts while the hot loop polls an atomic.
package cancel

import (
	"context"
	"sync"
)

// Canceler is a stop flag for a polling loop.
//
// Implementations are safe for concurrent use: any goroutine may call
// Cancel while the loop calls Done.
type Canceler interface {
	// Done reports whether Cancel has been called.
	Done() bool

	// Cancel sets the flag. Repeated calls are no-ops.
	Cancel()
}

// Watch cancels c once ctx is done. The returned function stops watching
// without cancelling c.
func Watch(ctx context.Context, c Canceler) (stop func()) {
	quit := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			select {
			case <-quit:
			default:
				c.Cancel()
			}
		case <-quit:
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(quit) }) }
}
