package cancel

import "context"

// ContextCanceler polls a cancellable child of a parent context.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContext derives a cancellable context from parent. Cancelling parent
// also makes Done true.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancel(parent)
	return &ContextCanceler{ctx: ctx, cancel: cancel}
}

func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

func (c *ContextCanceler) Cancel() { c.cancel() }

// Context returns the derived context, e.g. for a Transmitter that blocks.
func (c *ContextCanceler) Context() context.Context { return c.ctx }
