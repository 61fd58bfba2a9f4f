package cancel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randomizedcoder/can-msgqueue/internal/cancel"
)

func TestCanceler(t *testing.T) {
	tests := []struct {
		name string
		c    cancel.Canceler
	}{
		{"Context", cancel.NewContext(context.Background())},
		{"Atomic", cancel.NewAtomic()},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, tc.c.Done())
			tc.c.Cancel()
			assert.True(t, tc.c.Done())
			tc.c.Cancel()
			assert.True(t, tc.c.Done(), "Cancel is idempotent")
		})
	}
}

func TestContextCanceler_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	c := cancel.NewContext(parent)
	assert.NoError(t, c.Context().Err())

	cancelParent()
	assert.True(t, c.Done())
	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
}

func TestAtomicCanceler_Reset(t *testing.T) {
	c := cancel.NewAtomic()
	c.Cancel()
	c.Reset()
	assert.False(t, c.Done())
}

func TestWatch(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	stop := cancel.Watch(ctx, c)
	defer stop()

	assert.False(t, c.Done())
	cancelCtx()
	assert.Eventually(t, c.Done, time.Second, time.Millisecond)
}

func TestWatch_Stop(t *testing.T) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	c := cancel.NewAtomic()
	stop := cancel.Watch(ctx, c)

	stop()
	stop()
	cancelCtx()
	// Nothing to wait on; give a wrongly running watcher a chance to fire.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, c.Done())
}
