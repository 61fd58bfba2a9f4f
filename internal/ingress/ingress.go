// Package ingress lets many goroutines feed a single-producer canq queue.
//
// Producers Submit handles into a sharded lock-free MPSC ring; the one
// goroutine that owns the queue calls Drain to move them across. That keeps
// the queue itself confined to a single goroutine, which is the only
// discipline canq supports.
//
// # MPSC CONTRACT
//
// Submit may be called from any number of goroutines. Drain, Pending and
// everything on the destination queue must stay on one goroutine.
package ingress

import (
	"errors"
	"fmt"
	"sync/atomic"

	ring "github.com/randomizedcoder/go-lock-free-ring"
	"go.uber.org/zap"

	"github.com/randomizedcoder/can-msgqueue/internal/canq"
)

// ErrShards is returned when shards is zero.
var ErrShards = errors.New("ingress: shards must be > 0")

// Sink is the single-producer side of a queue.
type Sink[H any] interface {
	Add(h H) error
}

// Ingress buffers handles from many producers for one Sink.
type Ingress[H any] struct {
	ring *ring.ShardedRing
	sink Sink[H]
	log  *zap.Logger

	// Handle refused by a full sink, retried before reading the ring again.
	parked    H
	hasParked bool

	submitted atomic.Uint64
	rejected  atomic.Uint64
}

// New creates an Ingress with capacity slots split over shards.
func New[H any](capacity, shards uint64, sink Sink[H], log *zap.Logger) (*Ingress[H], error) {
	if shards == 0 {
		return nil, ErrShards
	}
	r, err := ring.NewShardedRing(capacity, shards)
	if err != nil {
		return nil, fmt.Errorf("ingress: create ring: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingress[H]{
		ring: r,
		sink: sink,
		log:  log.Named("ingress"),
	}, nil
}

// Submit hands h to the consumer. It returns false when the producer's
// shard is full; the caller decides whether to retry or drop.
func (in *Ingress[H]) Submit(producerID uint64, h H) bool {
	if !in.ring.Write(producerID, h) {
		in.rejected.Add(1)
		return false
	}
	in.submitted.Add(1)
	return true
}

// Drain moves up to max handles into the sink; max <= 0 means until the ring
// is empty. When the sink reports canq.ErrFull the handle is parked, Drain
// returns the wrapped error, and the next Drain retries it first. Any other
// sink error drops the handle.
func (in *Ingress[H]) Drain(max int) (moved int, err error) {
	for max <= 0 || moved < max {
		h, ok := in.next()
		if !ok {
			return moved, nil
		}

		if err := in.sink.Add(h); err != nil {
			if errors.Is(err, canq.ErrFull) {
				in.parked, in.hasParked = h, true
				return moved, fmt.Errorf("ingress: %w", err)
			}
			in.hasParked = false
			in.log.Warn("handle dropped", zap.Error(err))
			return moved, fmt.Errorf("ingress: add: %w", err)
		}
		in.hasParked = false
		moved++
	}
	return moved, nil
}

func (in *Ingress[H]) next() (H, bool) {
	if in.hasParked {
		return in.parked, true
	}
	for {
		v, ok := in.ring.TryRead()
		if !ok {
			var zero H
			return zero, false
		}
		h, ok := v.(H)
		if !ok {
			in.log.Error("unexpected value in ring", zap.Any("value", v))
			continue
		}
		return h, true
	}
}

// Pending reports whether a handle is parked waiting for sink space.
func (in *Ingress[H]) Pending() bool {
	return in.hasParked
}

// Submitted returns the number of accepted Submit calls.
func (in *Ingress[H]) Submitted() uint64 {
	return in.submitted.Load()
}

// Rejected returns the number of Submit calls refused by a full shard.
func (in *Ingress[H]) Rejected() uint64 {
	return in.rejected.Load()
}
