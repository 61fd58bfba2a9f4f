package canq

import (
	"errors"

	"go.uber.org/zap"

	"github.com/randomizedcoder/can-msgqueue/internal/ringidx"
)

var (
	// ErrFull is returned by Add when no slot is free, and by Status when the queue is full.
	ErrFull = errors.New("canq: queue is full")
	// ErrEmpty is returned by Read and Peek when nothing is queued, and by Status when empty.
	ErrEmpty = errors.New("canq: queue is empty")
	// ErrCapacity is returned by New when the backing slice has fewer than two slots.
	ErrCapacity = ringidx.ErrCapacity
	// ErrNilResolver is returned by New when no resolver is given.
	ErrNilResolver = errors.New("canq: nil resolver")
	// ErrMode is returned for an unknown Mode.
	ErrMode = errors.New("canq: unknown mode")
)

// OrderedView is what a Resolver produces for a handle. CanID is the
// ordering key; a smaller value means a higher priority.
type OrderedView interface {
	CanID() uint32
}

// Resolver maps a handle to its view. Resolve must not modify what the
// handle refers to; Priority queues call it for every entry they scan.
type Resolver[H any, V OrderedView] interface {
	Resolve(h H) V
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc[H any, V OrderedView] func(h H) V

// Resolve calls f(h).
func (f ResolverFunc[H, V]) Resolve(h H) V {
	return f(h)
}

// Queue is a fixed-capacity queue of handles of type H whose views of type
// V carry the ordering key.
type Queue[H any, V OrderedView] struct {
	idx  ringidx.Index
	buf  []H
	res  Resolver[H, V]
	mode Mode
	add  func(h H) error

	obs      Observer
	observed bool
	log      *zap.Logger
}

// New binds a queue to storage, which must stay alive and untouched by the
// caller for the lifetime of the queue. len(storage) is the ring size; the
// queue holds at most len(storage)-1 handles.
func New[H any, V OrderedView](storage []H, res Resolver[H, V], mode Mode, opts ...Option) (*Queue[H, V], error) {
	if res == nil {
		return nil, ErrNilResolver
	}
	if !mode.valid() {
		return nil, ErrMode
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	q := &Queue[H, V]{
		buf:  storage,
		res:  res,
		mode: mode,
		obs:  o.obs,
		log:  o.log,
	}
	if err := q.idx.Init(len(storage)); err != nil {
		return nil, err
	}
	_, nop := o.obs.(NopObserver)
	q.observed = !nop

	switch mode {
	case Priority:
		q.add = q.addPriority
	default:
		q.add = q.addFifo
	}
	return q, nil
}

// Add enqueues h. It returns ErrFull, leaving the queue unchanged, when no
// slot is free. In Priority mode a handle whose key is already queued is
// dropped and Add returns nil.
func (q *Queue[H, V]) Add(h H) error {
	return q.add(h)
}

func (q *Queue[H, V]) addFifo(h H) error {
	slot, ok := q.idx.ReserveWrite()
	if !ok {
		if q.observed {
			q.obs.Overflow(q.key(h))
		}
		q.debug("queue full", zap.Stringer("mode", q.mode))
		return ErrFull
	}
	q.buf[slot] = h
	if q.observed {
		q.obs.Added(q.key(h))
	}
	return nil
}

func (q *Queue[H, V]) addPriority(h H) error {
	key := q.key(h)

	pos, dup := q.findPos(key)
	if dup {
		q.obs.Coalesced(key)
		q.debug("duplicate id coalesced", zap.Uint32("can_id", key))
		return nil
	}

	slot, ok := q.idx.ReserveWrite()
	if !ok {
		q.obs.Overflow(key)
		q.debug("queue full", zap.Stringer("mode", q.mode), zap.Uint32("can_id", key))
		return ErrFull
	}

	// Open a gap at pos by moving [pos, slot) one step toward the write end.
	for n := slot; n != pos; {
		p := q.idx.Prev(n)
		q.buf[n] = q.buf[p]
		n = p
	}
	q.buf[pos] = h
	q.obs.Added(key)
	return nil
}

// findPos scans from the read cursor toward the write cursor and returns the
// first slot holding a larger key, or the write cursor if there is none.
// dup reports that key is already queued.
func (q *Queue[H, V]) findPos(key uint32) (pos int, dup bool) {
	w := q.idx.Write()
	for pos = q.idx.Read(); pos != w; pos = q.idx.Next(pos) {
		k := q.key(q.buf[pos])
		if k == key {
			return pos, true
		}
		if k > key {
			break
		}
	}
	return pos, false
}

// Read dequeues the handle at the read end and returns it with its view.
// The vacated slot is not cleared.
func (q *Queue[H, V]) Read() (H, V, error) {
	slot, ok := q.idx.ReserveRead()
	if !ok {
		q.obs.Underflow()
		var h H
		var v V
		return h, v, ErrEmpty
	}
	h := q.buf[slot]
	v := q.res.Resolve(h)
	q.obs.Removed(v.CanID())
	return h, v, nil
}

// Peek returns the handle Read would return next without consuming it.
func (q *Queue[H, V]) Peek() (H, V, error) {
	var h H
	var v V
	if _, st := q.idx.Status(); st == ringidx.StateEmpty {
		return h, v, ErrEmpty
	}
	h = q.buf[q.idx.Read()]
	return h, q.res.Resolve(h), nil
}

// Status returns the number of queued handles. The error is ErrEmpty or
// ErrFull at either bound, nil otherwise; the count is valid in all cases.
func (q *Queue[H, V]) Status() (int, error) {
	n, st := q.idx.Status()
	switch st {
	case ringidx.StateEmpty:
		return n, ErrEmpty
	case ringidx.StateFull:
		return n, ErrFull
	default:
		return n, nil
	}
}

// Snapshot appends the queued handles, oldest first, to dst and returns it.
func (q *Queue[H, V]) Snapshot(dst []H) []H {
	w := q.idx.Write()
	for i := q.idx.Read(); i != w; i = q.idx.Next(i) {
		dst = append(dst, q.buf[i])
	}
	return dst
}

// Reset discards every queued handle. Storage is left as is; stale entries
// are unreachable and get overwritten by later adds.
func (q *Queue[H, V]) Reset() {
	q.idx.Reset()
	q.obs.Rewound()
}

// Len returns the number of queued handles.
func (q *Queue[H, V]) Len() int { return q.idx.Len() }

// Cap returns the maximum number of handles the queue can hold.
func (q *Queue[H, V]) Cap() int { return q.idx.Cap() }

// Mode returns the discipline chosen at construction.
func (q *Queue[H, V]) Mode() Mode { return q.mode }

func (q *Queue[H, V]) key(h H) uint32 {
	return q.res.Resolve(h).CanID()
}

func (q *Queue[H, V]) debug(msg string, fields ...zap.Field) {
	if ce := q.log.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(fields...)
	}
}
