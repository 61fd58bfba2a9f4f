package ringidx

import "errors"

// MinSize is the smallest ring that can hold an element.
const MinSize = 2

// ErrCapacity is returned when a ring is sized below MinSize.
var ErrCapacity = errors.New("ringidx: capacity must be at least 2")

// State classifies the occupancy of an Index.
type State int

const (
	// StateReady means the ring holds at least one element and has room for another.
	StateReady State = iota
	// StateEmpty means the cursors are equal.
	StateEmpty
	// StateFull means the slot after the write cursor is the read cursor.
	StateFull
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateEmpty:
		return "empty"
	case StateFull:
		return "full"
	default:
		return "unknown"
	}
}

// Index is a write/read cursor pair over a ring of n slots.
//
// The zero value is not usable; call New or Init first.
type Index struct {
	w int // next slot to be written
	r int // next slot to be read
	n int
}

// New returns an Index over size slots with both cursors at 0.
func New(size int) (*Index, error) {
	x := &Index{}
	if err := x.Init(size); err != nil {
		return nil, err
	}
	return x, nil
}

// Init (re)binds x to size slots and rewinds both cursors.
func (x *Index) Init(size int) error {
	if size < MinSize {
		return ErrCapacity
	}
	x.n = size
	x.w, x.r = 0, 0
	return nil
}

// Next returns the slot after i, wrapping to 0.
func (x *Index) Next(i int) int {
	i++
	if i >= x.n {
		return 0
	}
	return i
}

// Prev returns the slot before i, wrapping to n-1.
func (x *Index) Prev(i int) int {
	if i <= 0 {
		return x.n - 1
	}
	return i - 1
}

// ReserveWrite claims the slot at the write cursor and advances it.
// It returns ok=false, without moving either cursor, when the ring is full.
func (x *Index) ReserveWrite() (slot int, ok bool) {
	n := x.Next(x.w)
	if n == x.r {
		return 0, false
	}
	slot = x.w
	x.w = n
	return slot, true
}

// ReserveRead releases the slot at the read cursor and advances it.
// It returns ok=false when the ring is empty.
func (x *Index) ReserveRead() (slot int, ok bool) {
	if x.w == x.r {
		return 0, false
	}
	slot = x.r
	x.r = x.Next(x.r)
	return slot, true
}

// Status reports the number of occupied slots and the occupancy state.
// It never mutates x.
func (x *Index) Status() (int, State) {
	if x.w == x.r {
		return 0, StateEmpty
	}
	if x.Next(x.w) == x.r {
		return x.n - 1, StateFull
	}
	return x.count(), StateReady
}

// count must branch on the cursor order: after the write cursor wraps past
// slot 0 it sits below the read cursor and w-r would go negative.
func (x *Index) count() int {
	if x.w >= x.r {
		return x.w - x.r
	}
	return (x.n - x.r) + x.w
}

// Len returns the number of occupied slots.
func (x *Index) Len() int {
	return x.count()
}

// Cap returns the number of usable slots, one less than Size.
func (x *Index) Cap() int {
	return x.n - 1
}

// Size returns the number of slots in the ring, including the reserved one.
func (x *Index) Size() int {
	return x.n
}

// Write returns the write cursor.
func (x *Index) Write() int {
	return x.w
}

// Read returns the read cursor.
func (x *Index) Read() int {
	return x.r
}

// Reset rewinds both cursors to 0. Slots are not touched.
func (x *Index) Reset() {
	x.w, x.r = 0, 0
}
