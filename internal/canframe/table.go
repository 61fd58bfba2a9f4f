package canframe

import "errors"

// ErrHandle is returned for a handle outside the table.
var ErrHandle = errors.New("canframe: handle out of range")

// Handle identifies a frame slot in a Table.
type Handle uint16

// Table is a fixed set of frame slots addressed by Handle. It resolves
// handles for canq queues, which store handles only.
//
// Table does no locking. Writers must not Put into a slot whose handle is
// currently queued.
type Table struct {
	frames []Frame
}

// NewTable returns a table with n zeroed slots.
func NewTable(n int) *Table {
	return &Table{frames: make([]Frame, n)}
}

// Len returns the number of slots.
func (t *Table) Len() int {
	return len(t.frames)
}

// Put stores f at h.
func (t *Table) Put(h Handle, f Frame) error {
	if int(h) >= len(t.frames) {
		return ErrHandle
	}
	t.frames[h] = f
	return nil
}

// Get returns the frame at h.
func (t *Table) Get(h Handle) (Frame, error) {
	if int(h) >= len(t.frames) {
		return Frame{}, ErrHandle
	}
	return t.frames[h], nil
}

// Resolve returns the frame at h, or the zero frame for an unknown handle.
func (t *Table) Resolve(h Handle) Frame {
	if int(h) >= len(t.frames) {
		return Frame{}
	}
	return t.frames[h]
}
