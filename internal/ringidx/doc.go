// Package ringidx provides the cursor arithmetic for a fixed-capacity ring.
//
// An Index tracks a write cursor and a read cursor over [0, n) and nothing
// else. There is no element counter: one slot of the ring is always left
// unused so that "full" (Next(w) == r) and "empty" (w == r) can be told
// apart from the two cursors alone. The usable capacity is therefore n-1.
//
// The Index never touches element storage. Callers reserve a slot with
// ReserveWrite or ReserveRead and then access their own backing slice at the
// returned position.
//
// # Concurrency
//
// An Index is NOT safe for concurrent use. The intended pattern is one
// producer calling ReserveWrite and one consumer calling ReserveRead, with
// the caller serialising the two (interrupt masking, a mutex, or keeping
// both in a single goroutine). Reset must never race with either side.
package ringidx
