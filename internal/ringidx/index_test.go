package ringidx_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/can-msgqueue/internal/ringidx"
)

func TestNew_RejectsSmallRings(t *testing.T) {
	for _, size := range []int{-1, 0, 1} {
		_, err := ringidx.New(size)
		assert.ErrorIs(t, err, ringidx.ErrCapacity, "size %d", size)
	}

	x, err := ringidx.New(2)
	require.NoError(t, err)
	assert.Equal(t, 1, x.Cap())
	assert.Equal(t, 2, x.Size())
}

func TestNextPrev_Wrap(t *testing.T) {
	x, err := ringidx.New(4)
	require.NoError(t, err)

	assert.Equal(t, 1, x.Next(0))
	assert.Equal(t, 0, x.Next(3))
	assert.Equal(t, 3, x.Prev(0))
	assert.Equal(t, 2, x.Prev(3))

	for i := 0; i < 4; i++ {
		assert.Equal(t, i, x.Prev(x.Next(i)))
	}
}

func TestReserveWrite_FullAfterCapMinusOne(t *testing.T) {
	for size := 2; size <= 9; size++ {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			x, err := ringidx.New(size)
			require.NoError(t, err)

			for i := 0; i < size-1; i++ {
				slot, ok := x.ReserveWrite()
				require.True(t, ok, "write %d", i)
				assert.Equal(t, i, slot)
			}

			w, r := x.Write(), x.Read()
			_, ok := x.ReserveWrite()
			assert.False(t, ok, "expected full")
			assert.Equal(t, w, x.Write(), "full reserve must not move the write cursor")
			assert.Equal(t, r, x.Read())

			_, ok = x.ReserveRead()
			require.True(t, ok)
			_, ok = x.ReserveWrite()
			assert.True(t, ok, "one read frees one slot")
		})
	}
}

func TestReserveRead_Empty(t *testing.T) {
	x, err := ringidx.New(3)
	require.NoError(t, err)

	_, ok := x.ReserveRead()
	assert.False(t, ok)

	slot, ok := x.ReserveWrite()
	require.True(t, ok)
	got, ok := x.ReserveRead()
	require.True(t, ok)
	assert.Equal(t, slot, got)

	_, ok = x.ReserveRead()
	assert.False(t, ok)
}

func TestStatus_States(t *testing.T) {
	x, err := ringidx.New(3)
	require.NoError(t, err)

	n, st := x.Status()
	assert.Equal(t, ringidx.StateEmpty, st)
	assert.Equal(t, 0, n)

	x.ReserveWrite()
	n, st = x.Status()
	assert.Equal(t, ringidx.StateReady, st)
	assert.Equal(t, 1, n)

	x.ReserveWrite()
	n, st = x.Status()
	assert.Equal(t, ringidx.StateFull, st)
	assert.Equal(t, 2, n)
}

// TestStatus_CountAfterWrap is the regression for the wrapped write cursor:
// once w < r the count must come from (n - r) + w.
func TestStatus_CountAfterWrap(t *testing.T) {
	x, err := ringidx.New(5)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		x.ReserveWrite()
	}
	for i := 0; i < 3; i++ {
		x.ReserveRead()
	}
	// w=4 r=3; two more writes wrap w to 1.
	x.ReserveWrite()
	x.ReserveWrite()
	require.Less(t, x.Write(), x.Read(), "write cursor should have wrapped")

	n, st := x.Status()
	assert.Equal(t, ringidx.StateReady, st)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, x.Len())
}

func TestStatus_TracksAddsMinusReads(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x, err := ringidx.New(7)
	require.NoError(t, err)

	adds, reads, wraps := 0, 0, 0
	for step := 0; step < 5000; step++ {
		if rng.Intn(2) == 0 {
			before := x.Write()
			if _, ok := x.ReserveWrite(); ok {
				adds++
				if x.Write() < before {
					wraps++
				}
			}
		} else if _, ok := x.ReserveRead(); ok {
			reads++
		}

		n, st := x.Status()
		require.Equal(t, adds-reads, n, "step %d", step)
		switch {
		case n == 0:
			require.Equal(t, ringidx.StateEmpty, st)
		case n == x.Cap():
			require.Equal(t, ringidx.StateFull, st)
		default:
			require.Equal(t, ringidx.StateReady, st)
		}
	}
	assert.Greater(t, wraps, 0, "sequence never wrapped")
}

func TestStatus_Idempotent(t *testing.T) {
	x, err := ringidx.New(4)
	require.NoError(t, err)
	x.ReserveWrite()
	x.ReserveWrite()

	w, r := x.Write(), x.Read()
	for i := 0; i < 10; i++ {
		n, st := x.Status()
		assert.Equal(t, 2, n)
		assert.Equal(t, ringidx.StateReady, st)
	}
	assert.Equal(t, w, x.Write())
	assert.Equal(t, r, x.Read())
}

func TestReset(t *testing.T) {
	x, err := ringidx.New(4)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		x.ReserveWrite()
	}
	x.ReserveRead()

	x.Reset()
	_, st := x.Status()
	assert.Equal(t, ringidx.StateEmpty, st)

	slot, ok := x.ReserveWrite()
	require.True(t, ok)
	assert.Equal(t, 0, slot)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", ringidx.StateReady.String())
	assert.Equal(t, "empty", ringidx.StateEmpty.String())
	assert.Equal(t, "full", ringidx.StateFull.String())
	assert.Equal(t, "unknown", ringidx.State(42).String())
}
