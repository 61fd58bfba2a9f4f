package tick_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/randomizedcoder/can-msgqueue/internal/tick"
)

const interval = 30 * time.Millisecond

// testInterval checks the common contract of the clock-driven tickers: no
// tick before the interval, one tick after it, none right after that, and
// none right after Reset.
func testInterval(t *testing.T, tk tick.Ticker, pollsPerCheck int) {
	t.Helper()
	defer tk.Stop()

	poll := func() bool {
		got := false
		for i := 0; i < pollsPerCheck; i++ {
			got = tk.Tick() || got
		}
		return got
	}

	assert.False(t, poll(), "tick before interval")
	time.Sleep(interval + 20*time.Millisecond)
	assert.True(t, poll(), "no tick after interval")
	assert.False(t, poll(), "second tick without waiting")

	time.Sleep(interval + 20*time.Millisecond)
	tk.Reset()
	assert.False(t, poll(), "tick right after Reset")
}

func TestStdTicker(t *testing.T) {
	testInterval(t, tick.NewTicker(interval), 1)
}

func TestAtomicTicker(t *testing.T) {
	testInterval(t, tick.NewAtomicTicker(interval), 1)
}

func TestBatchTicker(t *testing.T) {
	testInterval(t, tick.NewBatch(interval, 8), 8)
}

func TestBatchTicker_OnlyChecksEveryN(t *testing.T) {
	b := tick.NewBatch(time.Nanosecond, 5)
	time.Sleep(time.Millisecond)

	for i := 0; i < 4; i++ {
		assert.False(t, b.Tick(), "poll %d should not read the clock", i+1)
	}
	assert.True(t, b.Tick(), "5th poll reads the clock")
	assert.Equal(t, 5, b.Every())
	assert.Equal(t, 1, tick.NewBatch(interval, 0).Every())
}

func TestAlways(t *testing.T) {
	var a tick.Always
	for i := 0; i < 3; i++ {
		assert.True(t, a.Tick())
	}
}

func TestManual(t *testing.T) {
	m := &tick.Manual{}
	assert.False(t, m.Tick())

	m.Fire()
	m.Fire()
	assert.True(t, m.Tick())
	assert.True(t, m.Tick())
	assert.False(t, m.Tick())

	m.Fire()
	m.Reset()
	assert.False(t, m.Tick())
}

func TestNew(t *testing.T) {
	tests := []struct {
		kind string
		want tick.Ticker
	}{
		{"std", &tick.StdTicker{}},
		{"batch", &tick.BatchTicker{}},
		{"always", tick.Always{}},
		{"atomic", &tick.AtomicTicker{}},
		{"", &tick.AtomicTicker{}},
	}
	for _, tc := range tests {
		tk := tick.New(tc.kind, 0, 4)
		assert.IsType(t, tc.want, tk, "kind %q", tc.kind)
		tk.Stop()
	}
}
