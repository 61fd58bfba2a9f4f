// Command canqbench compares the handle queue modes against a buffered
// channel.
//
// Each iteration adds one handle and reads one back. The priority run keeps
// the queue half full and adds the lowest ID every time, so every add shifts
// the whole backlog: its worst case.
//
// Usage:
//
//	go run ./cmd/canqbench -n 10000000 -size 16
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/randomizedcoder/can-msgqueue/internal/canframe"
	"github.com/randomizedcoder/can-msgqueue/internal/canq"
)

type result struct {
	name string
	dur  time.Duration
}

func main() {
	iterations := flag.Int("n", 10_000_000, "number of iterations")
	size := flag.Int("size", 16, "queue size (one slot stays unused)")
	flag.Parse()

	if *size < 3 {
		fmt.Fprintln(os.Stderr, "size must be at least 3")
		os.Exit(2)
	}

	fmt.Printf("Benchmarking CAN handle queue (%d iterations, size=%d)\n", *iterations, *size)
	fmt.Println("─────────────────────────────────────────────────")

	tbl := canframe.NewTable(*size)
	for i := 0; i < *size; i++ {
		_ = tbl.Put(canframe.Handle(i), canframe.Frame{ID: uint32(0x100 + i), DLC: 8})
	}

	results := []result{
		{"Channel", benchChannel(*iterations, *size)},
		{"Fifo", benchQueue(tbl, canq.Fifo, *iterations, *size, 0)},
		{"Priority", benchQueue(tbl, canq.Priority, *iterations, *size, (*size-1)/2)},
	}

	base := perOp(results[0].dur, *iterations)
	fmt.Printf("\nResults (add + read per iteration):\n")
	for _, r := range results {
		ns := perOp(r.dur, *iterations)
		fmt.Printf("  %-10s %v (%.2f ns/op, %.2fx vs channel)\n", r.name+":", r.dur, ns, base/ns)
	}

	fmt.Printf("\nThroughput (theoretical max):\n")
	for _, r := range results {
		fmt.Printf("  %-10s %.2f M frames/sec\n", r.name+":", 1000/perOp(r.dur, *iterations))
	}
}

func perOp(d time.Duration, n int) float64 {
	return float64(d.Nanoseconds()) / float64(n)
}

func benchChannel(n, size int) time.Duration {
	ch := make(chan canframe.Handle, size-1)
	start := time.Now()
	for i := 0; i < n; i++ {
		ch <- canframe.Handle(0)
		<-ch
	}
	return time.Since(start)
}

// benchQueue preloads backlog handles with high IDs, then adds handle 0
// (the lowest ID) and reads it back n times.
func benchQueue(tbl *canframe.Table, mode canq.Mode, n, size, backlog int) time.Duration {
	q, err := canq.New[canframe.Handle, canframe.Frame](make([]canframe.Handle, size), tbl, mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for i := 0; i < backlog; i++ {
		_ = q.Add(canframe.Handle(size - 1 - i))
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		if mode == canq.Priority {
			_ = q.Add(0)
			_, _, _ = q.Read()
			continue
		}
		_ = q.Add(canframe.Handle(i % size))
		_, _, _ = q.Read()
	}
	return time.Since(start)
}
