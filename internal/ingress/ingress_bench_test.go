package ingress_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/randomizedcoder/can-msgqueue/internal/canq"
	"github.com/randomizedcoder/can-msgqueue/internal/ingress"
)

// ============================================================================
// Ingress vs mutex: N producers feeding one canq queue
// ============================================================================
//
// canq.Queue is single-producer. The two ways to share it are a mutex around
// Add, or an MPSC ring drained by the consumer goroutine.

var sinkMoved int

func benchQueue(b *testing.B) *canq.Queue[id, id] {
	b.Helper()
	q, err := canq.New[id, id](make([]id, 256), canq.ResolverFunc[id, id](func(h id) id { return h }), canq.Fifo)
	if err != nil {
		b.Fatal(err)
	}
	return q
}

// BenchmarkIngress_SingleProducer - Submit then Drain on one goroutine
func BenchmarkIngress_SingleProducer(b *testing.B) {
	q := benchQueue(b)
	in, err := ingress.New[id](1024, 1, q, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	moved := 0
	for i := 0; i < b.N; i++ {
		in.Submit(0, id(i))
		n, _ := in.Drain(1)
		moved += n
		_, _, _ = q.Read()
	}
	sinkMoved = moved
}

// BenchmarkIngress_4P - 4 producers through the sharded ring
func BenchmarkIngress_4P(b *testing.B) {
	q := benchQueue(b)
	in, err := ingress.New[id](1024, 4, q, nil)
	if err != nil {
		b.Fatal(err)
	}
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-done:
				return
			default:
				_, _ = in.Drain(64)
				for {
					if _, _, err := q.Read(); err != nil {
						break
					}
				}
			}
		}
	}()

	var producerID atomic.Uint64
	b.SetParallelism(4)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		pid := producerID.Add(1) - 1
		i := 0
		for pb.Next() {
			for !in.Submit(pid, id(i)) {
			}
			i++
		}
	})

	b.StopTimer()
	close(done)
	<-consumerDone
}

// BenchmarkMutex_4P - 4 producers serialised on a mutex around Add
func BenchmarkMutex_4P(b *testing.B) {
	q := benchQueue(b)
	var mu sync.Mutex
	done := make(chan struct{})
	consumerDone := make(chan struct{})

	go func() {
		defer close(consumerDone)
		for {
			select {
			case <-done:
				return
			default:
				mu.Lock()
				for {
					if _, _, err := q.Read(); err != nil {
						break
					}
				}
				mu.Unlock()
			}
		}
	}()

	b.SetParallelism(4)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			for {
				mu.Lock()
				err := q.Add(id(i))
				mu.Unlock()
				if err == nil {
					break
				}
			}
			i++
		}
	})

	b.StopTimer()
	close(done)
	<-consumerDone
}
