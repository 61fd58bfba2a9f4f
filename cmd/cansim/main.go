// Command cansim runs the transmit path end to end against a simulated bus.
//
// Several producer goroutines submit frame handles at random; the scheduler
// drains them into a handle queue and "transmits" them in queue order. In
// priority mode a burst of submissions leaves the bus in ascending CAN ID
// order and repeated IDs are coalesced.
//
// Usage:
//
//	go run ./cmd/cansim -config canq.yaml -duration 5s -metrics :9102
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"go.uber.org/zap"

	"github.com/randomizedcoder/can-msgqueue/internal/cancel"
	"github.com/randomizedcoder/can-msgqueue/internal/canframe"
	"github.com/randomizedcoder/can-msgqueue/internal/canq"
	"github.com/randomizedcoder/can-msgqueue/internal/config"
	"github.com/randomizedcoder/can-msgqueue/internal/det"
	"github.com/randomizedcoder/can-msgqueue/internal/ingress"
	"github.com/randomizedcoder/can-msgqueue/internal/logging"
	"github.com/randomizedcoder/can-msgqueue/internal/scheduler"
	"github.com/randomizedcoder/can-msgqueue/internal/telemetry"
	"github.com/randomizedcoder/can-msgqueue/internal/tick"
)

// flushSteps bounds the drain after shutdown when the bus keeps failing.
const flushSteps = 1000

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default: ./canq.yaml if present)")
	duration := flag.Duration("duration", 0, "run time, overrides sim.duration")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	failEvery := flag.Int("fail-every", 0, "fail every Nth transmit (0 = never)")
	flag.Parse()

	if err := run(*cfgPath, *duration, *metricsAddr, *failEvery); err != nil {
		fmt.Fprintln(os.Stderr, "cansim:", err)
		os.Exit(1)
	}
}

func run(cfgPath string, duration time.Duration, metricsAddr string, failEvery int) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if duration > 0 {
		cfg.Sim.Duration = duration
	}

	log, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("configuration loaded",
		zap.String("file", cfg.Source),
		zap.Int("capacity", cfg.Queue.Capacity),
		zap.String("mode", cfg.Mode().String()),
		zap.Duration("duration", cfg.Sim.Duration))

	reg := prometheus.NewRegistry()
	qm := telemetry.NewQueueMetrics(reg, cfg.Metrics.Prefix, "tx")
	sm := telemetry.NewSchedulerMetrics(reg, cfg.Metrics.Prefix)

	tbl := buildTable(cfg.Sim.IDs)
	q, err := canq.New[canframe.Handle, canframe.Frame](
		make([]canframe.Handle, cfg.Queue.Capacity), tbl, cfg.Mode(),
		canq.WithObserver(qm),
		canq.WithLogger(log))
	if err != nil {
		return err
	}

	in, err := ingress.New[canframe.Handle](cfg.Ingress.Capacity, cfg.Ingress.Shards, q, log)
	if err != nil {
		return err
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()
	ctx, cancelRun := context.WithTimeout(ctx, cfg.Sim.Duration)
	defer cancelRun()

	stop := cancel.NewAtomic()
	unwatch := cancel.Watch(ctx, stop)
	defer unwatch()

	b := &bus{log: log.Named("bus"), failEvery: failEvery}
	reporter := det.NewReporter(log)
	ticker := tick.New(cfg.Scheduler.Ticker, cfg.Scheduler.Interval, 1000)
	defer ticker.Stop()

	s, err := scheduler.New(q, b,
		scheduler.WithIngress(in),
		scheduler.WithConfig(scheduler.Config{Budget: cfg.Scheduler.Budget, DrainMax: cfg.Scheduler.DrainMax}),
		scheduler.WithTicker(ticker),
		scheduler.WithCanceler(stop),
		scheduler.WithReporter(reporter),
		scheduler.WithMetrics(sm),
		scheduler.WithLogger(log))
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr, reg, log)
		defer func() { _ = srv.Close() }()
	}

	var wg sync.WaitGroup
	for p := 0; p < cfg.Sim.Producers; p++ {
		wg.Add(1)
		go func(pid uint64) {
			defer wg.Done()
			produce(ctx, in, pid, tbl.Len())
		}(uint64(p))
	}

	s.Run()
	wg.Wait()

	// Producers are gone; flush whatever they left behind.
	for i := 0; i < flushSteps && (in.Pending() || q.Len() > 0); i++ {
		if _, err := s.Step(); err != nil {
			log.Warn("flush step failed", zap.Error(err))
		}
	}

	last, _ := reporter.Last()
	log.Info("simulation finished",
		zap.Uint64("submitted", in.Submitted()),
		zap.Uint64("rejected", in.Rejected()),
		zap.Uint64("transmitted", s.Sent()),
		zap.Uint64("transmit_errors", s.Failed()),
		zap.Float64("coalesced", counterValue(qm.CoalescedCounter())),
		zap.Float64("queue_full", counterValue(qm.FullCounter())),
		zap.Uint64("diagnostics", reporter.Count()),
		zap.Uint8("last_diag_module", last.Module),
		zap.Uint8("last_diag_error", last.Error))
	return nil
}

// buildTable spreads n frames over the 11-bit ID space.
func buildTable(n int) *canframe.Table {
	tbl := canframe.NewTable(n)
	for i := 0; i < n; i++ {
		f := canframe.Frame{ID: uint32(i*37) % (canframe.SFFMask + 1), DLC: uint8(i % (canframe.MaxDLC + 1))}
		for j := 0; j < int(f.DLC); j++ {
			f.Data[j] = byte(i + j)
		}
		_ = tbl.Put(canframe.Handle(i), f)
	}
	return tbl
}

func produce(ctx context.Context, in *ingress.Ingress[canframe.Handle], pid uint64, n int) {
	r := rand.New(rand.NewPCG(pid, uint64(time.Now().UnixNano())))
	t := time.NewTicker(100 * time.Microsecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// A rejected submit is counted by ingress; the frame is dropped.
			in.Submit(pid, canframe.Handle(r.IntN(n)))
		}
	}
}

type bus struct {
	log       *zap.Logger
	failEvery int
	n         atomic.Uint64
}

var errArbitrationLost = errors.New("bus: arbitration lost")

func (b *bus) Transmit(f canframe.Frame) error {
	n := b.n.Add(1)
	if b.failEvery > 0 && n%uint64(b.failEvery) == 0 {
		return errArbitrationLost
	}
	if ce := b.log.Check(zap.DebugLevel, "frame"); ce != nil {
		ce.Write(zap.Stringer("frame", f))
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
