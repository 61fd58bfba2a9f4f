// Package scheduler is the consumer side of a CAN transmit queue.
//
// Each step moves pending handles from an ingress into the queue, then
// hands up to Budget frames to a Transmitter in queue order. With a
// Priority queue that is ascending CAN ID, the order the bus would grant
// arbitration in.
//
// A Scheduler owns its queue: Step and Run must be the only code touching
// it, which is what makes the single-producer queue safe to use here.
package scheduler

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/randomizedcoder/can-msgqueue/internal/cancel"
	"github.com/randomizedcoder/can-msgqueue/internal/canframe"
	"github.com/randomizedcoder/can-msgqueue/internal/canq"
	"github.com/randomizedcoder/can-msgqueue/internal/det"
	"github.com/randomizedcoder/can-msgqueue/internal/telemetry"
	"github.com/randomizedcoder/can-msgqueue/internal/tick"
)

// ErrNilQueue is returned by New without a queue.
var ErrNilQueue = errors.New("scheduler: nil queue")

// ErrNilTransmitter is returned by New without a transmitter.
var ErrNilTransmitter = errors.New("scheduler: nil transmitter")

// Transmitter puts a frame on the bus. A returned error leaves the frame
// queued; it is offered again on the next step.
type Transmitter interface {
	Transmit(f canframe.Frame) error
}

// TransmitterFunc adapts a function to a Transmitter.
type TransmitterFunc func(f canframe.Frame) error

// Transmit calls fn(f).
func (fn TransmitterFunc) Transmit(f canframe.Frame) error { return fn(f) }

// Queue is the consumer side of a canq queue of frame handles.
type Queue interface {
	Peek() (canframe.Handle, canframe.Frame, error)
	Read() (canframe.Handle, canframe.Frame, error)
	Len() int
}

// Drainer moves producer submissions into the queue.
type Drainer interface {
	Drain(max int) (int, error)
	Pending() bool
}

// Config bounds the work done per step.
type Config struct {
	// Budget is the most frames transmitted per step.
	Budget int
	// DrainMax is the most handles moved from ingress per step; <= 0 means all.
	DrainMax int
}

// DefaultConfig returns a Budget of 8 and an unbounded drain.
func DefaultConfig() Config {
	return Config{Budget: 8}
}

// Scheduler dequeues frames and transmits them.
type Scheduler struct {
	q       Queue
	in      Drainer
	tx      Transmitter
	cfg     Config
	ticker  tick.Ticker
	stop    cancel.Canceler
	det     *det.Reporter
	metrics *telemetry.SchedulerMetrics
	log     *zap.Logger

	sent   atomic.Uint64
	failed atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithIngress drains in at the start of every step.
func WithIngress(in Drainer) Option { return func(s *Scheduler) { s.in = in } }

// WithConfig sets the step bounds.
func WithConfig(cfg Config) Option { return func(s *Scheduler) { s.cfg = cfg } }

// WithTicker sets the pacing used by Run.
func WithTicker(t tick.Ticker) Option { return func(s *Scheduler) { s.ticker = t } }

// WithCanceler sets the stop flag polled by Run.
func WithCanceler(c cancel.Canceler) Option { return func(s *Scheduler) { s.stop = c } }

// WithReporter sets the diagnostic sideband.
func WithReporter(r *det.Reporter) Option { return func(s *Scheduler) { s.det = r } }

// WithMetrics records dispatch metrics.
func WithMetrics(m *telemetry.SchedulerMetrics) Option { return func(s *Scheduler) { s.metrics = m } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Scheduler) { s.log = l } }

// New returns a Scheduler reading q and transmitting on tx.
func New(q Queue, tx Transmitter, opts ...Option) (*Scheduler, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	if tx == nil {
		return nil, ErrNilTransmitter
	}
	s := &Scheduler{q: q, tx: tx, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("scheduler")
	if s.cfg.Budget <= 0 {
		s.cfg.Budget = DefaultConfig().Budget
	}
	if s.ticker == nil {
		s.ticker = tick.NewAtomicTicker(tick.DefaultInterval)
	}
	if s.stop == nil {
		s.stop = cancel.NewAtomic()
	}
	if s.det == nil {
		s.det = det.NewReporter(s.log)
	}
	return s, nil
}

// Step drains ingress and transmits up to Budget frames. A full queue during
// the drain is reported to the sideband and is not an error. A transmit
// error ends the step; the frame stays at the head of the queue.
func (s *Scheduler) Step() (int, error) {
	s.drain()

	sent := 0
	for sent < s.cfg.Budget {
		h, f, err := s.q.Peek()
		if errors.Is(err, canq.ErrEmpty) {
			break
		}
		if err != nil {
			return sent, fmt.Errorf("scheduler: peek: %w", err)
		}

		if err := s.tx.Transmit(f); err != nil {
			s.failed.Add(1)
			s.det.Report(det.ModuleScheduler, det.APITransmit, det.ErrCodeTransmit)
			if s.metrics != nil {
				s.metrics.Transmitted.WithLabelValues("error").Inc()
			}
			s.observe(sent)
			return sent, fmt.Errorf("scheduler: transmit handle %d (%s): %w", h, f, err)
		}

		if _, _, err := s.q.Read(); err != nil {
			return sent, fmt.Errorf("scheduler: read: %w", err)
		}
		sent++
	}

	s.observe(sent)
	return sent, nil
}

func (s *Scheduler) drain() {
	if s.in == nil {
		return
	}
	_, err := s.in.Drain(s.cfg.DrainMax)
	switch {
	case err == nil:
	case errors.Is(err, canq.ErrFull):
		s.det.ReportErr(det.ModuleCanQ, det.APIAdd, err)
		if s.metrics != nil {
			s.metrics.Parked.Inc()
		}
	default:
		s.log.Warn("ingress drain failed", zap.Error(err))
	}
}

func (s *Scheduler) observe(sent int) {
	s.sent.Add(uint64(sent))
	if s.metrics == nil {
		return
	}
	s.metrics.Transmitted.WithLabelValues("ok").Add(float64(sent))
	s.metrics.StepSize.Observe(float64(sent))
}

// Run steps on every tick until the canceler is done. Transmit errors are
// logged and the loop carries on.
func (s *Scheduler) Run() {
	s.log.Info("scheduler started", zap.Int("budget", s.cfg.Budget))
	for !s.stop.Done() {
		if !s.ticker.Tick() {
			runtime.Gosched()
			continue
		}
		if _, err := s.Step(); err != nil {
			s.log.Warn("step failed", zap.Error(err))
		}
	}
	s.log.Info("scheduler stopped",
		zap.Uint64("sent", s.sent.Load()),
		zap.Uint64("failed", s.failed.Load()))
}

// Stop makes Run return after its current step.
func (s *Scheduler) Stop() { s.stop.Cancel() }

// Sent returns the number of frames transmitted.
func (s *Scheduler) Sent() uint64 { return s.sent.Load() }

// Failed returns the number of transmit errors.
func (s *Scheduler) Failed() uint64 { return s.failed.Load() }

// Reporter returns the diagnostic sideband in use.
func (s *Scheduler) Reporter() *det.Reporter { return s.det }
