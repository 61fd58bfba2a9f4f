// Package telemetry exports queue and scheduler outcomes as Prometheus metrics.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// QueueMetrics implements canq.Observer.
type QueueMetrics struct {
	added     prometheus.Counter
	coalesced prometheus.Counter
	overflow  prometheus.Counter
	removed   prometheus.Counter
	underflow prometheus.Counter
	resets    prometheus.Counter
	depth     prometheus.Gauge
}

// NewQueueMetrics registers the queue metrics on reg under prefix, labelled
// with the queue name.
func NewQueueMetrics(reg prometheus.Registerer, prefix, queue string) *QueueMetrics {
	f := promauto.With(reg)
	labels := prometheus.Labels{"queue": queue}
	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{
			Name:        fmt.Sprintf("%s_%s", prefix, name),
			Help:        help,
			ConstLabels: labels,
		})
	}

	return &QueueMetrics{
		added:     counter("added_total", "Handles stored in the queue"),
		coalesced: counter("coalesced_total", "Adds dropped because the CAN ID was already queued"),
		overflow:  counter("full_total", "Adds refused because the queue was full"),
		removed:   counter("read_total", "Handles read from the queue"),
		underflow: counter("empty_reads_total", "Reads that found the queue empty"),
		resets:    counter("resets_total", "Queue resets"),
		depth: f.NewGauge(prometheus.GaugeOpts{
			Name:        fmt.Sprintf("%s_depth", prefix),
			Help:        "Handles currently queued",
			ConstLabels: labels,
		}),
	}
}

func (m *QueueMetrics) Added(uint32) {
	m.added.Inc()
	m.depth.Inc()
}

func (m *QueueMetrics) Coalesced(uint32) { m.coalesced.Inc() }

func (m *QueueMetrics) Overflow(uint32) { m.overflow.Inc() }

func (m *QueueMetrics) Removed(uint32) {
	m.removed.Inc()
	m.depth.Dec()
}

func (m *QueueMetrics) Underflow() { m.underflow.Inc() }

func (m *QueueMetrics) Rewound() {
	m.resets.Inc()
	m.depth.Set(0)
}

// AddedCounter returns the counter behind Added.
func (m *QueueMetrics) AddedCounter() prometheus.Counter { return m.added }

// CoalescedCounter returns the counter behind Coalesced.
func (m *QueueMetrics) CoalescedCounter() prometheus.Counter { return m.coalesced }

// FullCounter returns the counter behind Overflow.
func (m *QueueMetrics) FullCounter() prometheus.Counter { return m.overflow }

// DepthGauge returns the queue depth gauge.
func (m *QueueMetrics) DepthGauge() prometheus.Gauge { return m.depth }

// SchedulerMetrics counts dispatch results.
type SchedulerMetrics struct {
	Transmitted *prometheus.CounterVec
	Parked      prometheus.Counter
	StepSize    prometheus.Histogram
}

// NewSchedulerMetrics registers the scheduler metrics on reg under prefix.
func NewSchedulerMetrics(reg prometheus.Registerer, prefix string) *SchedulerMetrics {
	f := promauto.With(reg)
	return &SchedulerMetrics{
		Transmitted: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_transmitted_total", prefix),
				Help: "Frames handed to the transmitter, by result",
			},
			[]string{"result"},
		),
		Parked: f.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_ingress_parked_total", prefix),
			Help: "Handles held back in ingress because the queue was full",
		}),
		StepSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_step_frames", prefix),
			Help:    "Frames transmitted per scheduler step",
			Buckets: prometheus.LinearBuckets(0, 2, 9),
		}),
	}
}
