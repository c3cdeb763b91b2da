package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cart mutation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

// CartMetrics records cart mutation throughput and lock contention.
type CartMetrics struct {
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	lockWait  prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations partitioned by outcome.",
	}, []string{"op", "outcome"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_lock_wait_seconds",
		Help:    "Time spent waiting for the per-user cart lock.",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
	})
	reg.MustRegister(duration, mutations, lockWait)
	return &CartMetrics{
		duration:  duration,
		mutations: mutations,
		lockWait:  lockWait,
	}
}

// Observe records the duration and outcome for op.
func (c *CartMetrics) Observe(op, outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	op = normalizeLabel(op)
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
	c.mutations.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}

// ObserveLockWait records how long a caller waited for the cart lock.
func (c *CartMetrics) ObserveLockWait(wait time.Duration) {
	if c == nil || c.lockWait == nil {
		return
	}
	c.lockWait.Observe(wait.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
