// Package telemetry wires the orchestrator's lifecycle events into a small
// set of Prometheus metrics. Registration happens against a caller-supplied
// prometheus.Registerer rather than the global DefaultRegisterer, so tests
// and multiple orchestrators in one process don't collide on metric names.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the handles the orchestrator observes into. A nil *Metrics
// is valid and every method on it becomes a no-op, so callers that never
// set up telemetry pay nothing for it.
type Metrics struct {
	startDuration  *prometheus.HistogramVec
	stopDuration   *prometheus.HistogramVec
	waitDuration   *prometheus.HistogramVec
	startsTotal    *prometheus.CounterVec
	rollbacksTotal *prometheus.CounterVec
}

// New creates and registers the metric set against reg. Panics on a
// duplicate registration, matching prometheus.MustRegister's contract used
// throughout the pack.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		startDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "testpods_pod_start_duration_seconds",
			Help:    "Time taken for Pod.Start to reach ready or fail, by workload kind.",
			Buckets: prometheus.DefBuckets,
		}, []string{"workload_kind", "outcome"}),
		stopDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "testpods_pod_stop_duration_seconds",
			Help:    "Time taken for Pod.Stop to tear down a pod's resources.",
			Buckets: prometheus.DefBuckets,
		}, []string{"workload_kind"}),
		waitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "testpods_wait_strategy_duration_seconds",
			Help:    "Time spent blocked in a wait.Strategy, by strategy kind and outcome.",
			Buckets: prometheus.DefBuckets,
		}, []string{"strategy_kind", "outcome"}),
		startsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "testpods_pod_starts_total",
			Help: "Total Pod.Start calls by outcome (ready, failed).",
		}, []string{"outcome"}),
		rollbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "testpods_pod_rollbacks_total",
			Help: "Total rollback unwinds triggered by a failed Start, by step.",
		}, []string{"step"}),
	}
	reg.MustRegister(m.startDuration, m.stopDuration, m.waitDuration, m.startsTotal, m.rollbacksTotal)
	return m
}

// ObserveStart records a Start attempt's duration and outcome.
func (m *Metrics) ObserveStart(workloadKind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ready"
	if err != nil {
		outcome = "failed"
	}
	m.startDuration.WithLabelValues(workloadKind, outcome).Observe(d.Seconds())
	m.startsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStop records a Stop call's duration.
func (m *Metrics) ObserveStop(workloadKind string, d time.Duration) {
	if m == nil {
		return
	}
	m.stopDuration.WithLabelValues(workloadKind).Observe(d.Seconds())
}

// ObserveWait records how long a wait.Strategy blocked and whether it
// succeeded.
func (m *Metrics) ObserveWait(strategyKind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ready"
	if err != nil {
		outcome = "timeout"
	}
	m.waitDuration.WithLabelValues(strategyKind, outcome).Observe(d.Seconds())
}

// ObserveRollback records one rollback-entry unwind during a failed Start.
func (m *Metrics) ObserveRollback(step string) {
	if m == nil {
		return
	}
	m.rollbacksTotal.WithLabelValues(step).Inc()
}

// Timer measures an in-flight operation, mirroring the pack's timing helper
// shape (start a clock, observe the elapsed duration into a histogram).
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() Timer { return Timer{start: time.Now()} }

// Elapsed returns the duration since the timer started.
func (t Timer) Elapsed() time.Duration { return time.Since(t.start) }
