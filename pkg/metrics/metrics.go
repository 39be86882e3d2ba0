package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Process table (A) and kill queue (B) gauges
	ChildrenTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "supervisor_children_total",
			Help: "Current number of entries in the process table",
		},
	)

	KillQueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "supervisor_kill_queue_length",
			Help: "Current number of entries in the kill queue",
		},
	)

	// Mode flags (C)
	DrainMode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "supervisor_drain_mode",
			Help: "Whether drain mode is set (1) or not (0)",
		},
	)

	TerminateMode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "supervisor_terminate_mode",
			Help: "Whether terminate mode is set (1) or not (0)",
		},
	)

	// Launcher (D)
	LaunchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_launches_total",
			Help: "Total number of launch attempts by result",
		},
		[]string{"result"},
	)

	// Terminator (E)
	TerminationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_terminations_total",
			Help: "Total number of terminations by phase",
		},
		[]string{"phase"},
	)

	// Reaper (F)
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supervisor_reports_total",
			Help: "Total number of finish reports sent to the dispatcher by result",
		},
		[]string{"result"},
	)

	ReapCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "supervisor_reap_cycle_duration_seconds",
			Help:    "Time taken for a reaper cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Slot populator (G)
	PopulateCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "supervisor_populate_cycle_duration_seconds",
			Help:    "Time taken for a slot-populator cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Orchestrator reconciler (I)
	ReconcileCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "supervisor_reconcile_cycle_duration_seconds",
			Help:    "Time taken for an orchestrator reconcile cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconcileCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "supervisor_reconcile_cycles_total",
			Help: "Total number of orchestrator reconcile cycles completed",
		},
	)
)

func init() {
	prometheus.MustRegister(ChildrenTotal)
	prometheus.MustRegister(KillQueueLength)
	prometheus.MustRegister(DrainMode)
	prometheus.MustRegister(TerminateMode)
	prometheus.MustRegister(LaunchesTotal)
	prometheus.MustRegister(TerminationsTotal)
	prometheus.MustRegister(ReportsTotal)
	prometheus.MustRegister(ReapCycleDuration)
	prometheus.MustRegister(PopulateCycleDuration)
	prometheus.MustRegister(ReconcileCycleDuration)
	prometheus.MustRegister(ReconcileCyclesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
