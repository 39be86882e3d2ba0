/*
Package metrics provides Prometheus metrics collection and exposition for
the process supervisor.

All metrics are registered at package init via MustRegister against the
default Prometheus registry, and exposed over HTTP at /metrics through
Handler(). Metric names are prefixed supervisor_.

# Metrics Catalog

supervisor_children_total:
  - Gauge. Current size of the process table.

supervisor_kill_queue_length:
  - Gauge. Current depth of the kill queue.

supervisor_drain_mode / supervisor_terminate_mode:
  - Gauge, 1 or 0. Current mode flags.

supervisor_launches_total{result}:
  - Counter. result is "success" or "failure".

supervisor_terminations_total{phase}:
  - Counter. phase is "sigterm", "sigkill", or "legacy".

supervisor_reports_total{result}:
  - Counter. result is "success" or "error" (the reported outcome) for a
    delivered report, or "network_error" when the report could not be sent.

supervisor_reap_cycle_duration_seconds, supervisor_populate_cycle_duration_seconds,
supervisor_reconcile_cycle_duration_seconds:
  - Histograms of one iteration of the reaper, slot populator, and
    orchestrator reconciler loops respectively.

supervisor_reconcile_cycles_total:
  - Counter. Total reconciliation cycles completed.

# Usage

	timer := metrics.NewTimer()
	// ... perform the operation ...
	timer.ObserveDuration(metrics.ReapCycleDuration)

	metrics.LaunchesTotal.WithLabelValues("success").Inc()

	http.Handle("/metrics", metrics.Handler())
*/
package metrics
