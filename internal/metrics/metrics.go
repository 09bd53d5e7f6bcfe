// Package metrics provides Prometheus instrumentation for the orchestrator.
//
// Metrics are registered once via promauto and served from the daemon's
// /metrics endpoint. Labels stay low-cardinality: capture outcomes by status,
// probe outcomes by result, never per-station labels.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aircheck_captures_total",
			Help: "Total capture attempts by outcome status",
		},
		[]string{"status"},
	)
	CaptureBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aircheck_capture_bytes_total",
			Help: "Total bytes of audio written by successful captures",
		},
	)
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aircheck_probes_total",
			Help: "Total endpoint probes by result",
		},
		[]string{"result"},
	)
	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aircheck_active_jobs",
			Help: "Number of active scheduled jobs",
		},
	)
	BatchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aircheck_batch_tasks_in_flight",
			Help: "Capture tasks currently executing",
		},
	)
)

// ObserveCapture records one capture outcome.
func ObserveCapture(status string, bytes int64) {
	CapturesTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		CaptureBytes.Add(float64(bytes))
	}
}

// ObserveProbe records one probe outcome.
func ObserveProbe(reachable bool) {
	result := "offline"
	if reachable {
		result = "online"
	}
	ProbesTotal.WithLabelValues(result).Inc()
}
