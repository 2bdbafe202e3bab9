// Package metrics provides centralized Prometheus metrics registry for the live odds service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "live_odds"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FetchAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Provider event fetch attempts by outcome",
	}, []string{"outcome"})
	EventsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_failed_total",
		Help:      "Live events that produced no normalized record",
	})
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Orchestrator runs by status",
	}, []string{"status"})
	PushFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_failures_total",
		Help:      "Downstream notification failures by target",
	}, []string{"target"})
	SnapshotWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_write_failures_total",
		Help:      "Failed writes of the live results snapshot",
	})
)

// Gauge metrics
var (
	LiveMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_matches",
		Help:      "Events in the most recent live result set",
	})
	CatalogueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalogue_size",
		Help:      "Entries in the most recently written match catalogue",
	})
)

// Histogram metrics
var (
	FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of a single event fetch including retries",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 60},
	})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of orchestrator runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		registry.MustRegister(FetchAttemptsTotal)
		registry.MustRegister(EventsFailedTotal)
		registry.MustRegister(RunsTotal)
		registry.MustRegister(PushFailuresTotal)
		registry.MustRegister(SnapshotWriteFailuresTotal)

		registry.MustRegister(LiveMatches)
		registry.MustRegister(CatalogueSize)

		registry.MustRegister(FetchDuration)
		registry.MustRegister(RunDuration)

		registry.MustRegister(CacheRequestsTotal)
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(StreamClients)
		registry.MustRegister(StreamBroadcastsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordFetchAttempt records one provider request outcome.
func RecordFetchAttempt(outcome string) {
	FetchAttemptsTotal.WithLabelValues(outcome).Inc()
}

// RecordFetchDuration records the total time spent on one event.
func RecordFetchDuration(durationSeconds float64) {
	FetchDuration.Observe(durationSeconds)
}

// RecordEventFailed records an event dropped from a run.
func RecordEventFailed() {
	EventsFailedTotal.Inc()
}

// RecordRun records a finished orchestrator run.
// status should be one of: "completed", "cancelled"
func RecordRun(status string, durationSeconds float64, liveMatches int) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(durationSeconds)
	if status == "completed" {
		LiveMatches.Set(float64(liveMatches))
	}
}

// RecordPushFailure records a failed downstream notification.
func RecordPushFailure(target string) {
	PushFailuresTotal.WithLabelValues(target).Inc()
}

// RecordSnapshotWriteFailure records a failed snapshot write.
func RecordSnapshotWriteFailure() {
	SnapshotWriteFailuresTotal.Inc()
}

// UpdateCatalogueSize updates the catalogue size gauge.
func UpdateCatalogueSize(count int) {
	CatalogueSize.Set(float64(count))
}
