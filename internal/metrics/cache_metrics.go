// Package metrics defines cache and stream metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Cache metrics
var (
	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Live odds cache reads by result",
	}, []string{"result"})

	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_hit_ratio",
		Help:      "Fraction of cache reads served without a refresh",
	})
)

// Stream metrics
var (
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Connected websocket clients",
	})

	StreamBroadcastsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stream_broadcasts_total",
		Help:      "Live result sets broadcast to websocket clients",
	})
)

// RecordCacheRequest records a cache read.
// result should be one of: "hit", "miss", "shared"
func RecordCacheRequest(result string, hitRatio float64) {
	CacheRequestsTotal.WithLabelValues(result).Inc()
	CacheHitRatio.Set(hitRatio)
}

// UpdateStreamClients updates the connected client gauge.
func UpdateStreamClients(count int) {
	StreamClients.Set(float64(count))
}

// RecordStreamBroadcast records a broadcast to websocket clients.
func RecordStreamBroadcast() {
	StreamBroadcastsTotal.Inc()
}
