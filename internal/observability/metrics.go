// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pixelfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedRequests counts feed queries by scope ("all" or "following").
	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelfeed_feed_requests_total",
		Help: "Total number of feed queries by scope",
	}, []string{"scope"})

	// HydrationDuration records how long stat hydration takes per page.
	HydrationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pixelfeed_stat_hydration_seconds",
		Help:    "Time spent hydrating post statistics for one page",
		Buckets: prometheus.DefBuckets,
	})

	// CacheLookups counts cache-aside lookups by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelfeed_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// EventsPublished counts domain events by type, sink and outcome.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelfeed_events_published_total",
		Help: "Total number of domain events published",
	}, []string{"event_type", "sink", "outcome"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pixelfeed_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client fell behind.
	WebSocketBackpressureDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelfeed_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordEvent increments the published events counter.
func RecordEvent(eventType, sink string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	EventsPublished.WithLabelValues(eventType, sink, outcome).Inc()
}

var (
	httpMetricsOnce sync.Once
	httpMetrics     *fiberprometheus.FiberPrometheus
)

// HTTPMetrics returns the process-wide Fiber request metrics middleware. The
// collectors live on the default registry, so they are created once.
func HTTPMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	httpMetricsOnce.Do(func() {
		httpMetrics = fiberprometheus.New(serviceName)
	})
	return httpMetrics
}
