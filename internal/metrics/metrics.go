// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasync_http_requests_total",
			Help: "Total number of HTTP requests served by the admin API.",
		},
		[]string{"method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wasync_http_request_duration_seconds",
			Help:    "Admin API request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
	gatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wasync_gateway_request_duration_seconds",
			Help:    "Latency of WhatsApp gateway calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
	syncPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasync_sync_passes_total",
			Help: "Reconciliation passes, by trigger and result.",
		},
		[]string{"trigger", "result"},
	)
	syncPassDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wasync_sync_pass_duration_seconds",
			Help:    "Duration of a full reconciliation pass.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	syncMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasync_sync_messages_total",
			Help: "Messages seen by the poller or webhook, by outcome (inserted, duplicate, error).",
		},
		[]string{"source", "outcome"},
	)
	syncUnitErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasync_sync_unit_errors_total",
			Help: "Errors recorded per unit of work during a pass.",
		},
		[]string{"scope"},
	)
	notifyPublishErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasync_notify_publish_errors_total",
			Help: "Notification publish failures, by sink.",
		},
		[]string{"sink"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wasync_ws_active_connections",
			Help: "Number of connected websocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		gatewayRequestDuration,
		syncPassesTotal,
		syncPassDuration,
		syncMessagesTotal,
		syncUnitErrorsTotal,
		notifyPublishErrorsTotal,
		wsActiveConnections,
	)
}

func ObserveHTTPRequest(method string, status int, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func ObserveGatewayCall(operation string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	gatewayRequestDuration.WithLabelValues(operation, outcome).Observe(elapsed.Seconds())
}

func ObservePass(trigger string, failed bool, elapsed time.Duration) {
	result := "ok"
	if failed {
		result = "error"
	}
	syncPassesTotal.WithLabelValues(trigger, result).Inc()
	syncPassDuration.Observe(elapsed.Seconds())
}

func AddMessages(source, outcome string, n int) {
	if n <= 0 {
		return
	}
	syncMessagesTotal.WithLabelValues(source, outcome).Add(float64(n))
}

func IncUnitError(scope string) {
	syncUnitErrorsTotal.WithLabelValues(scope).Inc()
}

func IncPublishError(sink string) {
	notifyPublishErrorsTotal.WithLabelValues(sink).Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}
