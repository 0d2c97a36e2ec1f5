// Package metrics registers the Prometheus metrics for outbound backend
// calls. A single BackendMetrics instance is created at startup and shared by
// every adapter through the transport layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BackendMetrics holds the Prometheus metrics for backend HTTP requests.
// Instances are created with an explicit registry so unit tests stay hermetic.
type BackendMetrics struct {
	// requestsTotal counts backend requests, partitioned by backend
	// discriminator, logical operation, and HTTP status code ("0" for
	// transport-level failures that never produced a response).
	requestsTotal *prometheus.CounterVec

	// durationSeconds records the latency of each backend request.
	durationSeconds *prometheus.HistogramVec
}

// New registers the backend metrics against reg and returns them.
// promauto.With(reg) is used so each call registers into the provided
// registry rather than the global default.
func New(reg prometheus.Registerer) *BackendMetrics {
	factory := promauto.With(reg)

	return &BackendMetrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vecthare",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of backend HTTP requests, partitioned by backend, operation, and status code.",
		}, []string{"backend", "op", "code"}),

		durationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vecthare",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of backend HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}
}

// Observe records one completed (or failed) backend request. code is the
// HTTP status, or 0 when the request never produced a response.
func (m *BackendMetrics) Observe(backend, op string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(backend, op, strconv.Itoa(code)).Inc()
	m.durationSeconds.WithLabelValues(backend, op).Observe(d.Seconds())
}
