package ptv

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for the request lifecycle and
// pacing layers. Safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	dedupHits    *prometheus.CounterVec
	throttleWait *prometheus.HistogramVec
	backoff      prometheus.Gauge

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer, so tests and multi-client processes can isolate metrics.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptv_client_requests_total",
				Help: "Total number of physical HTTP requests dispatched",
			},
			[]string{"endpoint", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ptv_client_request_duration_seconds",
				Help:    "Duration of physical HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status_code"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ptv_client_requests_in_flight",
				Help: "Number of physical HTTP requests currently in flight",
			},
			[]string{"endpoint"},
		),
		dedupHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptv_client_dedup_hits_total",
				Help: "Number of logical calls served by an existing in-flight request",
			},
			[]string{"endpoint"},
		),
		throttleWait: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ptv_client_throttle_wait_seconds",
				Help:    "Delay applied before dispatch by the throttle and backoff",
				Buckets: []float64{.05, .1, .2, .5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"endpoint"},
		),
		backoff: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "ptv_client_backoff_seconds",
				Help: "Current adaptive backoff delay in seconds",
			},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "ptv_client_errors_total",
				Help: "Total errors by taxonomy kind",
			},
			[]string{"kind", "endpoint"},
		),
	}
}

// RecordRequest records a completed physical request.
func (mc *MetricsCollector) RecordRequest(endpoint string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	mc.requestsTotal.WithLabelValues(endpoint, code).Inc()
	mc.requestDuration.WithLabelValues(endpoint, code).Observe(duration.Seconds())
}

// RecordRequestStart marks a physical request as in flight.
func (mc *MetricsCollector) RecordRequestStart(endpoint string) {
	mc.requestsInFlight.WithLabelValues(endpoint).Inc()
}

// RecordRequestEnd marks a physical request as settled.
func (mc *MetricsCollector) RecordRequestEnd(endpoint string) {
	mc.requestsInFlight.WithLabelValues(endpoint).Dec()
}

// RecordDedupHit records a logical call that attached to an in-flight request.
func (mc *MetricsCollector) RecordDedupHit(endpoint string) {
	mc.dedupHits.WithLabelValues(endpoint).Inc()
}

// RecordThrottleWait records the pre-dispatch delay applied to a request.
func (mc *MetricsCollector) RecordThrottleWait(endpoint string, wait time.Duration) {
	mc.throttleWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

// RecordBackoff records the current backoff delay.
func (mc *MetricsCollector) RecordBackoff(backoff time.Duration) {
	mc.backoff.Set(backoff.Seconds())
}

// RecordError counts an error by taxonomy kind.
func (mc *MetricsCollector) RecordError(kind, endpoint string) {
	mc.errorsTotal.WithLabelValues(kind, endpoint).Inc()
}
