package ptv

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCollectorRecords(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordRequest("/v3/routes", 200, 150*time.Millisecond)
	mc.RecordRequest("/v3/routes", 200, 90*time.Millisecond)
	mc.RecordDedupHit("/v3/routes")
	mc.RecordThrottleWait("/v3/routes", 200*time.Millisecond)
	mc.RecordBackoff(2 * time.Second)
	mc.RecordError(string(KindRateLimit), "/v3/routes")

	if got := testutil.ToFloat64(mc.requestsTotal.WithLabelValues("/v3/routes", "200")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mc.dedupHits.WithLabelValues("/v3/routes")); got != 1 {
		t.Errorf("dedup_hits_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(mc.backoff); got != 2 {
		t.Errorf("backoff_seconds = %v, want 2", got)
	}
	if got := testutil.ToFloat64(mc.errorsTotal.WithLabelValues("RateLimit", "/v3/routes")); got != 1 {
		t.Errorf("errors_total = %v, want 1", got)
	}
}

func TestMetricsCollectorInFlightGauge(t *testing.T) {
	registry := prometheus.NewRegistry()
	mc := NewMetricsCollectorWithRegistry(registry)

	mc.RecordRequestStart("/v3/departures")
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("/v3/departures")); got != 1 {
		t.Errorf("in_flight = %v, want 1", got)
	}
	mc.RecordRequestEnd("/v3/departures")
	if got := testutil.ToFloat64(mc.requestsInFlight.WithLabelValues("/v3/departures")); got != 0 {
		t.Errorf("in_flight = %v, want 0", got)
	}
}

func TestMetricsCollectorIsolatedRegistries(t *testing.T) {
	a := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())
	b := NewMetricsCollectorWithRegistry(prometheus.NewRegistry())

	a.RecordDedupHit("/v3/routes")
	if got := testutil.ToFloat64(b.dedupHits.WithLabelValues("/v3/routes")); got != 0 {
		t.Errorf("collector b saw collector a's samples: %v", got)
	}
}
