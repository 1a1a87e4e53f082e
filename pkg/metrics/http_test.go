package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveRequestCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncInFlight()
	m.ObserveRequest("GET", "/components", 200, 25*time.Millisecond)
	m.ObserveRequest("GET", "/components", 200, 30*time.Millisecond)
	m.ObserveRequest("POST", "/login", 400, 5*time.Millisecond)
	m.DecInFlight()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, family := range families {
		byName[family.GetName()] = family
	}

	requests, ok := byName["http_requests_total"]
	if !ok {
		t.Fatal("http_requests_total not registered")
	}
	var componentHits float64
	for _, metric := range requests.GetMetric() {
		labels := map[string]string{}
		for _, pair := range metric.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		if labels["route"] == "/components" && labels["status"] == "200" {
			componentHits = metric.GetCounter().GetValue()
		}
	}
	if componentHits != 2 {
		t.Fatalf("expected 2 component hits, got %v", componentHits)
	}

	if _, ok := byName["http_request_duration_seconds"]; !ok {
		t.Fatal("http_request_duration_seconds not registered")
	}

	inFlight, ok := byName["http_requests_in_flight"]
	if !ok {
		t.Fatal("http_requests_in_flight not registered")
	}
	if got := inFlight.GetMetric()[0].GetGauge().GetValue(); got != 0 {
		t.Fatalf("expected in-flight gauge back to 0, got %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.IncInFlight()
	m.DecInFlight()

	unregistered := NewHTTPMetrics(nil)
	unregistered.ObserveRequest("", "", 500, time.Millisecond)
}
