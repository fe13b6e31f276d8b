package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestObserveStartRecordsOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStart("stateless", 10*time.Millisecond, nil)
	m.ObserveStart("stateless", 10*time.Millisecond, errors.New("boom"))

	metricFamilies, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range metricFamilies {
		if mf.GetName() != "testpods_pod_starts_total" {
			continue
		}
		for _, metric := range mf.Metric {
			for _, label := range metric.Label {
				if label.GetName() == "outcome" {
					found[label.GetValue()] = true
				}
			}
		}
	}
	if !found["ready"] || !found["failed"] {
		t.Errorf("expected both ready and failed outcomes recorded, got %+v", found)
	}
}

func TestNilMetricsIsNoOp(t *testing.T) {
	var m *Metrics
	m.ObserveStart("stateless", time.Second, nil)
	m.ObserveStop("stateless", time.Second)
	m.ObserveWait("tcp", time.Second, nil)
	m.ObserveRollback("workload")
}

func TestTimerElapsedIsNonNegative(t *testing.T) {
	timer := NewTimer()
	if timer.Elapsed() < 0 {
		t.Error("expected non-negative elapsed duration")
	}
}
