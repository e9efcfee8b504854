package solver

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsRegistration(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })
	reg := prometheus.NewRegistry()
	MustRegisterMetrics(reg)
	// touch metrics so they are exported
	solveDuration.WithLabelValues("day").Observe(0.1)
	solveRuns.WithLabelValues("day", "ok").Inc()
	driversScheduled.WithLabelValues("day").Set(4)
	workingMinutes.WithLabelValues("day").Set(1800)
	ackLatency.WithLabelValues("day").Observe(0.1)
	ackRate.WithLabelValues("day").Set(1)
	mqttSuccess.Inc()
	mqttFailure.Inc()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[*mf.Name] = true
	}
	expected := []string{
		"solve_duration_seconds",
		"solve_runs_total",
		"drivers_scheduled",
		"roster_working_minutes",
		"assignment_ack_latency_seconds",
		"ack_rate",
		"mqtt_publish_success_total",
		"mqtt_publish_failure_total",
	}
	for _, n := range expected {
		if !names[n] {
			t.Errorf("metric %s not registered", n)
		}
	}
}
