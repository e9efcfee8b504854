package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solveDuration    *prometheus.HistogramVec
	solveRuns        *prometheus.CounterVec
	driversScheduled *prometheus.GaugeVec
	workingMinutes   *prometheus.GaugeVec
	ackLatency       *prometheus.HistogramVec
	ackRate          *prometheus.GaugeVec
	mqttSuccess      prometheus.Counter
	mqttFailure      prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.GaugeVec, *prometheus.GaugeVec, *prometheus.HistogramVec, *prometheus.GaugeVec, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solve_duration_seconds",
			Help:    "Duration of scheduling runs across both phases",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"instance"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solve_runs_total",
			Help: "Number of scheduling runs by outcome",
		},
		[]string{"instance", "outcome"},
	)
	drv := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drivers_scheduled",
			Help: "Driver count of the last solved roster",
		},
		[]string{"instance"},
	)
	work := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "roster_working_minutes",
			Help: "Total working minutes of the last solved roster",
		},
		[]string{"instance"},
	)
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assignment_ack_latency_seconds",
			Help:    "Latency of duty assignments from publish to acknowledgment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"instance"},
	)
	ack := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ack_rate",
			Help: "Acknowledgment rate for duty assignments",
		},
		[]string{"instance"},
	)
	suc := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_publish_success_total",
			Help: "Number of successful MQTT publish operations",
		},
	)
	fail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mqtt_publish_failure_total",
			Help: "Number of failed MQTT publish operations",
		},
	)
	return dur, runs, drv, work, lat, ack, suc, fail
}

func init() {
	solveDuration, solveRuns, driversScheduled, workingMinutes, ackLatency, ackRate, mqttSuccess, mqttFailure = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers solver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, solveRuns, driversScheduled, workingMinutes, ackLatency, ackRate, mqttSuccess, mqttFailure)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, solveRuns, driversScheduled, workingMinutes, ackLatency, ackRate, mqttSuccess, mqttFailure = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
