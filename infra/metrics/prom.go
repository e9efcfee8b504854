package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/opentransit/crewd/core/metrics"
)

// PromSink records scheduling events in Prometheus metrics.
type PromSink struct {
	duties  *prometheus.CounterVec
	working *prometheus.HistogramVec
	latency *prometheus.HistogramVec
	fleet   prometheus.Gauge
}

// NewPromSink registers roster metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using the configured port.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	duties := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_duties_total",
		Help: "Total number of duties produced by scheduling runs",
	}, []string{"driver_id", "instance"})
	working := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "duty_working_minutes",
		Help:    "Working time of produced duties in minutes",
		Buckets: prometheus.LinearBuckets(360, 45, 9),
	}, []string{"instance"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assignment_latency_seconds",
		Help:    "Time between duty sheet send and acknowledgment",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver_id", "acknowledged"})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_discovery_drivers_total",
		Help: "Number of driver terminals discovered during fleet discovery",
	})

	if err := reg.Register(duties); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duties = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(working); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			working = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fleet); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fleet = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{duties: duties, working: working, latency: latency, fleet: fleet}, nil
}

// RecordDutyStats increments the duty counter and observes working time for
// each duty of a solved roster.
func (s *PromSink) RecordDutyStats(stats []coremetrics.DutyStats) error {
	for _, d := range stats {
		s.duties.WithLabelValues(d.Driver, d.Instance).Inc()
		s.working.WithLabelValues(d.Instance).Observe(float64(d.WorkingMin))
	}
	return nil
}

// RecordAckLatency records the acknowledgment latency histogram.
func (s *PromSink) RecordAckLatency(recs []coremetrics.AckLatency) error {
	for _, r := range recs {
		s.latency.WithLabelValues(r.DriverID, strconv.FormatBool(r.Acknowledged)).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordFleetSize sets the gauge to the number of discovered driver terminals.
func (s *PromSink) RecordFleetSize(size int) error {
	if s.fleet != nil {
		s.fleet.Set(float64(size))
	}
	return nil
}
