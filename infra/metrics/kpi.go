package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	core "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/metrics/kpi"
)

// KpiSink aggregates solved rosters into daily scheduling KPIs.
type KpiSink struct {
	store       kpi.Store
	utilization *prometheus.GaugeVec
	perRun      *prometheus.GaugeVec
	working     *prometheus.GaugeVec
}

// NewKpiSink creates a sink with Prometheus gauges registered on reg.
func NewKpiSink(store kpi.Store, reg prometheus.Registerer) *KpiSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	util := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roster_utilization_ratio",
		Help: "Daily share of working time spent driving per instance",
	}, []string{"instance", "day"})
	perRun := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roster_drivers_per_run",
		Help: "Daily average driver count per scheduling run",
	}, []string{"instance", "day"})
	working := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "roster_daily_working_minutes",
		Help: "Daily total working minutes per instance",
	}, []string{"instance", "day"})
	reg.MustRegister(util, perRun, working)
	return &KpiSink{store: store, utilization: util, perRun: perRun, working: working}
}

// RecordDutyStats folds the duties of a solved roster into the day's KPIs.
func (s *KpiSink) RecordDutyStats(stats []core.DutyStats) error {
	if len(stats) == 0 {
		return nil
	}
	rec := kpi.Record{Instance: stats[0].Instance, Date: stats[0].Time, Runs: 1}
	for _, d := range stats {
		rec.Drivers++
		rec.DrivingMin += d.DrivingMin
		rec.WorkingMin += d.WorkingMin
	}
	if err := s.store.Add(rec); err != nil {
		return err
	}
	dayStr := kpi.Day(rec.Date).Format("2006-01-02")
	records, _ := s.store.Query(rec.Instance, rec.Date, rec.Date)
	if len(records) > 0 {
		rr := records[0]
		s.utilization.WithLabelValues(rec.Instance, dayStr).Set(rr.Utilization())
		s.perRun.WithLabelValues(rec.Instance, dayStr).Set(rr.DriversPerRun())
		s.working.WithLabelValues(rec.Instance, dayStr).Set(float64(rr.WorkingMin))
	}
	return nil
}
