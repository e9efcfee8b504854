package crewkpi

import (
	"time"

	"gonum.org/v1/gonum/stat"

	kpi "github.com/opentransit/crewd/core/metrics/kpi"
)

// Summary describes the distribution of daily KPIs for one instance.
type Summary struct {
	Instance          string  `json:"instance"`
	Days              int     `json:"days"`
	MeanDriversPerRun float64 `json:"mean_drivers_per_run"`
	StdDriversPerRun  float64 `json:"std_drivers_per_run"`
	MeanUtilization   float64 `json:"mean_utilization"`
	TotalWorkingMin   int     `json:"total_working_min"`
}

// Report aggregates the store's daily records for the instance between start
// and end.
func Report(store kpi.Store, instance string, start, end time.Time) (Summary, error) {
	recs, err := store.Query(instance, start, end)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{Instance: instance, Days: len(recs)}
	if len(recs) == 0 {
		return s, nil
	}
	perRun := make([]float64, len(recs))
	util := make([]float64, len(recs))
	for i, r := range recs {
		perRun[i] = r.DriversPerRun()
		util[i] = r.Utilization()
		s.TotalWorkingMin += r.WorkingMin
	}
	s.MeanDriversPerRun = stat.Mean(perRun, nil)
	s.MeanUtilization = stat.Mean(util, nil)
	if len(recs) > 1 {
		s.StdDriversPerRun = stat.StdDev(perRun, nil)
	}
	return s, nil
}
