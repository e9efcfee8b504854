package kpi

import "time"

// Record aggregates scheduling KPIs for an instance and day.
type Record struct {
	Instance   string
	Date       time.Time
	Runs       int
	Drivers    int
	DrivingMin int
	WorkingMin int
}

// Utilization returns the share of working time spent driving.
func (r Record) Utilization() float64 {
	if r.WorkingMin == 0 {
		return 0
	}
	return float64(r.DrivingMin) / float64(r.WorkingMin)
}

// DriversPerRun returns the average driver count over the aggregated runs.
func (r Record) DriversPerRun() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.Drivers) / float64(r.Runs)
}
