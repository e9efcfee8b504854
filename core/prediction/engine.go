package prediction

import "time"

// AvailabilityEngine defines methods to forecast driver availability.
type AvailabilityEngine interface {
	// PredictAvailability returns the probability [0,1] that the driver will
	// be available for duty at time t.
	PredictAvailability(driverID string, t time.Time) float64

	// ForecastAvailability returns availability forecasts for future time
	// steps up to the given horizon. The slice may be empty if no forecast is
	// available.
	ForecastAvailability(driverID string, horizon time.Duration) []float64
}
