package prediction

import "time"

// MockAvailabilityEngine returns deterministic availability forecasts.
type MockAvailabilityEngine struct {
	Availability map[string]float64
	Forecasts    map[string][]float64
}

// PredictAvailability returns the configured probability for the driver or 1.0.
func (m MockAvailabilityEngine) PredictAvailability(id string, t time.Time) float64 {
	_ = t
	if m.Availability == nil {
		return 1
	}
	if v, ok := m.Availability[id]; ok {
		return v
	}
	return 1
}

// ForecastAvailability returns the configured forecast slice for the driver or
// an empty slice.
func (m MockAvailabilityEngine) ForecastAvailability(id string, h time.Duration) []float64 {
	_ = h
	if m.Forecasts == nil {
		return nil
	}
	if s, ok := m.Forecasts[id]; ok {
		cp := make([]float64, len(s))
		copy(cp, s)
		return cp
	}
	return nil
}
