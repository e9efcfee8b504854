package prediction

import (
	"testing"
	"time"
)

func TestMockAvailabilityEngine_PredictAvailability(t *testing.T) {
	eng := MockAvailabilityEngine{Availability: map[string]float64{"d1": 0.7}}
	if eng.PredictAvailability("d1", time.Now()) != 0.7 {
		t.Fatalf("expected configured value")
	}
	if eng.PredictAvailability("d2", time.Now()) != 1 {
		t.Fatalf("expected default value 1")
	}
}

func TestMockAvailabilityEngine_ForecastAvailability(t *testing.T) {
	eng := MockAvailabilityEngine{Forecasts: map[string][]float64{"d1": {0.5, 0.6}}}
	res := eng.ForecastAvailability("d1", 0)
	if len(res) != 2 || res[0] != 0.5 || res[1] != 0.6 {
		t.Fatalf("unexpected forecast %v", res)
	}
	if eng.ForecastAvailability("d2", 0) != nil {
		t.Fatalf("expected nil for unknown driver")
	}
}
