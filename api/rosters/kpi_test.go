package rosters

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	kpi "github.com/opentransit/crewd/core/metrics/kpi"
)

func TestKPIHandler(t *testing.T) {
	store := kpi.NewMemoryStore()
	if err := store.Add(kpi.Record{
		Instance:   "weekday",
		Date:       time.Now(),
		Runs:       2,
		Drivers:    19,
		DrivingMin: 4000,
		WorkingMin: 5000,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	h := NewKPIHandler(store)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/rosters/weekday/kpis", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []struct {
		Date          string  `json:"date"`
		Runs          int     `json:"runs"`
		Utilization   float64 `json:"utilization"`
		DriversPerRun float64 `json:"drivers_per_run"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Runs != 2 {
		t.Fatalf("unexpected output %+v", out)
	}
	if out[0].Utilization != 0.8 || out[0].DriversPerRun != 9.5 {
		t.Fatalf("derived KPIs wrong: %+v", out[0])
	}
}

func TestKPIHandler_NotFound(t *testing.T) {
	h := NewKPIHandler(kpi.NewMemoryStore())
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/rosters/weekday/other", nil)
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}
