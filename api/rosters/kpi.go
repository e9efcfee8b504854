package rosters

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	kpi "github.com/opentransit/crewd/core/metrics/kpi"
)

// NewKPIHandler exposes daily scheduling KPIs via GET /api/rosters/{instance}/kpis.
func NewKPIHandler(store kpi.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/api/rosters/")
		parts := strings.Split(path, "/")
		if len(parts) < 2 || parts[1] != "kpis" {
			http.NotFound(w, r)
			return
		}
		instance := parts[0]
		start, _ := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		end, _ := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if end.IsZero() {
			end = time.Now()
		}
		recs, err := store.Query(instance, start, end)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		type out struct {
			Date          string  `json:"date"`
			Runs          int     `json:"runs"`
			Drivers       int     `json:"drivers"`
			WorkingMin    int     `json:"working_min"`
			Utilization   float64 `json:"utilization"`
			DriversPerRun float64 `json:"drivers_per_run"`
		}
		outSlice := make([]out, len(recs))
		for i, r := range recs {
			outSlice[i] = out{
				Date:          r.Date.Format("2006-01-02"),
				Runs:          r.Runs,
				Drivers:       r.Drivers,
				WorkingMin:    r.WorkingMin,
				Utilization:   r.Utilization(),
				DriversPerRun: r.DriversPerRun(),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(outSlice)
	})
}
