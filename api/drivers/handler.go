package drivers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/opentransit/crewd/core/driverstatus"
	"github.com/opentransit/crewd/core/prediction"
)

// NewStatusHandler returns an HTTP handler exposing driver status data via GET /api/drivers/status.
func NewStatusHandler(store driverstatus.Store, pred prediction.AvailabilityEngine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		f := driverstatus.Filter{
			Depot: r.URL.Query().Get("depot"),
			Line:  r.URL.Query().Get("line"),
		}
		if r.URL.Query().Get("spare") == "true" {
			f.SpareOnly = true
		}
		entries := store.List(f)
		for i := range entries {
			if pred == nil {
				continue
			}
			id := entries[i].DriverID
			fc := pred.ForecastAvailability(id, time.Hour)
			if len(fc) > 0 {
				entries[i].AvailabilityForecast = map[string]float64{}
				step := 15 * time.Minute
				for j, v := range fc {
					entries[i].AvailabilityForecast[fmt.Sprintf("t+%dm", int(step.Minutes())*j)] = v
				}
				now := time.Now().UTC()
				entries[i].NextDutyWindow = driverstatus.TimeWindow{Start: now, End: now.Add(time.Hour)}
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(entries); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
