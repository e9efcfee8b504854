package rosters

import (
	"encoding/json"
	"net/http"

	"github.com/opentransit/crewd/core/solver/logging"
)

// NewLatestHandler returns an HTTP handler serving the most recent roster via
// GET /api/rosters/latest. An optional instance query parameter narrows the
// lookup to one timetable.
func NewLatestHandler(store logging.LogStore, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := logging.LogQuery{Instance: r.URL.Query().Get("instance")}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if len(records) == 0 {
			http.Error(w, "no roster recorded", http.StatusNotFound)
			return
		}
		latest := records[0]
		for _, rec := range records[1:] {
			if rec.Timestamp.After(latest.Timestamp) {
				latest = rec
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(latest); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
