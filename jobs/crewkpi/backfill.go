package crewkpi

import (
	"context"

	kpi "github.com/opentransit/crewd/core/metrics/kpi"
	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/core/solver/logging"
)

// Backfill processes historical solve results and populates the store.
func Backfill(store kpi.Store, history []solver.Result) error {
	for _, h := range history {
		rec := kpi.Record{
			Instance:   h.Instance,
			Date:       kpi.Day(h.SolvedAt),
			Runs:       1,
			Drivers:    h.Drivers,
			DrivingMin: h.DrivingMin,
			WorkingMin: h.WorkingMin,
		}
		if err := store.Add(rec); err != nil {
			return err
		}
	}
	return nil
}

// BackfillFromLogs replays the solve journal into the KPI store and returns
// the number of records processed.
func BackfillFromLogs(ctx context.Context, logs logging.LogStore, store kpi.Store, q logging.LogQuery) (int, error) {
	recs, err := logs.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	for _, r := range recs {
		rec := kpi.Record{
			Instance:   r.Instance,
			Date:       kpi.Day(r.Timestamp),
			Runs:       1,
			Drivers:    r.Drivers,
			DrivingMin: r.DrivingMin,
			WorkingMin: r.WorkingMin,
		}
		if err := store.Add(rec); err != nil {
			return 0, err
		}
	}
	return len(recs), nil
}
