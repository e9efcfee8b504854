package kpi

import (
	"testing"
	"time"

	core "github.com/opentransit/crewd/core/metrics/kpi"
)

func TestSQLiteStore_AddQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:kpi_test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	day := core.Day(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	if err := store.Add(core.Record{Instance: "weekday", Date: day, Runs: 1, Drivers: 9, DrivingMin: 2000, WorkingMin: 2600}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(core.Record{Instance: "weekday", Date: day.Add(3 * time.Hour), Runs: 1, Drivers: 10, DrivingMin: 2100, WorkingMin: 2700}); err != nil {
		t.Fatalf("add2: %v", err)
	}

	recs, err := store.Query("weekday", day, day)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 aggregated record, got %d", len(recs))
	}
	if recs[0].Runs != 2 || recs[0].Drivers != 19 || recs[0].WorkingMin != 5300 {
		t.Fatalf("aggregate = %+v", recs[0])
	}
	if recs[0].Date != day {
		t.Fatalf("date = %v, want %v", recs[0].Date, day)
	}

	empty, err := store.Query("weekday", day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("query empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no records, got %d", len(empty))
	}
}
