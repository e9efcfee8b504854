package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	solverlog "github.com/opentransit/crewd/core/solver/logging"
	"github.com/opentransit/crewd/jobs/crewkpi"
)

func TestKpiBackfillAndReport(t *testing.T) {
	dir := t.TempDir()
	journal := filepath.Join(dir, "solve.log")
	cfg := filepath.Join(dir, "config.yaml")
	doc := fmt.Sprintf(`logging:
  backend: jsonl
  path: %q
components:
  kpi_store:
    type: sqlite
    conf:
      path: %q
`, journal, filepath.Join(dir, "kpi.db"))
	if err := os.WriteFile(cfg, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := solverlog.NewJSONLStore(journal)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	day1 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	runs := []solverlog.SolveRecord{
		{Timestamp: day1, Instance: "weekday", Drivers: 4, DrivingMin: 1500, WorkingMin: 1800, Solver: "setcover"},
		{Timestamp: day1.Add(24 * time.Hour), Instance: "weekday", Drivers: 6, DrivingMin: 1800, WorkingMin: 2400, Solver: "greedy"},
		{Timestamp: day1, Instance: "saturday", Drivers: 3, DrivingMin: 900, WorkingMin: 1200, Solver: "setcover"},
	}
	for _, rec := range runs {
		if err := store.Append(context.Background(), rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close journal: %v", err)
	}

	out, err := execCrewd(t, "--config", cfg, "kpi", "backfill", "--instance", "weekday")
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if !strings.Contains(out, "replayed 2 solve runs") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = execCrewd(t, "--config", cfg, "kpi", "report", "weekday")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	var sum crewkpi.Summary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if sum.Days != 2 || sum.TotalWorkingMin != 4200 {
		t.Fatalf("unexpected summary %+v", sum)
	}
	if sum.MeanDriversPerRun != 5 {
		t.Fatalf("mean drivers per run = %f, want 5", sum.MeanDriversPerRun)
	}
}

func TestKpiWithoutStore(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	doc := fmt.Sprintf("logging:\n  backend: jsonl\n  path: %q\n", filepath.Join(dir, "solve.log"))
	if err := os.WriteFile(cfg, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execCrewd(t, "--config", cfg, "kpi", "backfill"); err == nil {
		t.Fatal("expected error without a configured kpi store")
	}
}
