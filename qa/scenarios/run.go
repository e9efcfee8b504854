package scenarios

import (
	"context"
	"testing"
	"time"

	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/solver"
	"github.com/opentransit/crewd/infra/logger"
	"github.com/opentransit/crewd/infra/mqtt"
	"github.com/opentransit/crewd/internal/eventbus"
)

func RunScenario(t *testing.T, sc *Scenario) {
	in, err := sc.BuildInstance()
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	rules := sc.Rules.ToModel()

	pub := mqtt.NewMockPublisher()
	for _, id := range sc.FailDrivers {
		pub.FailIDs[id] = true
	}
	for _, id := range sc.NoAckDrivers {
		pub.NoAckIDs[id] = true
	}

	bus := eventbus.New()
	mgr, err := solver.NewSolveManager(
		rules,
		solver.NewSetCoverSolver(solver.DefaultColumnLimits()),
		solver.NewGreedySolver(),
		pub,
		10*time.Millisecond,
		coremetrics.NopSink{},
		bus,
		nil,
		logger.NopLogger{},
	)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	res, err := mgr.Schedule(context.Background(), in)
	if sc.Expected.Infeasible {
		if err == nil {
			t.Errorf("scenario %s expected no solution, got %d duties", sc.Name, res.Drivers)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	if sc.Expected.MaxDrivers > 0 && res.Drivers > sc.Expected.MaxDrivers {
		t.Errorf("scenario %s expected at most %d drivers, got %d", sc.Name, sc.Expected.MaxDrivers, res.Drivers)
	}
	if sc.Expected.Coverage {
		if err := res.Roster.Validate(in, rules); err != nil {
			t.Errorf("scenario %s coverage: %v", sc.Name, err)
		}
	}

	if len(sc.Drivers) == 0 {
		return
	}
	rep, err := mgr.Assign(context.Background(), in, res.Roster, sc.Drivers)
	if err != nil {
		t.Fatalf("scenario %s assign: %v", sc.Name, err)
	}
	acked := 0
	for _, a := range rep.Assignments {
		if a.Acknowledged {
			acked++
		}
	}
	if acked != sc.Expected.Acked {
		t.Errorf("scenario %s expected %d acked, got %d", sc.Name, sc.Expected.Acked, acked)
	}
}
