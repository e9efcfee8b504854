package solver

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/opentransit/crewd/core/model"
)

func TestSetCoverSolveStrictMinimizesDrivers(t *testing.T) {
	in := twoDriverInstance()
	rules := model.DefaultRules()
	s := NewSetCoverSolver(ColumnLimits{})
	roster, err := s.SolveStrict(context.Background(), in, rules, Options{Objective: ObjectiveDrivers})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if err := roster.Validate(in, rules); err != nil {
		t.Fatalf("invalid roster: %v", err)
	}
	if roster.Drivers() != in.DriverLowerBound(rules) {
		t.Fatalf("expected %d drivers got %d", in.DriverLowerBound(rules), roster.Drivers())
	}
}

func TestSetCoverSolveStrictWorkingObjective(t *testing.T) {
	in := twoDriverInstance()
	rules := model.DefaultRules()
	s := NewSetCoverSolver(ColumnLimits{})
	roster, err := s.SolveStrict(context.Background(), in, rules, Options{Objective: ObjectiveWorking, MaxDrivers: 2})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if err := roster.Validate(in, rules); err != nil {
		t.Fatalf("invalid roster: %v", err)
	}
	if roster.Drivers() > 2 {
		t.Fatalf("driver cap ignored: %d duties", roster.Drivers())
	}
	// The only two-duty cover pairs shifts 1,2,3 and 4,5: 505+465 minutes.
	if got := roster.TotalWorkingTime(rules); got != 970 {
		t.Fatalf("expected 970 working minutes got %d", got)
	}
}

func TestSetCoverLPFailureIsInfeasible(t *testing.T) {
	old := lpSolve
	lpSolve = func(_ []float64, _ mat.Matrix, _ []float64, _ mat.Matrix, _ []float64) ([]float64, error) {
		return nil, errors.New("fail")
	}
	defer func() { lpSolve = old }()

	s := NewSetCoverSolver(ColumnLimits{})
	_, err := s.SolveStrict(context.Background(), twoDriverInstance(), model.DefaultRules(), Options{Objective: ObjectiveDrivers})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible got %v", err)
	}
}

func TestSetCoverSolveFallsBackToGreedy(t *testing.T) {
	old := lpSolve
	lpSolve = func(_ []float64, _ mat.Matrix, _ []float64, _ mat.Matrix, _ []float64) ([]float64, error) {
		return nil, errors.New("fail")
	}
	defer func() { lpSolve = old }()

	in := twoDriverInstance()
	rules := model.DefaultRules()
	s := NewSetCoverSolver(ColumnLimits{})
	roster, err := s.Solve(context.Background(), in, rules)
	if err != nil {
		t.Fatalf("fallback should still solve: %v", err)
	}
	if err := roster.Validate(in, rules); err != nil {
		t.Fatalf("invalid roster: %v", err)
	}
}

func TestSetCoverEmptyInstance(t *testing.T) {
	s := NewSetCoverSolver(ColumnLimits{})
	roster, err := s.SolveStrict(context.Background(), model.Instance{Name: "empty"}, model.DefaultRules(), Options{Objective: ObjectiveDrivers})
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if roster.Drivers() != 0 {
		t.Fatalf("expected empty roster")
	}
}

func TestSetCoverNoFeasibleDuty(t *testing.T) {
	// One short shift yields zero columns.
	in := model.Instance{Name: "short-day", Shifts: []model.Shift{{ID: 1, Start: 300, End: 400}}}
	s := NewSetCoverSolver(ColumnLimits{})
	_, err := s.SolveStrict(context.Background(), in, model.DefaultRules(), Options{Objective: ObjectiveDrivers})
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("expected ErrInfeasible got %v", err)
	}
}

func TestSetCoverReusesColumnPool(t *testing.T) {
	in := twoDriverInstance()
	rules := model.DefaultRules()
	s := NewSetCoverSolver(ColumnLimits{})
	first, err := s.SolveStrict(context.Background(), in, rules, Options{Objective: ObjectiveDrivers})
	if err != nil {
		t.Fatalf("first solve: %v", err)
	}
	key := poolKey{fingerprint: in.Sorted().Fingerprint(), rules: rules}
	s.mu.Lock()
	_, cached := s.pool[key]
	s.mu.Unlock()
	if !cached {
		t.Fatalf("column pool not populated")
	}
	second, err := s.SolveStrict(context.Background(), in, rules, Options{Objective: ObjectiveDrivers})
	if err != nil {
		t.Fatalf("second solve: %v", err)
	}
	if first.Drivers() != second.Drivers() {
		t.Fatalf("pool reuse changed the result: %d vs %d", first.Drivers(), second.Drivers())
	}
}

func TestSolveLPRoundTrip(t *testing.T) {
	// Minimize x1+x2 subject to -x1 <= -1 and -x2 <= -1.
	c := []float64{1, 1}
	g := mat.NewDense(2, 2, []float64{-1, 0, 0, -1})
	h := []float64{-1, -1}
	x, err := solveLP(c, g, h, nil, nil)
	if err != nil {
		t.Fatalf("lp: %v", err)
	}
	if len(x) != 2 || x[0] < 0.99 || x[1] < 0.99 {
		t.Fatalf("unexpected solution %v", x)
	}
}
