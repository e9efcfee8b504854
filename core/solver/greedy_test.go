package solver

import (
	"context"
	"testing"

	"github.com/opentransit/crewd/core/model"
)

// twoDriverInstance returns five shifts that two drivers can cover under the
// default rules: one duty over shifts 1,2,3 and one over shifts 4,5.
func twoDriverInstance() model.Instance {
	return model.Instance{Name: "two-driver-day", Shifts: []model.Shift{
		{ID: 1, Start: 300, End: 420},
		{ID: 2, Start: 460, End: 640},
		{ID: 3, Start: 675, End: 780},
		{ID: 4, Start: 320, End: 540},
		{ID: 5, Start: 570, End: 760},
	}}
}

func TestGreedySolveCoversEveryShift(t *testing.T) {
	in := twoDriverInstance()
	rules := model.DefaultRules()
	roster, err := NewGreedySolver().Solve(context.Background(), in, rules)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if err := roster.Validate(in, rules); err != nil {
		t.Fatalf("invalid roster: %v", err)
	}
	if roster.Drivers() != 2 {
		t.Fatalf("expected 2 drivers got %d", roster.Drivers())
	}
}

func TestGreedySolveEmptyInstance(t *testing.T) {
	roster, err := NewGreedySolver().Solve(context.Background(), model.Instance{Name: "empty"}, model.DefaultRules())
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if roster.Drivers() != 0 {
		t.Fatalf("expected empty roster got %d duties", roster.Drivers())
	}
}

func TestGreedySolveShortDayInfeasible(t *testing.T) {
	// A lone 100 minute shift can never reach the working time floor.
	in := model.Instance{Name: "short-day", Shifts: []model.Shift{{ID: 1, Start: 300, End: 400}}}
	_, err := NewGreedySolver().Solve(context.Background(), in, model.DefaultRules())
	if err == nil {
		t.Fatalf("expected error for unreachable working floor")
	}
}

func TestGreedySolveRejectsInvalidInstance(t *testing.T) {
	in := model.Instance{Name: "dup", Shifts: []model.Shift{
		{ID: 1, Start: 300, End: 420},
		{ID: 1, Start: 500, End: 600},
	}}
	_, err := NewGreedySolver().Solve(context.Background(), in, model.DefaultRules())
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestSweepPrefersSmallestGap(t *testing.T) {
	rules := model.DefaultRules()
	// Both open duties can take the 460 shift; the sweep must pick the one
	// ending at 420 (gap 40) over the one ending at 320 (gap 140).
	shifts := []model.Shift{
		{ID: 1, Start: 200, End: 320},
		{ID: 2, Start: 300, End: 420},
		{ID: 3, Start: 460, End: 640},
	}
	duties := sweep(context.Background(), shifts, rules)
	if len(duties) != 2 {
		t.Fatalf("expected 2 open duties got %d", len(duties))
	}
	for _, d := range duties {
		if d.Shifts[0].ID == 2 && len(d.Shifts) != 2 {
			t.Fatalf("shift 3 not appended to the closest duty: %+v", duties)
		}
	}
}
