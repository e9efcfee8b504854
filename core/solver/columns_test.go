package solver

import (
	"context"
	"testing"

	"github.com/opentransit/crewd/core/model"
)

func TestSuccessorTableQuotas(t *testing.T) {
	rules := model.DefaultRules()
	shifts := []model.Shift{
		{ID: 1, Start: 0, End: 60},
		// Five successors below the break threshold.
		{ID: 2, Start: 65, End: 90},
		{ID: 3, Start: 70, End: 95},
		{ID: 4, Start: 75, End: 100},
		{ID: 5, Start: 80, End: 105},
		{ID: 6, Start: 85, End: 110},
		// Three successors past the break threshold.
		{ID: 7, Start: 120, End: 180},
		{ID: 8, Start: 130, End: 190},
		{ID: 9, Start: 140, End: 200},
	}
	succ := successorTable(shifts, rules, 2)
	var short, rest int
	for _, j := range succ[0] {
		if shifts[j].Start-shifts[0].End < rules.MinBreak {
			short++
		} else {
			rest++
		}
	}
	if short != 2 || rest != 2 {
		t.Fatalf("expected 2 successors per side got %d short %d rest", short, rest)
	}
}

func TestSuccessorTableHonorsMinGap(t *testing.T) {
	rules := model.DefaultRules()
	shifts := []model.Shift{
		{ID: 1, Start: 0, End: 60},
		{ID: 2, Start: 58, End: 130}, // overlaps
		{ID: 3, Start: 61, End: 120}, // gap 1, below MinGap
	}
	succ := successorTable(shifts, rules, 4)
	if len(succ[0]) != 0 {
		t.Fatalf("expected no successors got %v", succ[0])
	}
}

func TestEnumerateColumnsFindsFullCover(t *testing.T) {
	in := twoDriverInstance().Sorted()
	rules := model.DefaultRules()
	cols, err := enumerateColumns(context.Background(), in.Shifts, rules, DefaultColumnLimits())
	if err != nil {
		t.Fatalf("enumerate: %v", err)
	}
	if len(cols) == 0 {
		t.Fatalf("no columns enumerated")
	}
	for _, col := range cols {
		d := columnDuty(in, col)
		if err := d.Validate(rules); err != nil {
			t.Fatalf("column %v is not a valid duty: %v", col.shifts, err)
		}
		if got := d.WorkingTime(rules); got != col.working {
			t.Fatalf("column working %d does not match duty %d", col.working, got)
		}
	}
	// Two disjoint columns must cover all five shifts.
	found := false
	for i := range cols {
		for j := range cols {
			if i == j || !cols[i].disjoint(cols[j].mask) {
				continue
			}
			if len(cols[i].shifts)+len(cols[j].shifts) == len(in.Shifts) {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("no disjoint pair covers the instance")
	}
}

func TestEnumerateColumnsEmpty(t *testing.T) {
	cols, err := enumerateColumns(context.Background(), nil, model.DefaultRules(), DefaultColumnLimits())
	if err != nil || cols != nil {
		t.Fatalf("expected no columns, got %v, %v", cols, err)
	}
}

func TestColumnMaskCovers(t *testing.T) {
	col := column{shifts: []int{0, 2}, mask: []uint64{0b101}}
	if !col.covers(0) || col.covers(1) || !col.covers(2) {
		t.Fatalf("mask lookup broken")
	}
	if col.disjoint([]uint64{0b100}) {
		t.Fatalf("overlap not detected")
	}
	if !col.disjoint([]uint64{0b010}) {
		t.Fatalf("false overlap")
	}
}
