package solver

import (
	"context"
	"fmt"

	"github.com/opentransit/crewd/core/model"
)

// GreedySolver builds a roster with a chronological sweep: each shift joins
// the open duty it extends with the smallest gap, or opens a new duty. Duties
// left under the working floor are dissolved or merged afterwards.
type GreedySolver struct{}

// NewGreedySolver returns a greedy construction solver.
func NewGreedySolver() *GreedySolver { return &GreedySolver{} }

// Solve implements the Solver interface.
func (g *GreedySolver) Solve(ctx context.Context, in model.Instance, rules model.Rules) (model.Roster, error) {
	if err := in.Validate(rules); err != nil {
		return model.Roster{}, err
	}
	duties := sweep(ctx, in.Sorted().Shifts, rules)
	duties, err := repairShortDuties(ctx, duties, rules)
	if err != nil {
		return model.Roster{}, fmt.Errorf("greedy: %w", err)
	}
	roster := model.Roster{Duties: duties}
	if err := roster.Validate(in, rules); err != nil {
		return model.Roster{}, fmt.Errorf("greedy: %w", err)
	}
	return roster, nil
}

// sweep assigns shifts in start order to the best fitting open duty. Best fit
// is the smallest gap; ties go to the duty with more accumulated driving so
// short duties stay open for later shifts.
func sweep(ctx context.Context, shifts []model.Shift, rules model.Rules) []model.Duty {
	var open []*dutyState
	for _, s := range shifts {
		if ctx.Err() != nil {
			break
		}
		best := -1
		bestGap := 0
		bestDriving := -1
		for i, d := range open {
			if !d.canAppend(s, rules) {
				continue
			}
			gap := s.Start - d.lastEnd
			if best == -1 || gap < bestGap || (gap == bestGap && d.driving > bestDriving) {
				best, bestGap, bestDriving = i, gap, d.driving
			}
		}
		if best >= 0 {
			open[best].append(s, rules)
		} else {
			open = append(open, newDutyState(s))
		}
	}
	duties := make([]model.Duty, len(open))
	for i, d := range open {
		duties[i] = d.toDuty()
	}
	return duties
}
