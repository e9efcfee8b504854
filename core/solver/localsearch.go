package solver

import (
	"context"
	"errors"
	"sort"

	"github.com/opentransit/crewd/core/model"
)

// LocalSearch improves a feasible set of duties by moving shifts between
// duties. All moves re-validate the touched duties, so the result stays
// feasible by construction.
type LocalSearch struct {
	// MaxPasses bounds the number of full improvement sweeps.
	MaxPasses int
}

// NewLocalSearch returns a LocalSearch with default bounds.
func NewLocalSearch() *LocalSearch { return &LocalSearch{MaxPasses: 12} }

// insertShift returns d with s inserted in start order.
func insertShift(d model.Duty, s model.Shift) model.Duty {
	out := make([]model.Shift, 0, len(d.Shifts)+1)
	placed := false
	for _, cur := range d.Shifts {
		if !placed && (s.Start < cur.Start || (s.Start == cur.Start && s.End < cur.End)) {
			out = append(out, s)
			placed = true
		}
		out = append(out, cur)
	}
	if !placed {
		out = append(out, s)
	}
	return model.Duty{Shifts: out}
}

// removeShift returns d without the shift at index i.
func removeShift(d model.Duty, i int) model.Duty {
	out := make([]model.Shift, 0, len(d.Shifts)-1)
	out = append(out, d.Shifts[:i]...)
	out = append(out, d.Shifts[i+1:]...)
	return model.Duty{Shifts: out}
}

// mergeDuties interleaves the shifts of a and b in start order.
func mergeDuties(a, b model.Duty) model.Duty {
	merged := a
	for _, s := range b.Shifts {
		merged = insertShift(merged, s)
	}
	return merged
}

// validExceptFloor checks every duty rule but the working time floor. Used
// while a repair is still accumulating shifts.
func validExceptFloor(d model.Duty, r model.Rules) bool {
	relaxed := r
	relaxed.MinWorking = 0
	return d.Validate(relaxed) == nil
}

func copyDuties(duties []model.Duty) []model.Duty {
	out := make([]model.Duty, len(duties))
	for i, d := range duties {
		out[i] = model.Duty{Shifts: append([]model.Shift(nil), d.Shifts...)}
	}
	return out
}

func totalWorking(duties []model.Duty, r model.Rules) int {
	sum := 0
	for _, d := range duties {
		sum += d.WorkingTime(r)
	}
	return sum
}

// dissolveInto distributes every shift of duties[idx] over the other duties.
// Returns the reduced set and true when all shifts found a valid home.
func dissolveInto(duties []model.Duty, idx int, r model.Rules) ([]model.Duty, bool) {
	work := copyDuties(duties)
	for _, s := range work[idx].Shifts {
		best := -1
		bestWorking := 0
		for j := range work {
			if j == idx {
				continue
			}
			cand := insertShift(work[j], s)
			if cand.Validate(r) != nil {
				continue
			}
			if w := cand.WorkingTime(r); best == -1 || w < bestWorking {
				best, bestWorking = j, w
			}
		}
		if best == -1 {
			return nil, false
		}
		work[best] = insertShift(work[best], s)
	}
	return append(work[:idx], work[idx+1:]...), true
}

// mergeShortPair joins duties[idx] with another short duty when the merge is
// itself a valid duty.
func mergeShortPair(duties []model.Duty, idx int, r model.Rules) ([]model.Duty, bool) {
	for j := range duties {
		if j == idx || duties[j].WorkingTime(r) >= r.MinWorking {
			continue
		}
		merged := mergeDuties(duties[idx], duties[j])
		if merged.Validate(r) != nil {
			continue
		}
		work := copyDuties(duties)
		work[idx] = merged
		return append(work[:j], work[j+1:]...), true
	}
	return nil, false
}

// topUp grows duties[idx] by pulling shifts out of longer duties until it
// clears the working floor. Donors must stay valid after each removal.
func topUp(duties []model.Duty, idx int, r model.Rules) ([]model.Duty, bool) {
	work := copyDuties(duties)
	cur := work[idx]
	for steps := 0; steps < 8; steps++ {
		type pull struct {
			donor, shift int
			cand         model.Duty
		}
		var best *pull
		for j := range work {
			if j == idx {
				continue
			}
			for k := range work[j].Shifts {
				donor := removeShift(work[j], k)
				if donor.Validate(r) != nil {
					continue
				}
				cand := insertShift(cur, work[j].Shifts[k])
				if !validExceptFloor(cand, r) {
					continue
				}
				if cand.WorkingTime(r) <= cur.WorkingTime(r) {
					continue
				}
				if best == nil || cand.WorkingTime(r) > best.cand.WorkingTime(r) {
					best = &pull{donor: j, shift: k, cand: cand}
				}
			}
		}
		if best == nil {
			return nil, false
		}
		work[best.donor] = removeShift(work[best.donor], best.shift)
		cur = best.cand
		work[idx] = cur
		if cur.Validate(r) == nil {
			return work, true
		}
	}
	return nil, false
}

// repairShortDuties eliminates duties under the working floor by dissolving
// them, merging pairs, or pulling in shifts from longer duties.
func repairShortDuties(ctx context.Context, duties []model.Duty, r model.Rules) ([]model.Duty, error) {
	work := copyDuties(duties)
	// Every successful step removes one short duty, so the loop is bounded.
	for guard := 0; guard <= len(duties); guard++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := shortestShortDuty(work, r)
		if idx == -1 {
			return work, nil
		}
		if len(work[idx].Shifts) == 0 {
			work = append(work[:idx], work[idx+1:]...)
			continue
		}
		if rest, ok := dissolveInto(work, idx, r); ok {
			work = rest
			continue
		}
		if rest, ok := mergeShortPair(work, idx, r); ok {
			work = rest
			continue
		}
		if rest, ok := topUp(work, idx, r); ok {
			work = rest
			continue
		}
		return nil, errUnrepairable
	}
	return nil, errUnrepairable
}

// shortestShortDuty returns the index of the short duty with the least
// working time, or -1 when every duty clears the floor.
func shortestShortDuty(duties []model.Duty, r model.Rules) int {
	idx := -1
	low := 0
	for i, d := range duties {
		w := d.WorkingTime(r)
		if len(d.Shifts) > 0 && w >= r.MinWorking {
			continue
		}
		if idx == -1 || w < low {
			idx, low = i, w
		}
	}
	return idx
}

// ReduceDuties repeatedly dissolves whole duties into the rest of the roster,
// lowering the driver count. Duties with fewer shifts are tried first.
func (l *LocalSearch) ReduceDuties(ctx context.Context, duties []model.Duty, r model.Rules) []model.Duty {
	work := copyDuties(duties)
	for pass := 0; pass < l.MaxPasses; pass++ {
		if ctx.Err() != nil {
			return work
		}
		order := make([]int, len(work))
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return len(work[order[a]].Shifts) < len(work[order[b]].Shifts)
		})
		dissolved := false
		for _, idx := range order {
			if rest, ok := dissolveInto(work, idx, r); ok {
				work = rest
				dissolved = true
				break
			}
		}
		if !dissolved {
			return work
		}
	}
	return work
}

// MinimizeWorking hill-climbs over single-shift moves and tail exchanges
// until no move lowers the total working time.
func (l *LocalSearch) MinimizeWorking(ctx context.Context, duties []model.Duty, r model.Rules) []model.Duty {
	work := copyDuties(duties)
	for pass := 0; pass < l.MaxPasses; pass++ {
		if ctx.Err() != nil {
			return work
		}
		improved := false
		if next, ok := bestShiftMove(work, r); ok {
			work, improved = next, true
		} else if next, ok := bestTailExchange(work, r); ok {
			work, improved = next, true
		}
		if !improved {
			return work
		}
	}
	return work
}

// bestShiftMove finds the single-shift relocation with the largest working
// time reduction.
func bestShiftMove(duties []model.Duty, r model.Rules) ([]model.Duty, bool) {
	base := totalWorking(duties, r)
	bestDelta := 0
	var bestOut []model.Duty
	for a := range duties {
		for k := range duties[a].Shifts {
			src := removeShift(duties[a], k)
			if len(src.Shifts) > 0 && src.Validate(r) != nil {
				continue
			}
			for b := range duties {
				if b == a {
					continue
				}
				dst := insertShift(duties[b], duties[a].Shifts[k])
				if dst.Validate(r) != nil {
					continue
				}
				cand := copyDuties(duties)
				cand[b] = dst
				if len(src.Shifts) == 0 {
					cand = append(cand[:a], cand[a+1:]...)
				} else {
					cand[a] = src
				}
				if delta := totalWorking(cand, r) - base; delta < bestDelta {
					bestDelta = delta
					bestOut = cand
				}
			}
		}
	}
	return bestOut, bestOut != nil
}

// bestTailExchange swaps duty suffixes at one cut point per duty pair.
func bestTailExchange(duties []model.Duty, r model.Rules) ([]model.Duty, bool) {
	base := totalWorking(duties, r)
	bestDelta := 0
	var bestOut []model.Duty
	for a := 0; a < len(duties); a++ {
		for b := a + 1; b < len(duties); b++ {
			for i := 1; i < len(duties[a].Shifts); i++ {
				for j := 1; j < len(duties[b].Shifts); j++ {
					na := model.Duty{Shifts: concatShifts(duties[a].Shifts[:i], duties[b].Shifts[j:])}
					nb := model.Duty{Shifts: concatShifts(duties[b].Shifts[:j], duties[a].Shifts[i:])}
					if na.Validate(r) != nil || nb.Validate(r) != nil {
						continue
					}
					cand := copyDuties(duties)
					cand[a], cand[b] = na, nb
					if delta := totalWorking(cand, r) - base; delta < bestDelta {
						bestDelta = delta
						bestOut = cand
					}
				}
			}
		}
	}
	return bestOut, bestOut != nil
}

func concatShifts(a, b []model.Shift) []model.Shift {
	out := make([]model.Shift, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

var errUnrepairable = errors.New("duty below minimum working time cannot be repaired")
