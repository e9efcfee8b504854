package solver

import (
	"context"

	"github.com/opentransit/crewd/core/model"
)

// column is one feasible duty over the sorted shift indexes of an instance.
type column struct {
	shifts  []int
	mask    []uint64
	working int
}

func (c column) covers(i int) bool {
	return c.mask[i/64]&(1<<(i%64)) != 0
}

func (c column) disjoint(mask []uint64) bool {
	for w, m := range c.mask {
		if m&mask[w] != 0 {
			return false
		}
	}
	return true
}

func orMask(dst []uint64, src []uint64) {
	for w := range src {
		dst[w] |= src[w]
	}
}

// ColumnLimits bound the duty enumeration.
type ColumnLimits struct {
	// MaxColumns caps the total number of enumerated duties.
	MaxColumns int `json:"max_columns"`
	// MaxSuccessors caps, per shift, the follow-up shifts considered on each
	// side of the break threshold.
	MaxSuccessors int `json:"max_successors"`
}

// DefaultColumnLimits keeps the relaxation small enough for a dense simplex.
func DefaultColumnLimits() ColumnLimits {
	return ColumnLimits{MaxColumns: 4000, MaxSuccessors: 10}
}

// successorTable lists, for each shift, the shifts a driver can take next.
// Successors are split around the break threshold so chains always have both
// a work-through and a post-break option available.
func successorTable(shifts []model.Shift, r model.Rules, maxPerSide int) [][]int {
	succ := make([][]int, len(shifts))
	for i, s := range shifts {
		var short, rest int
		for j := i + 1; j < len(shifts); j++ {
			gap := shifts[j].Start - s.End
			if gap < r.MinGap {
				continue
			}
			if gap < r.MinBreak {
				if short >= maxPerSide {
					continue
				}
				short++
			} else {
				if rest >= maxPerSide {
					break
				}
				rest++
			}
			succ[i] = append(succ[i], j)
		}
	}
	return succ
}

// enumerateColumns walks the successor graph depth first from every shift,
// recording each chain that forms a valid duty. The budget per starting shift
// spreads the column cap over the whole day.
func enumerateColumns(ctx context.Context, shifts []model.Shift, r model.Rules, lim ColumnLimits) ([]column, error) {
	if len(shifts) == 0 {
		return nil, nil
	}
	if lim.MaxColumns <= 0 || lim.MaxSuccessors <= 0 {
		lim = DefaultColumnLimits()
	}
	succ := successorTable(shifts, r, lim.MaxSuccessors)
	words := (len(shifts) + 63) / 64

	budget := lim.MaxColumns / len(shifts)
	if budget < 32 {
		budget = 32
	}

	var cols []column
	var steps int
	var walk func(state *dutyState, chain []int, left *int) error
	walk = func(state *dutyState, chain []int, left *int) error {
		steps++
		if steps%256 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if *left <= 0 || len(cols) >= lim.MaxColumns {
			return nil
		}
		if state.working(r) >= r.MinWorking {
			mask := make([]uint64, words)
			for _, idx := range chain {
				mask[idx/64] |= 1 << (idx % 64)
			}
			cols = append(cols, column{
				shifts:  append([]int(nil), chain...),
				mask:    mask,
				working: state.working(r),
			})
			*left--
		}
		last := chain[len(chain)-1]
		for _, j := range succ[last] {
			if !state.canAppend(shifts[j], r) {
				continue
			}
			next := dutyState{
				shifts:     append([]model.Shift(nil), state.shifts...),
				driving:    state.driving,
				noBreak:    state.noBreak,
				firstStart: state.firstStart,
				lastEnd:    state.lastEnd,
			}
			next.append(shifts[j], r)
			grown := append(append([]int(nil), chain...), j)
			if err := walk(&next, grown, left); err != nil {
				return err
			}
		}
		return nil
	}

	for i := range shifts {
		if len(cols) >= lim.MaxColumns {
			break
		}
		left := budget
		if err := walk(newDutyState(shifts[i]), []int{i}, &left); err != nil {
			return nil, err
		}
	}
	return cols, nil
}
