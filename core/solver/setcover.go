package solver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/opentransit/crewd/core/model"
)

// SetCoverSolver treats scheduling as a set cover over enumerated duties. It
// solves the linear relaxation with the simplex method and rounds the
// fractional cover to disjoint duties, repairing any gap with the greedy
// sweep.
type SetCoverSolver struct {
	Limits ColumnLimits

	search *LocalSearch

	mu   sync.Mutex
	pool map[poolKey][]column
}

type poolKey struct {
	fingerprint uint64
	rules       model.Rules
}

// NewSetCoverSolver returns a set cover solver with the provided enumeration
// limits. Zero limits select the defaults.
func NewSetCoverSolver(lim ColumnLimits) *SetCoverSolver {
	if lim.MaxColumns <= 0 || lim.MaxSuccessors <= 0 {
		lim = DefaultColumnLimits()
	}
	return &SetCoverSolver{
		Limits: lim,
		search: NewLocalSearch(),
		pool:   make(map[poolKey][]column),
	}
}

// ErrInfeasible indicates no full cover could be built within the solver's
// bounds.
var ErrInfeasible = errors.New("set cover infeasible")

// solveLP runs the simplex algorithm on the general form problem. g and a
// may be nil when the corresponding constraints are absent.
func solveLP(c []float64, g mat.Matrix, h []float64, a mat.Matrix, b []float64) ([]float64, error) {
	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, err
	}
	// Convert splits each variable into a positive and a negative part.
	x := make([]float64, len(c))
	for i := range x {
		x[i] = sol[i] - sol[len(c)+i]
	}
	return x, nil
}

// lpSolve points to the function used to solve the LP. It can be overridden
// in tests to simulate solver failures.
var lpSolve = solveLP

// Solve implements the Solver interface: it minimizes the driver count and
// falls back to the plain greedy sweep if the relaxation fails.
func (s *SetCoverSolver) Solve(ctx context.Context, in model.Instance, rules model.Rules) (model.Roster, error) {
	roster, err := s.SolveStrict(ctx, in, rules, Options{Objective: ObjectiveDrivers})
	if err == nil {
		return roster, nil
	}
	return NewGreedySolver().Solve(ctx, in, rules)
}

// SolveStrict solves the requested objective and returns an error when the
// relaxation fails or no full cover can be rounded. No greedy fallback is
// applied.
func (s *SetCoverSolver) SolveStrict(ctx context.Context, in model.Instance, rules model.Rules, opts Options) (model.Roster, error) {
	if err := in.Validate(rules); err != nil {
		return model.Roster{}, err
	}
	sorted := in.Sorted()
	if len(sorted.Shifts) == 0 {
		return model.Roster{}, nil
	}
	cols, err := s.columns(ctx, sorted, rules)
	if err != nil {
		return model.Roster{}, err
	}
	if len(cols) == 0 {
		return model.Roster{}, fmt.Errorf("%w: no feasible duties", ErrInfeasible)
	}

	frac, err := s.relax(sorted, rules, cols, opts)
	if err != nil {
		return model.Roster{}, err
	}

	duties, err := s.round(ctx, sorted, rules, cols, frac)
	if err != nil {
		return model.Roster{}, err
	}

	switch opts.Objective {
	case ObjectiveWorking:
		duties = s.search.MinimizeWorking(ctx, duties, rules)
		if opts.MaxDrivers > 0 && len(duties) > opts.MaxDrivers {
			duties = s.search.ReduceDuties(ctx, duties, rules)
		}
		if opts.MaxDrivers > 0 && len(duties) > opts.MaxDrivers {
			return model.Roster{}, fmt.Errorf("%w: %d duties exceed cap %d", ErrInfeasible, len(duties), opts.MaxDrivers)
		}
	default:
		duties = s.search.ReduceDuties(ctx, duties, rules)
	}

	roster := model.Roster{Duties: duties}
	if err := roster.Validate(in, rules); err != nil {
		return model.Roster{}, fmt.Errorf("set cover: %w", err)
	}
	return roster, nil
}

// columns enumerates or reuses the duty pool for the instance.
func (s *SetCoverSolver) columns(ctx context.Context, sorted model.Instance, rules model.Rules) ([]column, error) {
	key := poolKey{fingerprint: sorted.Fingerprint(), rules: rules}
	s.mu.Lock()
	cols, ok := s.pool[key]
	s.mu.Unlock()
	if ok {
		return cols, nil
	}
	cols, err := enumerateColumns(ctx, sorted.Shifts, rules, s.Limits)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.pool[key] = cols
	s.mu.Unlock()
	return cols, nil
}

// relax builds and solves the linear relaxation. Coverage rows enter the
// inequality block as -sum(x) <= -1; the driver cap enters as an equality.
func (s *SetCoverSolver) relax(sorted model.Instance, rules model.Rules, cols []column, opts Options) ([]float64, error) {
	n := len(sorted.Shifts)
	m := len(cols)

	c := make([]float64, m)
	for j, col := range cols {
		switch opts.Objective {
		case ObjectiveWorking:
			c[j] = float64(col.working)
		default:
			c[j] = 1
		}
	}

	g := mat.NewDense(n, m, nil)
	h := make([]float64, n)
	for i := 0; i < n; i++ {
		h[i] = -1
	}
	for j, col := range cols {
		for _, idx := range col.shifts {
			g.Set(idx, j, -1)
		}
	}

	var a mat.Matrix
	var b []float64
	if opts.Objective == ObjectiveWorking && opts.MaxDrivers > 0 {
		ones := mat.NewDense(1, m, nil)
		for j := 0; j < m; j++ {
			ones.Set(0, j, 1)
		}
		a = ones
		b = []float64{float64(opts.MaxDrivers)}
	}

	frac, err := lpSolve(c, g, h, a, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
	}
	return frac, nil
}

// round turns the fractional cover into disjoint duties. Columns are taken
// by descending weight, then any still uncovered shifts are swept greedily
// and the union is repaired to clear the working floor.
func (s *SetCoverSolver) round(ctx context.Context, sorted model.Instance, rules model.Rules, cols []column, frac []float64) ([]model.Duty, error) {
	n := len(sorted.Shifts)
	words := (n + 63) / 64
	covered := make([]uint64, words)
	coveredCount := 0

	order := make([]int, len(cols))
	for j := range order {
		order[j] = j
	}
	sort.Slice(order, func(a, b int) bool {
		fa, fb := frac[order[a]], frac[order[b]]
		if fa != fb {
			return fa > fb
		}
		// Prefer duties that cover more driving per working minute.
		la, lb := len(cols[order[a]].shifts), len(cols[order[b]].shifts)
		if la != lb {
			return la > lb
		}
		return cols[order[a]].working < cols[order[b]].working
	})

	var duties []model.Duty
	for _, j := range order {
		if frac[j] < 1e-6 {
			break
		}
		if !cols[j].disjoint(covered) {
			continue
		}
		duties = append(duties, columnDuty(sorted, cols[j]))
		orMask(covered, cols[j].mask)
		coveredCount += len(cols[j].shifts)
		if coveredCount == n {
			break
		}
	}

	// Second pass over unweighted columns, most new coverage first.
	if coveredCount < n {
		sort.Slice(order, func(a, b int) bool {
			la, lb := len(cols[order[a]].shifts), len(cols[order[b]].shifts)
			if la != lb {
				return la > lb
			}
			return cols[order[a]].working < cols[order[b]].working
		})
		for _, j := range order {
			if !cols[j].disjoint(covered) {
				continue
			}
			duties = append(duties, columnDuty(sorted, cols[j]))
			orMask(covered, cols[j].mask)
			coveredCount += len(cols[j].shifts)
			if coveredCount == n {
				break
			}
		}
	}

	// Sweep whatever is left and repair short duties over the union.
	if coveredCount < n {
		var rest []model.Shift
		for i, sh := range sorted.Shifts {
			if covered[i/64]&(1<<(i%64)) == 0 {
				rest = append(rest, sh)
			}
		}
		duties = append(duties, sweep(ctx, rest, rules)...)
	}

	duties, err := repairShortDuties(ctx, duties, rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInfeasible, err)
	}
	return duties, nil
}

func columnDuty(sorted model.Instance, col column) model.Duty {
	shifts := make([]model.Shift, len(col.shifts))
	for i, idx := range col.shifts {
		shifts[i] = sorted.Shifts[idx]
	}
	return model.Duty{Shifts: shifts}
}
