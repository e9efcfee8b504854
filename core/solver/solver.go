package solver

import (
	"context"
	"time"

	"github.com/opentransit/crewd/core/model"
)

// Objective selects what a strict solve minimizes.
type Objective int

const (
	// ObjectiveDrivers minimizes the number of duties.
	ObjectiveDrivers Objective = iota
	// ObjectiveWorking minimizes total working time at a fixed driver count.
	ObjectiveWorking
)

func (o Objective) String() string {
	if o == ObjectiveWorking {
		return "working"
	}
	return "drivers"
}

// Options control a strict solve.
type Options struct {
	Objective Objective
	// MaxDrivers bounds the duty count. Required for ObjectiveWorking,
	// ignored when zero.
	MaxDrivers int
}

// Solver builds a roster covering every shift of the instance exactly once.
type Solver interface {
	Solve(ctx context.Context, in model.Instance, rules model.Rules) (model.Roster, error)
}

// StrictSolver solvers optimize a specific objective and fail rather than
// degrade when the objective cannot be met.
type StrictSolver interface {
	SolveStrict(ctx context.Context, in model.Instance, rules model.Rules, opts Options) (model.Roster, error)
}

// PhaseStats captures one optimization phase.
type PhaseStats struct {
	Objective int           `json:"objective"`
	Solver    string        `json:"solver"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Result is the outcome of a two phase scheduling run.
type Result struct {
	Instance   string       `json:"instance"`
	Roster     model.Roster `json:"roster"`
	Drivers    int          `json:"drivers"`
	DrivingMin int          `json:"driving_min"`
	WorkingMin int          `json:"working_min"`
	GapMin     int          `json:"gap_min"`
	Phase1     PhaseStats   `json:"phase1"`
	Phase2     PhaseStats   `json:"phase2"`
	SolvedAt   time.Time    `json:"solved_at"`
}

// DriverAssignment pairs one duty of a roster with the driver it was sent to.
type DriverAssignment struct {
	DriverID     string `json:"driver_id"`
	Duty         int    `json:"duty"`
	Acknowledged bool   `json:"acknowledged"`
	Spare        bool   `json:"spare,omitempty"`
	Error        string `json:"error,omitempty"`
}

// FleetDiscovery retrieves the driver terminals currently online.
// Discover should return within the provided timeout and must be non-blocking.
type FleetDiscovery interface {
	Discover(ctx context.Context, timeout time.Duration) ([]string, error)
	Close() error
}
