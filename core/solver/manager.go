package solver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentransit/crewd/core/driverstatus"
	"github.com/opentransit/crewd/core/events"
	"github.com/opentransit/crewd/core/logger"
	"github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/mqtt"
	"github.com/opentransit/crewd/core/solver/logging"
	"github.com/opentransit/crewd/internal/eventbus"
)

// SolveManager runs the two phase optimization and distributes the resulting
// duties to driver terminals.
type SolveManager struct {
	rules         model.Rules
	setCover      *SetCoverSolver
	greedy        *GreedySolver
	search        *LocalSearch
	setCoverFirst bool
	publisher     mqtt.Client
	discovery     FleetDiscovery
	ackTimeout    time.Duration
	logger        logger.Logger
	metrics       metrics.MetricsSink
	bus           eventbus.EventBus
	store         logging.LogStore
	statusStore   driverstatus.Store
	history       []Result
	mu            sync.Mutex
}

// NewSolveManager creates a new manager. ackTimeout defines the maximum
// duration to wait for driver acknowledgments; zero selects a five second
// default. The publisher and discovery are optional: without them the
// manager only solves.
func NewSolveManager(rules model.Rules, setCover *SetCoverSolver, greedy *GreedySolver, publisher mqtt.Client, ackTimeout time.Duration, sink metrics.MetricsSink, bus eventbus.EventBus, disc FleetDiscovery, log logger.Logger) (*SolveManager, error) {
	if greedy == nil || log == nil {
		return nil, fmt.Errorf("solver: nil parameter provided to NewSolveManager")
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}
	if ackTimeout <= 0 {
		ackTimeout = 5 * time.Second
	}
	if setCover == nil {
		setCover = NewSetCoverSolver(ColumnLimits{})
	}
	return &SolveManager{
		rules:         rules,
		setCover:      setCover,
		greedy:        greedy,
		search:        NewLocalSearch(),
		setCoverFirst: true,
		publisher:     publisher,
		discovery:     disc,
		ackTimeout:    ackTimeout,
		logger:        log,
		metrics:       sink,
		bus:           bus,
	}, nil
}

// SetSetCoverFirst configures whether the relaxation is attempted before the
// greedy sweep.
func (m *SolveManager) SetSetCoverFirst(v bool) {
	m.mu.Lock()
	m.setCoverFirst = v
	m.mu.Unlock()
}

// SetSearchPasses bounds the improvement sweeps run after each solve.
func (m *SolveManager) SetSearchPasses(n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.search.MaxPasses = n
	m.mu.Unlock()
}

// SetLogStore configures the store used to persist solve logs.
func (m *SolveManager) SetLogStore(store logging.LogStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// SetStatusStore configures the store used to persist driver status.
func (m *SolveManager) SetStatusStore(store driverstatus.Store) {
	m.mu.Lock()
	m.statusStore = store
	m.mu.Unlock()
}

// Rules returns the labor rules the manager solves under.
func (m *SolveManager) Rules() model.Rules { return m.rules }

// solveStrategy runs one objective, trying the set cover relaxation first
// and falling back to the greedy sweep plus local search on failure.
func (m *SolveManager) solveStrategy(ctx context.Context, in model.Instance, opts Options) (model.Roster, string, error) {
	m.mu.Lock()
	setCoverFirst := m.setCoverFirst
	m.mu.Unlock()

	if setCoverFirst && m.setCover != nil {
		if m.bus != nil {
			m.bus.Publish(events.StrategyEvent{Instance: in.Name, Action: "setcover_attempt"})
		}
		m.logger.Debugf("trying set cover solve for %s (%s)", in.Name, opts.Objective)
		roster, err := m.setCover.SolveStrict(ctx, in, m.rules, opts)
		if err == nil {
			return roster, "setcover", nil
		}
		if m.bus != nil {
			m.bus.Publish(events.StrategyEvent{Instance: in.Name, Action: "setcover_failure", Err: err})
		}
		m.logger.Warnf("set cover solve failed: %v", err)
	}

	roster, err := m.greedy.Solve(ctx, in, m.rules)
	if err != nil {
		return model.Roster{}, "greedy", err
	}
	duties := m.search.ReduceDuties(ctx, roster.Duties, m.rules)
	if opts.Objective == ObjectiveWorking {
		duties = m.search.MinimizeWorking(ctx, duties, m.rules)
	}
	if opts.Objective == ObjectiveWorking && opts.MaxDrivers > 0 && len(duties) > opts.MaxDrivers {
		return model.Roster{}, "greedy", fmt.Errorf("greedy: %d duties exceed cap %d", len(duties), opts.MaxDrivers)
	}
	if m.bus != nil {
		m.bus.Publish(events.StrategyEvent{Instance: in.Name, Action: "greedy_fallback"})
	}
	return model.Roster{Duties: duties}, "greedy", nil
}

// Schedule runs both optimization phases on the instance: first the driver
// count is minimized, then the total working time at that driver count. The
// returned roster covers every shift exactly once.
func (m *SolveManager) Schedule(ctx context.Context, in model.Instance) (Result, error) {
	return m.schedule(ctx, in, 0)
}

// ScheduleWithDrivers skips the driver minimization phase and optimizes the
// working time under an imposed duty count.
func (m *SolveManager) ScheduleWithDrivers(ctx context.Context, in model.Instance, drivers int) (Result, error) {
	if drivers <= 0 {
		return Result{}, fmt.Errorf("driver count must be positive")
	}
	return m.schedule(ctx, in, drivers)
}

func (m *SolveManager) schedule(ctx context.Context, in model.Instance, fixedDrivers int) (Result, error) {
	started := time.Now()
	if err := in.Validate(m.rules); err != nil {
		m.recordFailure(in, started, err)
		return Result{}, err
	}
	m.logger.Infof("scheduling %s: %d shifts, %d min driving, lower bound %d drivers",
		in.Name, len(in.Shifts), in.TotalDriving(), in.DriverLowerBound(m.rules))

	var (
		roster     model.Roster
		solverName string
		err        error
		phase1     PhaseStats
	)
	drivers := fixedDrivers
	if fixedDrivers > 0 {
		solverName = "fixed"
		phase1 = PhaseStats{Objective: drivers, Solver: solverName}
	} else {
		p1Start := time.Now()
		roster, solverName, err = m.solveStrategy(ctx, in, Options{Objective: ObjectiveDrivers})
		if err != nil {
			m.recordFailure(in, started, err)
			return Result{}, fmt.Errorf("no solution found for %s: %w", in.Name, err)
		}
		drivers = roster.Drivers()
		phase1 = PhaseStats{Objective: drivers, Solver: solverName, Elapsed: time.Since(p1Start)}
		if m.bus != nil {
			m.bus.Publish(events.PhaseEvent{Instance: in.Name, Phase: 1, Objective: drivers, Elapsed: phase1.Elapsed})
		}
		m.logger.Infof("phase 1 done: %d drivers (%s)", drivers, solverName)
	}

	p2Start := time.Now()
	improved, solver2, err := m.solveStrategy(ctx, in, Options{Objective: ObjectiveWorking, MaxDrivers: drivers})
	switch {
	case err == nil && (fixedDrivers > 0 || improved.Drivers() <= drivers):
		roster = improved
	case err != nil && fixedDrivers > 0:
		m.recordFailure(in, started, err)
		return Result{}, fmt.Errorf("no solution found for %s: %w", in.Name, err)
	case err != nil:
		m.logger.Warnf("phase 2 solve failed, keeping phase 1 roster: %v", err)
		solver2 = solverName
	}
	working := roster.TotalWorkingTime(m.rules)
	phase2 := PhaseStats{Objective: working, Solver: solver2, Elapsed: time.Since(p2Start)}
	if m.bus != nil {
		m.bus.Publish(events.PhaseEvent{Instance: in.Name, Phase: 2, Objective: working, Elapsed: phase2.Elapsed})
	}
	m.logger.Infof("phase 2 done: %d min working over %d drivers", working, roster.Drivers())

	if err := roster.Validate(in, m.rules); err != nil {
		m.recordFailure(in, started, err)
		return Result{}, fmt.Errorf("solution check failed for %s: %w", in.Name, err)
	}

	res := Result{
		Instance:   in.Name,
		Roster:     roster,
		Drivers:    roster.Drivers(),
		DrivingMin: roster.TotalDrivingTime(),
		WorkingMin: working,
		GapMin:     roster.TotalGapTime(),
		Phase1:     phase1,
		Phase2:     phase2,
		SolvedAt:   time.Now(),
	}
	m.recordSuccess(in, res, time.Since(started))

	m.mu.Lock()
	m.history = append(m.history, res)
	m.mu.Unlock()

	if m.store != nil {
		_ = m.store.Append(ctx, logging.SolveRecord{
			Timestamp:  time.Now(),
			Instance:   in.Name,
			Shifts:     len(in.Shifts),
			Drivers:    res.Drivers,
			DrivingMin: res.DrivingMin,
			WorkingMin: res.WorkingMin,
			GapMin:     res.GapMin,
			Solver:     phase2.Solver,
			Roster:     roster,
		})
	}
	return res, nil
}

// Run processes incoming timetables until the context is canceled.
func (m *SolveManager) Run(ctx context.Context, timetables <-chan model.Instance) {
	for {
		select {
		case in := <-timetables:
			if _, err := m.Schedule(ctx, in); err != nil {
				m.logger.Errorf("schedule %s: %v", in.Name, err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// History returns a copy of all results produced so far.
func (m *SolveManager) History() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Result(nil), m.history...)
}

// Close releases resources held by the manager.
func (m *SolveManager) Close() error {
	if m.discovery != nil {
		if err := m.discovery.Close(); err != nil {
			return err
		}
	}
	if m.bus != nil {
		m.bus.Close()
	}
	if m.store != nil {
		_ = m.store.Close()
	}
	return nil
}

func (m *SolveManager) recordFailure(in model.Instance, started time.Time, err error) {
	solveRuns.WithLabelValues(in.Name, "error").Inc()
	if m.bus != nil {
		m.bus.Publish(events.SolveEvent{Instance: in.Name, Err: err, Elapsed: time.Since(started)})
	}
	if m.metrics != nil {
		if rec, ok := m.metrics.(metrics.SolveRunRecorder); ok {
			ev := metrics.SolveRunEvent{Instance: in.Name, Feasible: false, Elapsed: time.Since(started), Time: time.Now()}
			if err := rec.RecordSolveRun(ev); err != nil {
				m.logger.Errorf("metrics error: %v", err)
			}
		}
	}
}

func (m *SolveManager) recordSuccess(in model.Instance, res Result, elapsed time.Duration) {
	solveRuns.WithLabelValues(in.Name, "ok").Inc()
	solveDuration.WithLabelValues(in.Name).Observe(elapsed.Seconds())
	driversScheduled.WithLabelValues(in.Name).Set(float64(res.Drivers))
	workingMinutes.WithLabelValues(in.Name).Set(float64(res.WorkingMin))

	if m.bus != nil {
		m.bus.Publish(events.SolveEvent{Instance: in.Name, Drivers: res.Drivers, Working: res.WorkingMin, Elapsed: elapsed})
		m.bus.Publish(events.RosterEvent{Instance: in.Name, Roster: res.Roster})
	}
	if m.metrics == nil {
		return
	}
	if rec, ok := m.metrics.(metrics.SolveRunRecorder); ok {
		ev := metrics.SolveRunEvent{
			Instance:   in.Name,
			Solver:     res.Phase2.Solver,
			Drivers:    res.Drivers,
			WorkingMin: res.WorkingMin,
			Feasible:   true,
			Elapsed:    elapsed,
			Time:       time.Now(),
		}
		if err := rec.RecordSolveRun(ev); err != nil {
			m.logger.Errorf("metrics error: %v", err)
		}
	}
	stats := make([]metrics.DutyStats, len(res.Roster.Duties))
	now := time.Now()
	for i, d := range res.Roster.Duties {
		stats[i] = metrics.DutyStats{
			Instance:   in.Name,
			Driver:     fmt.Sprintf("duty%02d", i+1),
			Shifts:     len(d.Shifts),
			DrivingMin: d.DrivingTime(),
			WorkingMin: d.WorkingTime(m.rules),
			GapMin:     d.GapTime(),
			Breaks:     len(d.Breaks(m.rules)),
			Time:       now,
		}
	}
	if err := m.metrics.RecordDutyStats(stats); err != nil {
		m.logger.Errorf("metrics error: %v", err)
	}
}
