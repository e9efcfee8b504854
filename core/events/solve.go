package events

import (
	"time"

	"github.com/opentransit/crewd/core/model"
)

// SolveEvent is published when a scheduling run completes, successfully or not.
type SolveEvent struct {
	Instance string
	Drivers  int
	Working  int
	Err      error
	Elapsed  time.Duration
}

// PhaseEvent reports the outcome of a single optimization phase. Phase 1
// minimizes the driver count, phase 2 minimizes total working time.
type PhaseEvent struct {
	Instance  string
	Phase     int
	Objective int
	Elapsed   time.Duration
}

// RosterEvent carries the final roster of a successful run for consumers that
// need the duties themselves rather than aggregates.
type RosterEvent struct {
	Instance string
	Roster   model.Roster
}
