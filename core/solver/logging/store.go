package logging

import (
	"context"
	"time"

	"github.com/opentransit/crewd/core/model"
)

// SolveRecord captures one scheduling run and the roster it produced.
type SolveRecord struct {
	Timestamp  time.Time    `json:"timestamp"`
	Instance   string       `json:"instance"`
	Shifts     int          `json:"shifts"`
	Drivers    int          `json:"drivers"`
	DrivingMin int          `json:"driving_min"`
	WorkingMin int          `json:"working_min"`
	GapMin     int          `json:"gap_min"`
	Solver     string       `json:"solver"`
	Roster     model.Roster `json:"roster"`
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	Instance string
	Solver   string
}

// LogStore persists SolveRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec SolveRecord) error
	Query(ctx context.Context, q LogQuery) ([]SolveRecord, error)
	Close() error
}

func (q LogQuery) matches(r SolveRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Instance != "" && r.Instance != q.Instance {
		return false
	}
	if q.Solver != "" && r.Solver != q.Solver {
		return false
	}
	return true
}
