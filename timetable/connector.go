package timetable

import (
	"context"
	"strings"

	"github.com/opentransit/crewd/config"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/solver"
)

// Manager is the subset of solver.SolveManager used by feed connectors.
type Manager interface {
	Schedule(ctx context.Context, in model.Instance) (solver.Result, error)
}

// Connector defines the behavior of a connector receiving timetables.
type Connector interface {
	Start(ctx context.Context) error
}

// NewConnector creates a connector depending on cfg.Mode ("client" or "mock").
// The sink is optional and records every accepted timetable.
func NewConnector(cfg config.FeedConfig, m Manager, sink coremetrics.TimetableRecorder) Connector {
	switch strings.ToLower(cfg.Mode) {
	case "mock":
		return NewServerMock(cfg.Mock, m, sink)
	default:
		return NewClient(cfg.Client, m, sink)
	}
}
