package metrics

import (
	"time"

	"github.com/opentransit/crewd/core/model"
)

// DutyStats is a per-duty record of a solved roster.
type DutyStats struct {
	Instance   string
	Driver     string
	Shifts     int
	DrivingMin int
	WorkingMin int
	GapMin     int
	Breaks     int
	Time       time.Time
}

// MetricsSink records duty statistics for observability purposes.
type MetricsSink interface {
	RecordDutyStats(stats []DutyStats) error
}

// SolveRunEvent captures the outcome of one scheduling run.
type SolveRunEvent struct {
	Instance   string
	Solver     string
	Drivers    int
	WorkingMin int
	Feasible   bool
	Elapsed    time.Duration
	Time       time.Time
}

// SolveRunRecorder records scheduling run outcomes.
type SolveRunRecorder interface {
	RecordSolveRun(ev SolveRunEvent) error
}

// AssignmentOrderEvent represents a duty sheet sent to a driver terminal.
type AssignmentOrderEvent struct {
	OrderID    string
	DriverID   string
	Instance   string
	Shifts     int
	WorkingMin int
	Accepted   bool
	Time       time.Time
}

// AssignmentOrderRecorder records duty sheets sent to drivers.
type AssignmentOrderRecorder interface {
	RecordAssignmentOrder(ev AssignmentOrderEvent) error
}

// AssignmentAckEvent captures the acknowledgment for a duty sheet.
type AssignmentAckEvent struct {
	OrderID      string
	DriverID     string
	Acknowledged bool
	Latency      time.Duration
	Error        string
	Time         time.Time
}

// AssignmentAckRecorder records acknowledgment events.
type AssignmentAckRecorder interface {
	RecordAssignmentAck(ev AssignmentAckEvent) error
}

// ReassignmentEvent records a duty moved to a spare driver.
type ReassignmentEvent struct {
	Instance   string
	Duty       int
	FromDriver string
	ToDriver   string
	Reason     string
	Time       time.Time
}

// ReassignmentRecorder records spare driver reassignments.
type ReassignmentRecorder interface {
	RecordReassignment(ev ReassignmentEvent) error
}

// FleetDiscoveryEvent captures data about a terminal discovery cycle.
type FleetDiscoveryEvent struct {
	Pings     int
	Responses int
	Component string
	Time      time.Time
}

// FleetDiscoveryRecorder records terminal discovery events.
type FleetDiscoveryRecorder interface {
	RecordFleetDiscovery(ev FleetDiscoveryEvent) error
}

// TimetableEvent records a timetable received from the feed.
type TimetableEvent struct {
	Instance model.Instance
	Time     time.Time
}

// TimetableRecorder records incoming timetables.
type TimetableRecorder interface {
	RecordTimetable(ev TimetableEvent) error
}

// AckLatency is the time to receive an acknowledgment for a duty sheet.
type AckLatency struct {
	DriverID     string
	Acknowledged bool
	Latency      time.Duration
}

// LatencyRecorder is implemented by sinks able to record ack latency.
type LatencyRecorder interface {
	RecordAckLatency(latencies []AckLatency) error
}

// FleetSizeRecorder records the number of driver terminals discovered.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDutyStats([]DutyStats) error                { return nil }
func (NopSink) RecordSolveRun(SolveRunEvent) error               { return nil }
func (NopSink) RecordAssignmentOrder(AssignmentOrderEvent) error { return nil }
func (NopSink) RecordAssignmentAck(AssignmentAckEvent) error     { return nil }
func (NopSink) RecordReassignment(ReassignmentEvent) error       { return nil }
func (NopSink) RecordFleetDiscovery(FleetDiscoveryEvent) error   { return nil }
func (NopSink) RecordTimetable(TimetableEvent) error             { return nil }
func (NopSink) RecordAckLatency([]AckLatency) error              { return nil }
func (NopSink) RecordFleetSize(int) error                        { return nil }
