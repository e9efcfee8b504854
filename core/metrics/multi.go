package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDutyStats forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordDutyStats(stats []DutyStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordDutyStats(stats); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolveRun forwards run outcomes to sinks that support them.
func (m *MultiSink) RecordSolveRun(ev SolveRunEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SolveRunRecorder); ok {
			if err := rec.RecordSolveRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAssignmentOrder forwards duty sheet orders.
func (m *MultiSink) RecordAssignmentOrder(ev AssignmentOrderEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentOrderRecorder); ok {
			if err := rec.RecordAssignmentOrder(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAssignmentAck forwards ack events.
func (m *MultiSink) RecordAssignmentAck(ev AssignmentAckEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AssignmentAckRecorder); ok {
			if err := rec.RecordAssignmentAck(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReassignment forwards spare driver reassignments.
func (m *MultiSink) RecordReassignment(ev ReassignmentEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ReassignmentRecorder); ok {
			if err := rec.RecordReassignment(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetDiscovery forwards discovery events.
func (m *MultiSink) RecordFleetDiscovery(ev FleetDiscoveryEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetDiscoveryRecorder); ok {
			if err := rec.RecordFleetDiscovery(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTimetable forwards timetable events.
func (m *MultiSink) RecordTimetable(ev TimetableEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TimetableRecorder); ok {
			if err := rec.RecordTimetable(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAckLatency forwards latency metrics when supported by the sink.
func (m *MultiSink) RecordAckLatency(lat []AckLatency) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(LatencyRecorder); ok {
			if err := lr.RecordAckLatency(lat); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetSize forwards fleet size metrics when supported by the sink.
func (m *MultiSink) RecordFleetSize(size int) error {
	for _, s := range m.Sinks {
		if fr, ok := s.(FleetSizeRecorder); ok {
			if err := fr.RecordFleetSize(size); err != nil {
				return err
			}
		}
	}
	return nil
}
