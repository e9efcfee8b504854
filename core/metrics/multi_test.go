package metrics

import "testing"

// TestMultiSink ensures records are forwarded to all sinks.

type recordSink struct {
	count int
}

func (r *recordSink) RecordDutyStats([]DutyStats) error {
	r.count++
	return nil
}

func (r *recordSink) RecordAckLatency([]AckLatency) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordDutyStats(nil); err != nil {
		t.Fatalf("record stats: %v", err)
	}
	if err := m.RecordAckLatency(nil); err != nil {
		t.Fatalf("record latency: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("records not forwarded")
	}
}

func TestMultiSinkSkipsUnsupported(t *testing.T) {
	s := &recordSink{}
	m := NewMultiSink(s)
	// recordSink does not implement SolveRunRecorder; the event is skipped.
	if err := m.RecordSolveRun(SolveRunEvent{}); err != nil {
		t.Fatalf("record run: %v", err)
	}
	if s.count != 0 {
		t.Fatalf("unexpected forward")
	}
}
