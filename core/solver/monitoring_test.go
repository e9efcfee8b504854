package solver

import (
	"context"
	"testing"
	"time"

	coremon "github.com/opentransit/crewd/core/monitoring"
	"github.com/opentransit/crewd/infra/mqtt"
)

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) CapturePanic(any)    {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestAssignErrorCaptured(t *testing.T) {
	ResetMetrics(nil)
	t.Cleanup(func() { ResetMetrics(nil) })

	pub := mqtt.NewMockPublisher()
	pub.FailIDs["d1"] = true
	mon := &recordMonitor{}
	coremon.Init(mon)
	t.Cleanup(func() { coremon.Init(coremon.NopMonitor{}) })

	mgr := newTestManager(t, pub, nil, nil, nil)
	in := twoDriverInstance()
	res, err := mgr.Schedule(context.Background(), in)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	report, err := mgr.Assign(context.Background(), in, res.Roster, []string{"d1", "d2"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if report.AckRate == 1 {
		t.Fatalf("expected a failed duty, got full ack rate")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["driver_id"] != "d1" || mon.tags["module"] != "solve_manager" {
		t.Fatalf("tags missing: %+v", mon.tags)
	}
}
