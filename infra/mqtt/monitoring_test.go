package mqtt

import (
	"errors"
	"testing"
	"time"

	coremon "github.com/opentransit/crewd/core/monitoring"
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

// A publish that fails every retry must end up in the error tracker with the
// driver identified.
func TestSendAssignmentErrorCaptured(t *testing.T) {
	down := errors.New("broker unreachable")
	mc := &mockClient{publishErrs: []error{down, down, down, down}}
	swapClientFactory(t, mc)

	mon := &recordMonitor{}
	coremon.Init(mon)
	t.Cleanup(func() { coremon.Init(coremon.NopMonitor{}) })

	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "crewd-test", AckTopic: "a", MaxRetries: 0, BackoffMS: 1})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if _, err = cli.SendAssignment("drv1", sampleDuty()); err == nil {
		t.Fatalf("expected publish error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["driver_id"] != "drv1" || mon.tags["module"] != "mqtt" {
		t.Fatalf("capture tags = %v", mon.tags)
	}
}
