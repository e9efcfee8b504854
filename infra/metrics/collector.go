package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/opentransit/crewd/core/events"
	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/internal/eventbus"
)

// StartEventCollector mirrors solver events from the bus into the metrics
// sink until the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.SolveEvent:
		if r, ok := sink.(coremetrics.SolveRunRecorder); ok {
			_ = r.RecordSolveRun(coremetrics.SolveRunEvent{
				Instance:   e.Instance,
				Drivers:    e.Drivers,
				WorkingMin: e.Working,
				Feasible:   e.Err == nil,
				Elapsed:    e.Elapsed,
				Time:       time.Now(),
			})
		}
	case events.AssignmentEvent:
		if r, ok := sink.(coremetrics.AssignmentAckRecorder); ok {
			errStr := ""
			if e.Err != nil {
				errStr = e.Err.Error()
			}
			_ = r.RecordAssignmentAck(coremetrics.AssignmentAckEvent{
				OrderID:      strconv.FormatInt(time.Now().UnixNano(), 10),
				DriverID:     e.DriverID,
				Acknowledged: e.Acknowledged,
				Latency:      e.Latency,
				Error:        errStr,
				Time:         time.Now(),
			})
		}
	}
}
