package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/infra/logger"
)

// InfluxSink writes scheduling events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDutyStats writes one point per duty of a solved roster.
func (s *InfluxSink) RecordDutyStats(stats []coremetrics.DutyStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, d := range stats {
		p := write.NewPointWithMeasurement("roster_duty").
			AddTag("instance", d.Instance).
			AddTag("driver_id", d.Driver).
			AddTag("component", "solve_manager").
			AddField("shifts", d.Shifts).
			AddField("driving_min", d.DrivingMin).
			AddField("working_min", d.WorkingMin).
			AddField("gap_min", d.GapMin).
			AddField("breaks", d.Breaks).
			SetTime(d.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordSolveRun persists the outcome of one scheduling run.
func (s *InfluxSink) RecordSolveRun(ev coremetrics.SolveRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("instance", ev.Instance).
		AddTag("feasible", strconv.FormatBool(ev.Feasible)).
		AddTag("component", "solve_manager")
	if ev.Solver != "" {
		p = p.AddTag("solver", ev.Solver)
	}
	p = p.AddField("drivers", ev.Drivers).
		AddField("working_min", ev.WorkingMin).
		AddField("elapsed_ms", round3(ev.Elapsed.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignmentOrder records a duty sheet being sent to a driver terminal.
func (s *InfluxSink) RecordAssignmentOrder(ev coremetrics.AssignmentOrderEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment_order_sent").
		AddTag("driver_id", ev.DriverID).
		AddTag("order_id", ev.OrderID).
		AddTag("accepted", strconv.FormatBool(ev.Accepted)).
		AddTag("component", "solve_manager")
	if ev.Instance != "" {
		p = p.AddTag("instance", ev.Instance)
	}
	p = p.AddField("shifts", ev.Shifts).
		AddField("working_min", ev.WorkingMin).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignmentAck records an acknowledgment result.
func (s *InfluxSink) RecordAssignmentAck(ev coremetrics.AssignmentAckEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("assignment_ack_received").
		AddTag("driver_id", ev.DriverID).
		AddTag("acknowledged", strconv.FormatBool(ev.Acknowledged)).
		AddTag("order_id", ev.OrderID).
		AddTag("component", "solve_manager").
		AddField("latency_ms", round3(ev.Latency.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordReassignment records a duty moved to a spare driver.
func (s *InfluxSink) RecordReassignment(ev coremetrics.ReassignmentEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("duty_reassigned").
		AddTag("instance", ev.Instance).
		AddTag("reason", ev.Reason).
		AddTag("component", "solve_manager")
	if ev.FromDriver != "" {
		p = p.AddTag("from_driver", ev.FromDriver)
	}
	if ev.ToDriver != "" {
		p = p.AddTag("to_driver", ev.ToDriver)
	}
	p = p.AddField("duty", ev.Duty).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetDiscovery persists the result of a discovery cycle.
func (s *InfluxSink) RecordFleetDiscovery(ev coremetrics.FleetDiscoveryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_discovery_event").
		AddTag("component", ev.Component).
		AddField("pings", ev.Pings).
		AddField("responses", ev.Responses).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTimetable writes a summary of a timetable received from the feed.
func (s *InfluxSink) RecordTimetable(ev coremetrics.TimetableEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	in := ev.Instance
	p := write.NewPointWithMeasurement("timetable_received").
		AddTag("instance", in.Name).
		AddTag("component", "timetable_feed").
		AddField("shifts", len(in.Shifts))
	if len(in.Shifts) > 0 {
		p = p.AddField("first_start_min", in.MinStart()).
			AddField("last_end_min", in.MaxEnd())
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
