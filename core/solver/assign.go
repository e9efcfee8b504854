package solver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentransit/crewd/core/driverstatus"
	"github.com/opentransit/crewd/core/events"
	"github.com/opentransit/crewd/core/metrics"
	"github.com/opentransit/crewd/core/model"
	"github.com/opentransit/crewd/core/monitoring"
)

// AssignmentReport summarizes one distribution round.
type AssignmentReport struct {
	Instance    string             `json:"instance"`
	Assignments []DriverAssignment `json:"assignments"`
	AckRate     float64            `json:"ack_rate"`
}

// sendAndWait sends the duty sheet and waits for an acknowledgment while
// measuring the latency.
func (m *SolveManager) sendAndWait(id string, duty model.Duty) (bool, time.Duration, error) {
	start := time.Now()
	orderID, err := m.publisher.SendAssignment(id, duty)
	if err != nil {
		mqttFailure.Inc()
		return false, time.Since(start), err
	}
	mqttSuccess.Inc()
	ack, err := m.publisher.WaitForAck(orderID, m.ackTimeout)
	return ack, time.Since(start), err
}

// Assign sends each duty of the roster to a driver terminal and waits for
// acknowledgments. Drivers beyond the duty count are treated as spares:
// unacknowledged duties are re-sent once to a spare.
func (m *SolveManager) Assign(ctx context.Context, in model.Instance, roster model.Roster, driverIDs []string) (AssignmentReport, error) {
	if m.publisher == nil {
		return AssignmentReport{}, fmt.Errorf("solver: no publisher configured")
	}
	if len(driverIDs) == 0 && m.discovery != nil {
		dctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		ids, err := m.discovery.Discover(dctx, time.Second)
		if err != nil {
			return AssignmentReport{}, fmt.Errorf("fleet discovery failed: %w", err)
		}
		driverIDs = ids
		if fr, ok := m.metrics.(metrics.FleetSizeRecorder); ok {
			if err := fr.RecordFleetSize(len(ids)); err != nil {
				m.logger.Errorf("fleet size metrics error: %v", err)
			}
		}
		m.logger.Infof("discovered %d driver terminals", len(ids))
	}
	duties := roster.Duties
	if len(driverIDs) < len(duties) {
		return AssignmentReport{}, fmt.Errorf("solver: %d duties but only %d drivers", len(duties), len(driverIDs))
	}
	spares := append([]string(nil), driverIDs[len(duties):]...)

	report := AssignmentReport{
		Instance:    in.Name,
		Assignments: make([]DriverAssignment, len(duties)),
	}

	lr, recordLatency := m.metrics.(metrics.LatencyRecorder)
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		lat []metrics.AckLatency
	)
	send := func(slot int, id string, spare bool) {
		duty := duties[slot]
		ack, dur, err := m.sendAndWait(id, duty)
		mu.Lock()
		defer mu.Unlock()
		a := DriverAssignment{DriverID: id, Duty: slot, Acknowledged: err == nil && ack, Spare: spare}
		if err != nil {
			a.Error = err.Error()
		}
		report.Assignments[slot] = a
		ackLatency.WithLabelValues(in.Name).Observe(dur.Seconds())
		if m.bus != nil {
			m.bus.Publish(events.AssignmentEvent{
				DriverID:     id,
				Duty:         slot,
				Shifts:       len(duty.Shifts),
				Acknowledged: a.Acknowledged,
				Err:          err,
				Latency:      dur,
			})
		}
		if recordLatency {
			lat = append(lat, metrics.AckLatency{DriverID: id, Acknowledged: a.Acknowledged, Latency: dur})
		}
		orderID := fmt.Sprintf("%s/%d", in.Name, slot)
		if rec, ok := m.metrics.(metrics.AssignmentOrderRecorder); ok {
			ev := metrics.AssignmentOrderEvent{
				OrderID:    orderID,
				DriverID:   id,
				Instance:   in.Name,
				Shifts:     len(duty.Shifts),
				WorkingMin: duty.WorkingTime(m.rules),
				Accepted:   a.Acknowledged,
				Time:       time.Now(),
			}
			if err := rec.RecordAssignmentOrder(ev); err != nil {
				m.logger.Errorf("order metrics error: %v", err)
			}
		}
		if rec, ok := m.metrics.(metrics.AssignmentAckRecorder); ok {
			ev := metrics.AssignmentAckEvent{
				OrderID:      orderID,
				DriverID:     id,
				Acknowledged: a.Acknowledged,
				Latency:      dur,
				Time:         time.Now(),
			}
			if err != nil {
				ev.Error = err.Error()
			}
			if err := rec.RecordAssignmentAck(ev); err != nil {
				m.logger.Errorf("ack metrics error: %v", err)
			}
		}
		if m.statusStore != nil && a.Acknowledged {
			m.statusStore.RecordAssignment(id, driverstatus.LastAssignment{
				Instance:   in.Name,
				Duty:       slot,
				Shifts:     len(duty.Shifts),
				WorkingMin: duty.WorkingTime(m.rules),
				Timestamp:  time.Now(),
			})
		}
	}

	for i := range duties {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			send(slot, driverIDs[slot], false)
		}(i)
	}
	wg.Wait()

	// One retry per failed duty, against the spare pool.
	for slot := range duties {
		if report.Assignments[slot].Acknowledged || len(spares) == 0 {
			continue
		}
		from := report.Assignments[slot].DriverID
		id := spares[0]
		spares = spares[1:]
		m.logger.Warnf("duty %d not acknowledged by %s, reassigning to spare %s", slot, from, id)
		send(slot, id, true)
		if rec, ok := m.metrics.(metrics.ReassignmentRecorder); ok {
			ev := metrics.ReassignmentEvent{
				Instance:   in.Name,
				Duty:       slot,
				FromDriver: from,
				ToDriver:   id,
				Reason:     "ack_timeout",
				Time:       time.Now(),
			}
			if err := rec.RecordReassignment(ev); err != nil {
				m.logger.Errorf("reassignment metrics error: %v", err)
			}
		}
	}

	acked := 0
	for slot, a := range report.Assignments {
		if a.Acknowledged {
			acked++
			continue
		}
		monitoring.CaptureException(
			fmt.Errorf("duty %d of %s not acknowledged by %s", slot, in.Name, a.DriverID),
			map[string]string{"driver_id": a.DriverID, "module": "solve_manager"},
		)
	}
	if len(duties) > 0 {
		report.AckRate = float64(acked) / float64(len(duties))
		ackRate.WithLabelValues(in.Name).Set(report.AckRate)
	}
	if recordLatency && lr != nil {
		if err := lr.RecordAckLatency(lat); err != nil {
			m.logger.Errorf("latency metrics error: %v", err)
		}
	}
	return report, nil
}
