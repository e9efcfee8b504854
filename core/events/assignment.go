package events

import "time"

// AssignmentEvent is published for each driver assignment acknowledgment or
// delivery error.
type AssignmentEvent struct {
	DriverID     string
	Duty         int
	Shifts       int
	Acknowledged bool
	Err          error
	Latency      time.Duration
}
