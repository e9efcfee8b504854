package mqtt

import (
	"errors"
	"time"

	"github.com/opentransit/crewd/core/model"
)

// ErrAckTimeout is returned when a driver terminal does not acknowledge an
// assignment before the deadline.
var ErrAckTimeout = errors.New("timeout waiting for ack")

// Client represents an MQTT client capable of sending duty assignments and
// waiting for acknowledgments from driver terminals.
type Client interface {
	// SendAssignment sends a duty sheet to the given driver and returns the
	// assignment identifier used to track the acknowledgment.
	SendAssignment(driverID string, duty model.Duty) (assignmentID string, err error)

	// WaitForAck waits for an acknowledgment for the provided assignment
	// identifier or until the timeout expires.
	WaitForAck(assignmentID string, timeout time.Duration) (bool, error)
}
