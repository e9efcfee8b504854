package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/opentransit/crewd/core/model"
	coremqtt "github.com/opentransit/crewd/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is a simple assignment publisher used in tests.
type MockPublisher struct {
	Duties     map[string]model.Duty
	FailIDs    map[string]bool
	NoAckIDs   map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		Duties:     make(map[string]model.Duty),
		FailIDs:    make(map[string]bool),
		NoAckIDs:   make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// SendAssignment records the duty or returns an error if configured to fail.
// Drivers listed in NoAckIDs accept the publish but never acknowledge.
func (m *MockPublisher) SendAssignment(driverID string, duty model.Duty) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[driverID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Duties[driverID] = duty
	asnID := fmt.Sprintf("asn-%s", driverID)
	m.AckResults[asnID] = !m.NoAckIDs[driverID]
	return asnID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(assignmentID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[assignmentID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("unknown assignment")
	}
	return ok, nil
}
