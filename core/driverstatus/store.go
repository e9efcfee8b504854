package driverstatus

import (
	"sort"
	"sync"
	"time"
)

// LastAssignment summarizes the most recent duty sent to a driver.
type LastAssignment struct {
	Instance   string    `json:"instance"`
	Duty       int       `json:"duty"`
	Shifts     int       `json:"shifts"`
	WorkingMin int       `json:"working_min"`
	Timestamp  time.Time `json:"timestamp"`
}

// TimeWindow is a wall clock interval.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Status captures the current known state of a driver terminal. The forecast
// fields are filled by the API layer when an availability engine is
// configured.
type Status struct {
	DriverID             string             `json:"driver_id"`
	Depot                string             `json:"depot,omitempty"`
	Line                 string             `json:"line,omitempty"`
	CurrentStatus        string             `json:"current_status"`
	Spare                bool               `json:"spare,omitempty"`
	LastSeen             time.Time          `json:"last_seen,omitempty"`
	LastAssignment       LastAssignment     `json:"last_assignment"`
	AvailabilityForecast map[string]float64 `json:"availability_forecast,omitempty"`
	NextDutyWindow       TimeWindow         `json:"next_duty_window"`
}

// Filter selects drivers by depot, line, or spare flag.
type Filter struct {
	Depot     string
	Line      string
	SpareOnly bool
}

// Store tracks driver terminal state.
type Store interface {
	Set(Status)
	List(Filter) []Status
	RecordAssignment(id string, a LastAssignment)
}

// MemoryStore is the in-memory Store used by the service and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Status
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Status{}}
}

// Set stores the driver status. A status update without an assignment keeps
// the previously recorded assignment.
func (s *MemoryStore) Set(st Status) {
	s.mu.Lock()
	if prev, ok := s.data[st.DriverID]; ok && st.LastAssignment == (LastAssignment{}) {
		st.LastAssignment = prev.LastAssignment
	}
	s.data[st.DriverID] = st
	s.mu.Unlock()
}

// RecordAssignment updates the driver's last assignment, creating the entry
// when the driver is unknown.
func (s *MemoryStore) RecordAssignment(id string, a LastAssignment) {
	s.mu.Lock()
	st := s.data[id]
	if st.DriverID == "" {
		st.DriverID = id
	}
	st.LastAssignment = a
	st.CurrentStatus = "assigned"
	s.data[id] = st
	s.mu.Unlock()
}

func (s *MemoryStore) List(f Filter) []Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Status, 0, len(s.data))
	for _, st := range s.data {
		if f.Depot != "" && st.Depot != f.Depot {
			continue
		}
		if f.Line != "" && st.Line != f.Line {
			continue
		}
		if f.SpareOnly && !st.Spare {
			continue
		}
		res = append(res, st)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].DriverID < res[j].DriverID })
	return res
}
