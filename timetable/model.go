package timetable

import (
	"fmt"

	"github.com/opentransit/crewd/core/model"
)

// Timetable is the payload received from the operations feed. Shift times are
// minutes from service-day midnight.
type Timetable struct {
	Name   string      `json:"name"`
	Shifts []WireShift `json:"shifts"`
}

// WireShift is a single vehicle block in feed encoding.
type WireShift struct {
	ID    int `json:"id"`
	Start int `json:"start_min"`
	End   int `json:"end_min"`
}

// Validate checks that the timetable payload is well formed.
func (t Timetable) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("name required")
	}
	if len(t.Shifts) == 0 {
		return fmt.Errorf("timetable %s has no shifts", t.Name)
	}
	seen := make(map[int]struct{}, len(t.Shifts))
	for _, s := range t.Shifts {
		if s.Start < 0 {
			return fmt.Errorf("shift %d: start_min must not be negative", s.ID)
		}
		if s.End <= s.Start {
			return fmt.Errorf("shift %d: end_min must be after start_min", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate shift id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// ToInstance converts the feed payload into a scheduling instance with shifts
// in start order.
func (t Timetable) ToInstance() (model.Instance, error) {
	if err := t.Validate(); err != nil {
		return model.Instance{}, err
	}
	shifts := make([]model.Shift, len(t.Shifts))
	for i, s := range t.Shifts {
		shifts[i] = model.Shift{ID: s.ID, Start: s.Start, End: s.End}
	}
	return model.Instance{Name: t.Name, Shifts: shifts}.Sorted(), nil
}
