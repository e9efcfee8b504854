package model

import "fmt"

// Shift is one timed piece of driving work to be covered by exactly one
// driver. Times are expressed in minutes since midnight of the service day;
// shifts running past midnight simply use values above 1440.
type Shift struct {
	ID    int `json:"id"`
	Start int `json:"start"` // departure from the depot or relief point
	End   int `json:"end"`   // arrival at the depot or relief point
}

// Duration returns the driving minutes of the shift.
func (s Shift) Duration() int { return s.End - s.Start }

// StartLabel returns the start time as HH:MM.
func (s Shift) StartLabel() string { return minutesLabel(s.Start) }

// EndLabel returns the end time as HH:MM.
func (s Shift) EndLabel() string { return minutesLabel(s.End) }

// Validate checks that the shift is well formed.
func (s Shift) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("shift %d: negative start time", s.ID)
	}
	if s.End <= s.Start {
		return fmt.Errorf("shift %d: end %s not after start %s", s.ID, s.EndLabel(), s.StartLabel())
	}
	return nil
}

func (s Shift) String() string {
	return fmt.Sprintf("shift %d %s-%s", s.ID, s.StartLabel(), s.EndLabel())
}

func minutesLabel(m int) string {
	if m < 0 {
		return fmt.Sprintf("-%02d:%02d", -m/60, (-m)%60)
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
