package model

import "fmt"

// Duty is the ordered chain of shifts one driver performs in a day. The
// driver reports Setup minutes before the first shift and leaves Cleanup
// minutes after the last one; every gap of at least Rules.MinBreak counts as
// a break and resets the accumulated driving time.
type Duty struct {
	Shifts []Shift `json:"shifts"`
}

// DrivingTime returns the sum of shift durations.
func (d Duty) DrivingTime() int {
	total := 0
	for _, s := range d.Shifts {
		total += s.Duration()
	}
	return total
}

// Start returns the minute the driver starts working, including setup.
// It returns 0 for an empty duty.
func (d Duty) Start(r Rules) int {
	if len(d.Shifts) == 0 {
		return 0
	}
	return d.Shifts[0].Start - r.Setup
}

// End returns the minute the driver stops working, including cleanup.
// It returns 0 for an empty duty.
func (d Duty) End(r Rules) int {
	if len(d.Shifts) == 0 {
		return 0
	}
	return d.Shifts[len(d.Shifts)-1].End + r.Cleanup
}

// WorkingTime returns the span of the duty from setup start to cleanup end.
func (d Duty) WorkingTime(r Rules) int {
	if len(d.Shifts) == 0 {
		return 0
	}
	return d.End(r) - d.Start(r)
}

// GapTime returns the total idle minutes between consecutive shifts.
func (d Duty) GapTime() int {
	total := 0
	for i := 1; i < len(d.Shifts); i++ {
		total += d.Shifts[i].Start - d.Shifts[i-1].End
	}
	return total
}

// Breaks returns the indices i such that the gap before shift i counts as a
// break under the rules.
func (d Duty) Breaks(r Rules) []int {
	var idx []int
	for i := 1; i < len(d.Shifts); i++ {
		if d.Shifts[i].Start-d.Shifts[i-1].End >= r.MinBreak {
			idx = append(idx, i)
		}
	}
	return idx
}

// Validate replays the duty against the rules. An empty duty is valid; a
// non-empty duty must keep shifts ordered with at least MinGap between them,
// never accumulate more than MaxNoBreakDriving since the last break, stay
// within MaxDriving, and have a working time in [MinWorking, MaxWorking].
func (d Duty) Validate(r Rules) error {
	if len(d.Shifts) == 0 {
		return nil
	}
	driving := 0
	noBreak := 0
	for i, s := range d.Shifts {
		if err := s.Validate(); err != nil {
			return err
		}
		if i == 0 {
			noBreak = s.Duration()
		} else {
			gap := s.Start - d.Shifts[i-1].End
			if gap < r.MinGap {
				return fmt.Errorf("gap of %dmin between shift %d and %d below minimum %dmin",
					gap, d.Shifts[i-1].ID, s.ID, r.MinGap)
			}
			if gap >= r.MinBreak {
				noBreak = s.Duration()
			} else {
				noBreak += s.Duration()
			}
		}
		if noBreak > r.MaxNoBreakDriving {
			return fmt.Errorf("shift %d: %dmin driving without break exceeds %dmin",
				s.ID, noBreak, r.MaxNoBreakDriving)
		}
		driving += s.Duration()
	}
	if driving > r.MaxDriving {
		return fmt.Errorf("driving time %dmin exceeds %dmin", driving, r.MaxDriving)
	}
	if w := d.WorkingTime(r); w > r.MaxWorking {
		return fmt.Errorf("working time %dmin exceeds %dmin", w, r.MaxWorking)
	} else if w < r.MinWorking {
		return fmt.Errorf("working time %dmin below minimum %dmin", w, r.MinWorking)
	}
	return nil
}

// TimelineEntry is one row of a duty sheet.
type TimelineEntry struct {
	Kind    string `json:"kind"` // "setup", "shift", "break", "cleanup"
	Start   int    `json:"start"`
	End     int    `json:"end"`
	ShiftID int    `json:"shift_id,omitempty"`
}

// Timeline expands the duty into a driver-readable sequence of setup, shifts,
// breaks and cleanup. Gaps shorter than a break are left implicit, matching
// how duty sheets are printed at the depot.
func (d Duty) Timeline(r Rules) []TimelineEntry {
	if len(d.Shifts) == 0 {
		return nil
	}
	entries := []TimelineEntry{{Kind: "setup", Start: d.Start(r), End: d.Shifts[0].Start}}
	for i, s := range d.Shifts {
		if i > 0 && s.Start-d.Shifts[i-1].End >= r.MinBreak {
			entries = append(entries, TimelineEntry{Kind: "break", Start: d.Shifts[i-1].End, End: s.Start})
		}
		entries = append(entries, TimelineEntry{Kind: "shift", Start: s.Start, End: s.End, ShiftID: s.ID})
	}
	last := d.Shifts[len(d.Shifts)-1]
	entries = append(entries, TimelineEntry{Kind: "cleanup", Start: last.End, End: d.End(r)})
	return entries
}
