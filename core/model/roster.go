package model

import "fmt"

// Roster is a set of duties meant to cover an instance's shifts exactly once.
type Roster struct {
	Duties []Duty `json:"duties"`
}

// Drivers returns the number of duties.
func (ro Roster) Drivers() int { return len(ro.Duties) }

// TotalDrivingTime returns the driving minutes summed over all duties.
func (ro Roster) TotalDrivingTime() int {
	total := 0
	for _, d := range ro.Duties {
		total += d.DrivingTime()
	}
	return total
}

// TotalWorkingTime returns the working minutes summed over all duties.
func (ro Roster) TotalWorkingTime(r Rules) int {
	total := 0
	for _, d := range ro.Duties {
		total += d.WorkingTime(r)
	}
	return total
}

// TotalGapTime returns the idle minutes between shifts summed over all duties.
func (ro Roster) TotalGapTime() int {
	total := 0
	for _, d := range ro.Duties {
		total += d.GapTime()
	}
	return total
}

// Validate checks the roster against the instance and rules: every duty must
// be non-empty and feasible, and every instance shift must appear in exactly
// one duty. The total driving time is cross-checked against the instance as
// a defect trap for solver bugs.
func (ro Roster) Validate(in Instance, r Rules) error {
	want := make(map[int]Shift, len(in.Shifts))
	for _, s := range in.Shifts {
		want[s.ID] = s
	}
	covered := make(map[int]int, len(want))
	for i, d := range ro.Duties {
		if len(d.Shifts) == 0 {
			return fmt.Errorf("duty %d is empty", i)
		}
		if err := d.Validate(r); err != nil {
			return fmt.Errorf("duty %d: %w", i, err)
		}
		for _, s := range d.Shifts {
			ref, ok := want[s.ID]
			if !ok {
				return fmt.Errorf("duty %d contains unknown shift %d", i, s.ID)
			}
			if ref != s {
				return fmt.Errorf("duty %d: shift %d differs from the instance", i, s.ID)
			}
			covered[s.ID]++
		}
	}
	for id, n := range covered {
		if n > 1 {
			return fmt.Errorf("shift %d covered %d times", id, n)
		}
	}
	if len(covered) != len(want) {
		for id := range want {
			if covered[id] == 0 {
				return fmt.Errorf("shift %d not covered", id)
			}
		}
	}
	if got, exp := ro.TotalDrivingTime(), in.TotalDriving(); got != exp {
		return fmt.Errorf("roster driving time %dmin does not match instance total %dmin", got, exp)
	}
	return nil
}
