package model

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Instance is a named timetable: the set of shifts of one service day.
type Instance struct {
	Name   string  `json:"name"`
	Shifts []Shift `json:"shifts"`
}

// Validate checks that the instance can be scheduled at all: well formed
// shifts, unique IDs, and every shift individually coverable under the rules
// (a single shift longer than the no-break driving cap can never be driven).
func (in Instance) Validate(r Rules) error {
	seen := make(map[int]struct{}, len(in.Shifts))
	for _, s := range in.Shifts {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate shift id %d", s.ID)
		}
		seen[s.ID] = struct{}{}
		if s.Duration() > r.MaxNoBreakDriving {
			return fmt.Errorf("shift %d: duration %dmin exceeds no-break driving cap %dmin",
				s.ID, s.Duration(), r.MaxNoBreakDriving)
		}
		if s.Duration()+r.Setup+r.Cleanup > r.MaxWorking {
			return fmt.Errorf("shift %d: cannot fit within max working time", s.ID)
		}
	}
	return nil
}

// TotalDriving returns the sum of all shift durations.
func (in Instance) TotalDriving() int {
	total := 0
	for _, s := range in.Shifts {
		total += s.Duration()
	}
	return total
}

// MinStart returns the earliest shift start, or 0 for an empty instance.
func (in Instance) MinStart() int {
	if len(in.Shifts) == 0 {
		return 0
	}
	min := in.Shifts[0].Start
	for _, s := range in.Shifts[1:] {
		if s.Start < min {
			min = s.Start
		}
	}
	return min
}

// MaxEnd returns the latest shift end, or 0 for an empty instance.
func (in Instance) MaxEnd() int {
	if len(in.Shifts) == 0 {
		return 0
	}
	max := in.Shifts[0].End
	for _, s := range in.Shifts[1:] {
		if s.End > max {
			max = s.End
		}
	}
	return max
}

// DriverLowerBound returns ceil(total driving / max driving), the weakest
// valid bound on the number of duties needed.
func (in Instance) DriverLowerBound(r Rules) int {
	if r.MaxDriving <= 0 {
		return 0
	}
	total := in.TotalDriving()
	return (total + r.MaxDriving - 1) / r.MaxDriving
}

// Sorted returns a copy of the instance with shifts ordered by start time,
// then ID.
func (in Instance) Sorted() Instance {
	out := make([]Shift, len(in.Shifts))
	copy(out, in.Shifts)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return Instance{Name: in.Name, Shifts: out}
}

// Fingerprint returns a stable hash of the shift set, used to detect when two
// solve calls refer to the same timetable.
func (in Instance) Fingerprint() uint64 {
	h := fnv.New64a()
	for _, s := range in.Sorted().Shifts {
		var buf [24]byte
		putInt64(buf[0:8], int64(s.ID))
		putInt64(buf[8:16], int64(s.Start))
		putInt64(buf[16:24], int64(s.End))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func putInt64(b []byte, v int64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
