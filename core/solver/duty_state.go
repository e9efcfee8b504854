package solver

import "github.com/opentransit/crewd/core/model"

// dutyState tracks one open duty during construction. It mirrors the rules in
// model.Duty.Validate incrementally so candidate appends are O(1).
type dutyState struct {
	shifts     []model.Shift
	driving    int
	noBreak    int
	firstStart int
	lastEnd    int
}

func newDutyState(s model.Shift) *dutyState {
	return &dutyState{
		shifts:     []model.Shift{s},
		driving:    s.Duration(),
		noBreak:    s.Duration(),
		firstStart: s.Start,
		lastEnd:    s.End,
	}
}

// canAppend reports whether s can legally extend the duty. The shift must
// start after the current end; callers feed shifts in start order.
func (d *dutyState) canAppend(s model.Shift, r model.Rules) bool {
	gap := s.Start - d.lastEnd
	if gap < r.MinGap {
		return false
	}
	dur := s.Duration()
	nb := d.noBreak + dur
	if gap >= r.MinBreak {
		nb = dur
	}
	if nb > r.MaxNoBreakDriving {
		return false
	}
	if d.driving+dur > r.MaxDriving {
		return false
	}
	if s.End+r.Cleanup-(d.firstStart-r.Setup) > r.MaxWorking {
		return false
	}
	return true
}

func (d *dutyState) append(s model.Shift, r model.Rules) {
	gap := s.Start - d.lastEnd
	dur := s.Duration()
	if gap >= r.MinBreak {
		d.noBreak = dur
	} else {
		d.noBreak += dur
	}
	d.driving += dur
	d.lastEnd = s.End
	d.shifts = append(d.shifts, s)
}

// working returns the duty's working time including setup and cleanup.
func (d *dutyState) working(r model.Rules) int {
	if len(d.shifts) == 0 {
		return 0
	}
	return d.lastEnd + r.Cleanup - (d.firstStart - r.Setup)
}

func (d *dutyState) toDuty() model.Duty {
	return model.Duty{Shifts: append([]model.Shift(nil), d.shifts...)}
}
