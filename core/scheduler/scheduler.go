package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/opentransit/crewd/core/model"
)

// Window is a period of the service day during which a driver may be
// rostered, in minutes from midnight. End is exclusive. Values past 24:00
// address the small hours of the next day, matching how late blocks are
// rostered.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Covers reports whether the window fully contains [start, end].
func (w Window) Covers(start, end int) bool {
	return start >= w.Start && end <= w.End
}

// Driver is a rosterable driver with their availability windows.
type Driver struct {
	ID      string   `json:"id"`
	Windows []Window `json:"windows"`
}

// Available reports whether the driver can hold a duty spanning
// [start, end] minutes.
func (d Driver) Available(start, end int) bool {
	for _, w := range d.Windows {
		if w.Covers(start, end) {
			return true
		}
	}
	return false
}

// Fleet lists the drivers of a depot.
type Fleet struct {
	Drivers []Driver `json:"drivers"`
}

// Entry assigns one duty of the roster to a driver, with concrete sign-on
// and sign-off times on the service day.
type Entry struct {
	DriverID string    `json:"driver_id"`
	Duty     int       `json:"duty"`
	SignOn   time.Time `json:"sign_on"`
	SignOff  time.Time `json:"sign_off"`
}

// Planner builds day plans from solved rosters.
type Planner struct {
	Rules model.Rules
	Fleet Fleet
}

// Plan assigns every duty of the roster to an available driver for the given
// service day. Duties are handed out in sign-on order; within a duty the
// first free driver in fleet order takes it, so operators list dedicated
// early-block drivers first. Each driver holds at most one duty per day.
func (p *Planner) Plan(date time.Time, roster model.Roster) ([]Entry, error) {
	if len(p.Fleet.Drivers) == 0 {
		return nil, errors.New("fleet has no drivers")
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	order := make([]int, len(roster.Duties))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return roster.Duties[order[a]].Start(p.Rules) < roster.Duties[order[b]].Start(p.Rules)
	})

	taken := make(map[string]bool, len(roster.Duties))
	entries := make([]Entry, 0, len(order))
	for _, di := range order {
		duty := roster.Duties[di]
		start, end := duty.Start(p.Rules), duty.End(p.Rules)
		assigned := ""
		for _, d := range p.Fleet.Drivers {
			if taken[d.ID] || !d.Available(start, end) {
				continue
			}
			assigned = d.ID
			break
		}
		if assigned == "" {
			return nil, fmt.Errorf("no driver available for the duty signing on at %s", Clock(start))
		}
		taken[assigned] = true
		entries = append(entries, Entry{
			DriverID: assigned,
			Duty:     di,
			SignOn:   day.Add(time.Duration(start) * time.Minute),
			SignOff:  day.Add(time.Duration(end) * time.Minute),
		})
	}
	return entries, nil
}

// Spares returns the drivers left without a duty by the given plan, in
// fleet order. They form the reserve pool of the day.
func (p *Planner) Spares(entries []Entry) []string {
	used := make(map[string]bool, len(entries))
	for _, e := range entries {
		used[e.DriverID] = true
	}
	var spares []string
	for _, d := range p.Fleet.Drivers {
		if !used[d.ID] {
			spares = append(spares, d.ID)
		}
	}
	return spares
}

// Clock formats minutes from midnight as an HH:MM clock string. Minutes past
// 24:00 wrap into the next day.
func Clock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60%24, min%60)
}
