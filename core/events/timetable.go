package events

import "github.com/opentransit/crewd/core/model"

// TimetableEvent is published when a new timetable enters the system, from
// the feed connector or from the synthetic generator.
type TimetableEvent struct {
	Instance model.Instance
	Source   string
}
