// Package events defines the scheduling related events emitted on the event bus.
//
// Available event types:
//   - TimetableEvent: a new timetable entered the system
//   - SolveEvent: a scheduling run finished
//   - PhaseEvent: outcome of one optimization phase
//   - StrategyEvent: solver selection and fallback information
//   - AssignmentEvent: driver assignment acknowledgment result
package events
