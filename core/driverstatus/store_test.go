package driverstatus

import "testing"

func TestMemoryStore_Filter(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{DriverID: "d1", Depot: "north", Line: "12"})
	s.Set(Status{DriverID: "d2", Depot: "south", Line: "7"})
	out := s.List(Filter{Depot: "north"})
	if len(out) != 1 || out[0].DriverID != "d1" {
		t.Fatalf("filter failed: %#v", out)
	}
}

func TestMemoryStore_FilterSpare(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{DriverID: "d1"})
	s.Set(Status{DriverID: "d2", Spare: true})
	out := s.List(Filter{SpareOnly: true})
	if len(out) != 1 || out[0].DriverID != "d2" {
		t.Fatalf("spare filter failed: %#v", out)
	}
}

func TestMemoryStore_RecordAssignment(t *testing.T) {
	s := NewMemoryStore()
	s.Set(Status{DriverID: "d1"})
	a := LastAssignment{Instance: "weekday", Duty: 3, Shifts: 4}
	s.RecordAssignment("d1", a)
	out := s.List(Filter{})
	if out[0].CurrentStatus != "assigned" {
		t.Fatalf("status not updated")
	}
	if out[0].LastAssignment.Duty != 3 {
		t.Fatalf("assignment not stored: %#v", out[0].LastAssignment)
	}
}

func TestMemoryStore_SetKeepsAssignment(t *testing.T) {
	s := NewMemoryStore()
	s.RecordAssignment("d1", LastAssignment{Instance: "weekday", Duty: 2})
	s.Set(Status{DriverID: "d1", CurrentStatus: "on_break"})
	out := s.List(Filter{})
	if out[0].CurrentStatus != "on_break" {
		t.Fatalf("status not updated: %#v", out[0])
	}
	if out[0].LastAssignment.Duty != 2 {
		t.Fatalf("assignment lost on status update: %#v", out[0].LastAssignment)
	}
}

func TestMemoryStore_RecordAssignmentNew(t *testing.T) {
	s := NewMemoryStore()
	a := LastAssignment{Instance: "weekday"}
	s.RecordAssignment("d3", a)
	out := s.List(Filter{})
	if len(out) != 1 || out[0].DriverID != "d3" {
		t.Fatalf("auto create failed %#v", out)
	}
}
