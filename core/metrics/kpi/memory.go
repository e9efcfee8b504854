package kpi

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps records in memory for testing or lightweight usage.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[time.Time]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]map[time.Time]*Record{}}
}

// Add inserts or updates the record aggregated by day and instance.
func (s *MemoryStore) Add(r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[r.Instance] == nil {
		s.data[r.Instance] = map[time.Time]*Record{}
	}
	d := Day(r.Date)
	rec := s.data[r.Instance][d]
	if rec == nil {
		rec = &Record{Instance: r.Instance, Date: d}
		s.data[r.Instance][d] = rec
	}
	rec.Runs += r.Runs
	rec.Drivers += r.Drivers
	rec.DrivingMin += r.DrivingMin
	rec.WorkingMin += r.WorkingMin
	return nil
}

// Query returns records between start and end inclusive.
func (s *MemoryStore) Query(instance string, start, end time.Time) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = Day(start)
	end = Day(end)
	var res []Record
	m := s.data[instance]
	for d, r := range m {
		if d.Before(start) || d.After(end) {
			continue
		}
		res = append(res, *r)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}
