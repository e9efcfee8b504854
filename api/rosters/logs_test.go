package rosters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opentransit/crewd/core/solver/logging"
)

type memStore struct{ recs []logging.SolveRecord }

func (m *memStore) Append(ctx context.Context, r logging.SolveRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q logging.LogQuery) ([]logging.SolveRecord, error) {
	var res []logging.SolveRecord
	for _, r := range m.recs {
		if q.Instance != "" && r.Instance != q.Instance {
			continue
		}
		if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	if err := store.Append(context.Background(), logging.SolveRecord{
		Timestamp:  time.Now(),
		Instance:   "weekday",
		Shifts:     30,
		Drivers:    9,
		WorkingMin: 2600,
		Solver:     "setcover",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(context.Background(), logging.SolveRecord{
		Timestamp: time.Now(),
		Instance:  "saturday",
		Drivers:   5,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/rosters/logs?instance=weekday", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.SolveRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].Instance != "weekday" {
		t.Fatalf("expected the weekday record, got %+v", out)
	}
	// unauthorized
	req = httptest.NewRequest("GET", "/api/rosters/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestLogHandler_NoToken(t *testing.T) {
	store := &memStore{}
	h := NewLogHandler(store, "")
	req := httptest.NewRequest("GET", "/api/rosters/logs", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected open access without token, got %d", rr.Code)
	}
}
