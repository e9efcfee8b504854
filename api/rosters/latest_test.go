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

func TestLatestHandler(t *testing.T) {
	store := &memStore{}
	base := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	for i, drivers := range []int{9, 8, 7} {
		if err := store.Append(context.Background(), logging.SolveRecord{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Instance:  "weekday",
			Drivers:   drivers,
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := store.Append(context.Background(), logging.SolveRecord{
		Timestamp: base.Add(30 * time.Minute),
		Instance:  "saturday",
		Drivers:   5,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLatestHandler(store, "")

	req := httptest.NewRequest("GET", "/api/rosters/latest?instance=weekday", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out logging.SolveRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Drivers != 7 || out.Instance != "weekday" {
		t.Fatalf("expected the newest weekday record, got %+v", out)
	}
}

func TestLatestHandler_Empty(t *testing.T) {
	h := NewLatestHandler(&memStore{}, "")
	req := httptest.NewRequest("GET", "/api/rosters/latest", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an empty store, got %d", rr.Code)
	}
}

func TestLatestHandler_Auth(t *testing.T) {
	h := NewLatestHandler(&memStore{}, "tok")
	req := httptest.NewRequest("GET", "/api/rosters/latest", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}
