package timetable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opentransit/crewd/config"
)

func TestClientPollSchedulesNewTimetables(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"weekday","shifts":[{"id":1,"start_min":480,"end_min":600}]}]`))
	}))
	defer feed.Close()

	sm := &schedMock{}
	c := NewClient(config.FeedClientConfig{APIURL: feed.URL}, sm, nil)
	if err := c.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sm.count() != 1 {
		t.Fatalf("expected one schedule call, got %d", sm.count())
	}
	// identical payload on the next poll is skipped
	if err := c.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sm.count() != 1 {
		t.Fatalf("repeated timetable re-scheduled")
	}
}

func TestClientPollReschedulesChangedTimetable(t *testing.T) {
	payloads := []string{
		`[{"name":"weekday","shifts":[{"id":1,"start_min":480,"end_min":600}]}]`,
		`[{"name":"weekday","shifts":[{"id":1,"start_min":480,"end_min":600},{"id":2,"start_min":610,"end_min":720}]}]`,
	}
	var n int
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payloads[n]))
		if n < len(payloads)-1 {
			n++
		}
	}))
	defer feed.Close()

	sm := &schedMock{}
	c := NewClient(config.FeedClientConfig{APIURL: feed.URL}, sm, nil)
	if err := c.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if err := c.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if sm.count() != 2 {
		t.Fatalf("expected changed timetable to re-solve, got %d calls", sm.count())
	}
}

func TestClientPollSendsBearerToken(t *testing.T) {
	token := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok42","token_type":"bearer","expires_in":3600}`))
	}))
	defer token.Close()

	var got string
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer feed.Close()

	cfg := config.FeedClientConfig{
		APIURL:       feed.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     token.URL,
	}
	c := NewClient(cfg, &schedMock{}, nil)
	if err := c.poll(context.Background()); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if got != "Bearer tok42" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestClientPollErrorStatus(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer feed.Close()

	c := NewClient(config.FeedClientConfig{APIURL: feed.URL}, &schedMock{}, nil)
	if err := c.poll(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
