package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	// Simple OAuth2 token endpoint returning a static token
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`)); err != nil {
			t.Errorf("write token: %v", err)
		}
	}))
	defer server.Close()

	cfg := Conf{ClientID: "id", ClientSecret: "secret", TokenURL: server.URL}
	client := NewClientCred(cfg)

	token, err := client.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken returned error: %v", err)
	}
	if token != "token123" {
		t.Fatalf("unexpected token %s", token)
	}

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	if err := client.SetAuthHeader(req); err != nil {
		t.Fatalf("SetAuthHeader returned error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer token123" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
}

func TestGetTokenCachesUntilRefresh(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`)); err != nil {
			t.Errorf("write token: %v", err)
		}
	}))
	defer server.Close()

	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", TokenURL: server.URL})
	if _, err := client.GetToken(context.Background()); err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if _, err := client.GetToken(context.Background()); err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one token request, got %d", calls)
	}
	if _, err := client.ForceRefresh(context.Background()); err != nil {
		t.Fatalf("ForceRefresh: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected refresh to hit the endpoint, got %d calls", calls)
	}
}
