package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetRosterDecodesParticipants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/tournaments/7/participants" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]ParticipantResponse{
			{ID: 1, Number: 1, Name: "Alice", Email: "alice@example.com"},
			{ID: 2, Number: 2, Name: "Bob", Email: "bob@example.com"},
		})
	}))
	defer server.Close()

	c := NewRosterClient(server.URL)
	roster, err := c.GetRoster(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(roster))
	}
	if roster[0].Name != "Alice" || roster[1].Name != "Bob" {
		t.Errorf("unexpected roster contents: %+v", roster)
	}
}

func TestGetRosterReturnsErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewRosterClient(server.URL)
	if _, err := c.GetRoster(context.Background(), 7); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestGetRosterReturnsErrorOnNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewRosterClient(server.URL)
	if _, err := c.GetRoster(context.Background(), 99); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}
