package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RosterClient fetches the current participant roster for a tournament from
// the external tournament service, grounded on tournamentClient in the
// teacher's internal/client/tournament.go.
type RosterClient interface {
	GetRoster(ctx context.Context, tournamentID uint64) ([]ParticipantResponse, error)
}

// ParticipantResponse is one roster entry as the tournament service reports it.
type ParticipantResponse struct {
	ID     uint64 `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"display_name"`
	Email  string `json:"email"`
}

type rosterClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRosterClient builds a RosterClient that calls the tournament service at baseURL.
func NewRosterClient(baseURL string) RosterClient {
	return &rosterClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetRoster fetches the participant roster for a tournament.
func (c *rosterClient) GetRoster(ctx context.Context, tournamentID uint64) ([]ParticipantResponse, error) {
	url := fmt.Sprintf("%s/internal/tournaments/%d/participants", c.baseURL, tournamentID)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call tournament service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("tournament not found")
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tournament service returned status %d", resp.StatusCode)
	}

	var roster []ParticipantResponse
	if err := json.NewDecoder(resp.Body).Decode(&roster); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return roster, nil
}
