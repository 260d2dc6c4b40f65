package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/swisspair/pairing/internal/client"
	"github.com/swisspair/pairing/internal/domain"
	"github.com/swisspair/pairing/internal/repository"
)

// mockRoundRepository implements repository.RoundRepository for testing.
type mockRoundRepository struct {
	mu     sync.Mutex
	rounds map[string]*domain.PairingResult
}

func newMockRoundRepo() *mockRoundRepository {
	return &mockRoundRepository{rounds: make(map[string]*domain.PairingResult)}
}

func key(tournamentID uint64, round int) string {
	return fmt.Sprintf("%d:%d", tournamentID, round)
}

func (r *mockRoundRepository) SaveRound(ctx context.Context, result *domain.PairingResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result.IdempotencyKey == "" {
		result.IdempotencyKey = "test-key"
	}
	k := key(result.TournamentID, result.Round)
	if _, ok := r.rounds[k]; ok {
		return nil
	}
	copy := *result
	r.rounds[k] = &copy
	return nil
}

func (r *mockRoundRepository) GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.rounds[key(tournamentID, round)]
	if !ok {
		return nil, repository.ErrRoundNotFound
	}
	copy := *result
	return &copy, nil
}

func (r *mockRoundRepository) GetHistory(ctx context.Context, tournamentID uint64) ([]*domain.PairingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PairingResult
	for _, result := range r.rounds {
		if result.TournamentID == tournamentID {
			copy := *result
			out = append(out, &copy)
		}
	}
	return out, nil
}

// stubRosterClient returns a fixed roster, for exercising the notify path.
type stubRosterClient struct {
	roster []client.ParticipantResponse
	err    error
}

func (s *stubRosterClient) GetRoster(ctx context.Context, tournamentID uint64) ([]client.ParticipantResponse, error) {
	return s.roster, s.err
}

// spyNotifierClient records every NotifyPairings call it receives.
type spyNotifierClient struct {
	mu    sync.Mutex
	calls []*domain.PairingResult
	done  chan struct{}
}

func newSpyNotifier() *spyNotifierClient {
	return &spyNotifierClient{done: make(chan struct{}, 16)}
}

func (s *spyNotifierClient) NotifyPairings(ctx context.Context, roster map[int]client.ParticipantResponse, result *domain.PairingResult) error {
	s.mu.Lock()
	s.calls = append(s.calls, result)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func freshPlayers(n int) []domain.PlayerRecord {
	players := make([]domain.PlayerRecord, n)
	for i := 0; i < n; i++ {
		players[i] = domain.PlayerRecord{Number: i + 1}
	}
	return players
}

func standardConfig(rounds int) domain.TournamentConfig {
	return domain.TournamentConfig{
		NumberOfRounds: rounds,
		ScorePoints: domain.ScorePointSystem{
			domain.ResultWin:        20,
			domain.ResultDraw:       10,
			domain.ResultLoss:       0,
			domain.ResultPairingBye: 20,
		},
	}
}

func TestComputeRoundPersistsAndReturnsPairings(t *testing.T) {
	repo := newMockRoundRepo()
	svc := NewPairingService(repo, nil, nil)
	ctx := context.Background()

	rec := domain.TournamentRecord{Players: freshPlayers(4), Config: standardConfig(5)}
	result, err := svc.ComputeRound(ctx, 1, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Round != 1 {
		t.Errorf("expected round 1, got %d", result.Round)
	}
	if len(result.Pairings) != 2 {
		t.Errorf("expected 2 pairings for 4 players, got %d", len(result.Pairings))
	}
	if result.IdempotencyKey == "" {
		t.Error("expected a non-empty idempotency key")
	}

	stored, err := svc.GetRound(ctx, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error fetching stored round: %v", err)
	}
	if len(stored.Pairings) != len(result.Pairings) {
		t.Errorf("stored round does not match computed round")
	}
}

func TestComputeRoundIsIdempotent(t *testing.T) {
	repo := newMockRoundRepo()
	svc := NewPairingService(repo, nil, nil)
	ctx := context.Background()

	rec := domain.TournamentRecord{Players: freshPlayers(4), Config: standardConfig(5)}
	first, err := svc.ComputeRound(ctx, 1, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.ComputeRound(ctx, 1, rec)
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if second.IdempotencyKey != first.IdempotencyKey {
		t.Errorf("retried ComputeRound should return the already-stored result, got a different idempotency key")
	}
}

func TestComputeRoundNotifiesRoster(t *testing.T) {
	repo := newMockRoundRepo()
	roster := &stubRosterClient{roster: []client.ParticipantResponse{
		{ID: 1, Number: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Number: 2, Name: "Bob", Email: "bob@example.com"},
	}}
	notifier := newSpyNotifier()
	svc := NewPairingService(repo, roster, notifier)
	ctx := context.Background()

	rec := domain.TournamentRecord{Players: freshPlayers(2), Config: standardConfig(5)}
	if _, err := svc.ComputeRound(ctx, 1, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	<-notifier.done
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.calls) != 1 {
		t.Fatalf("expected exactly one notify call, got %d", len(notifier.calls))
	}
}

func TestGetRoundReturnsNotFoundForUncomputedRound(t *testing.T) {
	repo := newMockRoundRepo()
	svc := NewPairingService(repo, nil, nil)

	_, err := svc.GetRound(context.Background(), 1, 3)
	if err != repository.ErrRoundNotFound {
		t.Errorf("expected ErrRoundNotFound, got %v", err)
	}
}
