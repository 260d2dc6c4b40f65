package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/swisspair/pairing/internal/domain"
	"github.com/swisspair/pairing/internal/repository"
)

// stubPairingService implements service.PairingService for handler tests.
type stubPairingService struct {
	computeResult *domain.PairingResult
	computeErr    error
	getResult     *domain.PairingResult
	getErr        error
}

func (s *stubPairingService) ComputeRound(ctx context.Context, tournamentID uint64, rec domain.TournamentRecord) (*domain.PairingResult, error) {
	return s.computeResult, s.computeErr
}

func (s *stubPairingService) GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error) {
	return s.getResult, s.getErr
}

func newTestRouter(svc *stubPairingService) chi.Router {
	h := NewPairingHandler(svc)
	r := chi.NewRouter()
	r.Route("/tournaments/{tournamentId}/rounds", func(r chi.Router) {
		r.Get("/{round}", h.GetRound)
		r.Post("/next", h.ComputeNext)
	})
	return r
}

func TestComputeNextReturnsCreatedOnSuccess(t *testing.T) {
	svc := &stubPairingService{computeResult: &domain.PairingResult{
		TournamentID: 1,
		Round:        1,
		Pairings:     []domain.Pairing{{White: 1, Black: 2}},
	}}
	router := newTestRouter(svc)

	body, _ := json.Marshal(domain.TournamentRecord{Players: []domain.PlayerRecord{{Number: 1}, {Number: 2}}})
	req := httptest.NewRequest(http.MethodPost, "/tournaments/1/rounds/next", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp pairingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Round != 1 || len(resp.Pairings) != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestComputeNextReturnsUnprocessableOnPairingError(t *testing.T) {
	svc := &stubPairingService{computeErr: &domain.PairingError{Message: "round cannot be paired"}}
	router := newTestRouter(svc)

	body, _ := json.Marshal(domain.TournamentRecord{})
	req := httptest.NewRequest(http.MethodPost, "/tournaments/1/rounds/next", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, rec.Code)
	}
}

func TestComputeNextReturnsBadRequestForInvalidBody(t *testing.T) {
	svc := &stubPairingService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/tournaments/1/rounds/next", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestGetRoundReturnsNotFound(t *testing.T) {
	svc := &stubPairingService{getErr: repository.ErrRoundNotFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments/1/rounds/3", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestGetRoundReturnsStoredPairings(t *testing.T) {
	svc := &stubPairingService{getResult: &domain.PairingResult{
		TournamentID: 1,
		Round:        2,
		Pairings:     []domain.Pairing{{White: 3, Black: 4}},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments/1/rounds/2", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var resp pairingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Round != 2 {
		t.Errorf("expected round 2, got %d", resp.Round)
	}
}

func TestGetRoundReturnsBadRequestForInvalidTournamentID(t *testing.T) {
	svc := &stubPairingService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/tournaments/not-a-number/rounds/2", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
