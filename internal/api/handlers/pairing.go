package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swisspair/pairing/internal/domain"
	"github.com/swisspair/pairing/internal/metrics"
	"github.com/swisspair/pairing/internal/repository"
	"github.com/swisspair/pairing/internal/service"
)

// PairingHandler exposes the round-pairing computation over HTTP, grounded
// on BracketHandler/MatchHandler in the teacher's internal/api/handlers.
type PairingHandler struct {
	svc service.PairingService
}

func NewPairingHandler(svc service.PairingService) *PairingHandler {
	return &PairingHandler{svc: svc}
}

type pairingResponse struct {
	TournamentID   uint64           `json:"tournament_id"`
	Round          int              `json:"round"`
	IdempotencyKey string           `json:"idempotency_key"`
	Pairings       []domain.Pairing `json:"pairings"`
}

func toPairingResponse(tournamentID uint64, result *domain.PairingResult) pairingResponse {
	return pairingResponse{
		TournamentID:   tournamentID,
		Round:          result.Round,
		IdempotencyKey: result.IdempotencyKey,
		Pairings:       result.Pairings,
	}
}

// ComputeNext derives the next round's pairings for a tournament from the
// posted record and persists the result.
func (h *PairingHandler) ComputeNext(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := strconv.ParseUint(chi.URLParam(r, "tournamentId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tournament ID")
		return
	}

	var rec domain.TournamentRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	result, err := h.svc.ComputeRound(r.Context(), tournamentID, rec)
	if err != nil {
		var pairingErr *domain.PairingError
		var consistencyErr *domain.ConsistencyError
		switch {
		case errors.As(err, &pairingErr), errors.As(err, &consistencyErr):
			metrics.RecordPairingRun("rejected", time.Since(start))
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			metrics.RecordPairingRun("error", time.Since(start))
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	metrics.RecordPairingRun("ok", time.Since(start))

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toPairingResponse(tournamentID, result))
}

// GetRound returns a previously computed round's pairings.
func (h *PairingHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := strconv.ParseUint(chi.URLParam(r, "tournamentId"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tournament ID")
		return
	}
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}

	result, err := h.svc.GetRound(r.Context(), tournamentID, round)
	if err != nil {
		if errors.Is(err, repository.ErrRoundNotFound) {
			writeError(w, http.StatusNotFound, "round not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	json.NewEncoder(w).Encode(toPairingResponse(tournamentID, result))
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
