package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/swisspair/pairing/internal/client"
	"github.com/swisspair/pairing/internal/domain"
	"github.com/swisspair/pairing/internal/engine"
	"github.com/swisspair/pairing/internal/repository"
)

var ErrRoundAlreadyComputed = errors.New("round has already been computed")

// PairingService drives one round's pairing computation end to end: run the
// engine, persist the result, and notify players. Grounded on matchService
// in the teacher's internal/service/match.go.
type PairingService interface {
	ComputeRound(ctx context.Context, tournamentID uint64, rec domain.TournamentRecord) (*domain.PairingResult, error)
	GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error)
}

type pairingService struct {
	repo     repository.RoundRepository
	roster   client.RosterClient
	notifier client.NotifierClient
}

// NewPairingService builds a PairingService. roster and notifier may be nil,
// in which case post-computation notification is skipped.
func NewPairingService(repo repository.RoundRepository, roster client.RosterClient, notifier client.NotifierClient) PairingService {
	return &pairingService{repo: repo, roster: roster, notifier: notifier}
}

// ComputeRound runs the Dutch pairing engine over rec - which also reports
// which round number rec's completed results put it on - and persists the
// result under that round. If that round was already computed, the stored
// result is returned unchanged instead of the freshly computed one, so a
// retried HTTP request is idempotent.
func (s *pairingService) ComputeRound(ctx context.Context, tournamentID uint64, rec domain.TournamentRecord) (*domain.PairingResult, error) {
	pairings, round, err := engine.NewEngine().Run(rec)
	if err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetRound(ctx, tournamentID, round); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrRoundNotFound) {
		return nil, err
	}

	result := &domain.PairingResult{
		TournamentID: tournamentID,
		Round:        round,
		Pairings:     pairings,
		Status:       domain.RoundComputed,
		ComputedAt:   time.Now(),
	}

	if err := s.repo.SaveRound(ctx, result); err != nil {
		return nil, err
	}

	if s.roster != nil && s.notifier != nil {
		go s.notify(context.Background(), tournamentID, result)
	}

	return result, nil
}

// GetRound returns a previously computed round's pairings.
func (s *pairingService) GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error) {
	return s.repo.GetRound(ctx, tournamentID, round)
}

// notify emails the round's pairings to every player who has one. Failures
// are logged rather than propagated, mirroring processEloUpdate's
// best-effort async pattern in the teacher's matchService.
func (s *pairingService) notify(ctx context.Context, tournamentID uint64, result *domain.PairingResult) {
	entries, err := s.roster.GetRoster(ctx, tournamentID)
	if err != nil {
		log.Printf("notify: failed to load roster for tournament %d: %v", tournamentID, err)
		return
	}

	byNumber := make(map[int]client.ParticipantResponse, len(entries))
	for _, e := range entries {
		byNumber[e.Number] = e
	}

	if err := s.notifier.NotifyPairings(ctx, byNumber, result); err != nil {
		log.Printf("notify: failed to send round %d pairings for tournament %d: %v", result.Round, tournamentID, err)
	}
}
