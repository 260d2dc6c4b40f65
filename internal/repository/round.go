package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/swisspair/pairing/internal/domain"
)

var ErrRoundNotFound = errors.New("round not found")

// RoundRepository persists each computed round's pairing list so a round can
// be re-served without recomputation and so history stays auditable,
// grounded on matchRepository in the teacher's internal/repository/match.go.
type RoundRepository interface {
	SaveRound(ctx context.Context, result *domain.PairingResult) error
	GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error)
	GetHistory(ctx context.Context, tournamentID uint64) ([]*domain.PairingResult, error)
}

type roundRepository struct {
	db *sql.DB
}

// NewRoundRepository builds a Postgres-backed RoundRepository.
func NewRoundRepository(db *sql.DB) RoundRepository {
	return &roundRepository{db: db}
}

// SaveRound persists a computed round's pairings inside one transaction,
// stamping a fresh idempotency key if the caller didn't already supply one.
func (r *roundRepository) SaveRound(ctx context.Context, result *domain.PairingResult) error {
	if result.IdempotencyKey == "" {
		result.IdempotencyKey = uuid.NewString()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	whites := make([]int32, len(result.Pairings))
	blacks := make([]int32, len(result.Pairings))
	for i, p := range result.Pairings {
		whites[i] = int32(p.White)
		blacks[i] = int32(p.Black)
	}

	query := `
		INSERT INTO rounds (tournament_id, round, status, idempotency_key, computed_at, whites, blacks)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tournament_id, round) DO NOTHING
	`
	_, err = tx.ExecContext(ctx, query,
		result.TournamentID, result.Round, result.Status, result.IdempotencyKey, result.ComputedAt,
		pq.Array(whites), pq.Array(blacks),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *roundRepository) GetRound(ctx context.Context, tournamentID uint64, round int) (*domain.PairingResult, error) {
	query := `
		SELECT tournament_id, round, status, idempotency_key, computed_at, whites, blacks
		FROM rounds
		WHERE tournament_id = $1 AND round = $2
	`
	row := r.db.QueryRowContext(ctx, query, tournamentID, round)
	return scanRound(row)
}

func (r *roundRepository) GetHistory(ctx context.Context, tournamentID uint64) ([]*domain.PairingResult, error) {
	query := `
		SELECT tournament_id, round, status, idempotency_key, computed_at, whites, blacks
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY round
	`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.PairingResult
	for rows.Next() {
		result, err := scanRoundRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRound(row *sql.Row) (*domain.PairingResult, error) {
	result, err := scanRoundRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return result, nil
}

func scanRoundRow(scanner rowScanner) (*domain.PairingResult, error) {
	var result domain.PairingResult
	var whites, blacks []int32
	err := scanner.Scan(
		&result.TournamentID, &result.Round, &result.Status, &result.IdempotencyKey, &result.ComputedAt,
		pq.Array(&whites), pq.Array(&blacks),
	)
	if err != nil {
		return nil, err
	}

	result.Pairings = make([]domain.Pairing, len(whites))
	for i := range whites {
		result.Pairings[i] = domain.Pairing{White: int(whites[i]), Black: int(blacks[i])}
	}
	return &result, nil
}
