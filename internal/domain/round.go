package domain

import "time"

// RoundStatus is the lifecycle of one persisted round-pairing computation.
type RoundStatus string

const (
	RoundPending   RoundStatus = "pending"
	RoundComputed  RoundStatus = "computed"
	RoundPublished RoundStatus = "published"
)

// PairingRecord is one persisted row of a computed round's pairing list.
// Black == 0 denotes a pairing-allocated bye, mirroring Pairing.
type PairingRecord struct {
	ID             uint64
	TournamentID   uint64
	Round          int
	White          int
	Black          int
	Status         RoundStatus
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PairingResult is the full outcome of one engine run for a round, as handed
// to the repository for persistence and to the notifier for emailing.
type PairingResult struct {
	TournamentID   uint64
	Round          int
	IdempotencyKey string
	Pairings       []Pairing
	Status         RoundStatus
	ComputedAt     time.Time
}
