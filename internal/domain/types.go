// Package domain holds the input/output record types the pairing core reads
// and produces, plus the error kinds the core and its external collaborators
// raise.
package domain

import "errors"

// Color is a played or preferred color. None means no game was played that
// round (a bye) or no preference could be derived.
type Color int

const (
	ColorNone Color = iota
	ColorWhite
	ColorBlack
)

// ResultToken names the outcome of one played round from a player's point of
// view. The mapping from (ResultToken, Color) to points is supplied by the
// tournament's ScorePointSystem, not hard-coded here.
type ResultToken int

const (
	ResultLoss ResultToken = iota
	ResultDraw
	ResultWin
	ResultForfeitWin
	ResultForfeitLoss
	ResultPairingBye
	ResultHalfPointBye
	ResultFullPointBye
	ResultZeroPointBye
)

// RoundResult is one played (or bye) round from a player's history.
// OpponentID is zero for any kind of bye.
type RoundResult struct {
	OpponentID int
	Color      Color
	Result     ResultToken
}

// ScorePointSystem maps a ResultToken to points, stored ×10 so half-points
// stay integral. The key is the result token alone: the colour played is not
// part of the lookup, so a result is worth the same with either colour.
type ScorePointSystem map[ResultToken]int

// Points returns the ×10 point value of a round result under s.
func (s ScorePointSystem) Points(rr RoundResult) int {
	return s[rr.Result]
}

// Max returns the largest ×10 point value any single round result can be
// worth under s, used to derive the per-round maximum possible score when
// deciding the topscorer flag.
func (s ScorePointSystem) Max() int {
	max := 0
	for _, v := range s {
		if v > max {
			max = v
		}
	}
	return max
}

// TournamentConfig carries the pairing-relevant configuration of the event
// that is not per-player.
type TournamentConfig struct {
	NumberOfRounds  int
	ByRank          bool
	FirstRoundColor Color
	ScorePoints     ScorePointSystem
	ForbiddenPairs  [][2]int
}

// PlayerRecord is one entry of the input record's player section, exactly as
// an external parser (out of scope for this module) is expected to populate
// it from a tournament file.
type PlayerRecord struct {
	Number       int  // 1-based starting rank, unique
	Zeroed       bool // withdrawn
	Results      []RoundResult
	Acceleration []int // ×10 points, one entry per accelerated round
}

// TournamentRecord is the abstract input record spec'd in section 6: player
// sections plus the tournament-wide configuration needed to derive player
// states for the next round.
type TournamentRecord struct {
	Players []PlayerRecord
	Config  TournamentConfig
}

// Pairing is one emitted (white, black) pair. Black == 0 denotes a
// pairing-allocated bye.
type Pairing struct {
	White int
	Black int
}

// PairingError is returned when the round as a whole cannot be paired under
// the absolute constraints (ValidityOracle reports the full roster
// infeasible).
type PairingError struct {
	Message string
}

func (e *PairingError) Error() string { return e.Message }

// ConsistencyError is raised by the external parser (out of scope here) when
// the input record is malformed: missing starting numbers, a result list
// shorter than the round count would allow, or claimed points that don't
// match computed ones. The core never constructs one itself; the type lives
// here so the parser's return value and this module's error handling share a
// vocabulary.
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string { return e.Message }

// Sentinel errors used by the ambient layers (repository, client, api) that
// wrap this module, in the teacher's errors.New/errors.Is style.
var (
	ErrTournamentNotFound = errors.New("domain: tournament not found")
	ErrRoundNotFound      = errors.New("domain: round not found")
	ErrRoundAlreadyExists = errors.New("domain: round already computed")
)
