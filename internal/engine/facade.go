package engine

import (
	"sort"

	"github.com/swisspair/pairing/internal/domain"
	"github.com/swisspair/pairing/internal/metrics"
)

// Engine is the Dutch-system round-pairing facade (spec §4.7): it derives
// player states from a tournament record, then drives the bracket-by-
// bracket pairing loop to completion and emits the round's pairings.
// Grounded directly on DutchEngine in the original engine.
type Engine struct{}

// NewEngine returns a ready-to-use Engine. It carries no state of its own;
// every call to Run is independent.
func NewEngine() *Engine { return &Engine{} }

// getBracketPairs runs one bracket attempt to completion and reports its
// player pairs, or nil if the attempt left no legal completion of the
// round and the caller must collapse instead.
func getBracketPairs(pairer *BracketPairer) []PlayerPair {
	pairer.determineHeterogeneousS1()
	pairer.determineHeterogeneousS2()

	pairer.determineHomogeneousExchanges()
	pairer.determineMovesFromS1ToS2()
	pairer.determineMovesFromS2ToS1()
	pairer.performHomogeneousExchanges()
	pairer.transposeHomogeneousS2()

	if !pairer.checkCompletionCriterium() {
		return nil
	}
	return pairer.GetPlayerPairs()
}

// playerPairScore is the sort key spec §4.7 orders the final pairing list
// by: the higher player's score, then the lower player's, both descending.
// A bye (self-pair) sorts dead last.
func playerPairScore(pair PlayerPair) (int, int) {
	if pair.P1 == pair.P2 {
		return -1, -1
	}
	hi, lo := pair.P1.Points, pair.P2.Points
	if lo > hi {
		hi, lo = lo, hi
	}
	return hi, lo
}

// Run derives player states from rec and computes the full set of round
// pairings, per spec §4 end to end, along with the round number those
// pairings belong to (rec's completed-round count, plus one). It returns a
// *domain.PairingError if the roster as a whole cannot be legally paired at
// all.
func (e *Engine) Run(rec domain.TournamentRecord) ([]domain.Pairing, int, error) {
	players, pairingRound, err := DeriveStates(rec)
	if err != nil {
		return nil, 0, err
	}
	if len(players) == 0 {
		return nil, pairingRound, nil
	}

	SortPlayers(players)

	oracle := NewValidityOracle(players)
	if !oracle.IsFeasible() {
		return nil, 0, &domain.PairingError{Message: "round cannot be paired"}
	}

	brackets := NewBrackets(players, pairingRound)

	var pairs []PlayerPair
	for !brackets.IsFinished() {
		bracket := brackets.Current()
		pairer := NewBracketPairer(bracket, oracle)
		bracketPairs := getBracketPairs(pairer)

		if bracketPairs == nil {
			metrics.RecordBracketCollapse()
			brackets.Collapse()
			continue
		}
		brackets.Apply(bracketPairs)
		pairs = append(pairs, bracketPairs...)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		hi1, lo1 := playerPairScore(pairs[i])
		hi2, lo2 := playerPairScore(pairs[j])
		if hi1 != hi2 {
			return hi1 > hi2
		}
		return lo1 > lo2
	})

	out := make([]domain.Pairing, len(pairs))
	for i, pr := range pairs {
		if pr.P1 == pr.P2 {
			out[i] = domain.Pairing{White: pr.P1.Number, Black: 0}
			continue
		}
		out[i] = domain.Pairing{White: pr.P1.Number, Black: pr.P2.Number}
	}
	return out, pairingRound, nil
}
