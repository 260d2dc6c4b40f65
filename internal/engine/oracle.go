package engine

import (
	"github.com/swisspair/pairing/internal/bigweight"
	"github.com/swisspair/pairing/internal/matching"
)

var oneWeight = bigweight.FromUint64(1, 1)

// ValidityOracle maintains a 0/1-weight matching instance over the whole
// roster and answers "is any legal round-pairing still possible", per spec
// §4.3. One Oracle is built per Engine run and lives across every bracket:
// the Finalize calls BracketPairer makes progressively commit pairs into it so later
// brackets' feasibility checks already account for earlier ones.
type ValidityOracle struct {
	solver     *matching.Solver
	index      map[*Player]int
	n          int
	dummyIndex int // -1 when the roster is even and needs no bye slot
}

// NewValidityOracle builds the feasibility graph for players: an edge
// between every pair that is not absolutely forbidden, plus (for an odd
// roster) a dummy vertex reachable by any player without a prior bye.
func NewValidityOracle(players []*Player) *ValidityOracle {
	n := len(players)
	vcount := n
	dummyIndex := -1
	if n%2 == 1 {
		dummyIndex = n
		vcount = n + 1
	}
	if vcount == 0 {
		vcount = 0
	}

	solver := matching.New(vcount, 1)
	for i := 0; i < vcount; i++ {
		solver.AddVertex()
	}

	index := make(map[*Player]int, n)
	for i, p := range players {
		index[p] = i
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if AbsoluteEligible(players[i], players[j]) {
				solver.SetEdgeWeight(i, j, oneWeight)
			}
		}
	}
	if dummyIndex >= 0 {
		for i, p := range players {
			if !p.ByeReceived {
				solver.SetEdgeWeight(i, dummyIndex, oneWeight)
			}
		}
	}

	return &ValidityOracle{solver: solver, index: index, n: n, dummyIndex: dummyIndex}
}

// IsFeasible reports whether every real player can still be matched -
// i.e. whether a legal completion of the round pairing remains possible
// given everything finalized so far.
func (o *ValidityOracle) IsFeasible() bool {
	if o.n == 0 {
		return true
	}
	o.solver.Compute()
	for i := 0; i < o.n; i++ {
		if o.solver.Mate(i) == i {
			return false
		}
	}
	return true
}

// Finalize commits the pair (p1, p2) as played: every other edge incident
// to either player is removed and their own edge is fixed at weight 1, so
// future feasibility queries treat this pair as settled.
func (o *ValidityOracle) Finalize(p1, p2 *Player) {
	i, j := o.index[p1], o.index[p2]
	o.isolate(i, j)
	o.solver.SetEdgeWeight(i, j, oneWeight)
}

func (o *ValidityOracle) isolate(i, j int) {
	n := o.solver.N()
	for k := 0; k < n; k++ {
		if k != j {
			o.solver.SetEdgeWeight(i, k, nil)
		}
		if k != i {
			o.solver.SetEdgeWeight(j, k, nil)
		}
	}
}
