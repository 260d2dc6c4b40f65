package engine

import (
	"github.com/swisspair/pairing/internal/bigweight"
	"github.com/swisspair/pairing/internal/matching"
)

// bracketMatcher wraps a matching.Solver with the BigWeight edge weights
// WeightBuilder constructs for one bracket, and the add/remove/finalize
// perturbation primitives BracketPairer drives the Dutch algorithm with.
// Grounded directly on BracketMatcher in the original engine.
type bracketMatcher struct {
	bracket *Bracket
	wb      *WeightBuilder

	players []*Player
	index   map[*Player]int
	solver  *matching.Solver
	weights [][]*bigweight.Weight

	matching map[*Player]*Player
}

func newBracketMatcher(b *Bracket) *bracketMatcher {
	players := make([]*Player, 0, len(b.MDP)+len(b.Resident)+len(b.Lower))
	players = append(players, b.MDP...)
	players = append(players, b.Resident...)
	players = append(players, b.Lower...)

	wb := NewWeightBuilder(b)
	n := len(players)
	solver := matching.New(n, wb.Width())
	for i := 0; i < n; i++ {
		solver.AddVertex()
	}

	index := make(map[*Player]int, n)
	for i, p := range players {
		index[p] = i
	}

	weights := make([][]*bigweight.Weight, n)
	for i := range weights {
		weights[i] = make([]*bigweight.Weight, n)
		for j := range weights[i] {
			weights[i][j] = bigweight.New(wb.Width())
		}
	}

	m := &bracketMatcher{
		bracket: b,
		wb:      wb,
		players: players,
		index:   index,
		solver:  solver,
		weights: weights,
	}
	m.setUpComputer()
	m.updateMatching()
	return m
}

func (m *bracketMatcher) setUpComputer() {
	for i := 0; i < len(m.players); i++ {
		for j := i + 1; j < len(m.players); j++ {
			w := m.wb.Build(m.players[i], m.players[j])
			m.setWeight(i, j, w)
		}
	}
}

func (m *bracketMatcher) setWeight(i, j int, w *bigweight.Weight) {
	m.weights[i][j] = w
	m.weights[j][i] = w
	m.solver.SetEdgeWeight(i, j, w)
}

func (m *bracketMatcher) removeWeightAt(i, j int) {
	if m.weights[i][j].IsZero() {
		return
	}
	zero := bigweight.New(m.wb.Width())
	m.setWeight(i, j, zero)
}

// addToWeight adds value (which may be negative) to the edge (p1, p2)'s
// current weight, leaving an already-forbidden (zero) edge untouched.
func (m *bracketMatcher) addToWeight(p1, p2 *Player, value int64) {
	i, j := m.index[p1], m.index[p2]
	if m.weights[i][j].IsZero() {
		return
	}
	next := m.weights[i][j].Clone()
	next.AddSigned(value)
	m.setWeight(i, j, next)
}

// addToWeights calls addToWeight(player, other, value) for every other in
// players, optionally incrementing value by one after each call.
func (m *bracketMatcher) addToWeights(player *Player, players []*Player, value int64, increment bool) {
	for _, other := range players {
		m.addToWeight(player, other, value)
		if increment {
			value++
		}
	}
}

func (m *bracketMatcher) removeWeight(p1, p2 *Player) {
	m.removeWeightAt(m.index[p1], m.index[p2])
}

func (m *bracketMatcher) removeWeights(player *Player, players []*Player) {
	for _, other := range players {
		m.removeWeight(player, other)
	}
}

func (m *bracketMatcher) updateMatching() {
	m.solver.Compute()
	matching := make(map[*Player]*Player, len(m.players))
	for i, p := range m.players {
		matching[p] = m.players[m.solver.Mate(i)]
	}
	m.matching = matching
}

// finalizeMatch commits (p1, p2) as paired: every other edge touching
// either player is cleared and their own edge is pinned at W_max so no
// later perturbation can unseat it.
func (m *bracketMatcher) finalizeMatch(p1, p2 *Player) {
	i, j := m.index[p1], m.index[p2]
	for k := 0; k < len(m.players); k++ {
		m.removeWeightAt(i, k)
		m.removeWeightAt(j, k)
	}
	m.setWeight(i, j, m.wb.WMax())
}

// BracketPairer drives one score bracket's Dutch-algorithm pairing attempt
// (spec §4.6): the heterogeneous phase matches down-floated players against
// the bracket's own residents, the homogeneous phase pairs up whoever is
// left, and a final transposition pass tries to satisfy the colour
// criteria. Grounded directly on BracketPairer in the original engine.
type BracketPairer struct {
	bracket *Bracket
	oracle  *ValidityOracle
	matcher *bracketMatcher

	heterogeneousS1 []*Player
	heterogeneousS2 []*Player
	homogeneousS1   []*Player
	homogeneousS2   []*Player
	exchanges       int
}

// NewBracketPairer builds a pairer for one bracket attempt, sharing the
// round-wide ValidityOracle so finalized pairs in this bracket immediately
// narrow later feasibility checks.
func NewBracketPairer(b *Bracket, oracle *ValidityOracle) *BracketPairer {
	return &BracketPairer{
		bracket: b,
		oracle:  oracle,
		matcher: newBracketMatcher(b),
	}
}

func (p *BracketPairer) matchOf(player *Player) *Player { return p.matcher.matching[player] }

func (p *BracketPairer) matchRole(player *Player) Role { return p.matchOf(player).Role }

func (p *BracketPairer) hasResidentMatch(player *Player) bool {
	return p.matchRole(player) == RoleResident
}

// inS1 reports whether player belongs to the homogeneous bracket's upper
// half: paired with a strictly lower-ranked resident.
func (p *BracketPairer) inS1(player *Player) bool {
	return Greater(player, p.matchOf(player)) && p.matchRole(player) == RoleResident
}

// inS2 reports whether player belongs to the homogeneous bracket's lower
// half: paired with an equal-or-higher-ranked partner, or with a downfloat.
func (p *BracketPairer) inS2(player *Player) bool {
	return !Greater(player, p.matchOf(player)) || p.matchRole(player) == RoleLower
}

// determineHeterogeneousS1 finds, for each moved-down player still needing
// a partner, whether some resident can be matched to it at all; players
// for whom that succeeds are recorded in S1 and their weight toward every
// resident is boosted so the next pass prefers pairing them off.
func (p *BracketPairer) determineHeterogeneousS1() {
	n := int64(len(p.matcher.players))
	for _, mdp := range p.bracket.MDP {
		if !p.hasResidentMatch(mdp) {
			p.matcher.addToWeights(mdp, p.bracket.Resident, 1, false)
			p.matcher.updateMatching()
		}
		if p.hasResidentMatch(mdp) {
			p.heterogeneousS1 = append(p.heterogeneousS1, mdp)
			p.matcher.addToWeights(mdp, p.bracket.Resident, n, false)
		}
	}
}

func reversed(players []*Player) []*Player {
	out := make([]*Player, len(players))
	for i, p := range players {
		out[len(out)-1-i] = p
	}
	return out
}

// determineHeterogeneousS2 fixes each S1 downfloat's final partner: an
// ascending-weight nudge over the resident list (reversed, so the lowest
// resident gets the smallest bonus and the highest-ranked resident the
// largest) converges on the highest-ranked resident the downfloat can
// still take, then finalizes it.
func (p *BracketPairer) determineHeterogeneousS2() {
	for _, mdp := range p.heterogeneousS1 {
		p.matcher.addToWeights(mdp, reversed(p.bracket.Resident), 0, true)
		p.matcher.updateMatching()

		match := p.matchOf(mdp)
		p.heterogeneousS2 = append(p.heterogeneousS2, match)

		p.matcher.finalizeMatch(mdp, match)
		p.oracle.Finalize(mdp, match)
	}
}

// determineHomogeneousExchanges splits the remaining (unfloated) residents
// into a provisional upper half (homogeneousS1) and lower half
// (homogeneousS2) by pair count, nudges every upper candidate toward every
// lower one with a ladder of decreasing weight, then counts how many
// upper-half players the resulting matching actually exchanged down.
func (p *BracketPairer) determineHomogeneousExchanges() {
	paired := make(map[*Player]bool, len(p.heterogeneousS2))
	for _, pl := range p.heterogeneousS2 {
		paired[pl] = true
	}

	var remainder []*Player
	for _, r := range p.bracket.Resident {
		if !paired[r] {
			remainder = append(remainder, r)
		}
	}

	pairs := 0
	for _, r := range remainder {
		if p.hasResidentMatch(r) {
			pairs++
		}
	}
	pairs /= 2

	p.homogeneousS1 = append([]*Player{}, remainder[:pairs]...)
	p.homogeneousS2 = append([]*Player{}, remainder[pairs:]...)

	for i, resident := range remainder {
		var indicator int64
		if i < pairs {
			indicator = 1
		}
		value := (indicator<<uint(2*p.bracket.BracketBits) - int64(i)) << 1
		p.matcher.addToWeights(resident, remainder[i+1:], value, false)
	}

	p.matcher.updateMatching()

	p.exchanges = 0
	for _, r := range p.homogeneousS1 {
		if p.inS2(r) {
			p.exchanges++
		}
	}
}

// determineMovesFromS1ToS2 walks homogeneousS1 from its lowest-ranked
// member up, trying to push each one down into S2 (a -1 nudge against
// everyone below it) until the exchange count from
// determineHomogeneousExchanges is satisfied.
func (p *BracketPairer) determineMovesFromS1ToS2() {
	for i := len(p.homogeneousS1) - 1; i >= 0; i-- {
		if p.exchanges == 0 {
			return
		}

		resident := p.homogeneousS1[i]
		lowerResidents := append(append([]*Player{}, p.homogeneousS1[i+1:]...), p.homogeneousS2...)
		wasExchanged := p.inS2(resident)

		if !wasExchanged {
			p.matcher.addToWeights(resident, lowerResidents, -1, false)
			p.matcher.updateMatching()
		}

		if p.inS2(resident) {
			p.exchanges--
			p.matcher.removeWeights(resident, lowerResidents)
		} else if !wasExchanged {
			p.matcher.addToWeights(resident, lowerResidents, 1, false)
		}
	}
}

// determineMovesFromS2ToS1 walks homogeneousS2 from its highest-ranked
// member down, trying to pull each one up into S1 (a +1 nudge against
// everyone above it) until the exchange count is satisfied.
func (p *BracketPairer) determineMovesFromS2ToS1() {
	for i, resident := range p.homogeneousS2 {
		if p.exchanges == 0 {
			return
		}

		higherResidents := append(append([]*Player{}, p.homogeneousS1...), p.homogeneousS2[i+1:]...)
		wasExchanged := p.inS1(resident)

		if !wasExchanged {
			p.matcher.addToWeights(resident, higherResidents, 1, false)
			p.matcher.updateMatching()
		}

		if p.inS1(resident) {
			p.exchanges--
			dropLast := higherResidents
			if len(dropLast) > 0 {
				dropLast = dropLast[:len(dropLast)-1]
			}
			victims := append(append([]*Player{}, dropLast...), p.bracket.Lower...)
			p.matcher.removeWeights(resident, victims)
		} else if !wasExchanged {
			p.matcher.addToWeights(resident, higherResidents, -1, false)
		}
	}
}

// performHomogeneousExchanges reclassifies every homogeneous resident by
// its final S1/S2 membership and clears the intra-half perturbation
// weights, since the exchange count has now been settled.
func (p *BracketPairer) performHomogeneousExchanges() {
	homogeneousBracket := append(append([]*Player{}, p.homogeneousS1...), p.homogeneousS2...)

	var s1, s2 []*Player
	for _, r := range homogeneousBracket {
		if p.inS1(r) {
			s1 = append(s1, r)
		}
	}
	for _, r := range homogeneousBracket {
		if p.inS2(r) {
			s2 = append(s2, r)
		}
	}
	p.homogeneousS1 = s1
	p.homogeneousS2 = s2

	for i, r := range p.homogeneousS1 {
		p.matcher.removeWeights(r, p.homogeneousS1[i+1:])
	}
	for i, r := range p.homogeneousS2 {
		p.matcher.removeWeights(r, p.homogeneousS2[i+1:])
	}
}

// transposeHomogeneousS2 gives each S1 resident one more ascending-weight
// ladder over S2 (reversed) to settle on its final partner, exactly as
// determineHeterogeneousS2 does for the downfloats, then finalizes it.
func (p *BracketPairer) transposeHomogeneousS2() {
	for _, resident := range p.homogeneousS1 {
		p.matcher.addToWeights(resident, reversed(p.homogeneousS2), 0, true)
		p.matcher.updateMatching()

		match := p.matchOf(resident)
		p.matcher.finalizeMatch(resident, match)
		p.oracle.Finalize(resident, match)
	}
}

// checkCompletionCriterium reports whether this bracket's tentative
// pairing still leaves a legal completion of the whole round - always true
// once collapse has folded every remaining group into this one.
func (p *BracketPairer) checkCompletionCriterium() bool {
	if p.bracket.PenultimatePairingBracket || p.bracket.LastPairingBracket {
		return true
	}
	return p.oracle.IsFeasible()
}

// GetPlayerPairs reads off this bracket's final resident-vs-resident (or
// resident-vs-downfloat) pairs, in colour-assigned order, skipping anyone
// matched to a Lower-role placeholder (still awaiting a later bracket).
func (p *BracketPairer) GetPlayerPairs() []PlayerPair {
	var pairs []PlayerPair
	for _, player1 := range p.matcher.players {
		player2 := p.matchOf(player1)
		if player1.Role == RoleLower || player2.Role == RoleLower {
			continue
		}
		if Greater(player1, player2) {
			white, black := AssignColors(player1, player2)
			pairs = append(pairs, PlayerPair{P1: white, P2: black})
		}
		if player1.Number == player2.Number && p.bracket.LastPairingBracket {
			white, black := AssignColors(player1, player2)
			pairs = append(pairs, PlayerPair{P1: white, P2: black})
		}
	}
	return pairs
}
