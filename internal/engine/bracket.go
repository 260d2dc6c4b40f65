package engine

import (
	"math/bits"
	"sort"
)

// Bracket is the transient per-pairing-attempt descriptor of one score
// group: the moved-down players still unpaired, this group's own residents,
// and (for downfloat evaluation only) the next lower group. The bit-width
// fields size the WeightBuilder's criterion columns for this bracket only;
// they are fixed once a Bracket is built and never grow mid-bracket.
type Bracket struct {
	MDP      []*Player
	Resident []*Player
	Lower    []*Player

	OneRoundPlayed            bool
	TwoRoundsPlayed           bool
	PenultimatePairingBracket bool
	LastPairingBracket        bool

	MinBracketScore          int
	BracketBits              int
	LowBracketBits           int
	ScoreDifferenceTotalBits int
	ScoreDifferenceBitDict   map[int]int
}

func bitLen(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n))
}

// scoreDifferenceBits computes the cumulative-shift table described in spec
// §4.4: every score difference that can appear between bracket edge
// endpoints (including the synthetic downfloat differential) gets a column
// whose width is the bit length of its occurrence count, and columns are
// laid out by ascending difference so C6/C7/C16/C19 can address each
// difference's slice of the shared region independently.
func scoreDifferenceBits(mdp, resident []*Player) (int, map[int]int) {
	if len(resident) == 0 {
		return 0, map[int]int{}
	}
	minScore := resident[len(resident)-1].Points

	var diffs []int
	for _, p := range mdp {
		diffs = append(diffs, p.Points-minScore+10)
	}
	for _, p := range resident {
		diffs = append(diffs, p.Points-minScore+10)
	}

	for _, m := range mdp {
		seen := map[int]bool{}
		for _, r := range resident {
			d := m.Points - r.Points
			if !seen[d] {
				seen[d] = true
				diffs = append(diffs, d)
			}
		}
	}

	for i, r := range resident {
		seen := map[int]bool{}
		for _, other := range resident[i+1:] {
			d := r.Points - other.Points
			if !seen[d] {
				seen[d] = true
				diffs = append(diffs, d)
			}
		}
	}

	counts := map[int]int{}
	for _, d := range diffs {
		counts[d]++
	}
	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	cumulative := make(map[int]int, len(keys))
	total := 0
	for _, k := range keys {
		cumulative[k] = total
		total += bitLen(counts[k])
	}
	return total, cumulative
}

// NewBracket builds a Bracket descriptor from the minimal state a Brackets
// iterator tracks: the still-unpaired moved-down players, the current score
// group, the next lower group, the round being paired, and whether this
// bracket has just absorbed a collapse.
func NewBracket(mdp, resident, lower []*Player, pairingRound int, collapsed bool) *Bracket {
	total, dict := scoreDifferenceBits(mdp, resident)
	minScore := 0
	if len(resident) > 0 {
		minScore = resident[len(resident)-1].Points
	}
	return &Bracket{
		MDP:                       mdp,
		Resident:                  resident,
		Lower:                     lower,
		OneRoundPlayed:            pairingRound > 1,
		TwoRoundsPlayed:           pairingRound > 2,
		PenultimatePairingBracket: collapsed,
		LastPairingBracket:        len(lower) == 0,
		MinBracketScore:           minScore,
		BracketBits:               bitLen(len(resident)),
		LowBracketBits:            bitLen(len(lower)),
		ScoreDifferenceTotalBits:  total,
		ScoreDifferenceBitDict:    dict,
	}
}

// PlayerPair is an unordered pairing produced by a BracketPairer, before
// E1-E5 color assignment. A self-pair (P1 == P2) denotes a
// pairing-allocated bye.
type PlayerPair struct {
	P1, P2 *Player
}

// Brackets groups a round's ranked players into score groups and drives the
// Engine facade's iterate-or-collapse loop over them (spec §4.4, §4.7).
type Brackets struct {
	groups       [][]*Player
	pairingRound int

	index     int
	collapsed bool
	mdp       []*Player
}

// NewBrackets groups players (already sorted descending by ranking order)
// into contiguous equal-score buckets.
func NewBrackets(players []*Player, pairingRound int) *Brackets {
	var groups [][]*Player
	for i := 0; i < len(players); {
		j := i + 1
		for j < len(players) && players[j].Points == players[i].Points {
			j++
		}
		groups = append(groups, players[i:j])
		i = j
	}
	b := &Brackets{groups: groups, pairingRound: pairingRound}
	b.assignRoles()
	return b
}

func (b *Brackets) residentList() []*Player {
	if b.index >= len(b.groups) {
		return nil
	}
	return b.groups[b.index]
}

func (b *Brackets) lowerList() []*Player {
	if b.index+1 >= len(b.groups) {
		return nil
	}
	return b.groups[b.index+1]
}

func (b *Brackets) assignRoles() {
	for _, p := range b.mdp {
		p.Role = RoleMDP
	}
	for _, p := range b.residentList() {
		p.Role = RoleResident
	}
	for _, p := range b.lowerList() {
		p.Role = RoleLower
	}
}

// IsFinished reports whether every score group has been consumed.
func (b *Brackets) IsFinished() bool {
	return b.index == len(b.groups)
}

// Current builds the Bracket descriptor for the group currently being
// paired.
func (b *Brackets) Current() *Bracket {
	return NewBracket(b.mdp, b.residentList(), b.lowerList(), b.pairingRound, b.collapsed)
}

// Apply records a successfully completed bracket's pairings: every unpaired
// MDP or resident becomes next bracket's MDP list, and the iterator
// advances.
func (b *Brackets) Apply(pairs []PlayerPair) {
	paired := make(map[*Player]bool, 2*len(pairs))
	for _, pr := range pairs {
		paired[pr.P1] = true
		paired[pr.P2] = true
	}

	candidates := make([]*Player, 0, len(b.mdp)+len(b.residentList()))
	candidates = append(candidates, b.mdp...)
	candidates = append(candidates, b.residentList()...)

	var next []*Player
	for _, p := range candidates {
		if !paired[p] {
			next = append(next, p)
		}
	}
	b.mdp = next
	b.index++
	b.assignRoles()
}

// Collapse merges every remaining score group below the current index into
// a single trailing group, after the current bracket reported infeasible.
// This guarantees the next attempt at this index is the last pairing
// bracket (or penultimate, via the collapsed flag), which always accepts.
func (b *Brackets) Collapse() {
	var rest []*Player
	for _, g := range b.groups[b.index+1:] {
		rest = append(rest, g...)
	}
	kept := make([][]*Player, b.index+1)
	copy(kept, b.groups[:b.index+1])
	b.groups = append(kept, rest)
	b.collapsed = true
	b.assignRoles()
}
