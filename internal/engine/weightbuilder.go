package engine

import "github.com/swisspair/pairing/internal/bigweight"

// WeightBuilder constructs the per-edge BigWeight for one bracket's
// candidate pairs, per spec §4.5. Each quality criterion contributes a
// field of its own declared width; fields are packed MSB-first in the
// order below, so a win on an earlier criterion always outweighs any
// combination of the criteria after it. A trailing region holds the
// driver's perturbation ladder (spec §4.6) and is never touched here.
type WeightBuilder struct {
	b *Bracket

	shifts []int // declared width of each quality criterion, in order
	width  int   // total declared width of a constructed edge weight
	wmax   *bigweight.Weight
}

// qualityValue computes one criterion's contribution, sized to the width
// qualityShift returned for it.
type qualityValue func(w *WeightBuilder, p1, p2 *Player) *bigweight.Weight

var qualityCriteria = []struct {
	shift func(b *Bracket) int
	value qualityValue
}{
	{shift: func(b *Bracket) int { return b.BracketBits }, value: (*WeightBuilder).c5},
	{shift: func(b *Bracket) int { return b.ScoreDifferenceTotalBits }, value: (*WeightBuilder).c6},
	{shift: func(b *Bracket) int {
		if b.PenultimatePairingBracket || b.LastPairingBracket {
			return 0
		}
		return b.LowBracketBits + b.ScoreDifferenceTotalBits
	}, value: (*WeightBuilder).c7},
	{shift: func(b *Bracket) int { return b.BracketBits }, value: (*WeightBuilder).c8},
	{shift: func(b *Bracket) int { return b.BracketBits }, value: (*WeightBuilder).c9},
	{shift: func(b *Bracket) int { return b.BracketBits }, value: (*WeightBuilder).c11},
	{shift: func(b *Bracket) int {
		if !b.OneRoundPlayed {
			return 0
		}
		return b.BracketBits
	}, value: (*WeightBuilder).c14},
	{shift: func(b *Bracket) int {
		if !b.OneRoundPlayed {
			return 0
		}
		return b.ScoreDifferenceTotalBits
	}, value: (*WeightBuilder).c16},
	{shift: func(b *Bracket) int {
		if !b.TwoRoundsPlayed {
			return 0
		}
		return b.ScoreDifferenceTotalBits
	}, value: (*WeightBuilder).c19},
}

const byeTermBits = 2   // "1 + bye_received(p1) + bye_received(p2)" fits in 2 bits
const trailingShift = 1 // matches bracket_matcher._get_weight's final "<<= 3*bracket_bits + 1"

// NewWeightBuilder sizes every criterion column for b and computes the
// declared edge-weight width and the W_max sentinel used to finalize
// pairs, mirroring BracketMatcher._get_max_weight.
func NewWeightBuilder(b *Bracket) *WeightBuilder {
	w := &WeightBuilder{b: b, shifts: make([]int, len(qualityCriteria))}

	total := byeTermBits
	for i, c := range qualityCriteria {
		s := c.shift(b)
		w.shifts[i] = s
		total += s
	}
	total += 3*b.BracketBits + trailingShift
	w.width = total

	w.wmax = bigweight.AllOnes(total)
	return w
}

// Width reports the declared bit width of every edge constructed by w,
// including the trailing perturbation region.
func (w *WeightBuilder) Width() int { return w.width }

// WMax returns the sentinel value the driver uses to "lock in" a finalized
// pair's edge so no later perturbation can unseat it.
func (w *WeightBuilder) WMax() *bigweight.Weight { return w.wmax.Clone() }

// shiftBit returns a width-wide Weight with exactly the bit for difference
// d set, per the bracket's score_difference_bit_dict. A diff not present in
// the dict (e.g. one only ever seen against the synthetic bye slot)
// contributes zero, matching Python's dict.get(diff, 0) fallback.
func (w *WeightBuilder) shiftBit(width, d int) *bigweight.Weight {
	res := bigweight.New(width)
	if pos, ok := w.b.ScoreDifferenceBitDict[d]; ok {
		res.SetBit(pos)
	}
	return res
}

// Build constructs the candidate edge weight for ordered pair (p1, p2) with
// p1 the higher-ranked player, following BracketMatcher._get_weight
// exactly: a forbidden pair (C1 or C3) gets the literal zero weight - the
// solver's "no edge" sentinel - and every other pair is built by folding
// the quality criteria into a single value MSB-first, then opening the
// trailing perturbation region.
func (w *WeightBuilder) Build(p1, p2 *Player) *bigweight.Weight {
	acc := bigweight.New(w.width)
	if violatesC1(p1, p2) || violatesC3(p1, p2) {
		return acc
	}

	if w.b.PenultimatePairingBracket || w.b.LastPairingBracket {
		bye := 1 + boolInt(p1.ByeReceived) + boolInt(p2.ByeReceived)
		acc.OrLow(uint64(bye))
	}

	for i, c := range qualityCriteria {
		s := w.shifts[i]
		if s == 0 {
			continue
		}
		acc.ShiftLeftGrow(s)
		v := c.value(w, p1, p2)
		if v != nil {
			acc.Add(padTo(v, acc.Bits()))
		}
	}

	acc.ShiftLeftGrow(3*w.b.BracketBits + trailingShift)
	return acc
}

// padTo returns a width-wide copy of v; v's declared width must not exceed
// width. Weight.Add already zero-extends a narrower operand across the
// receiver's limbs, so this only needs to align the declared bit count.
func padTo(v *bigweight.Weight, width int) *bigweight.Weight {
	if v.Bits() == width {
		return v
	}
	out := bigweight.New(width)
	out.Add(v)
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// violatesC1 is the "must not have met" absolute criterion, reused by the
// WeightBuilder's edge gate and by ValidityOracle's 0/1 feasibility graph.
// The bye-dummy slot (spec §4.6.10's synthetic pairing-allocated bye) is
// only reachable by a player who has never received one before - this is
// C2 from the original criteria, folded in here since the dummy never
// appears as a real roster entry for a generic C1 check to apply to.
func violatesC1(p1, p2 *Player) bool {
	if p2.ByeDummy {
		return p1.ByeReceived
	}
	if p1.ByeDummy {
		return p2.ByeReceived
	}
	return p1.Opponents[p2.Number] || p2.Opponents[p1.Number]
}

func absolutePref(p *Player) bool { return p.Preference.Strength == StrengthAbsolute }

// violatesC3 is "non-topscorers with the same absolute colour preference
// shall not meet".
func violatesC3(p1, p2 *Player) bool {
	if p1.TopScorer || p2.TopScorer {
		return false
	}
	if !absolutePref(p1) || !absolutePref(p2) {
		return false
	}
	return p1.Preference.Side == p2.Preference.Side
}

// AbsoluteEligible reports whether p1 and p2 may be paired at all, ignoring
// every criterion below C1/C3. ValidityOracle uses this directly to build
// its 0/1 feasibility graph.
func AbsoluteEligible(p1, p2 *Player) bool {
	return !violatesC1(p1, p2) && !violatesC3(p1, p2)
}

func samePreferredSide(p1, p2 *Player) bool {
	return p1.Preference.Side == p2.Preference.Side
}

// c5 prefers a same-bracket (non-downfloat) partner.
func (w *WeightBuilder) c5(p1, p2 *Player) *bigweight.Weight {
	width := w.b.BracketBits
	v := bigweight.New(width)
	if p2.Role != RoleLower {
		v.OrLow(1)
	}
	return v
}

// c6 minimizes the score spread within the bracket.
func (w *WeightBuilder) c6(p1, p2 *Player) *bigweight.Weight {
	width := w.b.ScoreDifferenceTotalBits
	v := bigweight.New(width)
	if p2.Role == RoleLower {
		return v
	}
	min := w.b.MinBracketScore
	d1 := p1.Points - min + 10
	d2 := p2.Points - min + 10
	d3 := p1.Points - p2.Points

	v.Add(w.shiftBit(width, d1))
	v.Add(w.shiftBit(width, d2))
	v.Sub(w.shiftBit(width, d3))
	return v
}

// c7 selects which downfloat candidate is least disruptive, only
// meaningful outside the penultimate/last bracket.
func (w *WeightBuilder) c7(p1, p2 *Player) *bigweight.Weight {
	if w.b.PenultimatePairingBracket || w.b.LastPairingBracket {
		return nil
	}
	sdtb := w.b.ScoreDifferenceTotalBits
	width := w.b.LowBracketBits + sdtb
	v := bigweight.New(width)
	if p2.Role == RoleLower {
		v.SetBit(sdtb)
	}
	if p1.Role != RoleLower {
		d := p1.Points - w.b.MinBracketScore + 10
		v.Add(w.shiftBit(width, d))
	}
	if p2.Role != RoleLower {
		d := p2.Points - w.b.MinBracketScore + 10
		v.Add(w.shiftBit(width, d))
	}
	return v
}

// c8 penalizes a pairing that involves at least one topscorer when both
// players have a large (magnitude 2 or more), same-side colour imbalance.
func (w *WeightBuilder) c8(p1, p2 *Player) *bigweight.Weight {
	width := w.b.BracketBits
	v := bigweight.New(width)
	if p2.Role == RoleLower {
		return v
	}
	topscorer := p1.TopScorer || p2.TopScorer
	atLeast2 := abs2(p1.ColorDifference) > 1 && abs2(p2.ColorDifference) > 1
	conflict := samePreferredSide(p1, p2)
	if !(topscorer && atLeast2 && conflict) {
		v.OrLow(1)
	}
	return v
}

// c9 penalizes a pairing that involves at least one topscorer when both
// players just played the same colour twice running and prefer the same
// side.
func (w *WeightBuilder) c9(p1, p2 *Player) *bigweight.Weight {
	width := w.b.BracketBits
	v := bigweight.New(width)
	if p2.Role == RoleLower {
		return v
	}
	topscorer := p1.TopScorer || p2.TopScorer
	double := p1.ColorDouble && p2.ColorDouble
	conflict := samePreferredSide(p1, p2)
	if !(topscorer && double && conflict) {
		v.OrLow(1)
	}
	return v
}

// c11 penalizes pairing two players who both hold a Strong-or-stronger
// same-side colour preference.
func (w *WeightBuilder) c11(p1, p2 *Player) *bigweight.Weight {
	width := w.b.BracketBits
	v := bigweight.New(width)
	if p2.Role == RoleLower {
		return v
	}
	strong := p1.Preference.Strength >= StrengthStrong && p2.Preference.Strength >= StrengthStrong
	conflict := samePreferredSide(p1, p2)
	if !(strong && conflict) {
		v.OrLow(1)
	}
	return v
}

// c14 rewards preventing a double downfloat: p1 floating down again right
// after floating down two rounds ago, or p2 (a downfloat candidate here)
// floating down in consecutive rounds.
func (w *WeightBuilder) c14(p1, p2 *Player) *bigweight.Weight {
	width := w.b.BracketBits
	v := bigweight.New(width)
	if p2.Role == RoleLower || !w.b.OneRoundPlayed {
		return v
	}
	prevented1 := boolInt(p1.Float2 == FloatDown && p1.Points <= p2.Points)
	prevented2 := boolInt(p2.Float2 == FloatDown)
	v.OrLow(uint64(prevented1 + prevented2))
	return v
}

// c16 scores, by how close it is to the bracket's own scores, avoiding a
// downfloat for a player who already downfloated last round.
func (w *WeightBuilder) c16(p1, p2 *Player) *bigweight.Weight {
	width := w.b.ScoreDifferenceTotalBits
	v := bigweight.New(width)
	if p2.Role == RoleLower || !w.b.OneRoundPlayed {
		return v
	}
	min := w.b.MinBracketScore
	prev1 := p1.Float1 == FloatDown
	prev2 := p2.Float1 == FloatDown
	d1 := p1.Points - min + 10
	d2 := p2.Points - min + 10

	if prev1 {
		v.Add(w.shiftBit(width, d1))
	}
	if prev2 {
		v.Add(w.shiftBit(width, d2))
	}
	if prev1 && p1.Points > p2.Points {
		d3 := p1.Points - p2.Points
		v.Sub(w.shiftBit(width, d3))
	}
	return v
}

// c19 scores avoiding a repeated upfloat two rounds running for a player
// who floated up two rounds ago, relative to the bracket's own scores.
func (w *WeightBuilder) c19(p1, p2 *Player) *bigweight.Weight {
	width := w.b.ScoreDifferenceTotalBits
	v := bigweight.New(width)
	if p2.Role == RoleLower || !w.b.TwoRoundsPlayed {
		return v
	}
	double := p2.Float2 == FloatUp && p1.Points > p2.Points
	if double {
		d := p1.Points - w.b.MinBracketScore + 10
		v.Sub(w.shiftBit(width, d))
	}
	return v
}
