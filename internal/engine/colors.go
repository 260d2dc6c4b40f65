package engine

import "github.com/swisspair/pairing/internal/domain"

func abs2(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// toDomainColor converts a ColorSide into the domain.Color played.
func toDomainColor(s ColorSide) domain.Color {
	switch s {
	case SideWhite:
		return domain.ColorWhite
	case SideBlack:
		return domain.ColorBlack
	default:
		return domain.ColorNone
	}
}

// e1 grants each player their preference outright when the two disagree.
func e1(p1, p2 *Player) (white bool, ok bool) {
	exists := p1.Preference.Side != SideNone && p2.Preference.Side != SideNone
	noConflict := p1.Preference.Side != p2.Preference.Side
	if exists && noConflict {
		return p1.Preference.Side == SideWhite, true
	}
	return false, false
}

// e2 lets the stronger preference win; between two equally strong Absolute
// preferences, the larger colour-difference magnitude wins.
func e2(p1, p2 *Player) (white bool, ok bool) {
	if p1.Preference.Strength != p2.Preference.Strength {
		if p1.Preference.Strength > p2.Preference.Strength {
			return p1.Preference.Side == SideWhite, true
		}
		return p2.Preference.Side == SideBlack, true
	}
	bothAbsolute := p1.Preference.Strength == StrengthAbsolute && p2.Preference.Strength == StrengthAbsolute
	if bothAbsolute && abs2(p1.ColorDifference) != abs2(p2.ColorDifference) {
		if abs2(p1.ColorDifference) > abs2(p2.ColorDifference) {
			return p1.Preference.Side == SideWhite, true
		}
		return p2.Preference.Side == SideBlack, true
	}
	return false, false
}

// e3 alternates relative to the most recent round the two players' played
// colours differ, walking both histories from the tail with byes (None
// entries) filtered out first, independently, before pairing them up.
func e3(p1, p2 *Player) (white bool, ok bool) {
	c1 := filterPlayed(p1.Colors)
	c2 := filterPlayed(p2.Colors)
	for i := 0; i < len(c1) && i < len(c2); i++ {
		a := c1[len(c1)-1-i]
		b := c2[len(c2)-1-i]
		if a != b {
			return a == domain.ColorBlack, true
		}
	}
	return false, false
}

func filterPlayed(colors []domain.Color) []domain.Color {
	out := make([]domain.Color, 0, len(colors))
	for _, c := range colors {
		if c != domain.ColorNone {
			out = append(out, c)
		}
	}
	return out
}

// e4 grants the higher-ranked player's preference, if they have one.
func e4(p1, p2 *Player) (white bool, ok bool) {
	if Greater(p1, p2) && p1.Preference.Side != SideNone {
		return p1.Preference.Side == SideWhite, true
	}
	if Greater(p2, p1) && p2.Preference.Side != SideNone {
		return p2.Preference.Side == SideBlack, true
	}
	return false, false
}

// e5 is the final tiebreak: the lower-numbered of the two players gets
// white if their own number is odd, black otherwise; the higher-numbered
// player gets the opposite.
func e5(p1, p2 *Player) (white bool, ok bool) {
	if p1.Number < p2.Number {
		return p1.Number%2 == 1, true
	}
	return p2.Number%2 == 0, true
}

var colorCriteria = []func(p1, p2 *Player) (bool, bool){e1, e2, e3, e4, e5}

// AssignColors decides who plays white in a finalized pair by applying the
// E1-E5 criteria of spec §4.5 in order; the first conclusive rule wins.
// Equal players (the pairing-allocated bye, paired against itself) are
// returned unchanged without running the table.
func AssignColors(p1, p2 *Player) (white, black *Player) {
	if p1 == p2 {
		return p1, p2
	}
	for _, criterion := range colorCriteria {
		if white, ok := criterion(p1, p2); ok {
			if white {
				return p1, p2
			}
			return p2, p1
		}
	}
	return p1, p2
}
