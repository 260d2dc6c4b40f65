// Package engine implements the Dutch-system round-pairing core: player
// state derivation, score brackets, the criterion weight stack, the bracket
// pairing driver, and the engine facade that ties them together.
package engine

import "github.com/swisspair/pairing/internal/domain"

// Role is a player's transient position within the bracket currently being
// paired.
type Role int

const (
	RoleResident Role = iota
	RoleLower
	RoleMDP
)

// ColorSide is the color a player's preference leans toward.
type ColorSide int

const (
	SideNone ColorSide = iota
	SideWhite
	SideBlack
)

// Opposite returns the other non-None side; SideNone maps to itself.
func (s ColorSide) Opposite() ColorSide {
	switch s {
	case SideWhite:
		return SideBlack
	case SideBlack:
		return SideWhite
	default:
		return SideNone
	}
}

// ColorStrength ranks how firmly a color preference should be honored.
// Higher values are stronger; ordering matters for E2's comparison.
type ColorStrength int

const (
	StrengthNone ColorStrength = iota
	StrengthMild
	StrengthStrong
	StrengthAbsolute
)

// ColorPreference is a player's derived ideal color for the next round.
type ColorPreference struct {
	Side     ColorSide
	Strength ColorStrength
}

// Float marks whether a player was moved up or down relative to their score
// group in a given round.
type Float int

const (
	FloatNone Float = iota
	FloatUp
	FloatDown
)

// Player is the per-round derived pairing state of one participant, built
// once from the tournament record and immutable for the rest of the round.
// Role is the only field mutated after construction, when a bracket assigns
// it.
type Player struct {
	Number          int
	Points          int
	Preference      ColorPreference
	ColorDifference int
	ColorDouble     bool
	Float1          Float
	Float2          Float
	Opponents       map[int]bool
	Colors          []domain.Color
	ByeReceived     bool
	TopScorer       bool

	// ByeDummy marks a synthetic "pairing-allocated bye" slot. It is never
	// part of a TournamentRecord-derived roster, and BracketPairer does not
	// create one either: an odd bracket leaves a player unmatched in the
	// solver instead, so no Player in this package has it set.
	ByeDummy bool

	Role Role
}

// Greater implements the ranking order of spec §3: higher points first,
// lower starting number breaks ties.
func Greater(a, b *Player) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	return a.Number < b.Number
}

// SortPlayers orders players descending by the ranking order, in place.
func SortPlayers(players []*Player) {
	// insertion sort: bracket sizes are small (a handful to a few hundred
	// players) and this keeps the comparator identical to Greater with no
	// separate Less/Equal plumbing.
	for i := 1; i < len(players); i++ {
		j := i
		for j > 0 && Greater(players[j], players[j-1]) {
			players[j], players[j-1] = players[j-1], players[j]
			j--
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// pointsList returns, for one player, the running point total (including
// per-round acceleration) standing as of the start of each of their played
// rounds, plus one trailing entry for their current total. Entry i is the
// score the player carried INTO round i (0-indexed); the player's own
// results need not have been filtered to the pairing round yet, so this is
// computed for every player in the record, including ones later dropped.
func pointsList(pr domain.PlayerRecord, sps domain.ScorePointSystem) []int {
	accel := make([]int, len(pr.Acceleration))
	copy(accel, pr.Acceleration)
	for len(accel) < len(pr.Results)+1 {
		accel = append(accel, 0)
	}

	list := make([]int, 0, len(pr.Results)+1)
	current := 0
	for i, rr := range pr.Results {
		list = append(list, current+accel[i])
		current += sps.Points(rr)
	}
	list = append(list, current+accel[len(pr.Results)])
	return list
}

// colorPreference derives a player's side/strength preference plus the raw
// color_difference and color_double flags from their played-color history,
// per spec §3's invariants.
func colorPreference(pr domain.PlayerRecord) (ColorPreference, int, bool) {
	var played []domain.Color
	for _, rr := range pr.Results {
		if rr.Color != domain.ColorNone {
			played = append(played, rr.Color)
		}
	}

	whites, blacks := 0, 0
	for _, c := range played {
		switch c {
		case domain.ColorWhite:
			whites++
		case domain.ColorBlack:
			blacks++
		}
	}
	diff := whites - blacks
	double := len(played) > 1 && played[len(played)-1] == played[len(played)-2]

	var side ColorSide
	switch {
	case diff > 0:
		side = SideBlack
	case diff < 0:
		side = SideWhite
	case len(played) > 0:
		if played[len(played)-1] == domain.ColorBlack {
			side = SideWhite
		} else {
			side = SideBlack
		}
	default:
		side = SideNone
	}

	var strength ColorStrength
	switch {
	case abs(diff) > 1 || double:
		strength = StrengthAbsolute
	case abs(diff) == 1:
		strength = StrengthStrong
	case side != SideNone:
		strength = StrengthMild
	default:
		strength = StrengthNone
	}

	return ColorPreference{Side: side, Strength: strength}, diff, double
}

// floatAt reports the float marker for pr in the round `idx` rounds into
// its history (0-indexed): Down if pr outscored its round-idx opponent
// going into that round, Up if outscored by them, None on a tie or an
// inconclusive history. A negative idx (fewer than that many rounds played)
// yields None.
func floatAt(pr domain.PlayerRecord, idx int, lists map[int][]int) Float {
	if idx < 0 {
		return FloatNone
	}
	own := lists[pr.Number]
	if len(own) < idx {
		return FloatNone
	}
	if idx >= len(pr.Results) {
		return FloatNone
	}

	opponent := pr.Results[idx].OpponentID
	if opponent == 0 {
		return FloatDown
	}
	oppList, ok := lists[opponent]
	if !ok || idx >= len(oppList) {
		return FloatNone
	}

	playerPoints := own[idx]
	opponentPoints := oppList[idx]
	switch {
	case playerPoints > opponentPoints:
		return FloatDown
	case playerPoints < opponentPoints:
		return FloatUp
	default:
		return FloatNone
	}
}

// DeriveStates builds the per-player pairing state for round `pairingRound`
// from a tournament record, per spec §6. The completed-round count is the
// shortest result history in the roster. It drops zeroed (withdrawn)
// players and any whose result history is longer than that (they already
// carry a result for the round being paired), sums
// per-round score points plus acceleration, and folds forbidden pairs into
// each named player's opponent set.
func DeriveStates(rec domain.TournamentRecord) (players []*Player, pairingRound int, err error) {
	if len(rec.Players) == 0 {
		return nil, 1, nil
	}

	lists := make(map[int][]int, len(rec.Players))
	for _, pr := range rec.Players {
		lists[pr.Number] = pointsList(pr, rec.Config.ScorePoints)
	}

	roundsPlayed := len(rec.Players[0].Results)
	for _, pr := range rec.Players {
		if len(pr.Results) < roundsPlayed {
			roundsPlayed = len(pr.Results)
		}
	}

	maxScore := rec.Config.ScorePoints.Max() * roundsPlayed
	lastRound := roundsPlayed == rec.Config.NumberOfRounds-1

	for _, pr := range rec.Players {
		if pr.Zeroed || len(pr.Results) != roundsPlayed {
			continue
		}

		pref, diff, double := colorPreference(pr)
		f1 := floatAt(pr, roundsPlayed-1, lists)
		f2 := floatAt(pr, roundsPlayed-2, lists)

		opponents := make(map[int]bool, len(pr.Results))
		colors := make([]domain.Color, len(pr.Results))
		byeReceived := false
		for i, rr := range pr.Results {
			if rr.OpponentID == 0 {
				byeReceived = true
			} else {
				opponents[rr.OpponentID] = true
			}
			colors[i] = rr.Color
		}

		own := lists[pr.Number]
		points := own[len(own)-1]

		players = append(players, &Player{
			Number:          pr.Number,
			Points:          points,
			Preference:      pref,
			ColorDifference: diff,
			ColorDouble:     double,
			Float1:          f1,
			Float2:          f2,
			Opponents:       opponents,
			Colors:          colors,
			ByeReceived:     byeReceived,
			TopScorer:       lastRound && 2*points > maxScore,
			Role:            RoleResident,
		})
	}

	byNumber := make(map[int]*Player, len(players))
	for _, p := range players {
		byNumber[p.Number] = p
	}
	for _, pair := range rec.Config.ForbiddenPairs {
		a, b := pair[0], pair[1]
		if pa, ok := byNumber[a]; ok {
			pa.Opponents[b] = true
		}
		if pb, ok := byNumber[b]; ok {
			pb.Opponents[a] = true
		}
	}

	return players, roundsPlayed + 1, nil
}
