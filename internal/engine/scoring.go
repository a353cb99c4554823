package engine

// NoAnswer is the sentinel answer index used by the timer-expiry path.
// It can never match a correct option, so running out of time always
// scores as incorrect.
const NoAnswer = -1

// Scoring constants. Score and experience use separate bonus scales on
// purpose: experience rewards streaks and speed much more generously
// than the visible score does.
const (
	speedScoreBonus   = 5
	comboScorePerStep = 2
	comboScoreCap     = 2 // multiple of base points

	xpBaseFactor   = 2
	speedXPBonus   = 10
	comboXPPerStep = 5
	comboXPCap     = 3 // multiple of base points
)

// Score computes the points and experience awarded for one answer.
// combo is the streak length after this answer has been counted. The
// speed bonus is a flat reward for answering with more than half the
// time limit remaining; combo bonuses grow linearly with the streak but
// are capped at a small multiple of the base points.
func Score(correct bool, secondsRemaining, timeLimitSec, combo, points int) (score, xp int) {
	if !correct {
		return 0, 0
	}

	base := points
	if base == 0 {
		base = 1
	}
	fast := secondsRemaining*2 > timeLimitSec

	score = base + capped(comboScorePerStep*combo, comboScoreCap*base)
	xp = xpBaseFactor*base + capped(comboXPPerStep*combo, comboXPCap*base)
	if fast {
		score += speedScoreBonus
		xp += speedXPBonus
	}
	return score, xp
}

func capped(v, max int) int {
	if v > max {
		return max
	}
	return v
}
