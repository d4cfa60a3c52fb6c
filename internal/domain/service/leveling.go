package service

import (
	"math"

	"snaplearn/internal/domain/entity"
)

const (
	// PointsPerCorrectAnswer is the XP earned per correct answer.
	PointsPerCorrectAnswer = 10
	// PerfectScoreBonus is the flat XP bonus for answering every question correctly.
	PerfectScoreBonus = 10
	// baseLevelXP anchors the geometric threshold curve: level 0 requires 100 XP.
	baseLevelXP = 100
)

// RequiredXP returns the cumulative experience needed to advance past the
// given level: 100 * 3^level (level 0 -> 100, level 1 -> 300, level 2 -> 900, ...).
func RequiredXP(level int) float64 {
	return baseLevelXP * math.Pow(3, float64(level))
}

// QuizXP computes the experience awarded for a scored quiz: 10 per correct
// answer plus a flat bonus of 10 for a perfect score on a non-empty quiz.
// Zero or negative correct counts simply yield no XP.
func QuizXP(correct, total int) (xp, bonus int) {
	if correct > 0 {
		xp = correct * PointsPerCorrectAnswer
	}
	if total > 0 && correct == total {
		bonus = PerfectScoreBonus
	}

	return xp, bonus
}

// ApplyQuizResult adds the awarded experience to the user and advances the
// level while the threshold curve is met. Pure and total: experience never
// decreases, and the loop terminates because RequiredXP is strictly
// increasing. The user is mutated in place.
func ApplyQuizResult(user *entity.User, correct, total int) (xp, bonus int) {
	xp, bonus = QuizXP(correct, total)
	user.Experience += float64(xp + bonus)

	for user.Experience >= RequiredXP(user.Level) {
		user.Level++
	}

	return xp, bonus
}
