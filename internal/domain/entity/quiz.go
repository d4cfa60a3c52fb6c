// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQuestionPoints is the point value assigned to a question when the
// generator does not specify one.
const DefaultQuestionPoints = 10

// QuizQuestion is a single multiple-choice question. The correct answer is
// always one of the options; generation filters out anything else.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
}

// Quiz is a generated quiz instance. It is created once at generation time
// and read-only afterwards; scoring never mutates it.
type Quiz struct {
	ID         uuid.UUID      // The unique identifier for this quiz instance.
	Topic      string         // The topic the quiz was generated for.
	Difficulty string         // Requested difficulty, e.g. "easy", "medium", "hard".
	Questions  []QuizQuestion // Ordered question list with answer key.
	CreatedAt  time.Time      // Timestamp of generation.
}

// TotalPoints sums the point values of all questions.
func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}

	return total
}

// SubmittedAnswer is one answer in a quiz submission. Questions are matched
// by prompt text rather than index so clients may reorder them; Selected is
// an option letter ("A", "B", ...).
type SubmittedAnswer struct {
	Question string `json:"question"`
	Selected string `json:"selected"`
}
