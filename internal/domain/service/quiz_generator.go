package service

import (
	"context"

	"snaplearn/internal/domain/entity"
)

// Facts is the generated fun-fact payload for a topic.
type Facts struct {
	Summary  string   `json:"summary"`
	Facts    []string `json:"facts"`
	Language string   `json:"language"`
}

// QuizGenerator abstracts the generative-AI collaborator that produces quiz
// questions and topic facts. Implementations must return schema-validated
// questions: responses that don't match the expected shape are an error, not
// a best-effort parse.
type QuizGenerator interface {
	// GenerateQuestions produces count multiple-choice questions for the
	// topic at the given difficulty and language.
	GenerateQuestions(ctx context.Context, topic, difficulty, language string, count int) ([]entity.QuizQuestion, error)

	// GenerateFacts produces a short summary and fact list for a topic.
	GenerateFacts(ctx context.Context, topic, difficulty, language string) (*Facts, error)
}
