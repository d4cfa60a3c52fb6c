// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"snaplearn/internal/domain/entity"
	"snaplearn/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// GenerateQuizInput defines a quiz generation request. Language comes from
// the requesting user's profile, not the request.
type GenerateQuizInput struct {
	UserID        uuid.UUID
	Topic         string
	Difficulty    string
	QuestionCount int
}

// SubmitQuizInput carries one quiz submission. Answers reference questions by
// prompt text and options by letter.
type SubmitQuizInput struct {
	UserID  uuid.UUID
	QuizID  uuid.UUID
	Answers []entity.SubmittedAnswer
}

// FactsInput defines a fun-facts generation request.
type FactsInput struct {
	UserID     uuid.UUID
	Topic      string
	Difficulty string
}

// --- Output DTOs ---

// GenerateQuizOutput returns the stored quiz instance. The delivery layer is
// responsible for stripping the answer key before it reaches the client.
type GenerateQuizOutput struct {
	Quiz *entity.Quiz
}

// SubmitQuizOutput is the graded result of one submission together with the
// user's progression after the award.
type SubmitQuizOutput struct {
	Correct    int
	Total      int
	Percentage float64
	Grade      string
	XPAwarded  int
	Bonus      int
	Experience float64
	Level      int
	LeveledUp  bool
}

// QuizUsecase defines the interface for quiz-related business operations.
type QuizUsecase interface {
	// Generate produces a new quiz via the generative backend and stores it.
	Generate(ctx context.Context, input *GenerateQuizInput) (*GenerateQuizOutput, error)

	// Submit scores a submission, awards experience and advances the level.
	// Submissions are idempotent only in the sense that the quiz itself never
	// changes; every submission awards experience again.
	Submit(ctx context.Context, input *SubmitQuizInput) (*SubmitQuizOutput, error)

	// Facts produces a summary and fun-fact list for a topic.
	Facts(ctx context.Context, input *FactsInput) (*service.Facts, error)
}
