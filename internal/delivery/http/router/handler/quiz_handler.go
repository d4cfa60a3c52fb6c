// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"snaplearn/internal/delivery/http/middleware"
	"snaplearn/internal/delivery/http/response"
	"snaplearn/internal/domain/entity"
	"snaplearn/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// QuizHandler holds dependencies for quiz-related handlers.
type QuizHandler struct {
	uc     usecase.QuizUsecase
	logger *slog.Logger
}

// NewQuizHandler is the constructor for QuizHandler, injected by Fx.
func NewQuizHandler(uc usecase.QuizUsecase, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{
		uc:     uc,
		logger: logger,
	}
}

type generateQuizRequest struct {
	Topic         string `json:"topic" validate:"required,max=255"`
	Difficulty    string `json:"difficulty" validate:"required,oneof=easy medium hard"`
	QuestionCount int    `json:"questionCount" validate:"omitempty,min=1,max=20"`
}

type submittedAnswer struct {
	Question string `json:"question" validate:"required"`
	Selected string `json:"selected" validate:"required,len=1"`
}

type submitQuizRequest struct {
	QuizID  uuid.UUID         `json:"quizId" validate:"required"`
	Answers []submittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

type factsRequest struct {
	Topic      string `json:"topic" validate:"required,max=255"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// questionView is a question as the client sees it during play. The correct
// answer and explanation stay server-side until the quiz is graded.
type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Points   int      `json:"points"`
}

// defaultTimeLimitSeconds is how long the client gives the player per quiz.
const defaultTimeLimitSeconds = 300

type quizView struct {
	ID          uuid.UUID      `json:"id"`
	Topic       string         `json:"topic"`
	Difficulty  string         `json:"difficulty"`
	Questions   []questionView `json:"questions"`
	TotalPoints int            `json:"totalPoints"`
	TimeLimit   int            `json:"timeLimitSeconds"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toQuizView(quiz *entity.Quiz) *quizView {
	questions := make([]questionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, questionView{
			Question: q.Question,
			Options:  q.Options,
			Points:   q.Points,
		})
	}

	return &quizView{
		ID:          quiz.ID,
		Topic:       quiz.Topic,
		Difficulty:  quiz.Difficulty,
		Questions:   questions,
		TotalPoints: quiz.TotalPoints(),
		TimeLimit:   defaultTimeLimitSeconds,
		CreatedAt:   quiz.CreatedAt,
	}
}

// Generate handles the quiz generation request.
func (h *QuizHandler) Generate(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	var req generateQuizRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quiz generation input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Generate(c.Request().Context(), &usecase.GenerateQuizInput{
		UserID:        userID,
		Topic:         req.Topic,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toQuizView(output.Quiz), "Quiz generated successfully")
}

// Submit handles a quiz submission and returns the graded result.
func (h *QuizHandler) Submit(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	var req submitQuizRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quiz submission input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	answers := make([]entity.SubmittedAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, entity.SubmittedAnswer{
			Question: a.Question,
			Selected: a.Selected,
		})
	}

	output, err := h.uc.Submit(c.Request().Context(), &usecase.SubmitQuizInput{
		UserID:  userID,
		QuizID:  req.QuizID,
		Answers: answers,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"correct":    output.Correct,
		"total":      output.Total,
		"percentage": output.Percentage,
		"grade":      output.Grade,
		"xpAwarded":  output.XPAwarded,
		"bonus":      output.Bonus,
		"exp":        output.Experience,
		"level":      output.Level,
		"leveledUp":  output.LeveledUp,
	}, "Quiz scored successfully")
}

// Facts handles the fun-facts generation request.
func (h *QuizHandler) Facts(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	var req factsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid facts input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	facts, err := h.uc.Facts(c.Request().Context(), &usecase.FactsInput{
		UserID:     userID,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, facts, "Facts generated successfully")
}
