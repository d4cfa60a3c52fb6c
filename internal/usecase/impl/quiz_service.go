// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "snaplearn/internal/delivery/context"
	"snaplearn/internal/domain/entity"
	domainerrors "snaplearn/internal/domain/errors"
	"snaplearn/internal/domain/repository"
	"snaplearn/internal/domain/service"
	"snaplearn/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultQuestionCount = 5

// quizService implements the QuizUsecase interface.
type quizService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	quizRepo  repository.QuizRepository
	generator service.QuizGenerator
	logger    *slog.Logger
}

// QuizServiceParams holds dependencies for quizService, injected by Fx.
type QuizServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	QuizRepo  repository.QuizRepository
	Generator service.QuizGenerator
	Logger    *slog.Logger
}

// NewQuizService is the constructor for quizService.
func NewQuizService(params QuizServiceParams) usecase.QuizUsecase {
	return &quizService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		quizRepo:  params.QuizRepo,
		generator: params.Generator,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *quizService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Generate produces a new quiz in the user's preferred language and stores it
// with its answer key.
func (srv *quizService) Generate(ctx context.Context, input *usecase.GenerateQuizInput) (*usecase.GenerateQuizOutput, error) {
	srv.log(ctx).Info("Generating quiz", slog.Any("userID", input.UserID), slog.String("topic", input.Topic))

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "requesting user not found")
		}

		return nil, errors.Wrap(err, "failed to load user for quiz generation")
	}

	count := input.QuestionCount
	if count <= 0 {
		count = defaultQuestionCount
	}

	questions, err := srv.generator.GenerateQuestions(ctx, input.Topic, input.Difficulty, user.Language, count)
	if err != nil {
		srv.log(ctx).Error("Quiz generation failed", slog.String("topic", input.Topic), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrQuizGenerationFailed, "quiz generation failed")
	}

	quiz := &entity.Quiz{
		ID:         uuid.New(),
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Questions:  questions,
	}
	if err := srv.quizRepo.Create(ctx, quiz); err != nil {
		return nil, errors.Wrap(err, "failed to store generated quiz")
	}

	srv.log(ctx).Debug("Quiz generated", slog.Any("quizID", quiz.ID), slog.Int("questions", len(quiz.Questions)))

	return &usecase.GenerateQuizOutput{Quiz: quiz}, nil
}

// Submit scores a submission against the stored answer key and applies the
// experience award. The user row is locked for the duration of the
// transaction so concurrent submissions serialize instead of losing updates.
func (srv *quizService) Submit(ctx context.Context, input *usecase.SubmitQuizInput) (*usecase.SubmitQuizOutput, error) {
	srv.log(ctx).Info("Scoring quiz submission", slog.Any("userID", input.UserID), slog.Any("quizID", input.QuizID))

	output := new(usecase.SubmitQuizOutput)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		quizRepo := repoFactory.QuizRepo()
		userRepo := repoFactory.UserRepo()

		quiz, err := quizRepo.FindByID(ctx, input.QuizID)
		if err != nil {
			if errors.Is(err, repository.ErrQuizNotFound) {
				return domainerrors.ErrQuizNotFound
			}

			return errors.Wrap(err, "failed to load quiz")
		}

		user, err := userRepo.LockForUpdate(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound
			}

			return errors.Wrap(err, "failed to lock user row")
		}

		correct, total := service.ScoreQuiz(quiz.Questions, input.Answers)
		previousLevel := user.Level
		xp, bonus := service.ApplyQuizResult(user, correct, total)

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to persist experience award")
		}

		*output = usecase.SubmitQuizOutput{
			Correct:    correct,
			Total:      total,
			Percentage: percentage(correct, total),
			Grade:      grade(percentage(correct, total)),
			XPAwarded:  xp,
			Bonus:      bonus,
			Experience: user.Experience,
			Level:      user.Level,
			LeveledUp:  user.Level > previousLevel,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Quiz submission failed", slog.Any("quizID", input.QuizID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute quiz submission transaction")
	}

	srv.log(ctx).Debug("Quiz scored",
		slog.Any("userID", input.UserID),
		slog.Int("correct", output.Correct),
		slog.Int("total", output.Total),
		slog.Int("xp", output.XPAwarded+output.Bonus))

	return output, nil
}

// Facts produces a summary and fun-fact list in the user's preferred language.
func (srv *quizService) Facts(ctx context.Context, input *usecase.FactsInput) (*service.Facts, error) {
	srv.log(ctx).Debug("Generating facts", slog.Any("userID", input.UserID), slog.String("topic", input.Topic))

	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "requesting user not found")
		}

		return nil, errors.Wrap(err, "failed to load user for facts generation")
	}

	facts, err := srv.generator.GenerateFacts(ctx, input.Topic, input.Difficulty, user.Language)
	if err != nil {
		srv.log(ctx).Error("Facts generation failed", slog.String("topic", input.Topic), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrQuizGenerationFailed, "facts generation failed")
	}

	return facts, nil
}

// percentage is the score share in [0,100]. An empty submission scores zero.
func percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}

	return float64(correct) / float64(total) * 100
}

// grade maps a percentage to a letter grade.
func grade(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	default:
		return "F"
	}
}
