package impl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplearn/internal/domain/entity"
	domainerrors "snaplearn/internal/domain/errors"
	"snaplearn/internal/domain/service"
	"snaplearn/internal/usecase"
)

func seedQuizUser(t *testing.T, f *quizFixture, language string, experience float64, level int) *entity.User {
	t.Helper()

	user := &entity.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "irrelevant",
		Language:     language,
		Experience:   experience,
		Level:        level,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))

	return user
}

func twoQuestionQuiz() []entity.QuizQuestion {
	return []entity.QuizQuestion{
		{
			Question:      "Which planet is largest?",
			Options:       []string{"Mars", "Jupiter", "Venus", "Earth"},
			CorrectAnswer: "Jupiter",
			Points:        10,
		},
		{
			Question:      "What is 2+2?",
			Options:       []string{"3", "4", "5", "6"},
			CorrectAnswer: "4",
			Points:        10,
		},
	}
}

func TestGenerate_UsesUserLanguageAndStoresQuiz(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "Spanish", 0, 0)
	f.generator.questions = twoQuestionQuiz()

	out, err := f.svc.Generate(context.Background(), &usecase.GenerateQuizInput{
		UserID:     user.ID,
		Topic:      "astronomy",
		Difficulty: "easy",
	})
	require.NoError(t, err)

	assert.Equal(t, "Spanish", f.generator.lastLanguage)
	assert.Len(t, out.Quiz.Questions, 2)

	stored, err := f.quizRepo.FindByID(context.Background(), out.Quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "astronomy", stored.Topic)
}

func TestGenerate_UnknownUser(t *testing.T) {
	f := newQuizFixture()

	_, err := f.svc.Generate(context.Background(), &usecase.GenerateQuizInput{
		UserID: uuid.New(),
		Topic:  "astronomy",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestGenerate_GeneratorFailure(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 0, 0)
	f.generator.err = errors.New("model unavailable")

	_, err := f.svc.Generate(context.Background(), &usecase.GenerateQuizInput{
		UserID: user.ID,
		Topic:  "astronomy",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrQuizGenerationFailed))
}

func TestSubmit_PartialScore(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 0, 0)
	quiz := &entity.Quiz{Topic: "astronomy", Questions: twoQuestionQuiz()}
	require.NoError(t, f.quizRepo.Create(context.Background(), quiz))

	out, err := f.svc.Submit(context.Background(), &usecase.SubmitQuizInput{
		UserID: user.ID,
		QuizID: quiz.ID,
		Answers: []entity.SubmittedAnswer{
			{Question: "Which planet is largest?", Selected: "B"},
			{Question: "What is 2+2?", Selected: "C"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, out.Correct)
	assert.Equal(t, 2, out.Total)
	assert.Equal(t, 50.0, out.Percentage)
	assert.Equal(t, "F", out.Grade)
	assert.Equal(t, 10, out.XPAwarded)
	assert.Equal(t, 0, out.Bonus)
	assert.Equal(t, 10.0, out.Experience)
	assert.Equal(t, 0, out.Level)
	assert.False(t, out.LeveledUp)
}

func TestSubmit_PerfectScoreEarnsBonus(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 0, 0)
	quiz := &entity.Quiz{Topic: "astronomy", Questions: twoQuestionQuiz()}
	require.NoError(t, f.quizRepo.Create(context.Background(), quiz))

	out, err := f.svc.Submit(context.Background(), &usecase.SubmitQuizInput{
		UserID: user.ID,
		QuizID: quiz.ID,
		Answers: []entity.SubmittedAnswer{
			{Question: "Which planet is largest?", Selected: "B"},
			{Question: "What is 2+2?", Selected: "B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "A", out.Grade)
	assert.Equal(t, 100.0, out.Percentage)
	assert.Equal(t, 20, out.XPAwarded)
	assert.Equal(t, 10, out.Bonus)
}

func TestSubmit_LevelsUpAndPersists(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 90, 0)
	quiz := &entity.Quiz{Topic: "astronomy", Questions: twoQuestionQuiz()}
	require.NoError(t, f.quizRepo.Create(context.Background(), quiz))

	out, err := f.svc.Submit(context.Background(), &usecase.SubmitQuizInput{
		UserID: user.ID,
		QuizID: quiz.ID,
		Answers: []entity.SubmittedAnswer{
			{Question: "Which planet is largest?", Selected: "B"},
			{Question: "What is 2+2?", Selected: "B"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 120.0, out.Experience)
	assert.Equal(t, 1, out.Level)
	assert.True(t, out.LeveledUp)

	// Award survives the transaction.
	reloaded, err := f.userRepo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, reloaded.Experience)
	assert.Equal(t, 1, reloaded.Level)
}

func TestSubmit_UnknownQuiz(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 0, 0)

	_, err := f.svc.Submit(context.Background(), &usecase.SubmitQuizInput{
		UserID:  user.ID,
		QuizID:  uuid.New(),
		Answers: []entity.SubmittedAnswer{{Question: "x", Selected: "A"}},
	})

	assert.True(t, errors.Is(err, domainerrors.ErrQuizNotFound))
}

func TestSubmit_UnknownUser(t *testing.T) {
	f := newQuizFixture()
	quiz := &entity.Quiz{Topic: "astronomy", Questions: twoQuestionQuiz()}
	require.NoError(t, f.quizRepo.Create(context.Background(), quiz))

	_, err := f.svc.Submit(context.Background(), &usecase.SubmitQuizInput{
		UserID:  uuid.New(),
		QuizID:  quiz.ID,
		Answers: []entity.SubmittedAnswer{{Question: "x", Selected: "A"}},
	})

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestFacts_UsesUserLanguage(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "French", 0, 0)
	f.generator.facts = &service.Facts{
		Summary:  "Jupiter is the largest planet.",
		Facts:    []string{"It has 95 known moons."},
		Language: "French",
	}

	facts, err := f.svc.Facts(context.Background(), &usecase.FactsInput{
		UserID: user.ID,
		Topic:  "astronomy",
	})
	require.NoError(t, err)

	assert.Equal(t, "French", f.generator.lastLanguage)
	assert.Len(t, facts.Facts, 1)
}

func TestFacts_GeneratorFailure(t *testing.T) {
	f := newQuizFixture()
	user := seedQuizUser(t, f, "English", 0, 0)
	f.generator.err = errors.New("model unavailable")

	_, err := f.svc.Facts(context.Background(), &usecase.FactsInput{
		UserID: user.ID,
		Topic:  "astronomy",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrQuizGenerationFailed))
}
