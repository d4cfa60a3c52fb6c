// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"

	"snaplearn/internal/domain/entity"
	domainerrors "snaplearn/internal/domain/errors"
	"snaplearn/internal/domain/repository"
	"snaplearn/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// quizRepository implements the domain.QuizRepository interface. Question
// lists travel as a JSONB document; the repository owns the encoding.
type quizRepository struct {
	db *gorm.DB
}

// NewQuizRepository is the constructor for quizRepository.
func NewQuizRepository(db *gorm.DB) repository.QuizRepository {
	return &quizRepository{db: db}
}

// Create persists a newly generated quiz instance.
func (repo *quizRepository) Create(ctx context.Context, quiz *entity.Quiz) error {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return errors.Wrap(err, "encode quiz questions")
	}

	quizM := &model.QuizModel{
		ID:         quiz.ID,
		Topic:      quiz.Topic,
		Difficulty: quiz.Difficulty,
		Questions:  questions,
	}

	if err := repo.db.WithContext(ctx).Create(quizM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create quiz")
	}

	quiz.ID = quizM.ID
	quiz.CreatedAt = quizM.CreatedAt

	return nil
}

// FindByID retrieves a quiz instance with its full question list and answer key.
func (repo *quizRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Quiz, error) {
	quizM := new(model.QuizModel)
	err := repo.db.WithContext(ctx).Where("id = ?", id).First(quizM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrQuizNotFound
		}

		return nil, errors.WithStack(err)
	}

	var questions []entity.QuizQuestion
	if err := json.Unmarshal(quizM.Questions, &questions); err != nil {
		return nil, errors.Wrap(err, "decode quiz questions")
	}

	return &entity.Quiz{
		ID:         quizM.ID,
		Topic:      quizM.Topic,
		Difficulty: quizM.Difficulty,
		Questions:  questions,
		CreatedAt:  quizM.CreatedAt,
	}, nil
}
