// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"snaplearn/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrQuizNotFound is returned when a quiz instance does not exist.
var ErrQuizNotFound = errors.New("quiz not found")

// QuizRepository persists generated quiz instances. Instances are write-once:
// there is no update or delete path.
type QuizRepository interface {
	// Create persists a newly generated quiz instance.
	Create(ctx context.Context, quiz *entity.Quiz) error

	// FindByID retrieves a quiz instance with its full question list and answer key.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Quiz, error)
}
