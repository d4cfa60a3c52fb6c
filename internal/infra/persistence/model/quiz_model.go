package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizModel mirrors the 'quizzes' table. Questions are stored as a JSONB
// document; the answer key never leaves the server.
type QuizModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	Topic      string    `gorm:"type:varchar(255);not null"`
	Difficulty string    `gorm:"type:varchar(32);not null"`
	Questions  []byte    `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time
}

// TableName explicitly sets the table name for GORM.
func (QuizModel) TableName() string {
	return "quizzes"
}
