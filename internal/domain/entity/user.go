// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core entity in the system, representing one learner account.
// Experience and Level are coupled: Level is always derived from Experience
// through the leveling curve and is never written independently, except at
// creation where both start at zero.
type User struct {
	ID           uuid.UUID // The unique identifier for the user.
	Username     string    // Unique display name, chosen at registration.
	Email        string    // Unique contact email, used as the login identifier.
	PasswordHash string    // bcrypt hash of the user's password.
	Language     string    // Preferred content language for generated quizzes, e.g. "en".
	Experience   float64   // Cumulative experience points earned from quizzes. Never decreases.
	Level        int       // Current level, derived from Experience via the geometric XP curve.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this user's data.
}

// LeaderboardEntry is a read model for one leaderboard row.
type LeaderboardEntry struct {
	Username   string  `json:"username"`
	Experience float64 `json:"exp"`
	Level      int     `json:"level"`
}
