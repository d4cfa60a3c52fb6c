// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"time"

	"snaplearn/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for refresh token persistence.
var (
	// ErrRefreshTokenNotFound is returned when no session matches the lookup key.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshTokenExpired is returned when a matching session exists but has expired.
	ErrRefreshTokenExpired = errors.New("refresh token has expired")
)

// RefreshTokenRepository manages per-device refresh token sessions.
// Sessions are keyed by (user, device); rotation rewrites the token value in
// place so the previous value is single-use.
type RefreshTokenRepository interface {
	// Create persists a new session row. Logins always insert; device IDs
	// are minted per login so (user, device) pairs never collide.
	Create(ctx context.Context, token *entity.RefreshToken) error

	// FindByTokenUserDevice retrieves the session matching all three fields.
	// Returns ErrRefreshTokenNotFound when absent and ErrRefreshTokenExpired
	// when present but not strictly after the current instant.
	FindByTokenUserDevice(ctx context.Context, token string, userID uuid.UUID, deviceID string) (*entity.RefreshToken, error)

	// Rotate atomically replaces the token value and expiry of the session
	// currently holding oldToken. The update is conditional on oldToken
	// still being the stored value, so of two concurrent rotations exactly
	// one succeeds; the loser gets ErrRefreshTokenNotFound.
	Rotate(ctx context.Context, userID uuid.UUID, deviceID, oldToken, newToken string, newExpiry time.Time) error

	// FindActiveByUserID retrieves all non-expired sessions for a user,
	// newest first.
	FindActiveByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)

	// CountActiveByUserID returns the number of non-expired sessions for a user.
	CountActiveByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteByUserID removes every session for the user (logout everywhere).
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error

	// DeleteByUserDeviceToken removes the single matching session
	// (single-device logout). Returns ErrRefreshTokenNotFound when no row matches.
	DeleteByUserDeviceToken(ctx context.Context, userID uuid.UUID, deviceID, token string) error

	// DeleteExpired removes all expired sessions. Stale rows are already
	// rejected on lookup; this is purely a maintenance sweep.
	DeleteExpired(ctx context.Context) error
}
