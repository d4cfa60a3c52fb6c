// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"snaplearn/internal/domain/entity"
	"snaplearn/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Language string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput carries the full credential triple for token rotation. The
// access token is expected to be expired; it still identifies the session
// being rotated.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
	DeviceID     string
}

// LogoutDeviceInput identifies the single session to terminate.
type LogoutDeviceInput struct {
	UserID       uuid.UUID
	DeviceID     string
	RefreshToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// LoginOutput returns the generated credentials after a successful login.
// DeviceID is minted server-side per login and must be echoed back by the
// client on refresh and logout.
type LoginOutput struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	DeviceID         string
	User             *entity.User
}

// RefreshOutput returns the rotated credential pair.
type RefreshOutput struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthUsecase defines the interface for authentication and session business
// operations. This is the contract the delivery layer depends on.
type AuthUsecase interface {
	// Register creates a new account. Username and email must both be unused.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and opens a new per-device session.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Refresh rotates the refresh token and issues a new access token. The
	// presented refresh token is consumed whether or not it has expired.
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// Logout terminates every session the user holds, on all devices.
	Logout(ctx context.Context, userID uuid.UUID) error

	// LogoutDevice terminates the single session matching the input.
	LogoutDevice(ctx context.Context, input *LogoutDeviceInput) error

	// CheckTokenValidity validates an access token and returns its claims.
	CheckTokenValidity(ctx context.Context, accessToken string) (*service.Claims, error)

	// GetProfile loads the account behind an authenticated request.
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// ActiveSessions lists the user's live sessions, newest first.
	ActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error)
}
