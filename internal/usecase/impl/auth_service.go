// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	"snaplearn/config"
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

const defaultLanguage = "English"

// maxActiveSessions caps concurrent sessions per user. Each login inserts a
// new row, so without a ceiling a client stuck in a login loop would grow the
// table unbounded.
const maxActiveSessions = 10

// authService implements the AuthUsecase interface.
type authService struct {
	txManager        repository.TransactionManager
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	hasher           service.PasswordHasher
	tokenService     service.TokenService
	logger           *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager        repository.TransactionManager
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	Hasher           service.PasswordHasher
	TokenService     service.TokenService
	Config           *config.Config
	Logger           *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:        params.TxManager,
		userRepo:         params.UserRepo,
		refreshTokenRepo: params.RefreshTokenRepo,
		hasher:           params.Hasher,
		tokenService:     params.TokenService,
		logger:           params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account after checking that both the username and
// the email are unused. The checks and the insert run in one transaction; the
// unique indexes still backstop a concurrent duplicate.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username), slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	language := input.Language
	if language == "" {
		language = defaultLanguage
	}

	newUser := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Language:     language,
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if _, err := userRepo.FindByUsername(ctx, input.Username); err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("username is already taken")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check username availability")
		}

		if _, err := userRepo.FindByEmail(ctx, input.Email); err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email is already registered")
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check email availability")
		}

		return userRepo.Create(ctx, newUser)
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return &usecase.RegisterOutput{User: newUser}, nil
}

// Login verifies credentials and opens a new session. Every login mints a
// fresh device ID, so each login gets its own session row and logging in
// twice never collides on the (user, device) unique index.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to load user for login")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	activeSessions, err := srv.refreshTokenRepo.CountActiveByUserID(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count active sessions")
	}
	if activeSessions >= maxActiveSessions {
		srv.log(ctx).Warn("Session limit reached", slog.Any("userID", user.ID), slog.Int("active", activeSessions))

		return nil, errors.Wrap(domainerrors.ErrSessionLimitReached, "session limit reached")
	}

	deviceID := uuid.NewString()

	accessToken, refreshToken, refreshExpiry, err := srv.tokenService.GenerateTokenPair(user.ID, deviceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	newSession := &entity.RefreshToken{
		UserID:    user.ID,
		DeviceID:  deviceID,
		Token:     refreshToken,
		ExpiresAt: refreshExpiry,
	}
	if err := srv.refreshTokenRepo.Create(ctx, newSession); err != nil {
		srv.log(ctx).Error("Failed to store refresh token during login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to store refresh token during login")
	}

	srv.log(ctx).Debug("User logged in", slog.Any("userID", user.ID), slog.String("deviceID", deviceID))

	return &usecase.LoginOutput{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
		DeviceID:         deviceID,
		User:             user,
	}, nil
}

// Refresh rotates the session's refresh token and issues a new access token.
// The expired access token still carries the identity being refreshed; its
// claims must agree with the presented device ID. Rotation is conditional on
// the stored token still matching, so a replayed refresh token loses.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh tokens")

	claims, err := srv.tokenService.ExtractClaimsIgnoringExpiry(input.AccessToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh with unparseable access token", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid access token presented for refresh")
	}

	deviceID := input.DeviceID
	if deviceID == "" {
		deviceID = claims.DeviceID
	}
	if deviceID != claims.DeviceID {
		srv.log(ctx).Warn("Refresh device mismatch", slog.Any("userID", claims.UserID))

		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "device mismatch during refresh")
	}

	newAccessToken, newRefreshToken, newExpiry, err := srv.tokenService.GenerateTokenPair(claims.UserID, deviceID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate rotated tokens")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		refreshRepo := repoFactory.RefreshTokenRepo()

		// Expiry is checked on lookup; rotation itself only checks identity.
		if _, err := refreshRepo.FindByTokenUserDevice(ctx, input.RefreshToken, claims.UserID, deviceID); err != nil {
			return err
		}

		return refreshRepo.Rotate(ctx, claims.UserID, deviceID, input.RefreshToken, newRefreshToken, newExpiry)
	})
	if err != nil {
		srv.log(ctx).Warn("Refresh failed", slog.Any("userID", claims.UserID), slog.Any("error", err))

		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenExpired) {
			return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "refresh token not found or expired")
		}

		return nil, errors.Wrap(err, "failed to execute refresh transaction")
	}

	srv.log(ctx).Debug("Tokens rotated", slog.Any("userID", claims.UserID), slog.String("deviceID", deviceID))

	return &usecase.RefreshOutput{
		AccessToken:      newAccessToken,
		RefreshToken:     newRefreshToken,
		RefreshExpiresAt: newExpiry,
	}, nil
}

// Logout terminates every session the user holds.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Logging out from all devices", slog.Any("userID", userID))

	if err := srv.refreshTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to delete refresh tokens", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to delete refresh tokens")
	}

	return nil
}

// LogoutDevice terminates the single session matching the input triple.
func (srv *authService) LogoutDevice(ctx context.Context, input *usecase.LogoutDeviceInput) error {
	srv.log(ctx).Info("Logging out device", slog.Any("userID", input.UserID), slog.String("deviceID", input.DeviceID))

	err := srv.refreshTokenRepo.DeleteByUserDeviceToken(ctx, input.UserID, input.DeviceID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return errors.Wrap(domainerrors.ErrSessionNotFound, "no session matches this device")
		}

		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// CheckTokenValidity validates an access token and confirms the device behind
// it still holds an active session. A structurally valid token whose session
// was revoked reports invalid.
func (srv *authService) CheckTokenValidity(ctx context.Context, accessToken string) (*service.Claims, error) {
	claims, err := srv.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		srv.log(ctx).Debug("Access token validation failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrAccessTokenInvalid, "access token validation failed")
	}

	sessions, err := srv.refreshTokenRepo.FindActiveByUserID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check session state")
	}
	for _, session := range sessions {
		if session.DeviceID == claims.DeviceID {
			return claims, nil
		}
	}

	srv.log(ctx).Debug("Access token for revoked session", slog.Any("userID", claims.UserID))

	return nil, errors.Wrap(domainerrors.ErrAccessTokenInvalid, "no active session for this device")
}

// GetProfile loads the account behind an authenticated request.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "profile not found")
		}

		return nil, errors.Wrap(err, "failed to load profile")
	}

	return user, nil
}

// ActiveSessions lists the user's live sessions. Token values stay server-side.
func (srv *authService) ActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.SessionInfo, error) {
	sessions, err := srv.refreshTokenRepo.FindActiveByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list active sessions", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list active sessions")
	}

	infos := make([]*entity.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, &entity.SessionInfo{
			ID:        session.ID,
			DeviceID:  session.DeviceID,
			CreatedAt: session.CreatedAt,
			ExpiresAt: session.ExpiresAt,
		})
	}

	return infos, nil
}
