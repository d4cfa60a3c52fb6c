package impl

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "snaplearn/internal/domain/errors"
	"snaplearn/internal/usecase"
)

func registerTestUser(t *testing.T, f *authFixture, username, email string) *usecase.RegisterOutput {
	t.Helper()

	out, err := f.svc.Register(context.Background(), &usecase.RegisterInput{
		Username: username,
		Email:    email,
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, out.User)

	return out
}

func TestRegister_DefaultsLanguage(t *testing.T) {
	f := newAuthFixture()

	out := registerTestUser(t, f, "alice", "alice@example.com")

	assert.Equal(t, "English", out.User.Language)
	assert.NotEmpty(t, out.User.ID)
	assert.NotEqual(t, "correct-horse", out.User.PasswordHash)
}

func TestRegister_RejectsDuplicateUsername(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	_, err := f.svc.Register(context.Background(), &usecase.RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "correct-horse",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	_, err := f.svc.Register(context.Background(), &usecase.RegisterInput{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "correct-horse",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestLogin_OpensSessionWithFreshDevice(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	first, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, first.DeviceID)
	assert.NotEqual(t, first.DeviceID, second.DeviceID, "each login gets its own device")

	sessions, err := f.svc.ActiveSessions(context.Background(), first.User.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestLogin_EnforcesSessionLimit(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	for i := 0; i < maxActiveSessions; i++ {
		login(t, f)
	}

	_, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrSessionLimitReached))

	// Expired sessions don't count toward the cap.
	f.tokenRepo.mu.Lock()
	for _, session := range f.tokenRepo.sessions {
		session.ExpiresAt = session.CreatedAt.AddDate(0, 0, -1)
	}
	f.tokenRepo.mu.Unlock()

	_, err = f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	_, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	login, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	rotated, err := f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		DeviceID:     login.DeviceID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Replaying the consumed token must fail.
	_, err = f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		DeviceID:     login.DeviceID,
	})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))

	// The rotated token keeps working.
	_, err = f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  rotated.AccessToken,
		RefreshToken: rotated.RefreshToken,
		DeviceID:     login.DeviceID,
	})
	assert.NoError(t, err)
}

func TestRefresh_DeviceDefaultsToClaims(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	login, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})

	assert.NoError(t, err)
}

func TestRefresh_DeviceMismatch(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	login, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		DeviceID:     "some-other-device",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestRefresh_UnparseableAccessToken(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  "garbage",
		RefreshToken: "whatever",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestRefresh_ExpiredSession(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	login, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	// Force the stored session past its expiry.
	f.tokenRepo.mu.Lock()
	for _, session := range f.tokenRepo.sessions {
		session.ExpiresAt = session.CreatedAt.AddDate(0, 0, -1)
	}
	f.tokenRepo.mu.Unlock()

	_, err = f.svc.Refresh(context.Background(), &usecase.RefreshInput{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		DeviceID:     login.DeviceID,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestLogout_RemovesAllSessions(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	userID := login(t, f).User.ID
	login(t, f)

	require.NoError(t, f.svc.Logout(context.Background(), userID))

	sessions, err := f.svc.ActiveSessions(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestLogoutDevice_RemovesOnlyMatchingSession(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	first := login(t, f)
	second := login(t, f)

	err := f.svc.LogoutDevice(context.Background(), &usecase.LogoutDeviceInput{
		UserID:       first.User.ID,
		DeviceID:     first.DeviceID,
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)

	sessions, err := f.svc.ActiveSessions(context.Background(), first.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, second.DeviceID, sessions[0].DeviceID)
}

func TestLogoutDevice_UnknownSession(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	first := login(t, f)

	err := f.svc.LogoutDevice(context.Background(), &usecase.LogoutDeviceInput{
		UserID:       first.User.ID,
		DeviceID:     first.DeviceID,
		RefreshToken: "not-the-stored-token",
	})

	assert.True(t, errors.Is(err, domainerrors.ErrSessionNotFound))
}

func TestCheckTokenValidity(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	out := login(t, f)

	claims, err := f.svc.CheckTokenValidity(context.Background(), out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, out.DeviceID, claims.DeviceID)

	_, err = f.svc.CheckTokenValidity(context.Background(), "forged")
	assert.True(t, errors.Is(err, domainerrors.ErrAccessTokenInvalid))
}

func TestCheckTokenValidity_RevokedSession(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	out := login(t, f)
	require.NoError(t, f.svc.Logout(context.Background(), out.User.ID))

	// The token still verifies cryptographically but its session is gone.
	_, err := f.svc.CheckTokenValidity(context.Background(), out.AccessToken)
	assert.True(t, errors.Is(err, domainerrors.ErrAccessTokenInvalid))
}

func TestActiveSessions_ExcludesExpired(t *testing.T) {
	f := newAuthFixture()
	registerTestUser(t, f, "alice", "alice@example.com")

	first := login(t, f)
	login(t, f)

	f.tokenRepo.mu.Lock()
	for _, session := range f.tokenRepo.sessions {
		if session.DeviceID == first.DeviceID {
			session.ExpiresAt = session.CreatedAt.AddDate(0, 0, -1)
		}
	}
	f.tokenRepo.mu.Unlock()

	sessions, err := f.svc.ActiveSessions(context.Background(), first.User.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func login(t *testing.T, f *authFixture) *usecase.LoginOutput {
	t.Helper()

	out, err := f.svc.Login(context.Background(), &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	return out
}
