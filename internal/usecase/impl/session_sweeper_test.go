package impl

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaplearn/internal/domain/entity"
)

func TestSessionSweeper_RemovesOnlyExpiredRows(t *testing.T) {
	repo := newFakeRefreshTokenRepo()
	userID := uuid.New()

	stale := &entity.RefreshToken{
		UserID:    userID,
		DeviceID:  "old-phone",
		Token:     "stale-token",
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	live := &entity.RefreshToken{
		UserID:    userID,
		DeviceID:  "laptop",
		Token:     "live-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), stale))
	require.NoError(t, repo.Create(context.Background(), live))

	sweeper := &sessionSweeper{
		refreshTokenRepo: repo,
		logger:           slog.Default(),
	}
	sweeper.sweep(context.Background())

	remaining, err := repo.FindActiveByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "laptop", remaining[0].DeviceID)

	count, err := repo.CountActiveByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The stale row is gone outright, not merely filtered from the listing.
	repo.mu.Lock()
	assert.Len(t, repo.sessions, 1)
	repo.mu.Unlock()
}
