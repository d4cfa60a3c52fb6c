// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"snaplearn/internal/domain/repository"

	"go.uber.org/fx"
)

// sessionSweepInterval is how often expired refresh sessions are purged.
const sessionSweepInterval = time.Hour

// SessionSweeperParams holds dependencies for the session sweeper, injected by Fx.
type SessionSweeperParams struct {
	fx.In
	fx.Lifecycle

	RefreshTokenRepo repository.RefreshTokenRepository
	Logger           *slog.Logger
}

type sessionSweeper struct {
	refreshTokenRepo repository.RefreshTokenRepository
	logger           *slog.Logger
	done             chan struct{}
}

// RunSessionSweeper schedules a periodic purge of expired refresh sessions.
// Stale rows are already rejected on lookup; the sweep only keeps the table
// from accumulating dead rows between logins.
func RunSessionSweeper(params SessionSweeperParams) {
	sweeper := &sessionSweeper{
		refreshTokenRepo: params.RefreshTokenRepo,
		logger:           params.Logger,
		done:             make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go sweeper.run()

			return nil
		},
		OnStop: func(context.Context) error {
			close(sweeper.done)

			return nil
		},
	})
}

func (s *sessionSweeper) run() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(context.Background())
		}
	}
}

func (s *sessionSweeper) sweep(ctx context.Context) {
	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		s.logger.Error("Failed to sweep expired sessions", slog.Any("error", err))

		return
	}

	s.logger.Debug("Expired sessions swept")
}
