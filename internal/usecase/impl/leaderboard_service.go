// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "snaplearn/internal/delivery/context"
	domainerrors "snaplearn/internal/domain/errors"
	"snaplearn/internal/domain/repository"
	"snaplearn/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// leaderboardService implements the LeaderboardUsecase interface.
type leaderboardService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// LeaderboardServiceParams holds dependencies for leaderboardService, injected by Fx.
type LeaderboardServiceParams struct {
	fx.In

	UserRepo repository.UserRepository
	Logger   *slog.Logger
}

// NewLeaderboardService is the constructor for leaderboardService.
func NewLeaderboardService(params LeaderboardServiceParams) usecase.LeaderboardUsecase {
	return &leaderboardService{
		userRepo: params.UserRepo,
		logger:   params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *leaderboardService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Top returns one page of the global ranking. Zero values take the defaults;
// anything out of range is rejected rather than clamped.
func (srv *leaderboardService) Top(ctx context.Context, input *usecase.LeaderboardInput) (*usecase.LeaderboardOutput, error) {
	page := input.Page
	if page == 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = usecase.DefaultLeaderboardPageSize
	}

	if page < 1 {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("page must be at least 1")
	}
	if pageSize < 1 || pageSize > usecase.MaxLeaderboardPageSize {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("pageSize must be between 1 and 100")
	}

	offset := (page - 1) * pageSize

	entries, total, err := srv.userRepo.ListByExperience(ctx, offset, pageSize)
	if err != nil {
		srv.log(ctx).Error("Failed to load leaderboard page", slog.Int("page", page), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load leaderboard page")
	}

	return &usecase.LeaderboardOutput{
		Entries:  entries,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}
