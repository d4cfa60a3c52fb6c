// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"snaplearn/internal/domain/entity"
)

// Leaderboard pagination bounds. Out-of-range values are a client error, not
// something to silently clamp.
const (
	DefaultLeaderboardPageSize = 10
	MaxLeaderboardPageSize     = 100
)

// LeaderboardInput selects one page of the global ranking. Zero values mean
// "use the default".
type LeaderboardInput struct {
	Page     int
	PageSize int
}

// LeaderboardOutput is one page of the ranking plus paging metadata.
type LeaderboardOutput struct {
	Entries  []*entity.LeaderboardEntry
	Page     int
	PageSize int
	Total    int64
}

// LeaderboardUsecase exposes the global experience ranking.
type LeaderboardUsecase interface {
	// Top returns one page of users ordered by experience descending.
	Top(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error)
}
