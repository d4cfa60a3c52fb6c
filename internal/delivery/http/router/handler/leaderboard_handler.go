// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"snaplearn/internal/delivery/http/response"
	"snaplearn/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// LeaderboardHandler holds dependencies for the leaderboard handler.
type LeaderboardHandler struct {
	uc     usecase.LeaderboardUsecase
	logger *slog.Logger
}

// NewLeaderboardHandler is the constructor for LeaderboardHandler, injected by Fx.
func NewLeaderboardHandler(uc usecase.LeaderboardUsecase, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		uc:     uc,
		logger: logger,
	}
}

// Top returns one page of the global experience ranking.
func (h *LeaderboardHandler) Top(c echo.Context) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "page must be an integer")
	}
	pageSize, err := queryInt(c, "pageSize", 0)
	if err != nil {
		return response.BadRequest(c, "VALIDATION_FAILED", "pageSize must be an integer")
	}

	output, err := h.uc.Top(c.Request().Context(), &usecase.LeaderboardInput{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"entries":  output.Entries,
		"page":     output.Page,
		"pageSize": output.PageSize,
		"total":    output.Total,
	}, "Leaderboard retrieved")
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
