// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"snaplearn/internal/delivery/http/middleware"
	"snaplearn/internal/delivery/http/response"
	"snaplearn/internal/domain/entity"
	"snaplearn/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication-related handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Language string `json:"language"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// refreshRequest carries the expired access token, the refresh token and the
// device the pair was issued to.
type refreshRequest struct {
	Token        string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
	DeviceID     string `json:"deviceId"`
}

type logoutDeviceRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
	DeviceID     string `json:"deviceId"`
}

// userView is the client-facing shape of a user. The password hash never
// leaves the server.
type userView struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Language   string    `json:"language"`
	Experience float64   `json:"exp"`
	Level      int       `json:"level"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserView(user *entity.User) *userView {
	return &userView{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Language:   user.Language,
		Experience: user.Experience,
		Level:      user.Level,
		CreatedAt:  user.CreatedAt,
	}
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Register(c.Request().Context(), &usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Language: req.Language,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserView(output.User), "User registered successfully")
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token":            output.AccessToken,
		"refreshToken":     output.RefreshToken,
		"refreshExpiresAt": output.RefreshExpiresAt,
		"deviceId":         output.DeviceID,
		"user":             toUserView(output.User),
	}, "Login successful")
}

// Refresh handles the token rotation request.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid refresh input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Refresh(c.Request().Context(), &usecase.RefreshInput{
		AccessToken:  req.Token,
		RefreshToken: req.RefreshToken,
		DeviceID:     req.DeviceID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"token":            output.AccessToken,
		"refreshToken":     output.RefreshToken,
		"refreshExpiresAt": output.RefreshExpiresAt,
	}, "Token refreshed successfully")
}

// Logout terminates every session of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	if err := h.uc.Logout(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logged out from all devices")
}

// LogoutDevice terminates the single session named in the request. The device
// defaults to the one the access token was issued to.
func (h *AuthHandler) LogoutDevice(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	var req logoutDeviceRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid logout input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID, _ = middleware.DeviceID(c)
	}

	err := h.uc.LogoutDevice(c.Request().Context(), &usecase.LogoutDeviceInput{
		UserID:       userID,
		DeviceID:     deviceID,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Device logged out")
}

// Check validates the presented access token and reports its claims.
func (h *AuthHandler) Check(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if authHeader == "" || tokenString == authHeader {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Bearer token is required")
	}

	claims, err := h.uc.CheckTokenValidity(c.Request().Context(), tokenString)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"valid":     true,
		"token":     tokenString,
		"userId":    claims.UserID,
		"deviceId":  claims.DeviceID,
		"expiresAt": claims.ExpiresAt.Time,
	}, "Token is valid")
}

// GetProfile returns the authenticated user's account.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := h.uc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserView(user), "Profile retrieved successfully")
}

// Sessions lists the authenticated user's active sessions.
func (h *AuthHandler) Sessions(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return response.Unauthorized(c, "ACCESS_TOKEN_INVALID", "Invalid user ID in token")
	}

	sessions, err := h.uc.ActiveSessions(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"sessions": sessions,
		"count":    len(sessions),
	}, "Active sessions retrieved")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
