// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"snaplearn/internal/delivery/http/middleware"
	"snaplearn/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler        *handler.AuthHandler
	QuizHandler        *handler.QuizHandler
	LeaderboardHandler *handler.LeaderboardHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler        *handler.AuthHandler
	quizHandler        *handler.QuizHandler
	leaderboardHandler *handler.LeaderboardHandler
	authMiddleware     *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:        params.AuthHandler,
		quizHandler:        params.QuizHandler,
		leaderboardHandler: params.LeaderboardHandler,
		authMiddleware:     params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.GET("/check-token-validity", r.authHandler.Check)
	}

	// Auth routes that require a valid access token
	sessionGroup := api.Group("/auth")
	sessionGroup.Use(r.authMiddleware.Authenticate)
	{
		sessionGroup.POST("/logout", r.authHandler.Logout)
		sessionGroup.POST("/logout-device", r.authHandler.LogoutDevice)
		sessionGroup.GET("/sessions", r.authHandler.Sessions)
	}

	// User routes that require authentication
	userGroup := api.Group("/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/profile", r.authHandler.GetProfile)
	}

	// Quiz routes that require authentication
	quizGroup := api.Group("/quiz")
	quizGroup.Use(r.authMiddleware.Authenticate)
	{
		quizGroup.POST("/generate", r.quizHandler.Generate)
		quizGroup.POST("/submit", r.quizHandler.Submit)
		quizGroup.POST("/facts", r.quizHandler.Facts)
	}

	// Leaderboard is public
	api.GET("/leaderboard", r.leaderboardHandler.Top)
}
