package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhub/club-gateway/internal/api/http/handlers"
	"github.com/clubhub/club-gateway/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Proxy             *handlers.ProxyHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/oauth/callback", cfg.Auth.OAuthCallback)
	authGroup.Post("/session", cfg.Auth.Session)
	authGroup.Post("/refresh", cfg.SessionMiddleware.Handle, cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/activity", cfg.SessionMiddleware.Handle, cfg.Auth.Activity)

	app.All("/api/proxy/*", cfg.SessionMiddleware.Optional, cfg.Proxy.Handle)
}
