package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hardware-store/internal/api/http/handlers"
	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Users  *handlers.UsersHandler
	Auth   *handlers.AuthHandler
	Gate   *auth.Gate
}

// RegisterRoutes installs the authentication gate in front of every route and
// guards each route with its role requirement.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/hardware")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/current", auth.RequireAuthenticated(), cfg.Auth.Current)

	adminOnly := auth.RequireRoles(domain.RoleAdmin)
	signedIn := auth.RequireAuthenticated()

	users := api.Group("/users")
	users.Post("/", cfg.Users.Register)
	users.Get("/", adminOnly, cfg.Users.List)
	users.Get("/email/:email", signedIn, cfg.Users.GetByEmail)
	users.Get("/search/:keyword", signedIn, cfg.Users.Search)
	users.Get("/:userId", signedIn, cfg.Users.Get)
	users.Put("/:userId/admin", adminOnly, cfg.Users.AssignAdmin)
	users.Put("/:userId", signedIn, cfg.Users.Update)
	users.Delete("/:userId", adminOnly, cfg.Users.Delete)
}
