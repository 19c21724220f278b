package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enquirydesk/enquiry-service/internal/api/http/handlers"
	"github.com/enquirydesk/enquiry-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Enquiries      *handlers.EnquiriesHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	// CredentialLimiter guards register and login; nil disables it.
	CredentialLimiter fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	limiter := cfg.CredentialLimiter
	if limiter == nil {
		limiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", limiter, cfg.Auth.Register)
	authGroup.Post("/login", limiter, cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.Me)
	authGroup.Post("/password", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	handlersOnly := auth.RequireRoles(auth.EnquiryHandlers...)
	enquiries := api.Group("/enquiries", cfg.AuthMiddleware.Handle)
	enquiries.Post("", auth.RequireRoles(auth.EnquiryCreators...), cfg.Enquiries.Create)
	enquiries.Get("", handlersOnly, cfg.Enquiries.List)
	enquiries.Get("/:id", handlersOnly, cfg.Enquiries.Get)
	enquiries.Put("/:id", handlersOnly, cfg.Enquiries.Update)
	enquiries.Patch("/:id", handlersOnly, cfg.Enquiries.Update)
	enquiries.Delete("/:id", handlersOnly, cfg.Enquiries.Delete)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRoles(auth.UserAdministrators...))
	users.Get("", cfg.Users.List)
	users.Post("", cfg.Users.Create)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}
