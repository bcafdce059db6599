package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/contactkeeper/contact-service/internal/api/http/handlers"
	"github.com/contactkeeper/contact-service/internal/auth"
	"github.com/contactkeeper/contact-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Contacts       *handlers.ContactsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	users := api.Group("/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/current", cfg.AuthMiddleware.Handle, cfg.Users.Current)

	contacts := api.Group("/contacts", cfg.AuthMiddleware.Handle)
	contacts.Get("/", cfg.Contacts.ListContacts)
	contacts.Post("/", cfg.Contacts.CreateContact)
	contacts.Get("/:id", cfg.Contacts.GetContact)
	contacts.Put("/:id", cfg.Contacts.UpdateContact)
	contacts.Delete("/:id", cfg.Contacts.DeleteContact)
}
