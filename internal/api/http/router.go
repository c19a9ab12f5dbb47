package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/api/http/handlers"
	"github.com/gasworks/servicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Support        *handlers.SupportHandler
	ServiceTypes   *handlers.ServiceTypesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.ChangePassword)

	app.Get("/service-types", cfg.ServiceTypes.ListActive)

	profile := app.Group("/profile", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	profile.Get("/", cfg.Users.Profile)
	profile.Put("/", cfg.Users.UpdateProfile)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireCustomer())
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:number", cfg.Requests.Get)
	requests.Get("/:number/attachments", cfg.Requests.ListAttachments)
	requests.Post("/:number/attachments", cfg.Requests.AddAttachment)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/requests", cfg.Support.Search)
	staff.Get("/requests/counts", cfg.Support.Counts)
	staff.Get("/requests/:number", cfg.Support.Get)
	staff.Post("/requests/:number/status", cfg.Support.Transition)
	staff.Put("/requests/:number", cfg.Support.Update)
	staff.Post("/requests/:number/attachments", cfg.Requests.AddAttachment)
	staff.Get("/assignable", cfg.Support.Assignable)

	staff.Get("/customers/:id/profile", cfg.Users.CustomerProfile)
	staff.Put("/customers/:id/profile", cfg.Users.UpdateCustomerProfile)

	staff.Get("/service-types", cfg.ServiceTypes.ListAll)
	staff.Post("/service-types", cfg.ServiceTypes.Create)
	staff.Get("/service-types/:id", cfg.ServiceTypes.Get)
	staff.Put("/service-types/:id", cfg.ServiceTypes.Update)
	staff.Delete("/service-types/:id", cfg.ServiceTypes.Delete)
}
