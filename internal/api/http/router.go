package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/estatehub/property-moderation/internal/api/http/handlers"
	"github.com/estatehub/property-moderation/internal/auth"
	"github.com/estatehub/property-moderation/internal/domain"
	"github.com/estatehub/property-moderation/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Properties     *handlers.PropertyHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/dashboard/stats", cfg.Admin.DashboardStats)
	admin.Get("/users/stats", cfg.Admin.UserStats)
	admin.Get("/properties/stats", cfg.Admin.PropertyStats)

	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/agents", cfg.Admin.ListAgents)
	admin.Patch("/users/:id/status", cfg.Admin.UpdateUserStatus)
	admin.Patch("/users/:id/suspend", cfg.Admin.ToggleSuspension)
	admin.Patch("/users/:id/unsuspend", cfg.Admin.Unsuspend)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/terms-logs", cfg.Admin.TermsLogs)

	admin.Get("/properties", cfg.Admin.ListProperties)
	admin.Delete("/properties/:id", cfg.Admin.DeleteProperty)
	admin.Patch("/properties/:id/assign-agent", cfg.Admin.AssignAgent)
	admin.Delete("/properties/:id/assign-agent", cfg.Admin.UnassignAgent)
	admin.Post("/assignments/reset", cfg.Admin.ResetAssignments)
	admin.Post("/change-password", cfg.Admin.ChangePassword)

	properties := app.Group("/properties", cfg.AuthMiddleware.Handle)
	properties.Post("/", auth.RequireRole(domain.RoleSeller), cfg.Properties.Submit)
	properties.Patch("/:id/approve", auth.RequireAdmin(), cfg.Properties.Approve)
	properties.Patch("/:id/reject", auth.RequireAdmin(), cfg.Properties.Reject)

	seller := app.Group("/seller", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleSeller))
	seller.Get("/properties", cfg.Properties.SellerProperties)
}
