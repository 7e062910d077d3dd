package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/campus-kit/helpdesk-service/internal/auth"
	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// RouterDependencies bundles everything route registration needs.
type RouterDependencies struct {
	AuthMiddleware *auth.AuthMiddleware
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Admins         *handlers.AdminsHandler
	Health         *handlers.HealthHandler
}

// RegisterRoutes wires all endpoints onto the app.
func RegisterRoutes(app *fiber.App, deps RouterDependencies) {
	health := app.Group("/health")
	health.Get("/live", deps.Health.Live)
	health.Get("/ready", deps.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", deps.Users.Register)
	authGroup.Post("/login", deps.Users.Login)
	authGroup.Post("/admin/login", deps.Users.LoginAdmin)
	authGroup.Post("/password-reset", deps.Users.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", deps.Users.ConfirmPasswordReset)
	authGroup.Post("/password", deps.AuthMiddleware.Handle, deps.Users.ChangePassword)
	authGroup.Get("/me", deps.AuthMiddleware.Handle, deps.Users.Me)

	tickets := api.Group("/tickets", deps.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Post("/", deps.Tickets.Create)
	tickets.Get("/", deps.Tickets.List)
	tickets.Get("/stats/analytics", deps.Tickets.Analytics)
	tickets.Get("/export/report", deps.Tickets.ExportReport)
	tickets.Get("/:id", deps.Tickets.Get)
	tickets.Patch("/:id", deps.Tickets.Update)
	tickets.Delete("/:id", deps.Tickets.Delete)
	tickets.Post("/:id/comments", deps.Tickets.AddComment)
	tickets.Patch("/:id/status", auth.RequirePermission((*domain.Admin).CanManageTickets), deps.Tickets.ChangeStatus)
	tickets.Patch("/:id/assignee", auth.RequirePermission((*domain.Admin).CanManageTickets), deps.Tickets.Assign)

	admin := api.Group("/admin", deps.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/admins", auth.RequirePermission((*domain.Admin).CanManageUsers), deps.Admins.List)
	admin.Post("/admins", auth.RequireSuperAdmin(), deps.Admins.Create)
	admin.Patch("/admins/:id", auth.RequireSuperAdmin(), deps.Admins.Update)
}
