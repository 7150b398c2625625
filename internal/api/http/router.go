package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/api/http/handlers"
	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/config"
	"github.com/ticketflow/backend/internal/observability"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Tickets     *handlers.TicketHandler
	Projects    *handlers.ProjectHandler
	Workflows   *handlers.WorkflowHandler
	Reports     *handlers.ReportHandler
	Departments *handlers.DepartmentHandler
	Health      *handlers.HealthHandler
}

// NewApp builds the fiber application with all routes mounted.
func NewApp(cfg config.AppConfig, logger *zap.Logger, authMW *auth.Middleware, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  cfg.RequestTimeout(),
		WriteTimeout: cfg.RequestTimeout(),
		ErrorHandler: NewErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(observability.RequestLogger(logger))

	app.Get("/healthz", h.Health.Live)
	app.Get("/readyz", h.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/verify-email", h.Auth.VerifyEmail)
	authGroup.Post("/resend-verification", h.Auth.ResendVerification)
	authGroup.Post("/logout", authMW.Handle, h.Auth.Logout)

	users := api.Group("/users", authMW.Handle)
	users.Get("/me", h.Users.Me)
	users.Get("/", auth.RequirePermission(auth.PermReadUsers), h.Users.List)
	users.Post("/", auth.RequirePermission(auth.PermWriteUsers), h.Users.Create)
	users.Get("/:id", auth.RequirePermission(auth.PermReadUsers), h.Users.Get)
	users.Patch("/:id", auth.RequirePermission(auth.PermWriteUsers), h.Users.Update)
	users.Delete("/:id", auth.RequirePermission(auth.PermWriteUsers), h.Users.Delete)

	tickets := api.Group("/tickets", authMW.Handle)
	tickets.Get("/", auth.RequirePermission(auth.PermReadTickets), h.Tickets.List)
	tickets.Post("/", auth.RequirePermission(auth.PermWriteTickets), h.Tickets.Create)
	tickets.Get("/:id", auth.RequirePermission(auth.PermReadTickets), h.Tickets.Get)
	tickets.Patch("/:id", auth.RequirePermission(auth.PermWriteTickets), h.Tickets.Update)
	tickets.Delete("/:id", auth.RequirePermission(auth.PermWriteTickets), h.Tickets.Delete)
	tickets.Get("/:id/history", auth.RequirePermission(auth.PermReadTickets), h.Tickets.History)
	tickets.Get("/:id/attachments", auth.RequirePermission(auth.PermReadTickets), h.Tickets.Attachments)
	tickets.Post("/:id/attachments", auth.RequirePermission(auth.PermWriteTickets), h.Tickets.Attach)
	tickets.Delete("/:id/attachments/:attachmentID", auth.RequirePermission(auth.PermWriteTickets), h.Tickets.RemoveAttachment)

	projects := api.Group("/projects", authMW.Handle)
	projects.Get("/", auth.RequirePermission(auth.PermReadProjects), h.Projects.List)
	projects.Post("/", auth.RequirePermission(auth.PermWriteProjects), h.Projects.Create)
	projects.Get("/:id", auth.RequirePermission(auth.PermReadProjects), h.Projects.Get)
	projects.Put("/:id", auth.RequirePermission(auth.PermWriteProjects), h.Projects.Update)
	projects.Delete("/:id", auth.RequirePermission(auth.PermWriteProjects), h.Projects.Delete)

	workflows := api.Group("/workflows", authMW.Handle)
	workflows.Get("/", auth.RequirePermission(auth.PermReadWorkflows), h.Workflows.List)
	workflows.Post("/", auth.RequirePermission(auth.PermWriteWorkflows), h.Workflows.Create)
	workflows.Get("/:id", auth.RequirePermission(auth.PermReadWorkflows), h.Workflows.Get)
	workflows.Put("/:id", auth.RequirePermission(auth.PermWriteWorkflows), h.Workflows.Update)
	workflows.Delete("/:id", auth.RequirePermission(auth.PermWriteWorkflows), h.Workflows.Delete)

	api.Get("/departments", authMW.Handle, h.Departments.List)
	api.Get("/dashboard", authMW.Handle, auth.RequirePermission(auth.PermReadDashboard), h.Reports.Dashboard)
	api.Get("/reports/tickets", authMW.Handle, auth.RequirePermission(auth.PermReadReports), h.Reports.Tickets)

	return app
}
