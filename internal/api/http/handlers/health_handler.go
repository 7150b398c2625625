package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/persistence"
)

// HealthHandler reports process and dependency health.
type HealthHandler struct {
	db      *persistence.Postgres
	cache   *persistence.Redis
	version string
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(db *persistence.Postgres, cache *persistence.Redis, version string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, version: version}
}

// Live handles GET /healthz.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": h.version})
}

// Ready handles GET /readyz. Postgres is required; Redis degrades to a
// warning since only email verification depends on it.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx := c.UserContext()
	deps := fiber.Map{"postgres": "ok", "redis": "ok"}
	status := fiber.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		deps["postgres"] = err.Error()
		status = fiber.StatusServiceUnavailable
	}
	if err := h.cache.Ping(ctx); err != nil {
		deps["redis"] = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{"dependencies": deps, "version": h.version})
}
