package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/api/dto"
	"github.com/ticketflow/backend/internal/service"
)

// ReportHandler exposes aggregate reports and the dashboard.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Dashboard handles GET /dashboard.
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	stats, err := h.reports.Dashboard(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromStats(stats))
}

// Tickets handles GET /reports/tickets.
func (h *ReportHandler) Tickets(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	stats, err := h.reports.TicketReport(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromStats(stats))
}
