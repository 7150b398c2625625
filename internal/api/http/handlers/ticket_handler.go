package handlers

import (
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/api/dto"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/service"
	"github.com/ticketflow/backend/pkg/util"
)

// TicketHandler exposes the ticket lifecycle and audit trail.
type TicketHandler struct {
	tickets     *service.TicketService
	attachments *service.AttachmentService
}

// NewTicketHandler constructs the handler.
func NewTicketHandler(tickets *service.TicketService, attachments *service.AttachmentService) *TicketHandler {
	return &TicketHandler{tickets: tickets, attachments: attachments}
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	ticket, err := h.tickets.Create(c.UserContext(), actor, service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		Department:  req.Department,
		ProjectID:   req.ProjectID,
		AssigneeIDs: req.AssigneeIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// ticketKeyPattern matches human-readable ticket keys like TSK-1001. UUID
// ids contain hyphens too, so the whole shape has to match.
var ticketKeyPattern = regexp.MustCompile(`^[A-Za-z]+-[0-9]+$`)

// Get handles GET /tickets/:id. Keys like TSK-1001 resolve too.
func (h *TicketHandler) Get(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	var ticket *domain.Ticket
	if ticketKeyPattern.MatchString(id) {
		ticket, err = h.tickets.GetByKey(c.UserContext(), actor, id)
	} else {
		ticket, err = h.tickets.Get(c.UserContext(), actor, id)
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// List handles GET /tickets.
func (h *TicketHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	in := service.ListTicketsInput{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("status"); v != "" {
		status := domain.TicketStatus(v)
		in.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.TicketPriority(v)
		in.Priority = &priority
	}
	if v := c.Query("department"); v != "" {
		in.Department = &v
	}
	if v := c.Query("assignee_id"); v != "" {
		in.AssigneeID = &v
	}
	if v := c.Query("project_id"); v != "" {
		in.ProjectID = &v
	}
	tickets, err := h.tickets.List(c.UserContext(), actor, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTickets(tickets))
}

// Update handles PATCH /tickets/:id.
func (h *TicketHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	in := service.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		ProjectID:   req.ProjectID,
		AssigneeIDs: req.AssigneeIDs,
	}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		in.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(*req.Priority)
		in.Priority = &priority
	}
	ticket, err := h.tickets.Update(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// Delete handles DELETE /tickets/:id.
func (h *TicketHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History handles GET /tickets/:id/history.
func (h *TicketHandler) History(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	entries, err := h.tickets.History(c.UserContext(), actor, c.Params("id"),
		c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromHistory(entries))
}

// Attach handles POST /tickets/:id/attachments.
func (h *TicketHandler) Attach(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	attachment, err := h.attachments.Attach(c.UserContext(), actor, c.Params("id"), service.AttachmentInput{
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        req.Size,
		FileKey:     req.FileKey,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAttachment(attachment))
}

// Attachments handles GET /tickets/:id/attachments.
func (h *TicketHandler) Attachments(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	attachments, err := h.attachments.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromAttachments(attachments))
}

// RemoveAttachment handles DELETE /tickets/:id/attachments/:attachmentID.
func (h *TicketHandler) RemoveAttachment(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.attachments.Remove(c.UserContext(), actor, c.Params("id"), c.Params("attachmentID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
