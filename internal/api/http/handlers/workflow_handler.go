package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/api/dto"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/service"
	"github.com/ticketflow/backend/pkg/util"
)

// WorkflowHandler exposes workflow rule administration.
type WorkflowHandler struct {
	workflows *service.WorkflowService
}

// NewWorkflowHandler constructs the handler.
func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows}
}

func workflowInput(req dto.WorkflowRequest) service.WorkflowInput {
	return service.WorkflowInput{
		Name:        req.Name,
		Description: req.Description,
		Trigger:     domain.WorkflowTrigger(req.Trigger),
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		Active:      req.Active,
	}
}

// Create handles POST /workflows.
func (h *WorkflowHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.WorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	rule, err := h.workflows.Create(c.UserContext(), actor, workflowInput(req))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromWorkflow(rule))
}

// Get handles GET /workflows/:id.
func (h *WorkflowHandler) Get(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	rule, err := h.workflows.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromWorkflow(rule))
}

// List handles GET /workflows.
func (h *WorkflowHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	rules, err := h.workflows.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromWorkflows(rules))
}

// Update handles PUT /workflows/:id.
func (h *WorkflowHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.WorkflowRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	rule, err := h.workflows.Update(c.UserContext(), actor, c.Params("id"), workflowInput(req))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromWorkflow(rule))
}

// Delete handles DELETE /workflows/:id.
func (h *WorkflowHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.workflows.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
