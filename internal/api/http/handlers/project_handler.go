package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/api/dto"
	"github.com/ticketflow/backend/internal/service"
	"github.com/ticketflow/backend/pkg/util"
)

// ProjectHandler exposes project administration.
type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	project, err := h.projects.Create(c.UserContext(), actor, service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Key:         req.Key,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromProject(project))
}

// Get handles GET /projects/:id.
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	project, err := h.projects.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromProject(project))
}

// List handles GET /projects.
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	projects, err := h.projects.List(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromProjects(projects))
}

// Update handles PUT /projects/:id.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid request body", nil)
	}
	project, err := h.projects.Update(c.UserContext(), actor, c.Params("id"), service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Key:         req.Key,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.FromProject(project))
}

// Delete handles DELETE /projects/:id.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	actor, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.projects.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
