package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// DepartmentHandler lists the units tickets can be routed to. Departments
// are reference data, so reads go straight to the repository.
type DepartmentHandler struct {
	departments repository.DepartmentRepository
}

// NewDepartmentHandler constructs the handler.
func NewDepartmentHandler(departments repository.DepartmentRepository) *DepartmentHandler {
	return &DepartmentHandler{departments: departments}
}

type departmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// List handles GET /departments.
func (h *DepartmentHandler) List(c *fiber.Ctx) error {
	departments, err := h.departments.List(c.UserContext(), !c.QueryBool("include_inactive", false))
	if err != nil {
		return util.MapError(err)
	}
	out := make([]departmentResponse, 0, len(departments))
	for _, dept := range departments {
		out = append(out, fromDepartment(dept))
	}
	return c.JSON(out)
}

func fromDepartment(dept domain.Department) departmentResponse {
	return departmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		Active:      dept.Active,
	}
}
