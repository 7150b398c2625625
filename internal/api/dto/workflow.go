package dto

import (
	"time"

	"github.com/ticketflow/backend/internal/domain"
)

// WorkflowRequest is the workflow rule create/update payload.
type WorkflowRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Trigger     string         `json:"trigger"`
	Conditions  map[string]any `json:"conditions"`
	Actions     map[string]any `json:"actions"`
	Active      bool           `json:"active"`
}

// WorkflowResponse is the public shape of a workflow rule.
type WorkflowResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Trigger     string         `json:"trigger"`
	Conditions  map[string]any `json:"conditions"`
	Actions     map[string]any `json:"actions"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FromWorkflow converts a domain workflow rule.
func FromWorkflow(rule *domain.WorkflowRule) WorkflowResponse {
	return WorkflowResponse{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Trigger:     string(rule.Trigger),
		Conditions:  rule.Conditions,
		Actions:     rule.Actions,
		Active:      rule.Active,
		CreatedAt:   rule.CreatedAt,
		UpdatedAt:   rule.UpdatedAt,
	}
}

// FromWorkflows converts a slice of domain workflow rules.
func FromWorkflows(rules []domain.WorkflowRule) []WorkflowResponse {
	out := make([]WorkflowResponse, 0, len(rules))
	for i := range rules {
		out = append(out, FromWorkflow(&rules[i]))
	}
	return out
}
