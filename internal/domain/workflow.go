package domain

import "time"

// WorkflowTrigger enumerates events a rule can react to.
type WorkflowTrigger string

const (
	TriggerTicketCreated WorkflowTrigger = "ticket_created"
	TriggerTicketUpdated WorkflowTrigger = "ticket_updated"
	TriggerStatusChanged WorkflowTrigger = "status_changed"
)

// ValidTrigger reports whether t is a known trigger type.
func ValidTrigger(t WorkflowTrigger) bool {
	switch t {
	case TriggerTicketCreated, TriggerTicketUpdated, TriggerStatusChanged:
		return true
	}
	return false
}

// WorkflowRule is evaluated reactively against published ticket events.
// Conditions are matched key-by-key against the event payload; actions are
// executed by the workflow engine (currently logged only).
type WorkflowRule struct {
	ID          string
	Name        string
	Description string
	Trigger     WorkflowTrigger
	Conditions  map[string]any
	Actions     map[string]any
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
