package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusBlocked    TicketStatus = "blocked"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the central aggregate. ReporterID is set at creation and never
// changes; the assignee set is owned by the ticket and mutable.
type Ticket struct {
	ID          string
	Key         string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Department  string
	ReporterID  string
	ProjectID   *string
	AssigneeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasAssignee reports whether userID is in the current assignee set.
func (t *Ticket) HasAssignee(userID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}
