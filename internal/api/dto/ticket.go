package dto

import (
	"time"

	"github.com/ticketflow/backend/internal/domain"
)

// CreateTicketRequest is the ticket creation payload. Status is not
// accepted; new tickets always start open.
type CreateTicketRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Department  string   `json:"department"`
	ProjectID   *string  `json:"project_id"`
	AssigneeIDs []string `json:"assignee_ids"`
}

// UpdateTicketRequest carries optional ticket changes. Omitted fields are
// untouched; an explicit empty assignee list clears the set.
type UpdateTicketRequest struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	Priority    *string   `json:"priority"`
	Department  *string   `json:"department"`
	ProjectID   *string   `json:"project_id"`
	AssigneeIDs *[]string `json:"assignee_ids"`
}

// TicketResponse is the public shape of a ticket.
type TicketResponse struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Department  string    `json:"department"`
	ReporterID  string    `json:"reporter_id"`
	ProjectID   *string   `json:"project_id"`
	AssigneeIDs []string  `json:"assignee_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FromTicket converts a domain ticket.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	assignees := ticket.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return TicketResponse{
		ID:          ticket.ID,
		Key:         ticket.Key,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		Priority:    string(ticket.Priority),
		Department:  ticket.Department,
		ReporterID:  ticket.ReporterID,
		ProjectID:   ticket.ProjectID,
		AssigneeIDs: assignees,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// FromTickets converts a slice of domain tickets.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, FromTicket(&tickets[i]))
	}
	return out
}

// HistoryEntryResponse is one audit trail entry.
type HistoryEntryResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}

// FromHistory converts audit trail entries.
func FromHistory(entries []domain.TicketHistory) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, HistoryEntryResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			UserID:    entry.UserID,
			Action:    entry.Action,
			OldValue:  entry.OldValue,
			NewValue:  entry.NewValue,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}
