package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// TicketService implements the ticket lifecycle: creation with key
// allocation, diff-based updates guarded by the status transition table,
// ownership-scoped reads, and the audit trail.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	users      repository.UserRepository
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTicketService wires the service.
func NewTicketService(
	tickets repository.TicketRepository,
	history repository.TicketHistoryRepository,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:    tickets,
		history:    history,
		users:      users,
		projects:   projects,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateTicketInput carries ticket creation fields. Status is not accepted:
// every ticket starts open.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Department  string
	ProjectID   *string
	AssigneeIDs []string
}

// UpdateTicketInput carries the mutable ticket fields. Nil pointers leave
// the current value in place; a non-nil empty assignee slice clears the set.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Department  *string
	ProjectID   *string
	AssigneeIDs *[]string
}

// ListTicketsInput carries list filters before ownership scoping.
type ListTicketsInput struct {
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Department *string
	AssigneeID *string
	ProjectID  *string
	Limit      int
	Offset     int
}

// Create validates the input, allocates the next key and records the
// creation in the audit trail, all in one transaction.
func (s *TicketService) Create(ctx context.Context, actor *auth.Principal, in CreateTicketInput) (*domain.Ticket, error) {
	if err := auth.Require(actor, auth.PermWriteTickets); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, util.NewValidationError("title is required", nil)
	}
	if in.Priority == "" {
		in.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(in.Priority) {
		return nil, util.NewValidationError("unknown priority", map[string]any{"priority": string(in.Priority)})
	}
	in.Department = strings.TrimSpace(in.Department)
	if in.Department == "" {
		return nil, util.NewValidationError("department is required", nil)
	}
	if err := s.validateAssignees(ctx, in.AssigneeIDs); err != nil {
		return nil, err
	}
	if err := s.validateProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    in.Priority,
		Department:  in.Department,
		ReporterID:  actor.UserID,
		ProjectID:   in.ProjectID,
		AssigneeIDs: normalizeIDs(in.AssigneeIDs),
	}

	initial := string(domain.TicketStatusOpen)
	created := &domain.TicketHistory{
		UserID:   actor.UserID,
		Action:   domain.HistoryActionCreated,
		NewValue: &initial,
	}
	if err := s.tickets.Create(ctx, ticket, created); err != nil {
		return nil, util.MapError(err)
	}

	s.publishTicket(ctx, events.EventTicketCreated, actor.UserID, ticket)
	if len(ticket.AssigneeIDs) > 0 {
		s.publishTicket(ctx, events.EventTicketAssigned, actor.UserID, ticket)
	}
	return ticket, nil
}

// Get returns a ticket by id, enforcing per-ticket ownership.
func (s *TicketService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.Ticket, error) {
	if err := auth.Require(actor, auth.PermReadTickets); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// GetByKey returns a ticket by its human-readable key.
func (s *TicketService) GetByKey(ctx context.Context, actor *auth.Principal, key string) (*domain.Ticket, error) {
	if err := auth.Require(actor, auth.PermReadTickets); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByKey(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeTicketNotFound, "ticket", map[string]any{"key": key})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := auth.CanAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns tickets matching the filter, pre-narrowed to the caller's
// ownership scope. Restricted callers get a filtered list, never an error.
func (s *TicketService) List(ctx context.Context, actor *auth.Principal, in ListTicketsInput) ([]domain.Ticket, error) {
	if err := auth.Require(actor, auth.PermReadTickets); err != nil {
		return nil, err
	}
	filter := repository.TicketFilter{
		Status:     in.Status,
		Priority:   in.Priority,
		Department: in.Department,
		AssigneeID: in.AssigneeID,
		ProjectID:  in.ProjectID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	scope := auth.ScopeForPrincipal(actor)
	if scope.ReporterID != "" {
		filter.ReporterID = &scope.ReporterID
	}
	if scope.AccessUserID != "" {
		filter.AccessUserID = &scope.AccessUserID
	}
	tickets, err := s.tickets.List(ctx, filter)
	return tickets, util.MapError(err)
}

// Update applies the changed fields. Each change appends one history entry;
// status changes must follow the transition table. Nothing is persisted if
// any part of the update is rejected.
func (s *TicketService) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateTicketInput) (*domain.Ticket, error) {
	if err := auth.Require(actor, auth.PermWriteTickets); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccessTicket(actor, ticket); err != nil {
		return nil, err
	}

	var entries []domain.TicketHistory
	record := func(field, oldVal, newVal string) {
		entries = append(entries, domain.TicketHistory{
			TicketID: ticket.ID,
			UserID:   actor.UserID,
			Action:   "updated_" + field,
			OldValue: strPtr(oldVal),
			NewValue: strPtr(newVal),
		})
	}

	statusChanged := false
	assigneesChanged := false

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, util.NewValidationError("title cannot be empty", nil)
		}
		if title != ticket.Title {
			record("title", ticket.Title, title)
			ticket.Title = title
		}
	}
	if in.Description != nil && *in.Description != ticket.Description {
		record("description", ticket.Description, *in.Description)
		ticket.Description = *in.Description
	}
	if in.Status != nil && *in.Status != ticket.Status {
		if !domain.CanTransition(ticket.Status, *in.Status) {
			return nil, util.NewBusinessRuleError(util.CodeInvalidStatusTransition,
				"status transition not allowed", map[string]any{
					"from":    string(ticket.Status),
					"to":      string(*in.Status),
					"allowed": domain.AllowedTransitions(ticket.Status),
				})
		}
		record("status", string(ticket.Status), string(*in.Status))
		ticket.Status = *in.Status
		statusChanged = true
	}
	if in.Priority != nil && *in.Priority != ticket.Priority {
		if !domain.ValidPriority(*in.Priority) {
			return nil, util.NewValidationError("unknown priority", map[string]any{"priority": string(*in.Priority)})
		}
		record("priority", string(ticket.Priority), string(*in.Priority))
		ticket.Priority = *in.Priority
	}
	if in.Department != nil {
		dept := strings.TrimSpace(*in.Department)
		if dept == "" {
			return nil, util.NewValidationError("department cannot be empty", nil)
		}
		if dept != ticket.Department {
			record("department", ticket.Department, dept)
			ticket.Department = dept
		}
	}
	if in.ProjectID != nil {
		current := ""
		if ticket.ProjectID != nil {
			current = *ticket.ProjectID
		}
		next := strings.TrimSpace(*in.ProjectID)
		if next != current {
			if next == "" {
				record("project", current, "")
				ticket.ProjectID = nil
			} else {
				if err := s.validateProject(ctx, &next); err != nil {
					return nil, err
				}
				record("project", current, next)
				ticket.ProjectID = &next
			}
		}
	}
	if in.AssigneeIDs != nil {
		next := normalizeIDs(*in.AssigneeIDs)
		current := normalizeIDs(ticket.AssigneeIDs)
		if joinIDs(next) != joinIDs(current) {
			if err := s.validateAssignees(ctx, next); err != nil {
				return nil, err
			}
			record("assignees", joinIDs(current), joinIDs(next))
			ticket.AssigneeIDs = next
			assigneesChanged = true
		}
	}

	if len(entries) == 0 {
		return ticket, nil
	}

	if err := s.tickets.Update(ctx, ticket, entries); err != nil {
		return nil, util.MapError(err)
	}

	s.publishTicket(ctx, events.EventTicketUpdated, actor.UserID, ticket)
	if statusChanged {
		s.publishTicket(ctx, events.EventTicketStatusChanged, actor.UserID, ticket)
	}
	if assigneesChanged {
		s.publishTicket(ctx, events.EventTicketAssigned, actor.UserID, ticket)
	}
	return ticket, nil
}

// Delete removes a ticket and, by cascade, its history and assignee rows.
func (s *TicketService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermWriteTickets); err != nil {
		return err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanAccessTicket(actor, ticket); err != nil {
		return err
	}
	return util.MapError(s.tickets.Delete(ctx, id))
}

// History returns the audit trail in chronological order.
func (s *TicketService) History(ctx context.Context, actor *auth.Principal, id string, limit, offset int) ([]domain.TicketHistory, error) {
	if err := auth.Require(actor, auth.PermReadTickets); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanAccessTicket(actor, ticket); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByTicket(ctx, id, limit, offset)
	return entries, util.MapError(err)
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeTicketNotFound, "ticket", map[string]any{"ticket_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) validateAssignees(ctx context.Context, ids []string) error {
	ids = normalizeIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	ok, err := s.users.AllExist(ctx, ids)
	if err != nil {
		return util.MapError(err)
	}
	if !ok {
		return util.NewBusinessRuleError(util.CodeInvalidAssignee,
			"one or more assignees do not exist", map[string]any{"assignee_ids": ids})
	}
	return nil
}

func (s *TicketService) validateProject(ctx context.Context, projectID *string) error {
	if projectID == nil || *projectID == "" {
		return nil
	}
	_, err := s.projects.GetByID(ctx, *projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeProjectNotFound, "project", map[string]any{"project_id": *projectID})
	}
	return util.MapError(err)
}

func (s *TicketService) publishTicket(ctx context.Context, eventType events.EventType, actorID string, ticket *domain.Ticket) {
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: map[string]any{
			"ticket_id":   ticket.ID,
			"key":         ticket.Key,
			"title":       ticket.Title,
			"status":      string(ticket.Status),
			"priority":    string(ticket.Priority),
			"department":  ticket.Department,
			"reporter_id": ticket.ReporterID,
			"assignees":   joinIDs(ticket.AssigneeIDs),
		},
	})
}

// normalizeIDs dedupes, drops blanks and sorts so assignee sets compare and
// serialize deterministically.
func normalizeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ",")
}

func strPtr(s string) *string {
	return &s
}
