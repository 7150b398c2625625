package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// triggerEvents maps rule triggers to the events that fire them.
var triggerEvents = map[domain.WorkflowTrigger]events.EventType{
	domain.TriggerTicketCreated: events.EventTicketCreated,
	domain.TriggerTicketUpdated: events.EventTicketUpdated,
	domain.TriggerStatusChanged: events.EventTicketStatusChanged,
}

// WorkflowService manages automation rules and evaluates them against
// published ticket events.
type WorkflowService struct {
	workflows repository.WorkflowRepository
	logger    *zap.Logger
}

// NewWorkflowService wires the service.
func NewWorkflowService(workflows repository.WorkflowRepository, logger *zap.Logger) *WorkflowService {
	return &WorkflowService{workflows: workflows, logger: logger}
}

// Register subscribes the evaluation handler for every trigger's event.
func (s *WorkflowService) Register(dispatcher events.Dispatcher) {
	for trigger, eventType := range triggerEvents {
		trigger := trigger
		dispatcher.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			return s.evaluate(ctx, trigger, event)
		})
	}
}

// WorkflowInput carries rule fields for create and update.
type WorkflowInput struct {
	Name        string
	Description string
	Trigger     domain.WorkflowTrigger
	Conditions  map[string]any
	Actions     map[string]any
	Active      bool
}

func (in *WorkflowInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return util.NewValidationError("name is required", nil)
	}
	if !domain.ValidTrigger(in.Trigger) {
		return util.NewValidationError("unknown trigger", map[string]any{"trigger": string(in.Trigger)})
	}
	if len(in.Actions) == 0 {
		return util.NewValidationError("at least one action is required", nil)
	}
	return nil
}

// Create adds a rule.
func (s *WorkflowService) Create(ctx context.Context, actor *auth.Principal, in WorkflowInput) (*domain.WorkflowRule, error) {
	if err := auth.Require(actor, auth.PermWriteWorkflows); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	rule := &domain.WorkflowRule{
		Name:        in.Name,
		Description: in.Description,
		Trigger:     in.Trigger,
		Conditions:  in.Conditions,
		Actions:     in.Actions,
		Active:      in.Active,
	}
	if err := s.workflows.Create(ctx, rule); err != nil {
		return nil, util.MapError(err)
	}
	return rule, nil
}

// Get returns one rule.
func (s *WorkflowService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.WorkflowRule, error) {
	if err := auth.Require(actor, auth.PermReadWorkflows); err != nil {
		return nil, err
	}
	rule, err := s.workflows.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeWorkflowNotFound, "workflow rule", map[string]any{"workflow_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return rule, nil
}

// List returns all rules.
func (s *WorkflowService) List(ctx context.Context, actor *auth.Principal) ([]domain.WorkflowRule, error) {
	if err := auth.Require(actor, auth.PermReadWorkflows); err != nil {
		return nil, err
	}
	rules, err := s.workflows.List(ctx)
	return rules, util.MapError(err)
}

// Update replaces a rule's definition.
func (s *WorkflowService) Update(ctx context.Context, actor *auth.Principal, id string, in WorkflowInput) (*domain.WorkflowRule, error) {
	if err := auth.Require(actor, auth.PermWriteWorkflows); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	rule, err := s.workflows.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeWorkflowNotFound, "workflow rule", map[string]any{"workflow_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}

	rule.Name = in.Name
	rule.Description = in.Description
	rule.Trigger = in.Trigger
	rule.Conditions = in.Conditions
	rule.Actions = in.Actions
	rule.Active = in.Active
	if err := s.workflows.Update(ctx, rule); err != nil {
		return nil, util.MapError(err)
	}
	return rule, nil
}

// Delete removes a rule.
func (s *WorkflowService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermWriteWorkflows); err != nil {
		return err
	}
	err := s.workflows.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeWorkflowNotFound, "workflow rule", map[string]any{"workflow_id": id})
	}
	return util.MapError(err)
}

// evaluate runs every active rule for the trigger against the event.
func (s *WorkflowService) evaluate(ctx context.Context, trigger domain.WorkflowTrigger, event events.Event) error {
	rules, err := s.workflows.ListActiveByTrigger(ctx, trigger)
	if err != nil {
		return fmt.Errorf("load workflow rules: %w", err)
	}
	for _, rule := range rules {
		if !conditionsMatch(rule.Conditions, event.Payload) {
			continue
		}
		s.execute(rule, event)
	}
	return nil
}

// conditionsMatch requires every condition key to equal the payload value.
// Values compare via their string form so JSON numbers and plain strings
// match intuitively. An empty condition set matches everything.
func conditionsMatch(conditions, payload map[string]any) bool {
	for key, want := range conditions {
		got, ok := payload[key]
		if !ok {
			return false
		}
		if fmt.Sprint(want) != fmt.Sprint(got) {
			return false
		}
	}
	return true
}

// execute records each action. Delivery integrations (email, webhooks) hang
// off the notification listeners; here actions are logged for the audit log.
func (s *WorkflowService) execute(rule domain.WorkflowRule, event events.Event) {
	for action, arg := range rule.Actions {
		s.logger.Info("workflow action triggered",
			zap.String("rule", rule.Name),
			zap.String("rule_id", rule.ID),
			zap.String("action", action),
			zap.Any("argument", arg),
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
}
