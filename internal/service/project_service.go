package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// ProjectService implements project administration.
type ProjectService struct {
	projects   repository.ProjectRepository
	dispatcher events.Dispatcher
}

// NewProjectService wires the service.
func NewProjectService(projects repository.ProjectRepository, dispatcher events.Dispatcher) *ProjectService {
	return &ProjectService{projects: projects, dispatcher: dispatcher}
}

// ProjectInput carries project fields for create and update.
type ProjectInput struct {
	Name        string
	Description string
	Key         string
}

func (in *ProjectInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Key = strings.ToUpper(strings.TrimSpace(in.Key))
	if in.Name == "" {
		return util.NewValidationError("name is required", nil)
	}
	if in.Key == "" {
		return util.NewValidationError("key is required", nil)
	}
	return nil
}

// Create adds a project with a unique short key.
func (s *ProjectService) Create(ctx context.Context, actor *auth.Principal, in ProjectInput) (*domain.Project, error) {
	if err := auth.Require(actor, auth.PermWriteProjects); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	exists, err := s.projects.KeyExists(ctx, in.Key, "")
	if err != nil {
		return nil, util.MapError(err)
	}
	if exists {
		return nil, util.NewBusinessRuleError(util.CodeProjectKeyExists, "project key already in use", map[string]any{
			"key": in.Key,
		})
	}

	project := &domain.Project{Name: in.Name, Description: in.Description, Key: in.Key}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventProjectCreated, actor.UserID, project)
	return project, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.Project, error) {
	if err := auth.Require(actor, auth.PermReadProjects); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeProjectNotFound, "project", map[string]any{"project_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return project, nil
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context, actor *auth.Principal) ([]domain.Project, error) {
	if err := auth.Require(actor, auth.PermReadProjects); err != nil {
		return nil, err
	}
	projects, err := s.projects.List(ctx)
	return projects, util.MapError(err)
}

// Update replaces the project's fields.
func (s *ProjectService) Update(ctx context.Context, actor *auth.Principal, id string, in ProjectInput) (*domain.Project, error) {
	if err := auth.Require(actor, auth.PermWriteProjects); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeProjectNotFound, "project", map[string]any{"project_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}

	if in.Key != project.Key {
		exists, err := s.projects.KeyExists(ctx, in.Key, project.ID)
		if err != nil {
			return nil, util.MapError(err)
		}
		if exists {
			return nil, util.NewBusinessRuleError(util.CodeProjectKeyExists, "project key already in use", map[string]any{
				"key": in.Key,
			})
		}
	}

	project.Name = in.Name
	project.Description = in.Description
	project.Key = in.Key
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventProjectUpdated, actor.UserID, project)
	return project, nil
}

// Delete removes a project. Tickets pointing at it keep their rows; the
// reference is nulled by the schema.
func (s *ProjectService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermWriteProjects); err != nil {
		return err
	}
	project, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeProjectNotFound, "project", map[string]any{"project_id": id})
	}
	if err != nil {
		return util.MapError(err)
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	s.publish(ctx, events.EventProjectDeleted, actor.UserID, project)
	return nil
}

func (s *ProjectService) publish(ctx context.Context, eventType events.EventType, actorID string, project *domain.Project) {
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: map[string]any{
			"project_id": project.ID,
			"name":       project.Name,
			"key":        project.Key,
		},
	})
}
