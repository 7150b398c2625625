package service

import (
	"context"
	"errors"
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

// UserService implements user administration. The account matching
// adminEmail is permanent: it cannot be deleted, deactivated, demoted or
// renamed to a different address.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	adminEmail string
	bcryptCost int
}

// NewUserService wires the service.
func NewUserService(
	users repository.UserRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	adminEmail string,
	bcryptCost int,
) *UserService {
	return &UserService{
		users:      users,
		dispatcher: dispatcher,
		logger:     logger,
		adminEmail: adminEmail,
		bcryptCost: bcryptCost,
	}
}

// CreateUserInput carries admin-initiated account creation fields.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries the mutable account fields. Nil pointers leave
// the current value in place.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
	Active   *bool
}

// Create adds an account. Only admins may mint other admins; accounts
// created this way skip email verification.
func (s *UserService) Create(ctx context.Context, actor *auth.Principal, in CreateUserInput) (*domain.User, error) {
	if err := auth.Require(actor, auth.PermWriteUsers); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return nil, util.NewValidationError("name and email are required", nil)
	}
	if len(in.Password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
	}
	if !domain.ValidRole(in.Role) {
		return nil, util.NewValidationError("unknown role", map[string]any{"role": string(in.Role)})
	}
	if in.Role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return nil, util.NewForbidden("only admins can create admin accounts", nil)
	}

	exists, err := s.users.EmailExists(ctx, in.Email, "")
	if err != nil {
		return nil, util.MapError(err)
	}
	if exists {
		return nil, util.NewBusinessRuleError(util.CodeEmailExists, "email already registered", map[string]any{
			"email": in.Email,
		})
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, util.MapError(err)
	}

	user := &domain.User{
		Name:          in.Name,
		Email:         in.Email,
		PasswordHash:  hash,
		Role:          in.Role,
		Active:        true,
		EmailVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.EventUserCreated, actor.UserID, user)
	return user, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, actor *auth.Principal, id string) (*domain.User, error) {
	if err := auth.Require(actor, auth.PermReadUsers); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeUserNotFound, "user", map[string]any{"user_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return user, nil
}

// List returns all accounts.
func (s *UserService) List(ctx context.Context, actor *auth.Principal) ([]domain.User, error) {
	if err := auth.Require(actor, auth.PermReadUsers); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	return users, util.MapError(err)
}

// Update applies the changed fields. The permanent admin account rejects
// email changes, role changes and deactivation outright.
func (s *UserService) Update(ctx context.Context, actor *auth.Principal, id string, in UpdateUserInput) (*domain.User, error) {
	if err := auth.Require(actor, auth.PermWriteUsers); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound(util.CodeUserNotFound, "user", map[string]any{"user_id": id})
	}
	if err != nil {
		return nil, util.MapError(err)
	}

	permanent := user.Email == s.adminEmail
	if permanent {
		if in.Email != nil && strings.ToLower(strings.TrimSpace(*in.Email)) != user.Email {
			return nil, util.NewBusinessRuleError(util.CodePermanentAdmin, "cannot change the permanent admin email", nil)
		}
		if in.Role != nil && *in.Role != domain.RoleAdmin {
			return nil, util.NewBusinessRuleError(util.CodePermanentAdmin, "cannot demote the permanent admin", nil)
		}
		if in.Active != nil && !*in.Active {
			return nil, util.NewBusinessRuleError(util.CodePermanentAdmin, "cannot deactivate the permanent admin", nil)
		}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, util.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			exists, err := s.users.EmailExists(ctx, email, user.ID)
			if err != nil {
				return nil, util.MapError(err)
			}
			if exists {
				return nil, util.NewBusinessRuleError(util.CodeEmailExists, "email already registered", map[string]any{
					"email": email,
				})
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, util.NewValidationError("password must be at least 8 characters", nil)
		}
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, util.MapError(err)
		}
		user.PasswordHash = hash
	}
	if in.Role != nil {
		if !domain.ValidRole(*in.Role) {
			return nil, util.NewValidationError("unknown role", map[string]any{"role": string(*in.Role)})
		}
		if *in.Role == domain.RoleAdmin && user.Role != domain.RoleAdmin && actor.Role != domain.RoleAdmin {
			return nil, util.NewForbidden("only admins can grant the admin role", nil)
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.MapError(err)
	}
	s.publish(ctx, events.EventUserUpdated, actor.UserID, user)
	return user, nil
}

// Delete removes an account. The permanent admin cannot be deleted, and
// callers cannot delete themselves.
func (s *UserService) Delete(ctx context.Context, actor *auth.Principal, id string) error {
	if err := auth.Require(actor, auth.PermWriteUsers); err != nil {
		return err
	}
	if actor.UserID == id {
		return util.NewBusinessRuleError(util.CodeValidationError, "cannot delete your own account", nil)
	}
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeUserNotFound, "user", map[string]any{"user_id": id})
	}
	if err != nil {
		return util.MapError(err)
	}
	if user.Email == s.adminEmail {
		return util.NewBusinessRuleError(util.CodePermanentAdmin, "cannot delete the permanent admin", nil)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return util.MapError(err)
	}
	s.publish(ctx, events.EventUserDeleted, actor.UserID, user)
	return nil
}

func (s *UserService) publish(ctx context.Context, eventType events.EventType, actorID string, user *domain.User) {
	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    string(user.Role),
		},
	})
}
