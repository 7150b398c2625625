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

// AuthService implements registration, credential login, token rotation and
// email verification.
type AuthService struct {
	users      repository.UserRepository
	refresh    repository.RefreshTokenRepository
	tokens     *auth.TokenManager
	otp        CodeStore
	mailer     Mailer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService wires the service.
func NewAuthService(
	users repository.UserRepository,
	refresh repository.RefreshTokenRepository,
	tokens *auth.TokenManager,
	otp CodeStore,
	mailer Mailer,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		users:      users,
		refresh:    refresh,
		tokens:     tokens,
		otp:        otp,
		mailer:     mailer,
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// RegisterInput carries self-service signup fields. Signups always start as
// clients; staff roles are granted through user administration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an unverified client account and sends a verification
// code to the address.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || in.Email == "" {
		return nil, util.NewValidationError("name and email are required", nil)
	}
	if len(in.Password) < 8 {
		return nil, util.NewValidationError("password must be at least 8 characters", nil)
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
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, util.MapError(err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		s.logger.Error("failed to send verification code",
			zap.String("email", user.Email), zap.Error(err))
	}

	s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserCreated,
		ActorID:   user.ID,
		Timestamp: time.Now(),
		Payload: map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
			"role":    string(user.Role),
		},
	})
	return user, nil
}

// Login validates credentials and mints a fresh token pair. The refresh
// token replaces any previously issued one for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidCredentials, "invalid email or password")
	}
	if err != nil {
		return nil, nil, util.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidCredentials, "invalid email or password")
	}
	// Deactivated and unverified accounts fail the same way as bad
	// credentials so login does not disclose account state.
	if !user.Active || !user.EmailVerified {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidCredentials, "invalid email or password")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair. The presented token must be the live one
// for its user; rotation invalidates it.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *auth.TokenPair, error) {
	if _, err := s.tokens.ParseRefreshToken(refreshToken); err != nil {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidToken, "invalid refresh token")
	}

	stored, err := s.refresh.GetByToken(ctx, refreshToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidToken, "refresh token revoked or expired")
	}
	if err != nil {
		return nil, nil, util.MapError(err)
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, nil, util.NewUnauthorized(util.CodeInvalidToken, "refresh token user no longer exists")
	}
	if !user.Active {
		return nil, nil, util.NewForbidden("account is deactivated", nil)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the user's refresh token. Outstanding access tokens expire
// on their own.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return util.MapError(s.refresh.DeleteByUser(ctx, userID))
}

// VerifyEmail consumes the OTP and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeUserNotFound, "user", nil)
	}
	if err != nil {
		return util.MapError(err)
	}
	if user.EmailVerified {
		return util.NewBusinessRuleError(util.CodeEmailAlreadyVerified, "email already verified", nil)
	}

	ok, err := s.otp.Check(ctx, email, code)
	if err != nil {
		return util.MapError(err)
	}
	if !ok {
		return util.NewBusinessRuleError(util.CodeInvalidOTP, "invalid or expired verification code", nil)
	}

	user.EmailVerified = true
	return util.MapError(s.users.Update(ctx, user))
}

// ResendVerification issues a fresh code, replacing the outstanding one.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound(util.CodeUserNotFound, "user", nil)
	}
	if err != nil {
		return util.MapError(err)
	}
	if user.EmailVerified {
		return util.NewBusinessRuleError(util.CodeEmailAlreadyVerified, "email already verified", nil)
	}
	return util.MapError(s.sendVerification(ctx, user))
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User) error {
	code, err := s.otp.Issue(ctx, user.Email)
	if err != nil {
		return err
	}
	return s.mailer.SendVerificationCode(ctx, user.Email, user.Name, code)
}

func (s *AuthService) issuePair(ctx context.Context, user *domain.User) (*auth.TokenPair, error) {
	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, util.MapError(err)
	}
	if err := s.refresh.Save(ctx, &domain.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: pair.RefreshExpiresAt,
	}); err != nil {
		return nil, util.MapError(err)
	}
	return pair, nil
}
