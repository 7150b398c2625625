package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/config"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/repository"
)

// EnsureAdmin creates the permanent admin account if it does not exist.
// Without a configured seed password nothing is created, so a fresh install
// cannot silently ship a guessable default credential.
func EnsureAdmin(ctx context.Context, users repository.UserRepository, cfg config.AuthConfig, logger *zap.Logger) error {
	if !cfg.SeedAdminOnMigration || cfg.AdminEmail == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if cfg.SeedAdminPassword == "" {
		logger.Warn("admin account missing and no seed password configured",
			zap.String("email", cfg.AdminEmail))
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	admin := &domain.User{
		Name:          "Administrator",
		Email:         cfg.AdminEmail,
		PasswordHash:  hash,
		Role:          domain.RoleAdmin,
		Active:        true,
		EmailVerified: true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	logger.Info("seeded admin account", zap.String("email", cfg.AdminEmail))
	return nil
}
