package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/ticketflow/backend/internal/api/http"
	"github.com/ticketflow/backend/internal/api/http/handlers"
	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/config"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/observability"
	"github.com/ticketflow/backend/internal/persistence"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/internal/service"
	"github.com/ticketflow/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer db.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, db.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	cache := persistence.NewRedis(cfg.Redis, logger)
	defer cache.Close()

	pool := db.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool, cfg.Ticket.KeyPrefix, cfg.Ticket.KeyBase)
	historyRepo := repository.NewTicketHistoryRepository(pool)
	refreshRepo := repository.NewRefreshTokenRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	workflowRepo := repository.NewWorkflowRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)

	if err := service.EnsureAdmin(ctx, userRepo, cfg.Auth, logger); err != nil {
		logger.Fatal("admin seed failed", zap.Error(err))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.Auth.RefreshTokenTTLDays)
	dispatcher := events.NewInMemoryDispatcher(logger)
	otp := service.NewOTPStore(cache.Client, cfg.Auth.OTPTTL())
	mailer := service.NewMailer(cfg.SMTP, logger)

	authService := service.NewAuthService(userRepo, refreshRepo, tokens, otp, mailer, dispatcher, logger, cfg.Auth.BcryptCost)
	userService := service.NewUserService(userRepo, dispatcher, logger, cfg.Auth.AdminEmail, cfg.Auth.BcryptCost)
	ticketService := service.NewTicketService(ticketRepo, historyRepo, userRepo, projectRepo, dispatcher, logger)
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketService)
	projectService := service.NewProjectService(projectRepo, dispatcher)
	workflowService := service.NewWorkflowService(workflowRepo, logger)
	reportService := service.NewReportService(ticketRepo)
	notificationService := service.NewNotificationService(logger)

	worker.RegisterListeners(dispatcher, workflowService, notificationService, logger)

	authMW := auth.NewMiddleware(tokens, userRepo)
	app := apihttp.NewApp(cfg.App, logger, authMW, apihttp.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Users:       handlers.NewUserHandler(userService),
		Tickets:     handlers.NewTicketHandler(ticketService, attachmentService),
		Projects:    handlers.NewProjectHandler(projectService),
		Workflows:   handlers.NewWorkflowHandler(workflowService),
		Reports:     handlers.NewReportHandler(reportService),
		Departments: handlers.NewDepartmentHandler(departmentRepo),
		Health:      handlers.NewHealthHandler(db, cache, cfg.App.Version),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", cfg.App.Addr()))

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
