package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/campus-kit/helpdesk-service/internal/api/http"
	"github.com/campus-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/campus-kit/helpdesk-service/internal/auth"
	"github.com/campus-kit/helpdesk-service/internal/cache"
	"github.com/campus-kit/helpdesk-service/internal/config"
	"github.com/campus-kit/helpdesk-service/internal/events"
	"github.com/campus-kit/helpdesk-service/internal/observability"
	"github.com/campus-kit/helpdesk-service/internal/persistence"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	"github.com/campus-kit/helpdesk-service/internal/service"
	"github.com/campus-kit/helpdesk-service/internal/worker"
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
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := postgres.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	sequenceRepo := repository.NewSequenceRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	analyticsCache := cache.NewAnalyticsCache(redis.Client, cfg.Analytics.CacheTTL(), logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		AdminRepo:         adminRepo,
		PasswordResetRepo: resetRepo,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		CommentRepo:  commentRepo,
		HistoryRepo:  historyRepo,
		SequenceRepo: sequenceRepo,
		AdminRepo:    adminRepo,
		Dispatcher:   dispatcher,
		Analytics:    analyticsCache,
	})
	analyticsService := service.NewAnalyticsService(ticketRepo, analyticsCache)
	reportService := service.NewReportService(cfg.Report, ticketRepo)
	adminService := service.NewAdminService(*cfg, adminRepo)
	notificationService := service.NewNotificationService(cfg.Notification, logger)

	notificationWorker := worker.StartNotificationWorker(dispatcher, notificationService, logger)
	defer notificationWorker.Stop()

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, adminRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httpapi.RegisterMiddlewares(app, cfg, logger, metrics)
	httpapi.RegisterRoutes(app, httpapi.RouterDependencies{
		AuthMiddleware: authMiddleware,
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, analyticsService, reportService),
		Admins:         handlers.NewAdminsHandler(adminService),
		Health:         handlers.NewHealthHandler(cfg.App.Version, postgres, redis),
	})

	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
