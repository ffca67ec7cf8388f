package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/estatehub/property-moderation/internal/api/http"
	"github.com/estatehub/property-moderation/internal/api/http/handlers"
	"github.com/estatehub/property-moderation/internal/auth"
	"github.com/estatehub/property-moderation/internal/config"
	"github.com/estatehub/property-moderation/internal/events"
	"github.com/estatehub/property-moderation/internal/observability"
	"github.com/estatehub/property-moderation/internal/persistence"
	"github.com/estatehub/property-moderation/internal/repository"
	"github.com/estatehub/property-moderation/internal/service"
	"github.com/estatehub/property-moderation/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo     repository.UserRepository
		propertyRepo repository.PropertyRepository
		storePinger  handlers.Pinger
	)
	if pg.Enabled() {
		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		propertyRepo = repository.NewPropertyRepository(pool)
		storePinger = pg
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		propertyRepo = store.Properties()
	}

	metrics := observability.NewMetrics(strings.ReplaceAll(cfg.App.Name, "-", "_"))
	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	worker.StartMetricsWorker(dispatcher, metrics)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: userRepo,
		Logger:   logger,
	})
	moderationService := service.NewModerationService(service.ModerationDependencies{
		UserRepo:     userRepo,
		PropertyRepo: propertyRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		PropertyRepo: propertyRepo,
		UserRepo:     userRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Pagination:   cfg.Pagination,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:     userRepo,
		PropertyRepo: propertyRepo,
		Logger:       logger,
		Pagination:   cfg.Pagination,
	})
	statsService := service.NewStatsService(service.StatsDependencies{
		UserRepo:     userRepo,
		PropertyRepo: propertyRepo,
		Logger:       logger,
	})

	if _, err := authService.BootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, storePinger, redis),
		Auth:   handlers.NewAuthHandler(authService),
		Admin: handlers.NewAdminHandler(handlers.AdminDependencies{
			Moderation:  moderationService,
			Assignments: assignmentService,
			Stats:       statsService,
			Directory:   directoryService,
			Auth:        authService,
		}),
		Properties:     handlers.NewPropertyHandler(moderationService, directoryService, assignmentService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	notificationService.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
