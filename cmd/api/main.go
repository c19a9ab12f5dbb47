package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/gasworks/servicedesk/internal/api/http"
	"github.com/gasworks/servicedesk/internal/api/http/handlers"
	"github.com/gasworks/servicedesk/internal/auth"
	"github.com/gasworks/servicedesk/internal/blob"
	"github.com/gasworks/servicedesk/internal/config"
	"github.com/gasworks/servicedesk/internal/events"
	"github.com/gasworks/servicedesk/internal/observability"
	"github.com/gasworks/servicedesk/internal/persistence"
	"github.com/gasworks/servicedesk/internal/repository"
	"github.com/gasworks/servicedesk/internal/service"
	"github.com/gasworks/servicedesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	blobStore, err := blob.NewFSStore(cfg.Blob.RootDir)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	updateRepo := repository.NewStatusUpdateRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	typeRepo := repository.NewServiceTypeRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		ProfileRepo:       profileRepo,
		PasswordResetRepo: resetRepo,
	})
	attachmentService := service.NewAttachmentService(requestRepo, attachmentRepo, blobStore, dispatcher)
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:      requestRepo,
		StatusUpdateRepo: updateRepo,
		ServiceTypeRepo:  typeRepo,
		Attachments:      attachmentService,
		Dispatcher:       dispatcher,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		RequestRepo:      requestRepo,
		StatusUpdateRepo: updateRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
	})
	queueService := service.NewQueueService(requestRepo, userRepo)
	typeService := service.NewServiceTypeService(typeRepo, redis, cfg.Redis.CacheTTL())

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService, attachmentService),
		Support:        handlers.NewSupportHandler(requestService, lifecycleService, queueService),
		ServiceTypes:   handlers.NewServiceTypesHandler(typeService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
