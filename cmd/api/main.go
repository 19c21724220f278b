package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/enquirydesk/enquiry-service/internal/api/http"
	"github.com/enquirydesk/enquiry-service/internal/api/http/handlers"
	"github.com/enquirydesk/enquiry-service/internal/auth"
	"github.com/enquirydesk/enquiry-service/internal/cache"
	"github.com/enquirydesk/enquiry-service/internal/config"
	"github.com/enquirydesk/enquiry-service/internal/events"
	"github.com/enquirydesk/enquiry-service/internal/observability"
	"github.com/enquirydesk/enquiry-service/internal/persistence"
	"github.com/enquirydesk/enquiry-service/internal/repository"
	"github.com/enquirydesk/enquiry-service/internal/service"
	"github.com/enquirydesk/enquiry-service/internal/worker"
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(pg.Pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		userRepo    repository.UserRepository
		enquiryRepo repository.EnquiryRepository
	)
	if pg.Enabled() {
		userRepo = repository.NewUserRepository(pg.Pool)
		enquiryRepo = repository.NewEnquiryRepository(pg.Pool)
	} else {
		store := repository.NewMemoryStore()
		userRepo = store.Users()
		enquiryRepo = store.Enquiries()
	}

	dispatcher := events.NewInMemoryDispatcher()
	var forwarder service.EventForwarder
	if cfg.Events.AMQPURL != "" {
		publisher, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			logger.Fatal("failed to connect event broker", zap.Error(err))
		}
		defer publisher.Close() //nolint:errcheck
		forwarder = publisher
		logger.Info("forwarding events", zap.String("exchange", cfg.Events.Exchange))
	}
	worker.StartAuditWorker(service.NewAuditService(dispatcher, forwarder, logger))

	userCache := cache.NewRedis(redis.Client, cfg.App.Name+":")
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	authService, err := service.NewAuthService(service.AuthDependencies{
		UserRepo:     userRepo,
		TokenManager: tokens,
		Cache:        userCache,
		BcryptCost:   cfg.Auth.BcryptCost,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Cache:      userCache,
		CacheTTL:   cfg.Redis.CacheTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	enquiryService := service.NewEnquiryService(service.EnquiryDependencies{
		EnquiryRepo: enquiryRepo,
		UserRepo:    userRepo,
		Lifecycle:   service.UnconstrainedLifecycle{},
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	if cfg.Bootstrap.Enabled() {
		created, err := userService.EnsureAdmin(ctx, cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword)
		if err != nil {
			logger.Fatal("failed to bootstrap admin", zap.Error(err))
		}
		logger.Info("admin bootstrap", zap.String("email", cfg.Bootstrap.AdminEmail), zap.Bool("created", created))
	}

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		RequestTimeout: cfg.App.RequestTimeout(),
		Logger:         logger,
		Metrics:        metrics,
	}, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:              handlers.NewAuthHandler(authService),
		Enquiries:         handlers.NewEnquiriesHandler(enquiryService),
		Users:             handlers.NewUsersHandler(userService),
		AuthMiddleware:    auth.NewAuthMiddleware(tokens),
		CredentialLimiter: httptransport.RateLimitByIP(cfg.RateLimit, logger),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
