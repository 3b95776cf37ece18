package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hardware-store/internal/api/http"
	"github.com/spec-kit/hardware-store/internal/api/http/handlers"
	"github.com/spec-kit/hardware-store/internal/auth"
	"github.com/spec-kit/hardware-store/internal/cache"
	"github.com/spec-kit/hardware-store/internal/config"
	"github.com/spec-kit/hardware-store/internal/events"
	"github.com/spec-kit/hardware-store/internal/observability"
	"github.com/spec-kit/hardware-store/internal/persistence"
	"github.com/spec-kit/hardware-store/internal/repository"
	"github.com/spec-kit/hardware-store/internal/service"
	"github.com/spec-kit/hardware-store/internal/worker"
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

	pool := pg.Pool

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	userCache := cache.NewRedisUserCache(redis.Client, cfg.Cache.UserTTL())
	worker.StartCacheInvalidationWorker(dispatcher, userCache, logger)

	userRepo := repository.NewUserRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)

	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:   userRepo,
		RoleRepo:   roleRepo,
		Cache:      userCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err := userService.SeedRoles(ctx); err != nil {
		logger.Fatal("failed to seed roles", zap.Error(err))
	}

	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenValiditySeconds)
	authService := service.NewAuthService(userRepo, tokenMgr)

	exempt, err := auth.NewPathMatcher(cfg.Auth.ExemptPaths)
	if err != nil {
		logger.Fatal("invalid AUTH_EXEMPT_PATHS", zap.Error(err))
	}
	gate := auth.NewGate(authService.TokenManager(), service.NewDirectory(userRepo), exempt, logger, metrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: healthHandler,
		Users:  handlers.NewUsersHandler(userService),
		Auth:   handlers.NewAuthHandler(authService),
		Gate:   gate,
	})

	logger.Info("authentication gate ready",
		zap.Strings("exempt_paths", exempt.Patterns()),
		zap.Duration("token_validity", tokenMgr.Validity()))

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
