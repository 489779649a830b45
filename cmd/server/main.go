package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillswap/internal/config"
	handlers "skillswap/internal/handlers/shared"
	"skillswap/internal/middleware"
	"skillswap/internal/repositories/mongodb"
	"skillswap/internal/services"
	"skillswap/pkg/cache"
	"skillswap/pkg/database"
	"skillswap/pkg/logger"
	"skillswap/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.App.LogLevel),
		Format:  cfg.App.LogFormat,
		Output:  cfg.App.LogOutput,
		Caller:  cfg.App.Debug,
		Colors:  cfg.App.Debug && cfg.App.LogFormat == "text",
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongo, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer mongo.Close()

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(mongo.Database, log).Up(ctx); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisCache.Close()

	var locker services.Locker
	switch cfg.Swap.LockDriver {
	case config.LockDriverRedis:
		locker = services.NewRedisLocker(redisCache, cfg.Swap.LockTTL, cfg.Swap.LockWait, log)
	default:
		locker = services.NewLocalLocker(cfg.Swap.LockWait)
	}

	// Repositories
	swapRepo := mongodb.NewSwapRepository(mongo.Database)
	userRepo := mongodb.NewUserRepository(mongo.Database, redisCache)
	auditRepo := mongodb.NewAuditLogRepository(mongo.Database)

	// Services
	moderationService := services.NewModerationService(userRepo, auditRepo, log)
	ratingService := services.NewRatingService(swapRepo, userRepo, locker, redisCache, cfg.Swap, log)
	swapService := services.NewSwapService(swapRepo, userRepo, moderationService, ratingService, locker, cfg.Swap, log)
	analyticsService := services.NewAnalyticsService(swapRepo, userRepo, moderationService, log)

	// Handlers
	swapHandler := handlers.NewSwapHandler(swapService, ratingService)
	adminHandler := handlers.NewAdminHandler(swapService, ratingService, moderationService, analyticsService)
	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"mongodb": mongo,
		"redis":   redisCache,
	})

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	v1 := router.Group("/api/v1")
	{
		rateLimit := middleware.RateLimitMiddleware(cfg.Security.RateLimitPerMinute, cfg.Security.RateLimitBurst, log)
		routes.SetupSwapRoutes(v1, swapHandler, cfg.Security.JWTSecret, rateLimit)
		routes.SetupAdminRoutes(v1, adminHandler, swapHandler, moderationService, cfg.Security.JWTSecret)
	}

	router.GET("/health", healthHandler.Health)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        server.Addr,
			"lock_driver": cfg.Swap.LockDriver,
			"environment": cfg.App.Environment,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
