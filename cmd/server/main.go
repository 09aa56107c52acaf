package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	crmapp "github.com/crm/backend/internal/application/crm"
	dashboardapp "github.com/crm/backend/internal/application/dashboard"
	identityapp "github.com/crm/backend/internal/application/identity"
	workapp "github.com/crm/backend/internal/application/work"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("auth_mode", cfg.Auth.Mode),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Query cache with optional cross-instance invalidation over Redis
	queries := cache.NewInMemoryQueryCache(
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithCleanupInterval(cfg.Cache.CleanupInterval),
		cache.WithLogger(log),
	)
	defer queries.Close()

	var invalidator cache.Invalidator = cache.NopInvalidator{}
	if cfg.Redis.Enabled {
		redisInvalidator, err := cache.NewRedisInvalidator(
			cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB,
			cache.WithInvalidatorChannel(cfg.Cache.Channel),
			cache.WithInvalidatorLogger(log),
		)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisInvalidator.Close()

		subCtx, cancelSub := context.WithCancel(context.Background())
		defer cancelSub()
		// Subscribe blocks in its receive loop until the context is cancelled
		go func() {
			if err := redisInvalidator.Subscribe(subCtx, queries); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Cache invalidation subscription stopped", zap.Error(err))
			}
		}()
		invalidator = redisInvalidator
		log.Info("Redis cache invalidation enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	dealRepo := persistence.NewGormDealRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	activityService := workapp.NewActivityService(activityRepo, queries, invalidator)
	eventBus.Subscribe(workapp.NewActivityRecorder(activityService))

	contactService := crmapp.NewContactService(contactRepo, queries, invalidator, eventBus)
	dealService := crmapp.NewDealService(dealRepo, queries, invalidator, eventBus)
	projectService := workapp.NewProjectService(projectRepo, queries, invalidator, eventBus)
	taskService := workapp.NewTaskService(taskRepo, queries, invalidator, eventBus)
	boardService := workapp.NewBoardService(taskRepo, queries, invalidator, eventBus)
	dashboardService := dashboardapp.NewService(contactRepo, dealRepo, projectRepo, taskRepo, activityRepo, queries)

	// Avatar object storage
	objectStore, err := storage.NewS3ObjectStore(&cfg.Storage,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
	)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := objectStore.EnsureBucket(ctx); err != nil {
			log.Warn("Could not ensure storage bucket, presigned uploads may fail", zap.Error(err))
		}
		cancel()
	}

	userService := identityapp.NewUserService(userRepo, objectStore, queries, invalidator)

	// Authentication provider
	var provider identityapp.Provider
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		jwtService := auth.NewJWTService(auth.JWTConfig{
			Secret:                 cfg.Auth.Secret,
			AccessTokenExpiration:  cfg.Auth.AccessTokenExpiration,
			RefreshTokenExpiration: cfg.Auth.RefreshTokenExpiration,
			Issuer:                 cfg.Auth.Issuer,
		})
		provider = identityapp.NewLocalProvider(userRepo, jwtService, log)
	default:
		provider = identityapp.NewStaticProvider(userRepo, log)
	}

	// HTTP engine
	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Handlers
	systemHandler := handler.NewSystemHandler(db.DB)
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(provider, userService),
		User:      handler.NewUserHandler(userService),
		Contact:   handler.NewContactHandler(contactService),
		Deal:      handler.NewDealHandler(dealService),
		Project:   handler.NewProjectHandler(projectService, taskService),
		Task:      handler.NewTaskHandler(taskService, boardService),
		Activity:  handler.NewActivityHandler(activityService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		System:    systemHandler,
	}

	// Health check outside the versioned API
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	authConfig := middleware.DefaultAuthConfig(provider, cfg.Auth.Mode == config.AuthModeLocal)
	authConfig.Logger = log
	r.Use(middleware.AuthMiddleware(authConfig))
	router.RegisterAll(r, handlers)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
