package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sourcehub/internal/core/ports"
	"sourcehub/internal/core/services"
	httphandlers "sourcehub/internal/handlers/http"
	backupinfra "sourcehub/internal/infrastructure/backup"
	"sourcehub/internal/infrastructure/middleware"
	"sourcehub/internal/infrastructure/monitoring"
	"sourcehub/internal/infrastructure/queue"
	repositories "sourcehub/internal/infrastructure/repositories"
	"sourcehub/internal/infrastructure/youtube"
	"sourcehub/pkg/backup"
	"sourcehub/pkg/config"
	"sourcehub/pkg/logger"
	"sourcehub/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// buildQueue wires the fetch-job queue. Redis gives cross-process delivery to
// the fetcher binary; with the in-process fallback the API runs the fetch
// worker itself on the same queue.
func buildQueue(cfg *config.Config, log *zap.SugaredLogger) (ports.FetchQueue, *redis.Client) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis disabled, using in-process fetch queue")
		return queue.NewMemoryQueue(1024), nil
	}

	client, err := queue.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, log)
	if err != nil {
		log.Warnw("failed to connect to Redis, using in-process fetch queue", "error", err)
		return queue.NewMemoryQueue(1024), nil
	}
	return queue.NewRedisQueue(client, cfg.Fetch.QueueKey), client
}

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/sourcehub/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "sourcehub-api",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	// Initialize repositories
	sourceRepo := repoFactory.CreateSourceRepository()
	videoRepo := repoFactory.CreateVideoRepository()
	accountRepo := repoFactory.CreateAccountRepository()

	// Fetch-job queue: Redis when enabled, in-process channel otherwise.
	fetchQueue, redisClient := buildQueue(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()

	// Initialize services
	notifier := services.NewLogNotifier(log)
	sessionService := services.NewSessionService(accountRepo, notifier, services.SessionConfig{
		JWTSecret:           cfg.Auth.JWTSecret,
		SessionTTL:          cfg.Auth.SessionTTL,
		ServiceAccountEmail: cfg.Auth.ServiceAccount.Email,
		ServiceAccountPass:  cfg.Auth.ServiceAccount.Password,
		DefaultRoute:        cfg.Auth.DefaultRoute,
	})
	sourceService := services.NewSourceService(sourceRepo, videoRepo, fetchQueue, notifier, prometheusCollector, log)

	// The in-process queue has no external consumer, so run the fetch worker
	// inside this binary. With Redis the fetcher binary drains the queue.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if redisClient == nil {
		feedClient := youtube.NewFeedClient(cfg.Fetch.RequestTimeout, cfg.Fetch.RetryAttempts)
		fetchService := services.NewFetchService(sourceRepo, videoRepo, fetchQueue, feedClient, prometheusCollector, log)
		go func() {
			if err := fetchService.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("in-process fetch worker stopped", "error", err)
			}
		}()
		log.Info("running in-process fetch worker")
	}

	// Scheduled catalog backups
	backupCtx, backupCancel := context.WithCancel(context.Background())
	defer backupCancel()
	if cfg.Backup.Enabled {
		storage, err := backup.NewFileStorage(cfg.Backup.Directory)
		if err != nil {
			log.Fatalw("failed to create backup storage", "error", err)
		}
		scheduler := backupinfra.NewScheduler(
			backup.NewBackupService(storage, "1.0.0"),
			sourceRepo,
			videoRepo,
			backupinfra.Config{
				Interval:      cfg.Backup.Interval,
				RetentionDays: cfg.Backup.RetentionDays,
			},
			log,
		)
		go scheduler.Start(backupCtx)
		log.Infow("scheduled backups enabled", "directory", cfg.Backup.Directory, "interval", cfg.Backup.Interval)
	}

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(sessionService, int(cfg.Auth.SessionTTL/time.Second))
	sourceHandler := httphandlers.NewSourceHandler(sourceService)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log, cfg.Auth.LoginRoute))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))

	// Setup auth routes (public)
	authHandler.SetupRoutes(router)

	// Setup source routes with session authentication
	sourceHandler.SetupRoutes(router, middleware.SessionMiddleware(sessionService))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	// Readiness endpoint checks the store and, when enabled, Redis.
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("store", func(ctx context.Context) (bool, error) {
		if err := repoFactory.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, 30*time.Second, 2*time.Second)
	if redisClient != nil {
		redisQueue := fetchQueue.(*queue.RedisQueue)
		healthChecker.AddCheck("queue", func(ctx context.Context) (bool, error) {
			if _, err := redisQueue.Depth(ctx); err != nil {
				return false, err
			}
			return true, nil
		}, 30*time.Second, 2*time.Second)
	}

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		if status.Status != "healthy" {
			c.JSON(503, status)
			return
		}
		c.JSON(200, status)
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting SourceHub API server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signals or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down SourceHub API server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		// Force close if graceful shutdown fails
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	// Flush traces
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer provider", "error", err)
	}

	// Close repository factory
	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("SourceHub API server stopped")
}
