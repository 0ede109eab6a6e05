package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"sourcehub/internal/core/ports"
	"sourcehub/internal/core/services"
	"sourcehub/internal/infrastructure/monitoring"
	"sourcehub/internal/infrastructure/queue"
	repositories "sourcehub/internal/infrastructure/repositories"
	"sourcehub/internal/infrastructure/youtube"
	"sourcehub/pkg/config"
	"sourcehub/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
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
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	sourceRepo := repoFactory.CreateSourceRepository()
	videoRepo := repoFactory.CreateVideoRepository()

	fetchQueue, redisClient := buildQueue(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	feedClient := youtube.NewFeedClient(cfg.Fetch.RequestTimeout, cfg.Fetch.RetryAttempts)
	collector := monitoring.NewPrometheusCollector()

	fetchService := services.NewFetchService(sourceRepo, videoRepo, fetchQueue, feedClient, collector, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting SourceHub fetch worker")

	if err := fetchService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorw("fetch worker stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("SourceHub fetch worker stopped")
}

// buildQueue wires the fetch-job queue. The worker is only useful with a
// shared Redis queue; the in-process fallback exists so the binary still runs
// in single-process setups and tests.
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
