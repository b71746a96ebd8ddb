// Package main is the entry point for the engagement-score-service API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"engagement-score-service/internal/app/service"
	"engagement-score-service/internal/config"
	"engagement-score-service/internal/domain"
	rediscache "engagement-score-service/internal/infra/redis"
	"engagement-score-service/internal/logger"
	"engagement-score-service/internal/metrics"
	"engagement-score-service/internal/transport/httpserver"
	"engagement-score-service/internal/transport/httpserver/middleware"
	"engagement-score-service/internal/validator"
)

func main() {
	cfg, err := config.Load(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:   cfg.Logger.Level,
			Format:  cfg.Logger.Format,
			Output:  cfg.Logger.Output,
			Service: cfg.App.Name,
			Env:     cfg.App.Env,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting engagement-score-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// Result cache (optional). Redis is only dialed when caching is enabled.
	var (
		cache     domain.Cache
		readiness []middleware.ReadinessFunc
	)
	if cfg.Cache.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to Redis", zap.Error(err))
		}

		redisCache := rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		cache = redisCache
		readiness = append(readiness, redisCache.Ping)

		log.Info("cache enabled",
			zap.String("redis", cfg.Redis.Addr()),
			zap.Duration("ttl", cfg.Cache.TTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("cache disabled")
	}

	// Metrics (optional)
	var (
		collector *metrics.Collector
		recorder  service.Recorder
	)
	if cfg.Metrics.Enabled {
		collector = metrics.New(cfg.Metrics.Namespace)
		recorder = collector
		log.Info("metrics enabled", zap.String("path", cfg.Metrics.Path))
	}

	scoreSvc := service.NewScoreService(cache, cfg.Cache.TTL, recorder, log.Logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:         cfg.App.Port,
			BodyLimit:    1024 * 1024, // 1MB
			Debug:        cfg.App.Debug,
			TemplatesDir: cfg.App.TemplatesDir,
			MaxBatchSize: cfg.App.MaxBatchSize,
			MetricsPath:  cfg.Metrics.Path,
		},
		scoreSvc,
		validator.New(),
		collector,
		log.Logger,
		readiness...,
	)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.App.ShutdownWithContext(ctx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
