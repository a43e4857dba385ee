// Package main is the entry point for the content-scoring-service API.
package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/config"
	"content-scoring-service/internal/domain"
	"content-scoring-service/internal/infra/postgres"
	"content-scoring-service/internal/infra/postgres/migrations"
	rediscache "content-scoring-service/internal/infra/redis"
	"content-scoring-service/internal/infra/searchindex"
	"content-scoring-service/internal/job"
	"content-scoring-service/internal/logger"
	"content-scoring-service/internal/transport/httpserver"
	"content-scoring-service/internal/transport/httpserver/middleware"
	"content-scoring-service/internal/validator"
	"content-scoring-service/pkg/locker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(
		logger.Config{
			Level:  cfg.Logger.Level,
			Format: cfg.Logger.Format,
			Output: cfg.Logger.Output,
		},
		logger.SentryConfig{
			Enabled:     cfg.Sentry.Enabled,
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			SampleRate:  cfg.Sentry.SampleRate,
			Release:     cfg.App.Name,
		},
	)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting content-scoring-service",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, cfg.Database.Postgres(), log.Logger)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = postgres.Close(db) }()

	if err := migrations.Run(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	log.Info("database migrations completed")

	store := postgres.NewStore(db)

	redisClient, err := rediscache.NewClient(ctx, cfg.Redis.Client())
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Client().Addr()))

	probes := []middleware.Probe{
		{Name: "postgres", Check: func(ctx context.Context) error { return postgres.HealthCheck(ctx, db) }},
	}

	// Left as a nil interface when disabled so services skip caching.
	var cache domain.Cache
	if cfg.Cache.Enabled {
		redisCache := rediscache.NewCache(redisClient, log.Logger, cfg.Cache.KeyPrefix)
		cache = redisCache
		probes = append(probes, middleware.Probe{Name: "redis", Check: redisCache.HealthCheck})
		log.Info("earnings cache enabled",
			zap.Duration("balance_ttl", cfg.Cache.BalanceTTL),
			zap.String("key_prefix", cfg.Cache.KeyPrefix),
		)
	} else {
		log.Info("earnings cache disabled")
	}

	var index domain.SearchIndex
	if cfg.SearchIndex.Enabled {
		index = searchindex.New(cfg.SearchIndex.Client(), log.Logger)
		log.Info("search index sync enabled",
			zap.String("base_url", cfg.SearchIndex.BaseURL),
			zap.String("index", cfg.SearchIndex.Index),
		)
	}

	earningsSvc := service.NewEarningsService(store, cache, cfg.Cache.BalanceTTL, log.Logger)
	scoringSvc := service.NewScoringService(store, index, earningsSvc, log.Logger)
	auditSvc := service.NewAuditService(store, earningsSvc, log.Logger)

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Port:         cfg.App.Port,
			BodyLimit:    1024 * 1024, // 1MB
			Debug:        cfg.App.Debug,
			AdminUserIDs: cfg.App.AdminUsers,
		},
		httpserver.Services{
			Scoring:  scoringSvc,
			Earnings: earningsSvc,
			Audit:    auditSvc,
		},
		validator.New(),
		log.Logger,
		probes...,
	)

	var scheduler *job.AuditScheduler
	if cfg.Audit.Enabled {
		scheduler = job.NewAuditScheduler(
			auditSvc,
			job.AuditConfig{
				Interval:  cfg.Audit.Interval,
				Timeout:   cfg.Audit.Timeout,
				OnStartup: cfg.Audit.OnStartup,
				Repair:    cfg.Audit.Repair,
			},
			locker.NewRedisLocker(redisClient, log.Logger, locker.WithKeyPrefix(cfg.Cache.KeyPrefix+":lock:")),
			log.Logger,
		)
		scheduler.Start(ctx)
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")

		if scheduler != nil {
			scheduler.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", zap.Error(err))
		}
	}()

	if err := server.Start(cfg.App.Port); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
