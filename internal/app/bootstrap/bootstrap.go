package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	moderationservice "homeboard/contexts/marketplace/moderation-service"
	"homeboard/contexts/marketplace/moderation-service/adapters/assets"
	postgresadapter "homeboard/contexts/marketplace/moderation-service/adapters/postgres"
	"homeboard/contexts/marketplace/moderation-service/application/commands"
	workerapp "homeboard/contexts/marketplace/moderation-service/application/workers"
	"homeboard/contexts/marketplace/moderation-service/ports"
	"homeboard/internal/platform/cache"
	"homeboard/internal/platform/config"
	"homeboard/internal/platform/db"
	"homeboard/internal/platform/httpserver"
	"homeboard/internal/platform/messaging"
	"homeboard/internal/platform/session"
)

// Package bootstrap is the composition root. Construction and wiring
// happen here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	cache    *cache.RedisListingCache
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	convertJob   workerapp.ConvertJob
	outboxRelay  workerapp.OutboxRelay
	relayEnabled bool
	pollInterval time.Duration
	convertEvery time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.AutoMigrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, err
	}

	assetStore, err := assets.NewFSStore(cfg.AssetDir)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	var listingCache ports.ListingCache
	var redisCache *cache.RedisListingCache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisCache, err = cache.NewRedisListingCache(cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		listingCache = redisCache
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := moderationservice.NewModule(moderationservice.Dependencies{
		Repository:  repo,
		Conversions: repo,
		Listings:    repo,
		Assets:      assetStore,
		Cache:       listingCache,
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(module, session.NewVerifier(cfg.SessionSecret), logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		cache:    redisCache,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run() error {
	return a.server.Start()
}

func (a *APIApp) Close() error {
	var firstErr error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			firstErr = err
		}
	}
	if err := a.postgres.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgresadapter.AutoMigrate(pg.DB); err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)

	var listingCache ports.ListingCache
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		redisCache, err := cache.NewRedisListingCache(cfg.RedisAddr, cfg.RedisPassword, logger)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		listingCache = redisCache
	}

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		postgres: pg,
		convertJob: workerapp.ConvertJob{
			Convert: commands.ConvertApprovedUseCase{
				Conversions: repo,
				Cache:       listingCache,
				Clock:       postgresadapter.SystemClock{},
				IDGen:       postgresadapter.UUIDGenerator{},
				Logger:      logger,
			},
			Disabled: !cfg.EnableAutoConvert,
			Logger:   logger,
		},
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		pollInterval: cfg.PollInterval,
		convertEvery: cfg.ConvertInterval,
		logger:       logger,
	}, nil
}

// Run drives the worker loops until the context is cancelled. Job
// errors are logged inside the jobs and do not stop the loops.
func (a *WorkerApp) Run(ctx context.Context) error {
	relayTicker := time.NewTicker(a.pollInterval)
	defer relayTicker.Stop()
	convertTicker := time.NewTicker(a.convertEvery)
	defer convertTicker.Stop()

	a.logger.Info("worker loops starting",
		"event", "worker_starting",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", a.pollInterval.String(),
		"convert_interval", a.convertEvery.String(),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-relayTicker.C:
			if a.relayEnabled {
				_ = a.outboxRelay.RunOnce(ctx)
			}
		case <-convertTicker.C:
			_ = a.convertJob.RunOnce(ctx)
		}
	}
}

func (a *WorkerApp) Close() error {
	return a.postgres.Close()
}

func normalizeAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
