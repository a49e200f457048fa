package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"crimewatch/internal/api"
	"crimewatch/internal/config"
	"crimewatch/internal/hub"
	"crimewatch/internal/redis"
	"crimewatch/internal/service"
	"crimewatch/internal/storage/memory"
	"crimewatch/internal/storage/postgres"
	"crimewatch/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Hub        *hub.Hub
	Postgres   *postgres.Postgres // nil with the memory backend
	Redis      *redis.Redis       // nil when redis is disabled
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	var (
		emergencyRepo service.EmergencyRepository
		reportRepo    service.ReportRepository
		teamRepo      service.TeamRepository
		userRepo      service.UserRepository
		pg            *postgres.Postgres
	)

	switch cfg.Storage.Backend {
	case "memory":
		logger.Info("Initializing in-memory storage")
		store := memory.NewStore()
		emergencyRepo = store.EmergencyRepository()
		reportRepo = store.ReportRepository()
		teamRepo = store.TeamRepository()
		userRepo = store.UserRepository()
	default:
		logger.Info("Initializing Postgres")
		var err error
		pg, err = postgres.NewPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to init postgres", slog.Any("error", err))
			return nil, fmt.Errorf("failed to init postgres: %w", err)
		}
		emergencyRepo = pg.Emergency
		reportRepo = pg.Reports
		teamRepo = pg.Teams
		userRepo = pg.Users
	}

	var (
		redisClient *redis.Redis
		signalCache service.SignalCache = service.NopSignalCache{}
	)
	if !cfg.Redis.Disabled {
		logger.Info("Initializing Redis")
		var err error
		redisClient, err = redis.NewRedis(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		signalCache = redis.NewSignalCache(redisClient, cfg.Redis.CacheTTL)
	}

	broadcastHub := hub.New(logger, cfg.Hub.PingInterval)

	emergencySvc := service.NewEmergencyService(emergencyRepo, userRepo, broadcastHub, signalCache, logger)
	reportSvc := service.NewReportService(reportRepo, logger)
	teamSvc := service.NewTeamService(teamRepo, logger)

	srv := service.NewService(emergencySvc, reportSvc, teamSvc, userRepo)

	httpServer := api.NewServer(cfg, logger, srv, broadcastHub)
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		Hub:        broadcastHub,
		Postgres:   pg,
		Redis:      redisClient,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	c.Hub.Shutdown()
	if c.Postgres != nil {
		c.Postgres.Pool.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components shut down",
		slog.Duration("latency", time.Since(start)))
}
