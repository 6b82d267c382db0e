package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/iconicemr/dental-os-clinic-sub000/internal/config"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/db"
	redisclient "github.com/iconicemr/dental-os-clinic-sub000/internal/redis"
	"github.com/iconicemr/dental-os-clinic-sub000/internal/settings"
)

// The prune worker periodically drops date exceptions that can no longer
// affect resolution: past dates and no-op placeholder entries.
func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("config load error")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("worker", "prune").Logger()
	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.PruneInterval).Msg("prune-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	rdb, err := redisclient.Connect(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	repo := settings.NewPgRepository(pgPool)
	locker := redisclient.NewRedisEditLocker(rdb, cfg.EditLockTTL)
	cache := settings.NewRedisCache(rdb, cfg.CacheTTL)
	svc := settings.NewService(repo, locker, cache, logger)

	// Run once at startup
	runOnce(rootCtx, svc, logger)

	ticker := time.NewTicker(cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping prune worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, logger)
		}
	}
}

func runOnce(ctx context.Context, svc *settings.Service, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	if err := svc.PruneExceptions(runCtx); err != nil {
		logger.Error().Err(err).Msg("prune run error")
		return
	}
	logger.Info().Dur("took", time.Since(start)).Msg("prune run complete")
}
