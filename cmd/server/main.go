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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/riftlens/analysis-api/internal/config"
	"github.com/riftlens/analysis-api/internal/handlers"
	"github.com/riftlens/analysis-api/internal/ingest"
	"github.com/riftlens/analysis-api/internal/riot"
	"github.com/riftlens/analysis-api/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.PostgresURL, log)
	if err != nil {
		log.Fatalw("postgres connection failed", "error", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalw("schema migration failed", "error", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalw("invalid redis url", "error", err)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalw("redis connection failed", "error", err)
	}

	riotClient := riot.NewClient(riot.Config{
		APIKey:         cfg.RiotAPIKey,
		Platform:       cfg.RiotRegion,
		RequestsPerSec: float64(cfg.RequestsPerSec),
		Burst:          cfg.RequestBurst,
	}, log)

	ingestSvc := ingest.NewService(riotClient, db, log, cfg.FetchConcurrency)

	h := handlers.New(handlers.Config{
		Store:    db,
		Riot:     riotClient,
		Ingest:   ingestSvc,
		Redis:    redisClient,
		Logger:   logger,
		Settings: cfg,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		// Analyze streams for minutes when the match cache is cold.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}
}
