// Package main runs the leaderboard HTTP server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	app "github.com/R3E-Network/leaderboard/internal/app"
	"github.com/R3E-Network/leaderboard/internal/app/cache"
	"github.com/R3E-Network/leaderboard/internal/app/httpapi"
	"github.com/R3E-Network/leaderboard/internal/app/metrics"
	"github.com/R3E-Network/leaderboard/internal/app/storage/postgres"
	"github.com/R3E-Network/leaderboard/internal/config"
	"github.com/R3E-Network/leaderboard/pkg/logger"
)

func main() {
	log := logger.NewDefault("server")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	stores := app.Stores{}
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		store := postgres.New(db)
		stores.Users = store
		stores.Leaderboard = store
		log.Info("using postgres storage")
	} else {
		log.Info("DATABASE_URL not set; using in-memory storage")
	}

	var readCache cache.Cache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		readCache = cache.NewRedis(client)
		log.WithField("addr", cfg.RedisAddr).Info("using redis cache")
	} else {
		readCache = cache.NewMemory()
		log.Info("REDIS_ADDR not set; using in-memory cache")
	}

	application, err := app.New(stores, readCache, app.Config{
		Leaderboard:       cfg.Leaderboard(),
		RecomputeSchedule: cfg.RecomputeSchedule,
	}, log)
	if err != nil {
		return err
	}

	if err := application.Start(ctx); err != nil {
		return err
	}

	api := httpapi.NewHandler(application)
	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("/healthz", api)
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("leaderboard API listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		_ = application.Stop(context.Background())
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown error")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("application stop error")
	}

	log.Info("server stopped")
	return nil
}
