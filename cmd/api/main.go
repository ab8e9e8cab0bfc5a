package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"skydeck/internal/auth"
	"skydeck/internal/config"
	"skydeck/internal/directory"
	transporthttp "skydeck/internal/http"
	"skydeck/internal/metrics"
	"skydeck/internal/platform/database"
	"skydeck/internal/platform/logging"
	"skydeck/internal/platform/migrate"
	"skydeck/internal/revocation"
	"skydeck/internal/token"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)

	users, cleanup, err := buildDirectory(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize user directory", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	revocations, revocationCleanup, err := buildRevocations(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize revocation store", "error", err)
		os.Exit(1)
	}
	if revocationCleanup != nil {
		defer revocationCleanup()
	}

	verifier, err := token.NewVerifier([]byte(cfg.AuthSharedSecret), nil)
	if err != nil {
		logger.Error("failed to initialize token verifier", "error", err)
		os.Exit(1)
	}

	sessions, err := auth.NewService([]byte(cfg.AuthSharedSecret), cfg.SessionTTL, revocations, nil)
	if err != nil {
		logger.Error("failed to initialize session service", "error", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	router := transporthttp.NewRouter(cfg, verifier, sessions, users, collector, reg, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}

	go func() {
		logger.Info("Skydeck API listening", "addr", srv.Addr, "store", cfg.DataStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildDirectory(ctx context.Context, cfg config.Config, logger *slog.Logger) (directory.Repository, func(), error) {
	if cfg.UseInMemoryStore() {
		logger.Info("using in-memory user directory")
		return directory.NewMemoryRepository(), nil, nil
	}

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = db.Close()
	}

	if err := migrate.Apply(ctx, db, logger); err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("connected to postgres")
	return directory.NewPostgresRepository(db), cleanup, nil
}

func buildRevocations(ctx context.Context, cfg config.Config, logger *slog.Logger) (revocation.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("using in-memory revocation store")
		return revocation.NewMemoryStore(), nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	logger.Info("connected to redis", "addr", cfg.RedisAddr)
	return revocation.NewRedisStore(client), func() { _ = client.Close() }, nil
}
