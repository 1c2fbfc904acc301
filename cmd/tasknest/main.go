package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasknest/internal/auth"
	"tasknest/internal/cache"
	"tasknest/internal/config"
	"tasknest/internal/images"
	"tasknest/internal/jobs"
	"tasknest/internal/server"
	"tasknest/internal/storage/sqlite"
	"tasknest/internal/tasks"
)

func main() {
	cfg := config.FromEnv()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to sqlite database file")
	flag.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the task cache")
	flag.StringVar(&cfg.UploadsDir, "uploads", cfg.UploadsDir, "Directory for task and avatar images")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	store, err := sqlite.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	taskCache, err := cache.Connect(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		logger.Error("unable to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer taskCache.Close()

	imgStore, err := images.NewStore(cfg.UploadsDir)
	if err != nil {
		logger.Error("unable to prepare uploads directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	runner := jobs.NewRunner(256, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, "tasknest")
	google := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	authSvc := auth.NewService(store, auth.NewPasswordHasher(), tokens, google)

	engine := tasks.NewEngine(store, taskCache, imgStore, runner, logger, cfg.BaseURL)
	srv := server.New(store, authSvc, engine, imgStore, runner, logger, cfg.BaseURL)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := runner.Stop(ctx); err != nil {
		logger.Error("failed to drain background jobs", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
