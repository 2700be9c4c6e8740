package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bryanwahyu/esr-tracker/src/app/scoreboard"
	"github.com/bryanwahyu/esr-tracker/src/app/tracker"
	"github.com/bryanwahyu/esr-tracker/src/infra/config"
	"github.com/bryanwahyu/esr-tracker/src/infra/csvstore"
	"github.com/bryanwahyu/esr-tracker/src/infra/logging"
)

func main() {
	cfg, err := config.Load(getEnv("ESR_CONFIG", "esr.yaml"))
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	baseCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, err := tracker.Open(baseCtx, csvstore.NewFSStore(cfg.DataDir), tracker.Options{
		StrictReferences: cfg.Store.Strict,
		RecoverCorrupt:   cfg.Store.Recover,
		Logger:           logger,
		Registerer:       prometheus.DefaultRegisterer,
	})
	if err != nil {
		logger.Fatal("failed to open tracker data", zap.String("data_dir", cfg.DataDir), zap.Error(err))
	}

	server, err := NewServer(ServerConfig{
		Logger:       logger,
		Store:        store,
		Scoreboard:   scoreboard.NewService(store, cfg.RecentLimit),
		AdminEnabled: cfg.HTTP.AdminEnabled,
	})
	if err != nil {
		logger.Fatal("failed to build server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("esr tracker API listening",
			zap.String("addr", cfg.HTTP.Address),
			zap.Bool("admin", cfg.HTTP.AdminEnabled),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-baseCtx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
