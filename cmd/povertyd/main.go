package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dylanlt/poverty-explorer/internal/api"
	"github.com/dylanlt/poverty-explorer/internal/climate"
	"github.com/dylanlt/poverty-explorer/internal/config"
	"github.com/dylanlt/poverty-explorer/internal/engine"
	"github.com/dylanlt/poverty-explorer/internal/events"
	"github.com/dylanlt/poverty-explorer/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	// NATS (optional)
	var eventsClient events.Client
	if cfg.Nats.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Nats.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Climate service
	climateClient := climate.NewHTTPClient(cfg.Climate.URL, cfg.Climate.Token)

	// Engine
	runner := engine.New(db, eventsClient, cfg, logger)
	runner.Start(ctx)
	defer runner.Stop()
	logger.Info("engine started",
		"cutoff", cfg.Engine.Cutoff,
		"workers", cfg.Engine.Workers,
		"recompute_interval", cfg.RecomputeInterval(),
	)

	// API server
	router := api.NewRouter(db, eventsClient, climateClient, runner, cfg, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsRouter := api.NewMetricsRouter()
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsRouter,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
