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

	"github.com/atlasfm/atlas/internal/api"
	"github.com/atlasfm/atlas/internal/composite"
	"github.com/atlasfm/atlas/internal/config"
	"github.com/atlasfm/atlas/internal/consequence"
	"github.com/atlasfm/atlas/internal/criteria"
	"github.com/atlasfm/atlas/internal/events"
	"github.com/atlasfm/atlas/internal/recalc"
	"github.com/atlasfm/atlas/internal/registry"
	"github.com/atlasfm/atlas/internal/reliability"
	"github.com/atlasfm/atlas/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.Logging.Level)}))
	slog.SetDefault(logger)

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

	// Event bus (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to event bus, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to event bus")
		}
	}

	// Asset registry
	registryClient := registry.NewHTTPClient(cfg.Registry.URL, cfg.Registry.Token)

	// Calculators
	curves := reliability.NewCurveTable(curveOverrides(cfg))
	pof := reliability.NewCalculator(reliability.DefaultWeights(), curves, logger)
	cof := consequence.NewCalculator(consequence.DefaultWeights(), logger)

	// Composite scorer and recalculation engine
	scorer := composite.NewScorer(db, logger)
	engine := recalc.New(db, scorer, eventsClient, cfg.Recalc.Concurrency, cfg.StatsInterval(), logger)
	engine.Start(ctx)
	defer engine.Stop()
	logger.Info("recalc engine started",
		"concurrency", cfg.Recalc.Concurrency,
		"stats_interval", cfg.StatsInterval())

	// Criteria lifecycle manager
	manager := criteria.NewManager(db, engine, eventsClient, logger)

	// API server
	router := api.NewRouter(api.Deps{
		Store:    db,
		Events:   eventsClient,
		Registry: registryClient,
		PoF:      pof,
		CoF:      cof,
		Manager:  manager,
		Scorer:   scorer,
		Engine:   engine,
	}, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
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

func curveOverrides(cfg *config.Config) map[string]reliability.Curve {
	if len(cfg.Reliability.Curves) == 0 {
		return nil
	}
	out := make(map[string]reliability.Curve, len(cfg.Reliability.Curves))
	for name, c := range cfg.Reliability.Curves {
		out[name] = reliability.Curve{Beta: c.Beta, Eta: c.Eta}
	}
	return out
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
