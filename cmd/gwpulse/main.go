package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gwpulse/gwpulse/internal/catalog"
	"github.com/gwpulse/gwpulse/internal/config"
	"github.com/gwpulse/gwpulse/internal/enrichment"
	"github.com/gwpulse/gwpulse/internal/logging"
	"github.com/gwpulse/gwpulse/internal/metrics"
	"github.com/gwpulse/gwpulse/internal/pipeline"
	"github.com/gwpulse/gwpulse/internal/significance"
	"github.com/gwpulse/gwpulse/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting gwpulse",
		"catalog", cfg.Catalog.Endpoint,
		"store", cfg.Store.Path,
		"model", cfg.Enrich.Model,
	)

	collector, err := metrics.NewRunCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	pipe := pipeline.New(
		catalog.NewClient(cfg.Catalog, logger),
		significance.New(cfg.Filter),
		enrichment.NewOpenAIClient(cfg.Enrich, logger),
		store.NewFileStore(cfg.Store.Path, logger),
		cfg.Catalog.Query,
		collector,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Watch.Interval <= 0 {
		report, err := pipe.Run(ctx)
		logger.Info("run report",
			"run_id", report.RunID,
			"status", report.Status,
			"fetched", report.Fetched,
			"significant", report.Significant,
			"already_known", report.AlreadyKnown,
			"enriched", report.Enriched,
			"enrichment_failed", report.EnrichmentFailed,
			"persisted_total", report.Persisted,
			"duration", report.Duration,
		)
		if err != nil {
			os.Exit(1)
		}
		return
	}

	if cfg.Watch.MetricsPort != "" {
		srv := &http.Server{
			Addr:              ":" + cfg.Watch.MetricsPort,
			Handler:           collector.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "port", cfg.Watch.MetricsPort)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := pipe.Watch(ctx, cfg.Watch.Interval); err != nil && err != context.Canceled {
		logger.Error("watch loop exited", "error", err)
		os.Exit(1)
	}
}
