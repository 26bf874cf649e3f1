package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/yunsj111/wedding-rainfall-analysis/internal/adapter/http"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/analysis"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/config"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/loader"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	records := loader.New(cfg, logger, metrics)
	cache := loader.NewRecordCache(cfg.CacheMaxEntries, cfg.CacheTTL, nil)
	service := analysis.New(records, cache, cfg.DataDir, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, service, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("rainfall analysis service started",
		"data_dir", cfg.DataDir,
		"cache_ttl", cfg.CacheTTL,
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
