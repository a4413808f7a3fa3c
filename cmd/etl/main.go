package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/climate-normals-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/climate-normals-etl/internal/adapter/kafka"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/noaa"
	"github.com/couchcryptid/climate-normals-etl/internal/adapter/sqlite"
	"github.com/couchcryptid/climate-normals-etl/internal/config"
	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/couchcryptid/climate-normals-etl/internal/observability"
	"github.com/couchcryptid/climate-normals-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Station file retrieval for announcement-only messages (NOAA_FETCH_ENABLED).
	var fetcher domain.StationFetcher
	if cfg.NOAAFetchEnabled {
		client := noaa.NewClient(cfg.NOAABaseURL, cfg.NOAATimeout, logger, metrics)
		fetcher = noaa.NewCachedFetcher(client, cfg.NOAACacheSize, metrics)
		metrics.FetchEnabled.Set(1)
		logger.Info("noaa fetch enabled", "base_url", cfg.NOAABaseURL, "cache_size", cfg.NOAACacheSize, "timeout", cfg.NOAATimeout)
	} else {
		logger.Info("noaa fetch disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(fetcher, logger)

	var (
		loader   pipeline.BatchLoader = writer
		stations httpadapter.StationLookup
		archive  *sqlite.Archive
	)
	if cfg.SQLitePath != "" {
		archive, err = sqlite.Open(cfg.SQLitePath)
		if err != nil {
			logger.Error("failed to open sqlite archive", "error", err, "path", cfg.SQLitePath)
			os.Exit(1)
		}
		loader = pipeline.MultiLoader{writer, archive}
		stations = archive
		logger.Info("sqlite archive enabled", "path", cfg.SQLitePath)
	}

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, stations, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if archive != nil {
		if err := archive.Close(); err != nil {
			logger.Error("sqlite archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
