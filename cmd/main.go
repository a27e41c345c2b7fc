package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/angeloszaimis/interactive-app/config"
	"github.com/angeloszaimis/interactive-app/internal/handler"
	"github.com/angeloszaimis/interactive-app/internal/httpserver"
	"github.com/angeloszaimis/interactive-app/internal/metrics"
	"github.com/angeloszaimis/interactive-app/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Server error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if _, err := os.Stat(cfg.Static.Dir); err != nil {
		log.Warn("Static directory is not readable",
			slog.String("dir", cfg.Static.Dir),
			slog.Any("err", err))
	}

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.BufferSize, log)
		collector.Start(collectorCtx)
	}

	apiHandler := handler.NewAPIHandler(log, clockwork.NewRealClock(), cfg.Server.Environment, collector)
	router := setupRouter(cfg, log, apiHandler, collector)

	srv, err := httpserver.New(cfg.Address(), router, log)
	if err != nil {
		return err
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			return err
		}
	}

	if collector != nil {
		stopCollector()
		select {
		case <-collector.Done():
		case <-time.After(time.Second):
			log.Warn("Metrics collector did not stop in time")
		}
	}

	return nil
}
