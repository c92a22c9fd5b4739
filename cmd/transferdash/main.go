package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"transferdash/internal/amqp"
	"transferdash/internal/backend"
	"transferdash/internal/cache"
	"transferdash/internal/cli"
	"transferdash/internal/config"
	"transferdash/internal/core"
	apphttp "transferdash/internal/http"
	"transferdash/internal/log"
	"transferdash/internal/metrics"
	"transferdash/internal/refresh"
	"transferdash/internal/sheets"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		logger := cli.SetupLogger("info", "text")
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := cli.SignalContext()
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	loc := cfg.Location()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	source, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}()

	m := metrics.New()

	loader := cache.NewLoader[[]core.TransferRecord](cfg.DataCacheTTL, source.Backend.ReadTransfers)
	loader.Observe(m.CacheResult)

	// The refresher and the export share one cached fetch.
	cached := sheets.ReaderFunc(func(ctx context.Context) ([]core.TransferRecord, error) {
		return loader.Get(ctx)
	})

	refresher := refresh.New(cached, refresh.Options{
		Interval:     cfg.RefreshInterval,
		BackoffMax:   cfg.RefreshBackoffMax,
		FetchTimeout: cfg.FetchTimeout,
		Clock:        refresh.SystemClock(loc),
		Logger:       logger,
	})
	refresher.OnCycle(m.ObserveCycle)

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			// Notifications are optional; the dashboard runs without them.
			logger.WithComponent(log.ComponentAMQP).Warn("AMQP unavailable, snapshot notifications disabled",
				log.FieldError, err)
		} else {
			defer client.Close()
			refresher.OnCycle(client.Notifier(logger))
			logger.WithComponent(log.ComponentAMQP).Info("Publishing snapshot notifications", "exchange", cfg.AMQPExchange)
		}
	}

	srv, err := apphttp.NewServer(refresher, apphttp.Options{
		Addr:            net.JoinHostPort("", cfg.Port),
		Logger:          logger,
		Metrics:         m,
		ExportRateLimit: cfg.ExportRateLimit,
		Records:         cached,
		Location:        loc,
		Now:             func() time.Time { return time.Now().In(loc) },
	})
	if err != nil {
		return err
	}

	logger.Info("Starting transfer dashboard",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		log.FieldInterval, cfg.RefreshInterval.String(),
		"timezone", loc.String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return refresher.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
