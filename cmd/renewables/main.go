package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"renewables/internal/amqp"
	"renewables/internal/cli"
	"renewables/internal/config"
	apphttp "renewables/internal/http"
	applog "renewables/internal/log"
	"renewables/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup runs before exiting.
func run() int {
	// Load .env file for local development (ignore errors in production/docker)
	_ = cli.LoadEnvFile("")

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		return 1
	}

	chartOpts, err := cli.ChartOptions(cfg)
	if err != nil {
		logger.Error("Failed to load chart style", applog.FieldError, err, "path", cfg.ChartStyleFile)
		return 1
	}

	res, err := cli.OpenBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize data backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		return 1
	}
	defer res.Close()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           cfg.Addr(),
		Provider:       res.Provider,
		Chart:          chartOpts,
		StaticDir:      cfg.StaticDir,
		ForceHTTPS:     cfg.IsProduction(),
		TrustedProxies: cfg.TrustedProxies,
		CacheSize:      cfg.CacheSize,
		CacheTTL:       cfg.CacheTTL,
		Logger:         logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 15 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.GracefulShutdown(logger, shutdownTimeout, nil)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting renewables server",
			"addr", cfg.Addr(),
			applog.FieldBackend, cfg.DataBackend,
			"force_https", cfg.IsProduction())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.AMQPURL != "" {
		refresh := worker.NewRefreshWorker(srv, nil, logger)
		g.Go(func() error {
			return refresh.Run(gctx, func() (worker.Consumer, error) {
				c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
				if err != nil {
					return nil, err
				}
				return c, nil
			})
		})
		logger.Info("Dataset refresh worker enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - cached charts expire by TTL only")
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		return 1
	}
	logger.Info("Server stopped gracefully")
	return 0
}
