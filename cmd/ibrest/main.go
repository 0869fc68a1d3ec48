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

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"github.com/minhpascal/IBREST/internal/config"
	"github.com/minhpascal/IBREST/internal/connection"
	"github.com/minhpascal/IBREST/internal/gateway"
	"github.com/minhpascal/IBREST/internal/metrics"
	"github.com/minhpascal/IBREST/internal/rest"
	"github.com/minhpascal/IBREST/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional, env vars apply either way)")
	flag.Parse()

	// A .env file feeds the same variables the environment would.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting ibrest",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)
	logger.Info("configuration loaded",
		"upstream", fmt.Sprintf("%s:%d", cfg.Upstream.Host, cfg.Upstream.Port),
		"pool_size", cfg.Pool.Size,
		"listen", fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	m := metrics.New()

	transport := connection.NewWSTransport(connection.DialConfig{
		Host:         cfg.Upstream.Host,
		Port:         cfg.Upstream.Port,
		DialTimeout:  cfg.Upstream.DialTimeout,
		WriteTimeout: cfg.Upstream.WriteTimeout,
	}, logger)

	connCfg := connection.DefaultConnConfig()
	connCfg.CommandRate = cfg.Upstream.CommandRate
	connCfg.CommandBurst = cfg.Upstream.CommandBurst

	pool := connection.NewPool(transport, connCfg, connection.PoolConfig{
		Size:         cfg.Pool.Size,
		WaitIters:    cfg.Pool.WaitIters,
		WaitInterval: cfg.Pool.WaitInterval,
	}, logger)

	gw := gateway.New(gateway.Config{
		TimeoutIters:      cfg.Wait.TimeoutIters,
		OrderTimeoutIters: cfg.Wait.OrderTimeoutIters,
		PollInterval:      cfg.Wait.PollInterval,
		MarketTicks:       cfg.Wait.MarketTicks,
	}, pool, m, logger)

	logger.Info("connecting to IB gateway",
		"host", cfg.Upstream.Host,
		"port", cfg.Upstream.Port,
		"pool_size", cfg.Pool.Size,
	)
	if err := gw.Start(ctx); err != nil {
		logger.Error("failed to start gateway", "error", err)
		os.Exit(1)
	}

	srv := rest.NewServer(gw, m, logger)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}

	gw.Close()

	logger.Info("ibrest stopped")
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
