// Package main runs a netviz layout worker as a standalone process. The
// viewer connects to it with -layout-addr.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/config"
	"github.com/Faultbox/netviz/internal/layout/transport"
	"github.com/Faultbox/netviz/internal/layout/worker"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== netviz layout worker ===")

	if err := run(cfg); err != nil {
		logger.Error("worker error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	if cfg.Metrics.Listen != "" {
		addr, err := reg.Serve(ctx, cfg.Metrics.Listen)
		if err != nil {
			return fmt.Errorf("starting metrics: %w", err)
		}
		logger.Info("metrics listening", zap.String("addr", addr.String()))
	}

	addr := cfg.Layout.Address
	if addr == "" {
		addr = transport.DefaultAddress
	}
	sock, err := transport.Listen(addr, transport.Options{Metrics: reg})
	if err != nil {
		return err
	}
	defer sock.Close()

	w, err := worker.New(sock, worker.Config{
		Engine:       cfg.Layout.Engine,
		StepInterval: cfg.Layout.StepInterval,
		Seed:         cfg.Layout.Seed,
	})
	if err != nil {
		return err
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
