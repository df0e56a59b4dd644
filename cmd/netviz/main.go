// Package main is the entry point for the netviz viewer.
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/config"
	"github.com/Faultbox/netviz/internal/layout/transport"
	"github.com/Faultbox/netviz/internal/layout/worker"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"
	"github.com/Faultbox/netviz/internal/network"
	"github.com/Faultbox/netviz/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== netviz ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
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

	model, err := loadModel(cfg)
	if err != nil {
		return err
	}

	var tr transport.Transport
	if cfg.Layout.Enabled {
		tr, err = connectLayout(ctx, cfg, reg)
		if err != nil {
			return err
		}
	}

	v, err := viewer.New(viewer.Options{
		Config:  cfg,
		Model:   model,
		Layout:  tr,
		Metrics: reg,
	})
	if err != nil {
		if tr != nil {
			tr.Close()
		}
		return fmt.Errorf("creating viewer: %w", err)
	}
	defer v.Close()

	v.OnLayoutFinish(func() { logger.Debug("layout settled on screen") })

	return v.Run(ctx)
}

func loadModel(cfg *config.Config) (*network.Model, error) {
	opts := network.Options{
		Use2D:      cfg.Render.Use2D,
		ColorScale: cfg.Network.ColorScale,
		Rand:       rand.New(rand.NewPCG(cfg.Network.Seed, cfg.Network.Seed+1)),
	}

	if cfg.Network.Input != "" {
		m, err := network.LoadFile(cfg.Network.Input, opts)
		if err != nil {
			return nil, fmt.Errorf("loading network: %w", err)
		}
		logger.Info("network loaded",
			zap.String("file", cfg.Network.Input),
			zap.Int("nodes", m.Len()),
			zap.Int("edges", m.EdgeCount()),
		)
		return m, nil
	}

	nodes, edges := network.Generate(cfg.Network.GenerateNodes, cfg.Network.GenerateEdges, cfg.Network.Seed)
	m, err := network.New(nodes, edges, opts)
	if err != nil {
		return nil, fmt.Errorf("building generated network: %w", err)
	}
	logger.Info("network generated", zap.Int("nodes", m.Len()), zap.Int("edges", m.EdgeCount()))
	return m, nil
}

// connectLayout dials an external worker, or starts one in process over a
// pipe when no address is configured.
func connectLayout(ctx context.Context, cfg *config.Config, reg *metrics.Registry) (transport.Transport, error) {
	if cfg.Layout.Address != "" {
		s, err := transport.Dial(cfg.Layout.Address, transport.Options{Metrics: reg})
		if err != nil {
			return nil, fmt.Errorf("connecting to layout worker: %w", err)
		}
		return s, nil
	}

	side, workerSide := transport.NewPipe(transport.DefaultBuffer)
	w, err := worker.New(workerSide, worker.Config{
		Engine:       cfg.Layout.Engine,
		StepInterval: cfg.Layout.StepInterval,
		Seed:         cfg.Layout.Seed,
	})
	if err != nil {
		side.Close()
		return nil, fmt.Errorf("creating layout worker: %w", err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("layout worker stopped", zap.Error(err))
		}
	}()
	return side, nil
}
