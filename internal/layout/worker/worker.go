package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/layout/protocol"
	"github.com/Faultbox/netviz/internal/layout/transport"
	"github.com/Faultbox/netviz/internal/logger"
)

// DefaultStepInterval is the cadence of layoutStep messages.
const DefaultStepInterval = 100 * time.Millisecond

// Config configures a Worker.
type Config struct {
	Engine       string
	StepInterval time.Duration
	// IterationsPerStep is the number of engine iterations between two
	// emitted snapshots. Zero means 1.
	IterationsPerStep int
	Seed              uint64
}

// Worker owns an engine and serves one coordinator over a transport.
type Worker struct {
	cfg    Config
	tr     transport.Transport
	engine Engine
	log    *zap.Logger

	ready   bool
	running bool
}

// New creates a worker for the configured engine.
func New(tr transport.Transport, cfg Config) (*Worker, error) {
	engine, err := NewEngine(cfg.Engine, cfg.Seed)
	if err != nil {
		return nil, err
	}
	if cfg.StepInterval <= 0 {
		cfg.StepInterval = DefaultStepInterval
	}
	if cfg.IterationsPerStep <= 0 {
		cfg.IterationsPerStep = 1
	}
	return &Worker{
		cfg:    cfg,
		tr:     tr,
		engine: engine,
		log:    logger.Named("layout-worker"),
	}, nil
}

// Running reports whether the worker is emitting steps.
func (w *Worker) Running() bool {
	return w.running
}

// Run serves messages until ctx is cancelled or the transport closes. A
// closed transport is a clean shutdown and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.StepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case m, ok := <-w.tr.Inbound():
			if !ok {
				w.log.Info("transport closed, worker exiting")
				return nil
			}
			w.handle(m)

		case <-ticker.C:
			if !w.running {
				continue
			}
			if err := w.step(ctx); err != nil {
				if errors.Is(err, transport.ErrClosed) {
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.log.Warn("failed to send layout step", zap.Error(err))
			}
		}
	}
}

func (w *Worker) handle(m protocol.Message) {
	switch m.Type {
	case protocol.TypeInit:
		if err := m.Validate(); err != nil {
			w.log.Warn("ignoring init", zap.Error(err))
			return
		}
		w.engine.Init(m.Network, m.Use2D)
		w.ready = true
		w.running = true
		w.log.Info("layout initialized",
			zap.Int("nodes", m.Network.Nodes),
			zap.Int("edges", len(m.Network.Edges)/2),
			zap.Bool("use_2d", m.Use2D),
			zap.String("engine", w.cfg.Engine),
		)
	case protocol.TypeStop:
		w.running = false
		w.log.Debug("layout stopped")
	case protocol.TypeRestart:
		if !w.ready {
			w.log.Warn("ignoring restart before init")
			return
		}
		w.engine.Reheat()
		w.running = true
		w.log.Debug("layout restarted")
	default:
		w.log.Warn("ignoring message", zap.String("type", string(m.Type)))
	}
}

func (w *Worker) step(ctx context.Context) error {
	moving := true
	for i := 0; i < w.cfg.IterationsPerStep && moving; i++ {
		moving = w.engine.Step()
	}
	step := protocol.LayoutStep(w.engine.Positions())
	if err := step.Validate(); err != nil {
		w.log.Warn("dropping layout step", zap.Error(err))
		return nil
	}
	if err := w.tr.Send(ctx, step); err != nil {
		return fmt.Errorf("layout step: %w", err)
	}
	if !moving {
		w.running = false
		w.log.Info("layout settled")
	}
	return nil
}
