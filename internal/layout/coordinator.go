// Package layout keeps the network model in step with a layout worker,
// easing positions toward each snapshot the worker emits.
package layout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/layout/protocol"
	"github.com/Faultbox/netviz/internal/layout/transport"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"
	"github.com/Faultbox/netviz/internal/network"
)

// Interpolation defaults.
const (
	DefaultTickRate      = 60.0
	DefaultInterpolation = 0.025
	DefaultThreshold     = 1.0
	DefaultInbox         = 4

	controlTimeout = 250 * time.Millisecond
)

// ErrAlreadyStarted is returned by a second Start.
var ErrAlreadyStarted = errors.New("layout already started")

// Config configures a Coordinator.
type Config struct {
	// TickRate is the interpolation frequency in Hz.
	TickRate float64
	// Interpolation is the fraction of the remaining distance covered per tick.
	Interpolation float32
	// Threshold is the displacement, in world units, under which positions
	// count as arrived.
	Threshold float32
	// Inbox bounds the queue of snapshots awaiting Pump.
	Inbox int
	Use2D bool

	NewTicker TickerFactory
	Metrics   *metrics.Registry
}

// Hooks are invoked from Pump on the main loop. Nil hooks are skipped.
type Hooks struct {
	// Refresh re-uploads position buffers after a tick.
	Refresh func()
	// Redraw requests a frame.
	Redraw   func()
	Started  func()
	Finished func()
}

// Coordinator owns the interpolation ticker and the target snapshot.
// Everything except the receive goroutine runs on the caller's goroutine.
type Coordinator struct {
	cfg   Config
	model *network.Model
	tr    transport.Transport
	hooks Hooks
	log   *zap.Logger

	inbox chan protocol.Message

	started bool
	running bool
	target  []float32
	ticker  Ticker

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a coordinator for model talking to a worker over tr.
func New(model *network.Model, tr transport.Transport, cfg Config, hooks Hooks) *Coordinator {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}
	if cfg.Interpolation <= 0 {
		cfg.Interpolation = DefaultInterpolation
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Inbox <= 0 {
		cfg.Inbox = DefaultInbox
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	return &Coordinator{
		cfg:   cfg,
		model: model,
		tr:    tr,
		hooks: hooks,
		log:   logger.Named("layout"),
		inbox: make(chan protocol.Message, cfg.Inbox),
	}
}

// Start sends the init snapshot and begins receiving layout steps.
func (c *Coordinator) Start(ctx context.Context) error {
	if c.started {
		return ErrAlreadyStarted
	}
	if err := c.tr.Send(ctx, protocol.Init(protocol.SnapshotOf(c.model), c.cfg.Use2D)); err != nil {
		return fmt.Errorf("sending init: %w", err)
	}
	c.started = true
	c.running = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.receive(ctx)

	c.log.Info("layout started",
		zap.Int("nodes", c.model.Len()),
		zap.Int("edges", c.model.EdgeCount()),
		zap.Bool("use_2d", c.cfg.Use2D),
	)
	return nil
}

func (c *Coordinator) receive(ctx context.Context) {
	defer c.wg.Done()
	in := c.tr.Inbound()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-in:
			if !ok {
				c.log.Info("layout transport closed")
				return
			}
			c.offer(m)
		}
	}
}

// offer queues m, discarding the oldest queued message when full.
func (c *Coordinator) offer(m protocol.Message) {
	for {
		select {
		case c.inbox <- m:
			return
		default:
		}
		select {
		case <-c.inbox:
		default:
		}
	}
}

// Pump applies queued snapshots and runs at most one pending tick. Call it
// once per main-loop iteration.
func (c *Coordinator) Pump() {
	for drained := false; !drained; {
		select {
		case m := <-c.inbox:
			c.accept(m)
		default:
			drained = true
		}
	}

	if c.ticker == nil {
		return
	}
	select {
	case <-c.ticker.C():
		c.tick()
	default:
	}
}

func (c *Coordinator) accept(m protocol.Message) {
	switch {
	case !c.started:
		c.log.Warn("ignoring message before init", zap.String("type", string(m.Type)))
		c.cfg.Metrics.RecordMalformed("order")
		return
	case m.Type != protocol.TypeLayoutStep:
		c.log.Warn("ignoring unexpected message", zap.String("type", string(m.Type)))
		c.cfg.Metrics.RecordMalformed("type")
		return
	case len(m.Positions) != len(c.model.Positions):
		c.log.Warn("ignoring layout step",
			zap.Int("coordinates", len(m.Positions)),
			zap.Int("expected", len(c.model.Positions)),
		)
		c.cfg.Metrics.RecordMalformed("length")
		return
	case protocol.NonFinite(m.Positions) >= 0:
		c.log.Warn("ignoring layout step with non-finite coordinates",
			zap.Int("index", protocol.NonFinite(m.Positions)),
		)
		c.cfg.Metrics.RecordMalformed("nonfinite")
		return
	}

	c.target = m.Positions
	c.cfg.Metrics.RecordLayoutStep()

	if c.ticker != nil {
		return
	}
	if d := MaxDisplacement(c.model.Positions, c.target); d > c.cfg.Threshold {
		c.startTicker(d)
	}
}

func (c *Coordinator) startTicker(displacement float32) {
	period := time.Duration(float64(time.Second) / c.cfg.TickRate)
	c.ticker = c.cfg.NewTicker(period)
	c.cfg.Metrics.SetInterpolating(true)
	c.log.Debug("interpolation started", zap.Float32("displacement", displacement))
	if c.hooks.Started != nil {
		c.hooks.Started()
	}
}

func (c *Coordinator) stopTicker() {
	if c.ticker == nil {
		return
	}
	c.ticker.Stop()
	c.ticker = nil
	c.cfg.Metrics.SetInterpolating(false)
}

func (c *Coordinator) tick() {
	d := Interpolate(c.model.Positions, c.target, c.cfg.Interpolation)
	c.cfg.Metrics.RecordTick(d)

	if c.hooks.Refresh != nil {
		c.hooks.Refresh()
	}
	if c.hooks.Redraw != nil {
		c.hooks.Redraw()
	}

	if d < c.cfg.Threshold {
		c.stopTicker()
		c.log.Debug("interpolation finished", zap.Float32("displacement", d))
		if c.hooks.Finished != nil {
			c.hooks.Finished()
		}
	}
}

// Stop asks the worker to pause. The interpolation ticker keeps running
// until the current target is reached.
func (c *Coordinator) Stop() {
	c.control(protocol.Stop(), false)
}

// Resume asks the worker to continue.
func (c *Coordinator) Resume() {
	c.control(protocol.Restart(), true)
}

// Toggle pauses a running worker or resumes a paused one.
func (c *Coordinator) Toggle() {
	if c.running {
		c.Stop()
	} else {
		c.Resume()
	}
}

func (c *Coordinator) control(m protocol.Message, running bool) {
	if !c.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()
	if err := c.tr.Send(ctx, m); err != nil {
		c.log.Warn("failed to send layout control", zap.String("type", string(m.Type)), zap.Error(err))
	}
	c.running = running
	c.log.Info("layout toggled", zap.Bool("running", running))
}

// Running reports whether the worker was last asked to run.
func (c *Coordinator) Running() bool { return c.running }

// Interpolating reports whether the ticker is active.
func (c *Coordinator) Interpolating() bool { return c.ticker != nil }

// Close stops the ticker and the receive goroutine and closes the transport.
func (c *Coordinator) Close() error {
	c.stopTicker()
	if c.cancel != nil {
		c.cancel()
	}
	err := c.tr.Close()
	c.wg.Wait()
	return err
}
