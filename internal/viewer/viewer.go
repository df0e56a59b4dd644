// Package viewer runs the interactive network view: window, frame loop,
// gestures, picking, layout updates and figure export.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/netviz/internal/config"
	"github.com/Faultbox/netviz/internal/engine/camera"
	"github.com/Faultbox/netviz/internal/engine/framebuffer"
	"github.com/Faultbox/netviz/internal/engine/input"
	"github.com/Faultbox/netviz/internal/engine/picking"
	"github.com/Faultbox/netviz/internal/engine/renderer"
	"github.com/Faultbox/netviz/internal/engine/window"
	"github.com/Faultbox/netviz/internal/export"
	"github.com/Faultbox/netviz/internal/layout"
	"github.com/Faultbox/netviz/internal/layout/transport"
	"github.com/Faultbox/netviz/internal/logger"
	"github.com/Faultbox/netviz/internal/metrics"
	"github.com/Faultbox/netviz/internal/network"
)

// wheelHold keeps a wheel gesture active for fast-edges purposes.
const wheelHold = 150 * time.Millisecond

// Options configures a Viewer.
type Options struct {
	Config *config.Config
	Model  *network.Model
	// Layout is the worker transport. Nil disables layout.
	Layout  transport.Transport
	Metrics *metrics.Registry
}

// Viewer owns the window and everything drawn into it. All methods must be
// called from the goroutine that called New.
type Viewer struct {
	cfg     *config.Config
	model   *network.Model
	metrics *metrics.Registry
	log     *zap.Logger

	window   *window.Window
	input    *input.Input
	renderer *renderer.Renderer
	pickFB   *framebuffer.Framebuffer
	picker   *picking.Picker
	hover    *picking.Hover
	camera   *camera.Camera
	gestures input.Gestures
	layout   *layout.Coordinator
	exporter *export.Exporter

	events events
	ready  bool

	running       bool
	dirty         bool
	geometryDirty bool
	gestureActive bool

	pointer      PointerEvent
	pointerKnown bool
}

// New opens the window and prepares GL resources for the model. Errors from
// the window wrap window.ErrContextUnavailable.
func New(opts Options) (*Viewer, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if opts.Model == nil {
		return nil, errors.New("viewer needs a model")
	}

	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:     cfg,
		model:   opts.Model,
		metrics: opts.Metrics,
		log:     logger.Named("viewer"),
		window:  win,
		input:   input.New(),
		hover:   picking.NewHover(),
	}

	v.renderer, err = renderer.New(renderer.Config{
		Use2D:            cfg.Render.Use2D,
		Background:       cfg.Render.Background,
		EdgesIntensity:   cfg.Render.EdgesIntensity,
		AdditiveBlending: cfg.Render.AdditiveBlending,
		FastEdges:        cfg.Render.FastEdges,
	}, v.model)
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	v.camera = camera.New()
	v.camera.Distance = cfg.Camera.Distance
	v.camera.MinZoom = cfg.Camera.MinZoom
	v.camera.MaxZoom = cfg.Camera.MaxZoom
	v.camera.Use2D = cfg.Render.Use2D

	v.pickFB, err = framebuffer.New(1, 1)
	if err != nil {
		v.renderer.Destroy()
		win.Close()
		return nil, fmt.Errorf("creating picking target: %w", err)
	}
	v.picker = picking.NewPicker(v.pickFB, cfg.Render.PickingRatio, v.model.Len())
	canvasW, canvasH := v.CanvasSize()
	v.picker.Resize(canvasW, canvasH)
	pw, ph := v.pickFB.Size()
	v.renderer.Resize(win.DrawableSize())

	if opts.Layout != nil {
		v.layout = layout.New(v.model, opts.Layout, layout.Config{
			TickRate:      cfg.Layout.TickRate,
			Interpolation: cfg.Layout.Interpolation,
			Threshold:     cfg.Layout.Threshold,
			Use2D:         cfg.Render.Use2D,
			Metrics:       opts.Metrics,
		}, v.layoutHooks())
	}

	v.exporter = export.New(v, export.Config{
		Dir:         cfg.Export.Dir,
		Scale:       cfg.Export.Scale,
		Supersample: cfg.Export.Supersample,
		Metrics:     opts.Metrics,
	})

	v.metrics.SetNetworkSize(v.model.Len(), v.model.EdgeCount())
	v.dirty = true

	v.log.Info("viewer ready",
		zap.Int("canvas_width", canvasW),
		zap.Int("canvas_height", canvasH),
		zap.Int32("picking_width", pw),
		zap.Int32("picking_height", ph),
		zap.Bool("layout", v.layout != nil),
	)
	return v, nil
}

// Run drives the frame loop until the window closes, Escape is pressed or
// ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	if v.layout != nil && v.cfg.Layout.Enabled {
		if err := v.layout.Start(ctx); err != nil {
			v.log.Warn("layout unavailable", zap.Error(err))
			v.notify(Notification{Title: "Layout unavailable", Message: err.Error(), Err: err})
		}
	}

	v.running = true
	v.markReady()

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting frame loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		// 1. Process input
		if v.input.Update() {
			break
		}
		now := time.Now()
		for _, e := range v.input.Events() {
			v.handleEvent(e, now)
		}

		// 2. Advance layout and camera
		if v.layout != nil {
			v.layout.Pump()
		}
		if v.camera.Update(now) {
			v.fireZoom()
			v.RequestRedraw()
		}
		if active := v.gestures.Active(now); active != v.gestureActive {
			v.gestureActive = active
			v.renderer.SetGestureActive(active)
			v.RequestRedraw()
		}

		// 3. Render and present
		if !v.dirty {
			time.Sleep(time.Millisecond)
			continue
		}
		v.dirty = false
		v.redraw()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	v.log.Info("frame loop stopped")
	return nil
}

func (v *Viewer) layoutHooks() layout.Hooks {
	return layout.Hooks{
		Refresh:  v.markGeometry,
		Redraw:   v.RequestRedraw,
		Started:  v.fireLayoutStart,
		Finished: v.fireLayoutFinish,
	}
}

// Quit stops the frame loop after the current iteration.
func (v *Viewer) Quit() {
	v.running = false
}

// Close releases GL resources, stops the layout and closes the window.
func (v *Viewer) Close() {
	if v.layout != nil {
		if err := v.layout.Close(); err != nil {
			v.log.Warn("closing layout", zap.Error(err))
		}
	}
	if v.picker != nil {
		v.picker.Destroy()
	}
	if v.renderer != nil {
		v.renderer.Destroy()
	}
	v.window.Close()
}

// RequestRedraw schedules a frame. Requests before the next frame coalesce.
func (v *Viewer) RequestRedraw() {
	v.dirty = true
}

// markGeometry schedules a full buffer upload before the next frame.
func (v *Viewer) markGeometry() {
	v.geometryDirty = true
	v.RequestRedraw()
}

// redraw renders the visible pass then the picking pass. A failing frame is
// logged and counted; the loop keeps running.
func (v *Viewer) redraw() {
	defer func() {
		if r := recover(); r != nil {
			v.log.Error("frame failed", zap.Any("panic", r))
			v.metrics.RecordFrameError()
		}
	}()

	if v.geometryDirty {
		v.geometryDirty = false
		v.renderer.UpdateGeometry()
		v.picker.SetNodes(v.model.Len())
	}

	start := time.Now()
	v.renderer.Draw(nil, false, v.camera)
	v.metrics.RecordFrame("visible", time.Since(start))

	start = time.Now()
	v.renderer.Draw(v.pickFB, true, v.camera)
	v.metrics.RecordFrame("picking", time.Since(start))

	if err := window.CheckGLError(); err != nil {
		v.log.Warn("frame GL error", zap.Error(err))
		v.metrics.RecordFrameError()
	}

	v.fireDraw()

	if v.pointerKnown {
		v.dispatchHover(v.hover.Update(v.PickPoint(v.pointer.X, v.pointer.Y)), v.pointer)
	}
}

func (v *Viewer) handleEvent(e input.Event, now time.Time) {
	switch e.Type {
	case input.EventWindowResize:
		v.renderer.Resize(v.window.DrawableSize())
		v.picker.Resize(v.CanvasSize())
		v.log.Debug("resized", zap.Int("width", e.Width), zap.Int("height", e.Height))
		v.fireResize(e.Width, e.Height)
		v.RequestRedraw()

	case input.EventWindowLeave:
		v.pointerKnown = false
		v.dispatchHover(v.hover.Leave(), v.pointer)

	case input.EventMouseDown:
		v.setPointer(e)
		v.gestures.Press(e.Button, e.MouseX, e.MouseY)

	case input.EventMouseMove:
		v.setPointer(e)
		dx, dy, ok := v.gestures.Drag(e.MouseX, e.MouseY)
		if !ok {
			v.dispatchHover(v.hover.Update(v.PickPoint(e.MouseX, e.MouseY)), v.pointer)
			return
		}
		pan := input.ModifierHeld() || v.gestures.Button() == sdl.BUTTON_RIGHT
		v.applyGesture(dx, dy, v.camera.Zoom(), pan)

	case input.EventMouseUp:
		v.setPointer(e)
		if v.gestures.Release(e.MouseX, e.MouseY) && e.Button == sdl.BUTTON_LEFT {
			v.fireNodeClick(v.PickPoint(e.MouseX, e.MouseY), v.pointer)
		}
		v.RequestRedraw()

	case input.EventMouseWheel:
		v.gestures.Wheel(now, wheelHold)
		k := input.WheelZoom(v.camera.Zoom(), e.WheelY, v.cfg.Camera.WheelStep)
		v.applyGesture(0, 0, k, false)

	case input.EventKeyDown:
		switch e.Key {
		case sdl.K_ESCAPE:
			v.Quit()
		case sdl.K_SPACE:
			v.ToggleLayout()
		case sdl.K_F12:
			v.ExportFigure("", export.Options{})
		case sdl.K_r:
			v.ResetCamera()
		}
	}
}

func (v *Viewer) setPointer(e input.Event) {
	v.pointer = PointerEvent{
		X:      e.MouseX,
		Y:      e.MouseY,
		Button: e.Button,
		Shift:  input.ModifierHeld(),
	}
	v.pointerKnown = true
}

func (v *Viewer) applyGesture(dx, dy, k float32, pan bool) {
	res := v.camera.Gesture(dx, dy, k, pan)
	if res.Zoomed {
		v.fireZoom()
	}
	if res.Rotated {
		v.fireRotation()
	}
	if res.Changed() {
		v.markGeometry()
	}
}

// PickPoint returns the index of the node under (x, y), in window display
// units, or -1. It reads the picking pass of the last frame.
func (v *Viewer) PickPoint(x, y float32) int {
	start := time.Now()
	w, h := v.window.Size()
	index := v.picker.Resolve(x, y, float32(w), float32(h))
	if !v.inModel(index) {
		index = -1
	}
	v.metrics.RecordPick(index >= 0, time.Since(start))
	return index
}

// CanvasSize returns the canvas size in pixels: the window size times the
// device pixel ratio, never below the configured minimum ratio.
func (v *Viewer) CanvasSize() (int, int) {
	ww, wh := v.window.Size()
	dw, _ := v.window.DrawableSize()
	ratio := float32(1)
	if ww > 0 {
		ratio = float32(dw) / float32(ww)
	}
	ratio = max(ratio, v.cfg.Render.MinDPR)
	return int(math.Round(float64(float32(ww) * ratio))), int(math.Round(float64(float32(wh) * ratio)))
}

// Capture draws one visible pass into a dedicated offscreen target and
// returns its pixels, bottom row first. The target is released before
// Capture returns.
func (v *Viewer) Capture(width, height int, background [4]float32) ([]byte, error) {
	fb, err := framebuffer.New(int32(width), int32(height))
	if err != nil {
		return nil, err
	}
	defer fb.Destroy()

	fb.SetBackground(background)
	v.renderer.Draw(fb, false, v.camera)
	pixels := fb.ReadPixels()
	if err := window.CheckGLError(); err != nil {
		return nil, err
	}
	v.RequestRedraw()
	return pixels, nil
}

// ExportFigure writes the current view to filename. An empty filename gets
// a timestamped PNG name. Failures are logged and reported through the
// notification handler; the view keeps running.
func (v *Viewer) ExportFigure(filename string, opts export.Options) (string, error) {
	path, err := v.exporter.Export(filename, opts)
	if err != nil {
		v.log.Error("export failed", zap.Error(err))
		v.notify(Notification{Title: "Export failed", Message: err.Error(), Err: err})
		return "", err
	}
	return path, nil
}

// ToggleLayout pauses or resumes the layout worker.
func (v *Viewer) ToggleLayout() {
	if v.layout != nil {
		v.layout.Toggle()
	}
}

// StopLayout pauses the layout worker.
func (v *Viewer) StopLayout() {
	if v.layout != nil {
		v.layout.Stop()
	}
}

// ResumeLayout resumes the layout worker.
func (v *Viewer) ResumeLayout() {
	if v.layout != nil {
		v.layout.Resume()
	}
}

// LayoutRunning reports whether the layout worker was last asked to run.
func (v *Viewer) LayoutRunning() bool {
	return v.layout != nil && v.layout.Running()
}

// Model returns the network being shown.
func (v *Viewer) Model() *network.Model {
	return v.model
}

// UpdateGeometry re-uploads every node and edge buffer before the next
// frame. Call it after mutating the model directly.
func (v *Viewer) UpdateGeometry() {
	v.markGeometry()
}

// NodePositions applies val to every node position and returns the backing
// array. Unless val is a query the buffers are re-uploaded.
func (v *Viewer) NodePositions(val network.Value[network.Vec3]) []float32 {
	return v.applied(v.model.ApplyPositions(val), val.IsQuery())
}

// NodeColors applies val to every node color.
func (v *Viewer) NodeColors(val network.Value[network.Vec3]) []float32 {
	return v.applied(v.model.ApplyColors(val), val.IsQuery())
}

// NodeOutlineColors applies val to every outline color.
func (v *Viewer) NodeOutlineColors(val network.Value[network.Vec3]) []float32 {
	return v.applied(v.model.ApplyOutlineColors(val), val.IsQuery())
}

// NodeSizes applies val to every node size.
func (v *Viewer) NodeSizes(val network.Value[float32]) []float32 {
	return v.applied(v.model.ApplySizes(val), val.IsQuery())
}

// NodeOutlineWidths applies val to every outline width.
func (v *Viewer) NodeOutlineWidths(val network.Value[float32]) []float32 {
	return v.applied(v.model.ApplyOutlineWidths(val), val.IsQuery())
}

// NodeIntensities applies val to every node intensity.
func (v *Viewer) NodeIntensities(val network.Value[float32]) []float32 {
	return v.applied(v.model.ApplyIntensities(val), val.IsQuery())
}

func (v *Viewer) applied(arr []float32, query bool) []float32 {
	if !query {
		v.markGeometry()
	}
	return arr
}

// Zoom returns the zoom factor.
func (v *Viewer) Zoom() float32 {
	return v.camera.Zoom()
}

// SetZoom sets the zoom factor, animated over d when d > 0.
func (v *Viewer) SetZoom(z float32, d time.Duration) *Viewer {
	if d > 0 {
		v.camera.AnimateZoom(z, d, time.Now())
	} else {
		v.camera.SetZoom(z)
		v.fireZoom()
	}
	v.RequestRedraw()
	return v
}

// Rotation returns the camera rotation.
func (v *Viewer) Rotation() mgl32.Quat {
	return v.camera.Rotation()
}

// SetRotation replaces the camera rotation.
func (v *Viewer) SetRotation(q mgl32.Quat) *Viewer {
	v.camera.SetRotation(q)
	v.fireRotation()
	v.RequestRedraw()
	return v
}

// ResetCamera restores identity rotation, no pan and zoom 1.
func (v *Viewer) ResetCamera() *Viewer {
	v.camera.Reset()
	v.fireZoom()
	v.fireRotation()
	v.RequestRedraw()
	return v
}

// Background returns the visible background color.
func (v *Viewer) Background() [4]float32 {
	return v.renderer.Background()
}

// SetBackground sets the visible background color.
func (v *Viewer) SetBackground(c [4]float32) *Viewer {
	v.renderer.SetBackground(c)
	v.RequestRedraw()
	return v
}

// EdgesIntensity returns the edge color multiplier.
func (v *Viewer) EdgesIntensity() float32 {
	return v.renderer.EdgesIntensity()
}

// SetEdgesIntensity sets the edge color multiplier.
func (v *Viewer) SetEdgesIntensity(i float32) *Viewer {
	v.renderer.SetEdgesIntensity(i)
	v.RequestRedraw()
	return v
}

// AdditiveBlending reports whether edges blend additively.
func (v *Viewer) AdditiveBlending() bool {
	return v.renderer.AdditiveBlending()
}

// SetAdditiveBlending switches edge blending.
func (v *Viewer) SetAdditiveBlending(on bool) *Viewer {
	v.renderer.SetAdditiveBlending(on)
	v.RequestRedraw()
	return v
}

// FastEdges reports whether edges are hidden during gestures.
func (v *Viewer) FastEdges() bool {
	return v.renderer.FastEdges()
}

// SetFastEdges hides edges during gestures when on.
func (v *Viewer) SetFastEdges(on bool) *Viewer {
	v.renderer.SetFastEdges(on)
	v.RequestRedraw()
	return v
}
