package viewer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/netviz/internal/engine/picking"
	"github.com/Faultbox/netviz/internal/network"
)

// PointerEvent describes the pointer at the time of a node event, in window
// display units.
type PointerEvent struct {
	X, Y   float32
	Button uint8
	Shift  bool
}

// Notification is a user-facing message, such as a failed export.
type Notification struct {
	Title   string
	Message string
	Err     error
}

// Handler types.
type (
	ResizeHandler       func(width, height int)
	NodeHandler         func(node network.Node, e PointerEvent)
	ZoomHandler         func(zoom float32)
	RotationHandler     func(rotation mgl32.Quat)
	LayoutHandler       func()
	DrawHandler         func()
	ReadyHandler        func(v *Viewer)
	NotificationHandler func(n Notification)
)

// events holds one optional handler per event kind. Registering replaces
// the previous handler.
type events struct {
	resize       ResizeHandler
	nodeClick    NodeHandler
	hoverStart   NodeHandler
	hoverMove    NodeHandler
	hoverEnd     NodeHandler
	zoom         ZoomHandler
	rotation     RotationHandler
	layoutStart  LayoutHandler
	layoutFinish LayoutHandler
	draw         DrawHandler
	ready        ReadyHandler
	notification NotificationHandler
}

// OnResize sets the handler called with the new window size.
func (v *Viewer) OnResize(h ResizeHandler) *Viewer { v.events.resize = h; return v }

// OnNodeClick sets the handler called when a node is clicked.
func (v *Viewer) OnNodeClick(h NodeHandler) *Viewer { v.events.nodeClick = h; return v }

// OnNodeHoverStart sets the handler called when the pointer enters a node.
func (v *Viewer) OnNodeHoverStart(h NodeHandler) *Viewer { v.events.hoverStart = h; return v }

// OnNodeHoverMove sets the handler called while the pointer stays on a node.
func (v *Viewer) OnNodeHoverMove(h NodeHandler) *Viewer { v.events.hoverMove = h; return v }

// OnNodeHoverEnd sets the handler called when the pointer leaves a node.
func (v *Viewer) OnNodeHoverEnd(h NodeHandler) *Viewer { v.events.hoverEnd = h; return v }

// OnZoom sets the handler called when the zoom factor changes.
func (v *Viewer) OnZoom(h ZoomHandler) *Viewer { v.events.zoom = h; return v }

// OnRotation sets the handler called when the camera rotates.
func (v *Viewer) OnRotation(h RotationHandler) *Viewer { v.events.rotation = h; return v }

// OnLayoutStart sets the handler called when position interpolation begins.
func (v *Viewer) OnLayoutStart(h LayoutHandler) *Viewer { v.events.layoutStart = h; return v }

// OnLayoutFinish sets the handler called when positions reach their target.
func (v *Viewer) OnLayoutFinish(h LayoutHandler) *Viewer { v.events.layoutFinish = h; return v }

// OnDraw sets the handler called after every frame.
func (v *Viewer) OnDraw(h DrawHandler) *Viewer { v.events.draw = h; return v }

// OnReady sets the handler called once the viewer runs. If it is already
// running the handler is called immediately.
func (v *Viewer) OnReady(h ReadyHandler) *Viewer {
	v.events.ready = h
	if v.ready && h != nil {
		h(v)
	}
	return v
}

// OnNotification sets the handler for user-facing messages. Without one,
// notifications are shown in a message box.
func (v *Viewer) OnNotification(h NotificationHandler) *Viewer { v.events.notification = h; return v }

func (v *Viewer) markReady() {
	if v.ready {
		return
	}
	v.ready = true
	if v.events.ready != nil {
		v.events.ready(v)
	}
}

func (v *Viewer) fireResize(width, height int) {
	if v.events.resize != nil {
		v.events.resize(width, height)
	}
}

func (v *Viewer) fireZoom() {
	if v.events.zoom != nil {
		v.events.zoom(v.camera.Zoom())
	}
}

func (v *Viewer) fireRotation() {
	if v.events.rotation != nil {
		v.events.rotation(v.camera.Rotation())
	}
}

func (v *Viewer) fireLayoutStart() {
	if v.events.layoutStart != nil {
		v.events.layoutStart()
	}
}

func (v *Viewer) fireLayoutFinish() {
	if v.events.layoutFinish != nil {
		v.events.layoutFinish()
	}
}

func (v *Viewer) fireDraw() {
	if v.events.draw != nil {
		v.events.draw()
	}
}

func (v *Viewer) fireNodeClick(index int, e PointerEvent) {
	if v.events.nodeClick != nil && v.inModel(index) {
		v.events.nodeClick(v.model.Node(index), e)
	}
}

// dispatchHover invokes the hover handlers for transitions, in order.
func (v *Viewer) dispatchHover(ts []picking.Transition, e PointerEvent) {
	for _, t := range ts {
		var h NodeHandler
		switch t.Kind {
		case picking.HoverStart:
			h = v.events.hoverStart
		case picking.HoverMove:
			h = v.events.hoverMove
		case picking.HoverEnd:
			h = v.events.hoverEnd
		}
		if h != nil && v.inModel(t.Index) {
			h(v.model.Node(t.Index), e)
		}
	}
}

func (v *Viewer) inModel(index int) bool {
	return index >= 0 && index < v.model.Len()
}

func (v *Viewer) notify(n Notification) {
	if v.events.notification != nil {
		v.events.notification(n)
		return
	}
	if v.window != nil {
		v.window.Alert(n.Title, n.Message)
	}
}
