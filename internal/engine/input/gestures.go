package input

import (
	"math"
	"time"
)

// ClickSlop is the maximum pointer travel, in display units, between press
// and release for the release to count as a click.
const ClickSlop = 3

// Gestures tracks one pointer drag and the short window after a wheel step
// during which a gesture is considered active.
type Gestures struct {
	pressed  bool
	button   uint8
	originX  float32
	originY  float32
	lastX    float32
	lastY    float32
	traveled float32

	wheelUntil time.Time
}

// Press starts a drag at (x, y).
func (g *Gestures) Press(button uint8, x, y float32) {
	g.pressed = true
	g.button = button
	g.originX, g.originY = x, y
	g.lastX, g.lastY = x, y
	g.traveled = 0
}

// Pressed reports whether a drag is in progress.
func (g *Gestures) Pressed() bool {
	return g.pressed
}

// Button returns the button that started the current drag.
func (g *Gestures) Button() uint8 {
	return g.button
}

// Drag moves the pointer to (x, y) and returns the delta since the last
// position. ok is false when no button is held.
func (g *Gestures) Drag(x, y float32) (dx, dy float32, ok bool) {
	if !g.pressed {
		return 0, 0, false
	}
	dx, dy = x-g.lastX, y-g.lastY
	g.lastX, g.lastY = x, y
	d := float32(math.Hypot(float64(x-g.originX), float64(y-g.originY)))
	g.traveled = max(g.traveled, d)
	return dx, dy, true
}

// Release ends the drag and reports whether it was a click: the pointer
// never strayed more than ClickSlop from where it was pressed.
func (g *Gestures) Release(x, y float32) bool {
	if !g.pressed {
		return false
	}
	g.Drag(x, y)
	g.pressed = false
	return g.traveled < ClickSlop
}

// Wheel records a wheel step at now; the gesture stays active for hold.
func (g *Gestures) Wheel(now time.Time, hold time.Duration) {
	g.wheelUntil = now.Add(hold)
}

// Active reports whether a drag is moving or a wheel step is recent.
func (g *Gestures) Active(now time.Time) bool {
	return (g.pressed && g.traveled >= ClickSlop) || now.Before(g.wheelUntil)
}

// WheelZoom returns the zoom after a wheel step: k * 2^(wheelY*step).
func WheelZoom(k, wheelY, step float32) float32 {
	return k * float32(math.Exp2(float64(wheelY*step)))
}
