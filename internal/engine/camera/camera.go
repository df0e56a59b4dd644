// Package camera provides the orbit/pan/zoom camera used to view the network.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Projection parameters.
const (
	FieldOfView = 70.0 // degrees
	Near        = 1.0
	Far         = 10000.0

	DefaultDistance = 450.0

	// panScale converts pixel deltas into world units at distance 1, zoom 1.
	panScale = 400.0
	// rotateScale is degrees of rotation per pixel of drag.
	rotateScale = 0.5
)

// Camera holds rotation, pan and zoom. Rotation is a unit quaternion and the
// view matrix is derived from it on demand.
type Camera struct {
	Distance float32
	PanX     float32
	PanY     float32

	// Use2D makes every drag pan instead of rotate.
	Use2D bool

	// Zoom constraints
	MinZoom float32
	MaxZoom float32

	rotation mgl32.Quat
	zoom     float32
	tween    *zoomTween
}

// GestureResult reports what a gesture changed.
type GestureResult struct {
	Zoomed  bool
	Rotated bool
	Panned  bool
}

// Changed reports whether anything changed.
func (r GestureResult) Changed() bool {
	return r.Zoomed || r.Rotated || r.Panned
}

// New creates a camera at the default distance with identity rotation.
func New() *Camera {
	return &Camera{
		Distance: DefaultDistance,
		MinZoom:  0.01,
		MaxZoom:  100,
		rotation: mgl32.QuatIdent(),
		zoom:     1,
	}
}

// Reset restores identity rotation, no pan and zoom 1.
func (c *Camera) Reset() {
	c.rotation = mgl32.QuatIdent()
	c.PanX, c.PanY = 0, 0
	c.zoom = 1
	c.tween = nil
}

// Zoom returns the current zoom factor.
func (c *Camera) Zoom() float32 {
	return c.zoom
}

// SetZoom sets the zoom factor immediately, cancelling any animation.
func (c *Camera) SetZoom(z float32) {
	c.tween = nil
	c.zoom = c.clampZoom(z)
}

func (c *Camera) clampZoom(z float32) float32 {
	if math.IsNaN(float64(z)) || z <= 0 {
		z = c.MinZoom
	}
	lo := c.MinZoom
	if lo <= 0 {
		lo = math.SmallestNonzeroFloat32
	}
	if z < lo {
		z = lo
	}
	if c.MaxZoom > lo && z > c.MaxZoom {
		z = c.MaxZoom
	}
	return z
}

// Rotation returns the rotation quaternion.
func (c *Camera) Rotation() mgl32.Quat {
	return c.rotation
}

// SetRotation replaces the rotation. q is normalized.
func (c *Camera) SetRotation(q mgl32.Quat) {
	c.rotation = q.Normalize()
}

// Gesture applies a drag/zoom transform delta. k is the new absolute zoom.
// In 2D mode, or with modifier held, the drag pans; otherwise it rotates
// about the screen axes.
func (c *Camera) Gesture(dx, dy, k float32, modifier bool) GestureResult {
	var res GestureResult

	if z := c.clampZoom(k); z != c.zoom {
		c.tween = nil
		c.zoom = z
		res.Zoomed = true
	}

	if dx == 0 && dy == 0 {
		return res
	}

	if c.Use2D || modifier {
		c.Pan(dx, dy)
		res.Panned = true
	} else {
		c.Rotate(dx, dy)
		res.Rotated = true
	}
	return res
}

// Pan moves the view by a pixel delta, scaled so content tracks the pointer
// at any zoom.
func (c *Camera) Pan(dx, dy float32) {
	scale := panScale / (c.Distance * c.zoom)
	c.PanX += dx * scale
	c.PanY -= dy * scale
}

// Rotate prepends a rotation of dx/2 degrees about Y and dy/2 degrees about X.
func (c *Camera) Rotate(dx, dy float32) {
	qy := mgl32.QuatRotate(mgl32.DegToRad(dx*rotateScale), mgl32.Vec3{0, 1, 0})
	qx := mgl32.QuatRotate(mgl32.DegToRad(dy*rotateScale), mgl32.Vec3{1, 0, 0})
	c.rotation = qy.Mul(qx).Mul(c.rotation).Normalize()
}

// ViewMatrix returns translate(pan, -distance/zoom) * rotation.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(c.PanX, c.PanY, -c.Distance/c.zoom)
	return t.Mul4(c.rotation.Mat4())
}

// ProjectionMatrix returns the perspective projection for an aspect ratio.
func (c *Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(FieldOfView), aspect, Near, Far)
}

// NormalMatrix returns the inverse transpose of the view's upper 3x3.
func (c *Camera) NormalMatrix() mgl32.Mat3 {
	return c.ViewMatrix().Mat3().Inv().Transpose()
}
