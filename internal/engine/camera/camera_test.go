package camera

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.Distance != 450 {
		t.Errorf("Distance: got %v, want 450", c.Distance)
	}
	if c.Zoom() != 1 {
		t.Errorf("Zoom: got %v, want 1", c.Zoom())
	}

	view := c.ViewMatrix()
	if !approx(view.At(2, 3), -450, 1e-4) {
		t.Errorf("view z translation: got %v, want -450", view.At(2, 3))
	}
}

func TestViewTranslationFollowsZoom(t *testing.T) {
	c := New()
	c.SetZoom(2)
	c.PanX, c.PanY = 3, -4

	view := c.ViewMatrix()
	tests := []struct {
		row  int
		want float32
	}{
		{0, 3},
		{1, -4},
		{2, -225},
	}
	for _, tt := range tests {
		if got := view.At(tt.row, 3); !approx(got, tt.want, 1e-4) {
			t.Errorf("translation row %d: got %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestPanScale(t *testing.T) {
	c := New()
	c.SetZoom(2)

	res := c.Gesture(10, 5, 2, true)
	if !res.Panned || res.Rotated || res.Zoomed {
		t.Fatalf("gesture result: got %+v, want pan only", res)
	}

	wantX := float32(10) / (450 * 2) * 400
	wantY := -float32(5) / (450 * 2) * 400
	if !approx(c.PanX, wantX, 1e-5) || !approx(c.PanY, wantY, 1e-5) {
		t.Errorf("pan: got (%v,%v), want (%v,%v)", c.PanX, c.PanY, wantX, wantY)
	}
	if c.Rotation() != mgl32.QuatIdent() {
		t.Errorf("pan should not rotate, got %v", c.Rotation())
	}
}

func TestDragPansIn2D(t *testing.T) {
	c := New()
	c.Use2D = true

	res := c.Gesture(4, 0, 1, false)
	if !res.Panned || res.Rotated {
		t.Errorf("2D drag: got %+v, want pan", res)
	}
}

func TestRotateMatchesAxisAngles(t *testing.T) {
	c := New()
	c.Gesture(20, 0, 1, false)

	// 20px about Y is 10 degrees.
	want := mgl32.HomogRotate3DY(mgl32.DegToRad(10))
	got := c.Rotation().Mat4()
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("rotation: got %v, want %v", got, want)
	}
}

func TestRotationStaysOrthonormal(t *testing.T) {
	c := New()
	for i := 0; i < 5000; i++ {
		c.Gesture(float32(i%17)-8, float32(i%11)-5, 1, false)
	}

	r := c.Rotation().Mat4().Mat3()
	product := r.Mul3(r.Transpose())
	if !product.ApproxEqualThreshold(mgl32.Ident3(), 1e-4) {
		t.Errorf("R*R^T: got %v, want identity", product)
	}
	if det := r.Det(); !approx(det, 1, 1e-4) {
		t.Errorf("det: got %v, want 1", det)
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		in   float32
		want float32
	}{
		{1, 1},
		{0, 0.01},
		{-3, 0.01},
		{0.001, 0.01},
		{500, 100},
	}
	for _, tt := range tests {
		c := New()
		c.SetZoom(tt.in)
		if got := c.Zoom(); got != tt.want {
			t.Errorf("SetZoom(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGestureZoomOnly(t *testing.T) {
	c := New()
	res := c.Gesture(0, 0, 1.5, false)
	if !res.Zoomed || res.Rotated || res.Panned {
		t.Errorf("zoom gesture: got %+v", res)
	}
	if c.Zoom() != 1.5 {
		t.Errorf("Zoom: got %v, want 1.5", c.Zoom())
	}

	if res := c.Gesture(0, 0, 1.5, false); res.Changed() {
		t.Errorf("repeated zoom should not change: %+v", res)
	}
}

func TestAnimateZoom(t *testing.T) {
	c := New()
	start := time.Unix(100, 0)
	c.AnimateZoom(4, time.Second, start)

	if !c.Animating() {
		t.Fatal("expected animation in progress")
	}
	if c.Update(start) {
		t.Error("no change expected at t=0")
	}

	c.Update(start.Add(500 * time.Millisecond))
	if mid := c.Zoom(); mid <= 1 || mid >= 4 {
		t.Errorf("midpoint zoom: got %v, want between 1 and 4", mid)
	}
	if mid := c.Zoom(); !approx(mid, 2, 1e-3) {
		t.Errorf("log-space midpoint: got %v, want 2", mid)
	}

	if !c.Update(start.Add(2 * time.Second)) {
		t.Error("expected a change at the end")
	}
	if c.Zoom() != 4 {
		t.Errorf("end zoom: got %v, want 4", c.Zoom())
	}
	if c.Animating() {
		t.Error("animation should be finished")
	}
}

func TestAnimateZoomZeroDuration(t *testing.T) {
	c := New()
	c.AnimateZoom(3, 0, time.Now())
	if c.Animating() || c.Zoom() != 3 {
		t.Errorf("zero duration: animating=%v zoom=%v", c.Animating(), c.Zoom())
	}
}

func TestCubicInOut(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
	}
	for _, tt := range tests {
		if got := cubicInOut(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("cubicInOut(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalMatrixOfRotation(t *testing.T) {
	c := New()
	c.Gesture(30, -12, 1, false)

	// For a rotation plus translation the normal matrix is the rotation.
	got := c.NormalMatrix()
	want := c.Rotation().Mat4().Mat3()
	if !got.ApproxEqualThreshold(want, 1e-4) {
		t.Errorf("NormalMatrix: got %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	c := New()
	c.Gesture(30, 30, 3, false)
	c.Gesture(30, 30, 3, true)
	c.Reset()

	if c.Zoom() != 1 || c.PanX != 0 || c.PanY != 0 || c.Rotation() != mgl32.QuatIdent() {
		t.Errorf("Reset: zoom=%v pan=(%v,%v) rot=%v", c.Zoom(), c.PanX, c.PanY, c.Rotation())
	}
}
