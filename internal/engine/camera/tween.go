package camera

import (
	"math"
	"time"
)

type zoomTween struct {
	from, to float32
	start    time.Time
	duration time.Duration
}

// AnimateZoom eases the zoom factor to z over d, starting at now. A
// non-positive duration sets the zoom immediately.
func (c *Camera) AnimateZoom(z float32, d time.Duration, now time.Time) {
	z = c.clampZoom(z)
	if d <= 0 {
		c.SetZoom(z)
		return
	}
	c.tween = &zoomTween{from: c.zoom, to: z, start: now, duration: d}
}

// Animating reports whether a zoom animation is in progress.
func (c *Camera) Animating() bool {
	return c.tween != nil
}

// Update advances a zoom animation to now and reports whether the zoom
// changed.
func (c *Camera) Update(now time.Time) bool {
	if c.tween == nil {
		return false
	}
	tw := c.tween

	t := float64(now.Sub(tw.start)) / float64(tw.duration)
	if t >= 1 {
		c.tween = nil
		changed := c.zoom != tw.to
		c.zoom = tw.to
		return changed
	}
	if t < 0 {
		t = 0
	}

	// Interpolate in log space so zooming in and out feel symmetric.
	e := cubicInOut(t)
	lf, lt := math.Log(float64(tw.from)), math.Log(float64(tw.to))
	z := c.clampZoom(float32(math.Exp(lf + (lt-lf)*e)))
	changed := z != c.zoom
	c.zoom = z
	return changed
}

func cubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}
