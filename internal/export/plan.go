// Package export renders the network into an offscreen target and writes
// it as a PNG, JPEG or SVG figure.
package export

import (
	"errors"
	"fmt"
	"math"
)

// Defaults applied to zero Options fields.
const (
	DefaultScale       = 1
	DefaultSupersample = 4

	// MaxTargetSize bounds either dimension of the offscreen target.
	MaxTargetSize = 16384
)

// ErrInvalidOptions is returned by Plan for sizes that cannot be rendered.
var ErrInvalidOptions = errors.New("invalid export options")

// Options describes one figure. Zero Width and Height mean the canvas size;
// when only one is set the other follows the canvas aspect ratio.
type Options struct {
	Scale       float32
	Supersample float32
	Width       int
	Height      int
	// Background overrides the visible background color.
	Background *[4]float32
}

// Size is the resolved figure geometry.
type Size struct {
	// Width and Height of the written image.
	Width, Height int
	// TargetWidth and TargetHeight of the offscreen render.
	TargetWidth, TargetHeight int
}

// Supersampled reports whether the render is larger than the output.
func (s Size) Supersampled() bool {
	return s.TargetWidth != s.Width || s.TargetHeight != s.Height
}

// Plan resolves opts against a canvas of canvasW x canvasH.
func Plan(opts Options, canvasW, canvasH int) (Size, error) {
	if canvasW <= 0 || canvasH <= 0 {
		return Size{}, fmt.Errorf("%w: canvas %dx%d", ErrInvalidOptions, canvasW, canvasH)
	}
	if opts.Width < 0 || opts.Height < 0 {
		return Size{}, fmt.Errorf("%w: size %dx%d", ErrInvalidOptions, opts.Width, opts.Height)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	ss := opts.Supersample
	if ss == 0 {
		ss = DefaultSupersample
	}
	if scale < 0 || ss < 1 {
		return Size{}, fmt.Errorf("%w: scale %v, supersample %v", ErrInvalidOptions, scale, ss)
	}

	w, h := opts.Width, opts.Height
	aspect := float64(canvasW) / float64(canvasH)
	switch {
	case w == 0 && h == 0:
		w, h = canvasW, canvasH
	case h == 0:
		h = round(float64(w) / aspect)
	case w == 0:
		w = round(float64(h) * aspect)
	}

	s := Size{
		Width:        round(float64(w) * float64(scale)),
		Height:       round(float64(h) * float64(scale)),
		TargetWidth:  round(float64(w) * float64(scale) * float64(ss)),
		TargetHeight: round(float64(h) * float64(scale) * float64(ss)),
	}
	if s.Width <= 0 || s.Height <= 0 {
		return Size{}, fmt.Errorf("%w: empty output %dx%d", ErrInvalidOptions, s.Width, s.Height)
	}
	if s.TargetWidth > MaxTargetSize || s.TargetHeight > MaxTargetSize {
		return Size{}, fmt.Errorf("%w: target %dx%d exceeds %d",
			ErrInvalidOptions, s.TargetWidth, s.TargetHeight, MaxTargetSize)
	}
	return s, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
