package network

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// inferno control stops at t = 0, 0.1, ..., 1.
var infernoHex = []string{
	"#000004", "#160b39", "#420a68", "#6a176e", "#932667", "#bc3754",
	"#dd513a", "#f37819", "#fca50a", "#f6d746", "#fcffa4",
}

var infernoStops = mustParseStops(infernoHex)

func mustParseStops(hex []string) []colorful.Color {
	stops := make([]colorful.Color, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(err)
		}
		stops[i] = c
	}
	return stops
}

// Inferno maps t in [0,1] onto the inferno ramp. Values outside are clamped.
func Inferno(t float64) Vec3 {
	if math.IsNaN(t) || t <= 0 {
		return toVec3(infernoStops[0])
	}
	if t >= 1 {
		return toVec3(infernoStops[len(infernoStops)-1])
	}
	pos := t * float64(len(infernoStops)-1)
	i := int(pos)
	c := infernoStops[i].BlendRgb(infernoStops[i+1], pos-float64(i))
	return toVec3(c.Clamped())
}

func toVec3(c colorful.Color) Vec3 {
	return Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
