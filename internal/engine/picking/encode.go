// Package picking resolves pointer positions to node indices by reading a
// color-encoded offscreen target, and derives hover transitions from the
// resolved index.
package picking

import "math"

// MaxIndex is the largest node index the 32-bit color encoding can carry.
// Index i is stored as i+1, so the all-zero clear color means "no node".
const MaxIndex = math.MaxUint32 - 1

// EncodeBytes returns the little-endian bytes of index+1.
func EncodeBytes(index int) [4]byte {
	v := uint32(index + 1)
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// Encode returns EncodeBytes as normalized color components.
func Encode(index int) [4]float32 {
	b := EncodeBytes(index)
	return [4]float32{
		float32(b[0]) / 255,
		float32(b[1]) / 255,
		float32(b[2]) / 255,
		float32(b[3]) / 255,
	}
}

// EncodeAll fills a per-instance attribute buffer for n nodes.
func EncodeAll(n int) []float32 {
	out := make([]float32, 4*n)
	for i := 0; i < n; i++ {
		c := Encode(i)
		copy(out[i*4:], c[:])
	}
	return out
}

// Decode reverses EncodeBytes. A zero pixel decodes to -1.
func Decode(px [4]byte) int {
	v := uint32(px[0]) | uint32(px[1])<<8 | uint32(px[2])<<16 | uint32(px[3])<<24
	return int(int64(v) - 1)
}

// MapPoint maps a pointer position in display units onto the target pixel
// grid, flipping Y to the bottom-left origin of GL framebuffers. Scaled
// coordinates are floored. ok is false when the point lies outside the
// target, including points a fraction of a pixel left of or above it.
func MapPoint(x, y, displayW, displayH float32, targetW, targetH int32) (px, py int32, ok bool) {
	if displayW <= 0 || displayH <= 0 || targetW <= 0 || targetH <= 0 {
		return 0, 0, false
	}
	fx := float64(x) * float64(targetW) / float64(displayW)
	fy := float64(y) * float64(targetH) / float64(displayH)
	if fx < 0 || fy < 0 || fx >= float64(targetW) || fy >= float64(targetH) {
		return 0, 0, false
	}
	return int32(fx), targetH - 1 - int32(fy), true
}
