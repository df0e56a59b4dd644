package layout

// MaxDisplacement returns the largest per-coordinate absolute difference
// between cur and target. Both slices must have the same length.
func MaxDisplacement(cur, target []float32) float32 {
	var m float32
	for i, t := range target {
		d := t - cur[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

// Interpolate moves every coordinate of cur the fraction f of the way toward
// target and returns the displacement measured before the move. The whole
// slice is written before Interpolate returns.
func Interpolate(cur, target []float32, f float32) float32 {
	var m float32
	for i, t := range target {
		d := t - cur[i]
		cur[i] += f * d
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}
