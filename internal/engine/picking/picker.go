package picking

// Target is the offscreen surface the picking pass renders into.
type Target interface {
	Size() (width, height int32)
	Resize(width, height int32)
	// Clear zeroes the color attachment, which decodes as no selection.
	Clear()
	// ReadPixel returns the RGBA bytes at (x, y), origin bottom-left.
	ReadPixel(x, y int32) [4]byte
	Destroy()
}

// DefaultRatio is the picking target size relative to the canvas.
const DefaultRatio = 0.25

// Picker owns the picking target and resolves pointer positions against it.
type Picker struct {
	target Target
	ratio  float32
	nodes  int
}

// NewPicker takes ownership of target and clears it. nodes bounds the
// indices Resolve may return. A ratio <= 0 uses DefaultRatio.
func NewPicker(target Target, ratio float32, nodes int) *Picker {
	if ratio <= 0 {
		ratio = DefaultRatio
	}
	target.Clear()
	return &Picker{target: target, ratio: ratio, nodes: nodes}
}

// SetNodes changes the node count bounding resolved indices.
func (p *Picker) SetNodes(n int) {
	p.nodes = n
}

// Ratio returns the target-to-canvas size ratio.
func (p *Picker) Ratio() float32 {
	return p.ratio
}

// TargetSize returns the picking target size for a canvas size.
func (p *Picker) TargetSize(canvasW, canvasH int) (int32, int32) {
	w := max(int32(float32(canvasW)*p.ratio), 1)
	h := max(int32(float32(canvasH)*p.ratio), 1)
	return w, h
}

// Resize reallocates the target for a new canvas size. A reallocated
// target is cleared until the next picking pass.
func (p *Picker) Resize(canvasW, canvasH int) {
	w, h := p.TargetSize(canvasW, canvasH)
	if cw, ch := p.target.Size(); cw == w && ch == h {
		return
	}
	p.target.Resize(w, h)
	p.target.Clear()
}

// Resolve returns the node index under (x, y) in display units, or -1.
// Pixels decoding past the node count resolve to -1.
func (p *Picker) Resolve(x, y, displayW, displayH float32) int {
	w, h := p.target.Size()
	px, py, ok := MapPoint(x, y, displayW, displayH, w, h)
	if !ok {
		return -1
	}
	index := Decode(p.target.ReadPixel(px, py))
	if index >= p.nodes {
		return -1
	}
	return index
}

// Destroy releases the target.
func (p *Picker) Destroy() {
	p.target.Destroy()
}
