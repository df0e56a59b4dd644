package network

// NodeFunc computes a per-node attribute value.
type NodeFunc[T any] func(n Node, index int, m *Model) T

type valueKind uint8

const (
	kindQuery valueKind = iota
	kindConstant
	kindPerNode
)

// Value is the argument of the bulk attribute setters: a constant applied to
// every node, a function evaluated per node, or a query that changes nothing.
// The zero Value is a query.
type Value[T any] struct {
	kind     valueKind
	constant T
	fn       NodeFunc[T]
}

// Constant sets every node to v.
func Constant[T any](v T) Value[T] {
	return Value[T]{kind: kindConstant, constant: v}
}

// PerNode evaluates fn for every node.
func PerNode[T any](fn NodeFunc[T]) Value[T] {
	if fn == nil {
		return Value[T]{}
	}
	return Value[T]{kind: kindPerNode, fn: fn}
}

// Query leaves the attribute unchanged.
func Query[T any]() Value[T] {
	return Value[T]{}
}

// IsQuery reports whether v only reads.
func (v Value[T]) IsQuery() bool { return v.kind == kindQuery }

func (v Value[T]) eval(n Node) T {
	if v.kind == kindConstant {
		return v.constant
	}
	return v.fn(n, n.index, n.model)
}

// ApplyPositions sets every node position and returns the backing array.
func (m *Model) ApplyPositions(v Value[Vec3]) []float32 { return m.applyVec3(m.Positions, v) }

// ApplyColors sets every node color and returns the backing array.
func (m *Model) ApplyColors(v Value[Vec3]) []float32 { return m.applyVec3(m.Colors, v) }

// ApplyOutlineColors sets every outline color and returns the backing array.
func (m *Model) ApplyOutlineColors(v Value[Vec3]) []float32 {
	return m.applyVec3(m.OutlineColors, v)
}

// ApplySizes sets every node size and returns the backing array.
func (m *Model) ApplySizes(v Value[float32]) []float32 { return m.applyScalar(m.Sizes, v) }

// ApplyOutlineWidths sets every outline width and returns the backing array.
func (m *Model) ApplyOutlineWidths(v Value[float32]) []float32 {
	return m.applyScalar(m.OutlineWidths, v)
}

// ApplyIntensities sets every node intensity and returns the backing array.
func (m *Model) ApplyIntensities(v Value[float32]) []float32 {
	return m.applyScalar(m.Intensities, v)
}

func (m *Model) applyVec3(arr []float32, v Value[Vec3]) []float32 {
	switch v.kind {
	case kindConstant:
		for i := range m.Index2Node {
			m.setVec3(arr, i, v.constant)
		}
	case kindPerNode:
		for i, n := range m.Index2Node {
			m.setVec3(arr, i, v.fn(n, i, m))
		}
	}
	return arr
}

func (m *Model) applyScalar(arr []float32, v Value[float32]) []float32 {
	switch v.kind {
	case kindConstant:
		for i := range arr {
			arr[i] = v.constant
		}
	case kindPerNode:
		for i, n := range m.Index2Node {
			arr[i] = v.fn(n, i, m)
		}
	}
	return arr
}

// ApplyPosition sets or reads the position of one node.
func (m *Model) ApplyPosition(id ID, v Value[Vec3]) (Vec3, error) {
	return m.applyNodeVec3(id, m.Positions, v)
}

// ApplyColor sets or reads the color of one node.
func (m *Model) ApplyColor(id ID, v Value[Vec3]) (Vec3, error) {
	return m.applyNodeVec3(id, m.Colors, v)
}

// ApplyOutlineColor sets or reads the outline color of one node.
func (m *Model) ApplyOutlineColor(id ID, v Value[Vec3]) (Vec3, error) {
	return m.applyNodeVec3(id, m.OutlineColors, v)
}

// ApplySize sets or reads the size of one node.
func (m *Model) ApplySize(id ID, v Value[float32]) (float32, error) {
	return m.applyNodeScalar(id, m.Sizes, v)
}

// ApplyOutlineWidth sets or reads the outline width of one node.
func (m *Model) ApplyOutlineWidth(id ID, v Value[float32]) (float32, error) {
	return m.applyNodeScalar(id, m.OutlineWidths, v)
}

// ApplyIntensity sets or reads the intensity of one node.
func (m *Model) ApplyIntensity(id ID, v Value[float32]) (float32, error) {
	return m.applyNodeScalar(id, m.Intensities, v)
}

func (m *Model) applyNodeVec3(id ID, arr []float32, v Value[Vec3]) (Vec3, error) {
	n, ok := m.NodeByID(id)
	if !ok {
		return Vec3{}, unknownNode(id)
	}
	if !v.IsQuery() {
		m.setVec3(arr, n.index, v.eval(n))
	}
	return m.vec3(arr, n.index), nil
}

func (m *Model) applyNodeScalar(id ID, arr []float32, v Value[float32]) (float32, error) {
	n, ok := m.NodeByID(id)
	if !ok {
		return 0, unknownNode(id)
	}
	if !v.IsQuery() {
		arr[n.index] = v.eval(n)
	}
	return arr[n.index], nil
}
