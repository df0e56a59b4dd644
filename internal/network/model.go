// Package network holds the node-link data model shared by rendering,
// picking and layout.
//
// Node attributes live in a struct-of-arrays table owned by Model. A Node is
// a thin view bound to an index; it never stores attribute values itself, so
// writes through a Node are immediately visible to the renderer buffers.
package network

import (
	"math/rand/v2"
)

// Vec3 is an RGB color or an XYZ position.
type Vec3 = [3]float32

// Default attribute values for nodes without explicit attributes.
const (
	DefaultSize         = 1.0
	DefaultOutlineWidth = 0.0
	DefaultIntensity    = 1.0

	// RandomExtent is the half-width of the cube random positions are drawn from.
	RandomExtent = 200.0
)

// DefaultOutlineColor is white.
var DefaultOutlineColor = Vec3{1, 1, 1}

// Options controls how a Model is built from records.
type Options struct {
	// Use2D zeroes the z coordinate of every node.
	Use2D bool

	// ColorScale is the scale of input colors (1 or 255). Zero means 1.
	ColorScale float32

	// Rand is the source for random positions. Nil uses a time-seeded source.
	Rand *rand.Rand
}

// Model is the network: an ordered node table, the ID lookup and the
// index-aligned attribute arrays.
type Model struct {
	Index2Node []Node
	ID2Index   map[ID]int

	Positions     []float32 // 3 per node
	Colors        []float32 // 3 per node, 0-1
	OutlineColors []float32 // 3 per node, 0-1
	Sizes         []float32
	Intensities   []float32
	OutlineWidths []float32

	// IndexedEdges holds source,target index pairs.
	IndexedEdges []uint32

	ids   []ID
	attrs []map[string]any
}

// New builds a model. Indices are assigned in encounter order; a repeated
// identifier keeps its first index and its later records are ignored. An
// edge naming an unknown identifier fails construction.
func New(nodes []NodeRecord, edges []EdgeRecord, opts Options) (*Model, error) {
	m := &Model{
		ID2Index: make(map[ID]int, len(nodes)),
	}

	records := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		if _, seen := m.ID2Index[n.ID]; seen {
			continue
		}
		m.ID2Index[n.ID] = len(m.ids)
		m.ids = append(m.ids, n.ID)
		records = append(records, n.Record)
	}

	count := len(m.ids)
	m.IndexedEdges = make([]uint32, 0, len(edges)*2)
	for i, e := range edges {
		src, ok := m.ID2Index[e.Source]
		if !ok {
			return nil, &ConstructionError{Edge: i, Endpoint: "source", ID: e.Source}
		}
		dst, ok := m.ID2Index[e.Target]
		if !ok {
			return nil, &ConstructionError{Edge: i, Endpoint: "target", ID: e.Target}
		}
		m.IndexedEdges = append(m.IndexedEdges, uint32(src), uint32(dst))
	}

	m.Positions = make([]float32, 3*count)
	m.Colors = make([]float32, 3*count)
	m.OutlineColors = make([]float32, 3*count)
	m.Sizes = make([]float32, count)
	m.Intensities = make([]float32, count)
	m.OutlineWidths = make([]float32, count)
	m.attrs = make([]map[string]any, count)
	m.Index2Node = make([]Node, count)

	scale := opts.ColorScale
	if scale == 0 {
		scale = 1
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	for i, rec := range records {
		if rec.Position != nil {
			m.setVec3(m.Positions, i, *rec.Position)
		} else {
			m.setVec3(m.Positions, i, Vec3{
				randomCoord(rng),
				randomCoord(rng),
				randomCoord(rng),
			})
		}
		if opts.Use2D {
			m.Positions[i*3+2] = 0
		}

		if rec.Color != nil {
			m.setVec3(m.Colors, i, scaleColor(*rec.Color, scale))
		} else {
			m.setVec3(m.Colors, i, Inferno(float64(i)/float64(count)))
		}

		if rec.OutlineColor != nil {
			m.setVec3(m.OutlineColors, i, scaleColor(*rec.OutlineColor, scale))
		} else {
			m.setVec3(m.OutlineColors, i, DefaultOutlineColor)
		}

		m.Sizes[i] = DefaultSize
		if rec.Size != nil {
			m.Sizes[i] = *rec.Size
		}
		m.OutlineWidths[i] = DefaultOutlineWidth
		if rec.OutlineWidth != nil {
			m.OutlineWidths[i] = *rec.OutlineWidth
		}
		m.Intensities[i] = DefaultIntensity

		m.attrs[i] = rec.Attributes
		m.Index2Node[i] = Node{model: m, index: i}
	}

	return m, nil
}

func randomCoord(rng *rand.Rand) float32 {
	return float32((rng.Float64() - 0.5) * 2 * RandomExtent)
}

func scaleColor(c Vec3, scale float32) Vec3 {
	if scale == 1 {
		return c
	}
	return Vec3{c[0] / scale, c[1] / scale, c[2] / scale}
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.ids)
}

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int {
	return len(m.IndexedEdges) / 2
}

// Node returns the view for index i.
func (m *Model) Node(i int) Node {
	return m.Index2Node[i]
}

// NodeByID looks up a node by identifier.
func (m *Model) NodeByID(id ID) (Node, bool) {
	i, ok := m.ID2Index[id]
	if !ok {
		return Node{}, false
	}
	return m.Index2Node[i], true
}

// Edge returns the endpoint indices of edge e.
func (m *Model) Edge(e int) (source, target int) {
	return int(m.IndexedEdges[e*2]), int(m.IndexedEdges[e*2+1])
}

// Use2D zeroes every z coordinate.
func (m *Model) Use2D() {
	for i := 2; i < len(m.Positions); i += 3 {
		m.Positions[i] = 0
	}
}

func (m *Model) vec3(arr []float32, i int) Vec3 {
	return Vec3{arr[i*3], arr[i*3+1], arr[i*3+2]}
}

func (m *Model) setVec3(arr []float32, i int, v Vec3) {
	arr[i*3] = v[0]
	arr[i*3+1] = v[1]
	arr[i*3+2] = v[2]
}
