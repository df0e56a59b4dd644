package network

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestNewTwoNodes(t *testing.T) {
	nodes := []NodeRecord{{ID: "A"}, {ID: "B"}}
	edges := []EdgeRecord{{Source: "A", Target: "B"}}

	m, err := New(nodes, edges, Options{Rand: seeded()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.ID2Index["A"] != 0 || m.ID2Index["B"] != 1 {
		t.Errorf("ID2Index: got %v, want A=0 B=1", m.ID2Index)
	}
	if len(m.IndexedEdges) != 2 || m.IndexedEdges[0] != 0 || m.IndexedEdges[1] != 1 {
		t.Errorf("IndexedEdges: got %v, want [0 1]", m.IndexedEdges)
	}
	if len(m.Positions) != 6 {
		t.Errorf("Positions length: got %d, want 6", len(m.Positions))
	}
	for i, s := range m.Sizes {
		if s != 1 {
			t.Errorf("size %d: got %v, want 1", i, s)
		}
	}
	for i, v := range m.Intensities {
		if v != 1 {
			t.Errorf("intensity %d: got %v, want 1", i, v)
		}
	}
	for i, v := range m.OutlineColors {
		if v != 1 {
			t.Errorf("outline color component %d: got %v, want 1", i, v)
		}
	}
	for i, p := range m.Positions {
		if p < -RandomExtent || p > RandomExtent {
			t.Errorf("position component %d out of range: %v", i, p)
		}
	}
}

func TestNewUnknownEdgeEndpoint(t *testing.T) {
	nodes := []NodeRecord{{ID: "A"}}
	edges := []EdgeRecord{{Source: "A", Target: "Z"}}

	_, err := New(nodes, edges, Options{})
	if !errors.Is(err, ErrUnknownNodeReference) {
		t.Fatalf("expected ErrUnknownNodeReference, got %v", err)
	}
	var ce *ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConstructionError, got %T", err)
	}
	if ce.ID != "Z" || ce.Endpoint != "target" || ce.Edge != 0 {
		t.Errorf("ConstructionError: got %+v", ce)
	}
}

func TestNewDuplicateIDKeepsFirst(t *testing.T) {
	size := float32(5)
	nodes := []NodeRecord{
		{ID: "A"},
		{ID: "B"},
		{ID: "A", Record: Record{Size: &size}},
	}

	m, err := New(nodes, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", m.Len())
	}
	if got := m.Node(0).Size(); got != 1 {
		t.Errorf("first record should win: got size %v, want 1", got)
	}
}

func TestNewExplicitAttributes(t *testing.T) {
	pos := Vec3{1, 2, 3}
	color := Vec3{255, 0, 51}
	width := float32(0.5)
	nodes := []NodeRecord{{ID: "A", Record: Record{Position: &pos, Color: &color, OutlineWidth: &width}}}

	m, err := New(nodes, nil, Options{ColorScale: 255, Use2D: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n := m.Node(0)
	if got := n.Position(); got != (Vec3{1, 2, 0}) {
		t.Errorf("Position: got %v, want [1 2 0]", got)
	}
	if got := n.Color(); got != (Vec3{1, 0, 0.2}) {
		t.Errorf("Color: got %v, want [1 0 0.2]", got)
	}
	if got := n.OutlineWidth(); got != 0.5 {
		t.Errorf("OutlineWidth: got %v, want 0.5", got)
	}
}

func TestApplyBulk(t *testing.T) {
	nodes, edges := Generate(10, 20, 7)
	m, err := New(nodes, edges, Options{Rand: seeded()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	sizes := m.ApplySizes(Constant[float32](3))
	for i, s := range sizes {
		if s != 3 {
			t.Errorf("size %d: got %v, want 3", i, s)
		}
	}

	m.ApplyColors(PerNode(func(n Node, i int, _ *Model) Vec3 {
		return Vec3{float32(i) / 10, 0, 0}
	}))
	for i, n := range m.Index2Node {
		if got := n.Color()[0]; got != float32(i)/10 {
			t.Errorf("color %d: got %v, want %v", i, got, float32(i)/10)
		}
	}

	before := append([]float32(nil), m.Positions...)
	after := m.ApplyPositions(Query[Vec3]())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("query changed position %d", i)
		}
	}
}

func TestApplySingle(t *testing.T) {
	m, err := New([]NodeRecord{{ID: "A"}, {ID: "B"}}, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := m.ApplySize("B", Constant[float32](4)); err != nil {
		t.Fatalf("ApplySize: %v", err)
	}
	got, err := m.ApplySize("B", Query[float32]())
	if err != nil || got != 4 {
		t.Errorf("ApplySize query: got %v, %v; want 4, nil", got, err)
	}
	if m.Sizes[0] != 1 {
		t.Errorf("other node changed: got %v, want 1", m.Sizes[0])
	}

	if _, err := m.ApplyColor("missing", Query[Vec3]()); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("expected ErrUnknownNode, got %v", err)
	}
}

func TestSetterGetterIdempotent(t *testing.T) {
	m, err := New([]NodeRecord{{ID: "A"}}, nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	n := m.Node(0)

	for _, c := range []Vec3{{0, 0, 0}, {0.25, 0.5, 0.75}, {1, 1, 1}} {
		n.SetColor(c)
		if got := n.Color(); got != c {
			t.Errorf("Color: got %v, want %v", got, c)
		}
		n.SetOutlineColor(c)
		if got := n.OutlineColor(); got != c {
			t.Errorf("OutlineColor: got %v, want %v", got, c)
		}
	}
	for _, s := range []float32{0, 0.5, 12} {
		n.SetSize(s)
		if got := n.Size(); got != s {
			t.Errorf("Size: got %v, want %v", got, s)
		}
		n.SetIntensity(s)
		if got := n.Intensity(); got != s {
			t.Errorf("Intensity: got %v, want %v", got, s)
		}
	}
}

func TestReadJSONPreservesOrder(t *testing.T) {
	input := `{
		"nodes": {
			"z": {"size": 2, "label": "last letter"},
			"a": {"color": [1, 0, 0]},
			"7": {}
		},
		"edges": [{"source": "z", "target": "a"}, {"source": 7, "target": "z"}]
	}`

	m, err := DecodeJSON(strings.NewReader(input), Options{})
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}

	want := []ID{"z", "a", "7"}
	for i, id := range want {
		if got := m.Node(i).ID(); got != id {
			t.Errorf("node %d: got %q, want %q", i, got, id)
		}
	}
	if got := m.Node(0).Size(); got != 2 {
		t.Errorf("size: got %v, want 2", got)
	}
	if v, ok := m.Node(0).Attr("label"); !ok || v != "last letter" {
		t.Errorf("attr label: got %v, %v", v, ok)
	}
	if s, d := m.Edge(1); s != 2 || d != 0 {
		t.Errorf("edge 1: got %d->%d, want 2->0", s, d)
	}
}

func TestReadJSONNodeArray(t *testing.T) {
	input := `{"nodes": [{"id": 1, "size": 3}, {"id": "x"}], "edges": []}`

	nodes, _, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(nodes) != 2 || nodes[0].ID != "1" || nodes[1].ID != "x" {
		t.Fatalf("nodes: got %+v", nodes)
	}
	if nodes[0].Record.Size == nil || *nodes[0].Record.Size != 3 {
		t.Errorf("size: got %v, want 3", nodes[0].Record.Size)
	}
	if _, ok := nodes[0].Record.Attributes["id"]; ok {
		t.Error("id should not be kept as an attribute")
	}
}

func TestInfernoEndpoints(t *testing.T) {
	tests := []struct {
		t    float64
		want Vec3
	}{
		{-1, infernoVec(0)},
		{0, infernoVec(0)},
		{1, infernoVec(len(infernoStops) - 1)},
		{2, infernoVec(len(infernoStops) - 1)},
	}
	for _, tt := range tests {
		if got := Inferno(tt.t); got != tt.want {
			t.Errorf("Inferno(%v): got %v, want %v", tt.t, got, tt.want)
		}
	}

	mid := Inferno(0.55)
	for i, c := range mid {
		if c < 0 || c > 1 {
			t.Errorf("Inferno(0.55) component %d out of range: %v", i, c)
		}
	}
}

func infernoVec(i int) Vec3 { return toVec3(infernoStops[i]) }

func TestModelProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("array lengths match node and edge counts", prop.ForAll(
		func(n, e int) bool {
			nodes, edges := Generate(n, e, uint64(n*31+e))
			m, err := New(nodes, edges, Options{Rand: seeded()})
			if err != nil {
				return false
			}
			count := m.Len()
			return len(m.Positions) == 3*count &&
				len(m.Colors) == 3*count &&
				len(m.OutlineColors) == 3*count &&
				len(m.Sizes) == count &&
				len(m.Intensities) == count &&
				len(m.OutlineWidths) == count &&
				len(m.IndexedEdges) == 2*len(edges)
		},
		gen.IntRange(0, 300),
		gen.IntRange(0, 900),
	))

	properties.Property("ID2Index inverts Index2Node", prop.ForAll(
		func(n int) bool {
			nodes, _ := Generate(n, 0, 1)
			m, err := New(nodes, nil, Options{Rand: seeded()})
			if err != nil {
				return false
			}
			for i, node := range m.Index2Node {
				if m.ID2Index[node.ID()] != i || node.Index() != i {
					return false
				}
			}
			return len(m.ID2Index) == len(m.Index2Node)
		},
		gen.IntRange(0, 500),
	))

	properties.TestingRun(t)
}
