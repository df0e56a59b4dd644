package viewer

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/netviz/internal/engine/camera"
	"github.com/Faultbox/netviz/internal/engine/picking"
	"github.com/Faultbox/netviz/internal/network"
)

func testViewer(t *testing.T) *Viewer {
	t.Helper()
	nodes, edges := network.Generate(5, 4, 1)
	m, err := network.New(nodes, edges, network.Options{Rand: rand.New(rand.NewPCG(1, 2))})
	if err != nil {
		t.Fatalf("network.New: %v", err)
	}
	return &Viewer{model: m, camera: camera.New(), hover: picking.NewHover()}
}

func TestRegistrationChains(t *testing.T) {
	v := testViewer(t)
	got := v.OnResize(nil).OnNodeClick(nil).OnNodeHoverStart(nil).OnNodeHoverMove(nil).
		OnNodeHoverEnd(nil).OnZoom(nil).OnRotation(nil).OnLayoutStart(nil).
		OnLayoutFinish(nil).OnDraw(nil).OnReady(nil).OnNotification(nil)
	if got != v {
		t.Errorf("chained registration returned a different viewer")
	}
}

func TestLastRegistrationWins(t *testing.T) {
	v := testViewer(t)
	var calls []string
	v.OnResize(func(w, h int) { calls = append(calls, "first") })
	v.OnResize(func(w, h int) { calls = append(calls, fmt.Sprintf("second %dx%d", w, h)) })

	v.fireResize(640, 480)
	if want := []string{"second 640x480"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("got %v, want %v", calls, want)
	}
}

func TestOnReady(t *testing.T) {
	v := testViewer(t)
	before := 0
	v.OnReady(func(*Viewer) { before++ })
	if before != 0 {
		t.Fatalf("ready handler ran before ready")
	}

	v.markReady()
	v.markReady()
	if before != 1 {
		t.Errorf("ready handler: got %d calls, want 1", before)
	}

	after := 0
	var got *Viewer
	v.OnReady(func(r *Viewer) { after++; got = r })
	if after != 1 || got != v {
		t.Errorf("late ready handler: got %d calls with %p, want 1 with %p", after, got, v)
	}
}

func TestHoverSequence(t *testing.T) {
	v := testViewer(t)
	var got []string
	record := func(kind string) NodeHandler {
		return func(n network.Node, e PointerEvent) {
			got = append(got, fmt.Sprintf("%s(%d)", kind, n.Index()))
		}
	}
	v.OnNodeHoverStart(record("start")).
		OnNodeHoverMove(record("move")).
		OnNodeHoverEnd(record("end"))

	for _, index := range []int{2, 2, -1, 3} {
		v.dispatchHover(v.hover.Update(index), PointerEvent{})
	}
	v.dispatchHover(v.hover.Leave(), PointerEvent{})

	want := []string{"start(2)", "move(2)", "end(2)", "start(3)", "end(3)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNodeClick(t *testing.T) {
	v := testViewer(t)
	var clicked []network.ID
	v.OnNodeClick(func(n network.Node, e PointerEvent) {
		if e.X != 7 || e.Y != 9 {
			t.Errorf("pointer: got (%v, %v), want (7, 9)", e.X, e.Y)
		}
		clicked = append(clicked, n.ID())
	})

	v.fireNodeClick(-1, PointerEvent{X: 7, Y: 9})
	v.fireNodeClick(1, PointerEvent{X: 7, Y: 9})

	if want := []network.ID{v.model.Node(1).ID()}; !reflect.DeepEqual(clicked, want) {
		t.Errorf("clicked: got %v, want %v", clicked, want)
	}
}

func TestIndexPastModelIgnored(t *testing.T) {
	v := testViewer(t)
	calls := 0
	count := func(network.Node, PointerEvent) { calls++ }
	v.OnNodeClick(count).OnNodeHoverStart(count).OnNodeHoverMove(count).OnNodeHoverEnd(count)

	past := v.model.Len() + 4657
	v.fireNodeClick(past, PointerEvent{})
	v.dispatchHover(v.hover.Update(past), PointerEvent{})
	v.dispatchHover(v.hover.Update(past), PointerEvent{})
	v.dispatchHover(v.hover.Leave(), PointerEvent{})

	if calls != 0 {
		t.Errorf("handlers for index %d: got %d calls, want 0", past, calls)
	}
}

func TestCameraEvents(t *testing.T) {
	v := testViewer(t)
	var zoom float32
	rotations := 0
	v.OnZoom(func(z float32) { zoom = z }).OnRotation(func(q mgl32.Quat) { rotations++ })

	v.applyGesture(0, 0, 2, false)
	if zoom != 2 {
		t.Errorf("zoom handler: got %v, want 2", zoom)
	}
	v.applyGesture(10, 0, 2, false)
	if rotations != 1 {
		t.Errorf("rotation handler: got %d calls, want 1", rotations)
	}
	v.applyGesture(10, 0, 2, true)
	if rotations != 1 {
		t.Errorf("pan fired rotation handler")
	}
	if !v.dirty {
		t.Errorf("gesture did not request a redraw")
	}
}

func TestNotify(t *testing.T) {
	v := testViewer(t)
	var got Notification
	v.OnNotification(func(n Notification) { got = n })

	err := errors.New("disk full")
	v.notify(Notification{Title: "Export failed", Message: err.Error(), Err: err})
	if got.Title != "Export failed" || !errors.Is(got.Err, err) {
		t.Errorf("got %+v", got)
	}

	// Without a handler or window, notify is a no-op.
	v.OnNotification(nil)
	v.notify(Notification{Title: "ignored"})
}

func TestGeometryUploadScheduled(t *testing.T) {
	tests := []struct {
		name   string
		action func(v *Viewer)
		want   bool
	}{
		{"layout tick", func(v *Viewer) { v.layoutHooks().Refresh() }, true},
		{"drag", func(v *Viewer) { v.applyGesture(10, 4, v.camera.Zoom(), false) }, true},
		{"wheel", func(v *Viewer) { v.applyGesture(0, 0, v.camera.Zoom()*2, false) }, true},
		{"still gesture", func(v *Viewer) { v.applyGesture(0, 0, v.camera.Zoom(), false) }, false},
		{"color constant", func(v *Viewer) { v.NodeColors(network.Constant(network.Vec3{1, 0, 0})) }, true},
		{"size per node", func(v *Viewer) {
			v.NodeSizes(network.PerNode[float32](func(_ network.Node, i int, _ *network.Model) float32 { return float32(i) }))
		}, true},
		{"outline query", func(v *Viewer) { v.NodeOutlineWidths(network.Query[float32]()) }, false},
		{"explicit", func(v *Viewer) { v.UpdateGeometry() }, true},
	}

	for _, tt := range tests {
		v := testViewer(t)
		tt.action(v)
		if v.geometryDirty != tt.want {
			t.Errorf("%s: geometry upload scheduled %v, want %v", tt.name, v.geometryDirty, tt.want)
		}
		if tt.want && !v.dirty {
			t.Errorf("%s: no redraw requested", tt.name)
		}
	}
}

func TestNodeColorsWritesModel(t *testing.T) {
	v := testViewer(t)
	arr := v.NodeColors(network.Constant(network.Vec3{0.25, 0.5, 1}))
	if len(arr) != 3*v.model.Len() {
		t.Fatalf("array: got %d values, want %d", len(arr), 3*v.model.Len())
	}
	if got := [3]float32{arr[3], arr[4], arr[5]}; got != [3]float32{0.25, 0.5, 1} {
		t.Errorf("node 1 color: got %v, want [0.25 0.5 1]", got)
	}
}
