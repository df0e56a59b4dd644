package renderer

import (
	"reflect"
	"testing"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		use2D     bool
		picking   bool
		skipEdges bool
		want      []Step
	}{
		{
			name: "3D visible",
			want: []Step{StepDepthTest, StepDepthWrite, StepNodes, StepNoDepthWrite, StepEdges, StepDepthWrite},
		},
		{
			name:    "3D picking",
			picking: true,
			want:    []Step{StepDepthTest, StepDepthWrite, StepNodes},
		},
		{
			name:      "3D fast edges during gesture",
			skipEdges: true,
			want:      []Step{StepDepthTest, StepDepthWrite, StepNodes},
		},
		{
			name:  "2D visible",
			use2D: true,
			want:  []Step{StepNoDepthTest, StepNoDepthWrite, StepEdges, StepNodes, StepDepthWrite},
		},
		{
			name:    "2D picking",
			use2D:   true,
			picking: true,
			want:    []Step{StepNoDepthTest, StepNoDepthWrite, StepNodes, StepDepthWrite},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.use2D, tt.picking, tt.skipEdges)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan2DEdgesBeforeNodes(t *testing.T) {
	steps := Plan(true, false, false)
	edges, nodes := -1, -1
	for i, s := range steps {
		switch s {
		case StepEdges:
			edges = i
		case StepNodes:
			nodes = i
		}
	}
	if edges < 0 || nodes < 0 || edges > nodes {
		t.Errorf("2D order: edges at %d, nodes at %d", edges, nodes)
	}
}

func TestPlan3DEdgesNeverWriteDepth(t *testing.T) {
	writing := false
	for _, s := range Plan(false, false, false) {
		switch s {
		case StepDepthWrite:
			writing = true
		case StepNoDepthWrite:
			writing = false
		case StepEdges:
			if writing {
				t.Fatal("edges drawn with depth writes enabled")
			}
		}
	}
	if !writing {
		t.Error("depth writes should be restored at the end of the pass")
	}
}

func TestGestureSkipsEdges(t *testing.T) {
	r := &Renderer{cfg: Config{FastEdges: true}}

	if r.skipEdges(false) {
		t.Error("idle: edges should be drawn")
	}
	r.SetGestureActive(true)
	if !r.skipEdges(false) {
		t.Error("gesture with fast edges: edges should be skipped")
	}
	if r.skipEdges(true) {
		t.Error("picking passes never consult fast edges")
	}

	r.cfg.FastEdges = false
	if r.skipEdges(false) {
		t.Error("fast edges off: edges should be drawn")
	}
}
