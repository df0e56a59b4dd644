package renderer

// Step is one state change or draw call of a render pass.
type Step int

const (
	StepDepthTest Step = iota
	StepNoDepthTest
	StepDepthWrite
	StepNoDepthWrite
	StepNodes
	StepEdges
)

func (s Step) String() string {
	switch s {
	case StepDepthTest:
		return "depth-test"
	case StepNoDepthTest:
		return "no-depth-test"
	case StepDepthWrite:
		return "depth-write"
	case StepNoDepthWrite:
		return "no-depth-write"
	case StepNodes:
		return "nodes"
	case StepEdges:
		return "edges"
	default:
		return "unknown"
	}
}

// Plan returns the ordered steps of one pass. Picking passes and passes with
// skipEdges set do not draw edges.
//
// In 2D there is no depth testing and edges are drawn under the nodes. In 3D
// nodes are drawn first with depth writes, then edges are tested against
// them without writing depth, and depth writes are restored for the next
// clear.
func Plan(use2D, picking, skipEdges bool) []Step {
	edges := !picking && !skipEdges

	if use2D {
		steps := []Step{StepNoDepthTest, StepNoDepthWrite}
		if edges {
			steps = append(steps, StepEdges)
		}
		return append(steps, StepNodes, StepDepthWrite)
	}

	steps := []Step{StepDepthTest, StepDepthWrite, StepNodes}
	if edges {
		steps = append(steps, StepNoDepthWrite, StepEdges, StepDepthWrite)
	}
	return steps
}
