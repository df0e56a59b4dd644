// Package worker runs a layout engine behind a transport, turning init,
// stop and restart messages into a stream of layoutStep snapshots.
package worker

import (
	"fmt"

	"github.com/Faultbox/netviz/internal/layout/protocol"
)

// Engine names accepted by NewEngine.
const (
	EngineForce3D = "force3d"
	EngineEades   = "eades"
)

// Engine computes positions for one network.
type Engine interface {
	// Init replaces the network and starting positions.
	Init(snap *protocol.Snapshot, use2D bool)
	// Step advances one iteration and reports whether the layout is still
	// moving.
	Step() bool
	// Positions returns the current coordinates, 3 per node. The slice is
	// owned by the engine.
	Positions() []float32
	// Reheat lets a settled layout move again.
	Reheat()
}

// NewEngine returns the engine registered under name.
func NewEngine(name string, seed uint64) (Engine, error) {
	switch name {
	case EngineForce3D, "":
		return NewForce3D(seed), nil
	case EngineEades:
		return NewEades(seed), nil
	default:
		return nil, fmt.Errorf("unknown layout engine %q", name)
	}
}
