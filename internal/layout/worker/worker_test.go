package worker

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/Faultbox/netviz/internal/layout/protocol"
	"github.com/Faultbox/netviz/internal/layout/transport"
)

func randomSnapshot(n, m int, seed uint64) *protocol.Snapshot {
	rng := rand.New(rand.NewPCG(seed, 7))
	snap := &protocol.Snapshot{Nodes: n, Positions: make([]float32, n*3)}
	for i := range snap.Positions {
		snap.Positions[i] = float32(rng.Float64()*400 - 200)
	}
	if n > 0 {
		for e := 0; e < m; e++ {
			snap.Edges = append(snap.Edges, uint32(rng.IntN(n)), uint32(rng.IntN(n)))
		}
	}
	return snap
}

func finite(pos []float32) bool {
	for _, v := range pos {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return true
}

func TestNewEngine(t *testing.T) {
	for _, name := range []string{"", EngineForce3D, EngineEades} {
		if _, err := NewEngine(name, 1); err != nil {
			t.Errorf("NewEngine(%q): %v", name, err)
		}
	}
	if _, err := NewEngine("spring", 1); err == nil {
		t.Errorf("NewEngine(spring): got nil error")
	}
}

func TestForce3DSpringPair(t *testing.T) {
	f := NewForce3D(1)
	f.Init(&protocol.Snapshot{
		Nodes:     2,
		Positions: []float32{-200, 0, 0, 200, 0, 0},
		Edges:     []uint32{0, 1},
	}, false)

	for i := 0; i < 1000 && f.Step(); i++ {
	}

	p := f.Positions()
	d := math.Sqrt(math.Pow(float64(p[0]-p[3]), 2) + math.Pow(float64(p[1]-p[4]), 2) + math.Pow(float64(p[2]-p[5]), 2))
	if d < 5 || d > 100 {
		t.Errorf("settled edge length: got %.2f, want near %v", d, IdealDistance)
	}
}

func TestForce3DEmpty(t *testing.T) {
	f := NewForce3D(1)
	f.Init(&protocol.Snapshot{}, false)
	if f.Step() {
		t.Errorf("Step on empty network: got moving")
	}
	if len(f.Positions()) != 0 {
		t.Errorf("Positions: got %d values, want 0", len(f.Positions()))
	}
}

func TestForce3DReheat(t *testing.T) {
	f := NewForce3D(1)
	f.Init(randomSnapshot(10, 10, 3), false)
	for f.Step() {
	}
	if f.Step() {
		t.Fatalf("settled engine still moving")
	}
	f.Reheat()
	if !f.Step() {
		t.Errorf("Step after Reheat: got settled")
	}
}

func TestEadesDenseStaysFinite(t *testing.T) {
	for n := 2; n <= 40; n++ {
		for m := 0; m <= 80; m += 7 {
			e := NewEades(1)
			e.Init(randomSnapshot(n, m, uint64(n+m)), true)
			for i := 0; i < 50; i++ {
				e.Step()
			}
			if pos := e.Positions(); !finite(pos) {
				t.Fatalf("n=%d m=%d: non-finite positions %v", n, m, pos[:6])
			}
		}
	}
}

func TestEadesStepIsCapped(t *testing.T) {
	e := NewEades(1)
	// Near-coincident endpoints of a dense cluster produce huge repulsion.
	snap := randomSnapshot(30, 200, 5)
	for i := range snap.Positions {
		snap.Positions[i] *= 0.001
	}
	e.Init(snap, true)

	prev := append([]float32(nil), e.Positions()...)
	for step := 0; step < 20; step++ {
		e.Step()
		pos := e.Positions()
		for i := 0; i < len(pos); i += 3 {
			d := math.Hypot(float64(pos[i]-prev[i]), float64(pos[i+1]-prev[i+1]))
			if d > eadesMaxStep*eadesScale*1.001 {
				t.Fatalf("step %d node %d: moved %.2f, want at most %v", step, i/3, d, eadesMaxStep*eadesScale)
			}
		}
		prev = append(prev[:0], pos...)
	}
}

func TestEadesStartsFromSnapshot(t *testing.T) {
	e := NewEades(1)
	e.Init(&protocol.Snapshot{Nodes: 2, Positions: []float32{-150, 20, 9, 150, -20, 9}}, true)
	pos := e.Positions()
	want := []float32{-150, 20, 0, 150, -20, 0}
	for i := range want {
		if math.Abs(float64(pos[i]-want[i])) > 0.1 {
			t.Errorf("Positions()[%d]: got %v, want %v", i, pos[i], want[i])
		}
	}
}

func TestEngineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25

	properties := gopter.NewProperties(parameters)

	properties.Property("force3d settles with finite positions", prop.ForAll(
		func(n, m int, use2D bool) bool {
			f := NewForce3D(uint64(n))
			f.Init(randomSnapshot(n, m, uint64(n*13+m)), use2D)
			steps := 0
			for f.Step() {
				steps++
				if steps > 1000 {
					return false
				}
			}
			pos := f.Positions()
			if len(pos) != 3*n || !finite(pos) {
				return false
			}
			if use2D {
				for i := 2; i < len(pos); i += 3 {
					if pos[i] != 0 {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(0, 60),
		gen.IntRange(0, 120),
		gen.Bool(),
	))

	properties.Property("eades is planar and finite", prop.ForAll(
		func(n, m int) bool {
			e := NewEades(uint64(n))
			e.Init(randomSnapshot(n, m, uint64(n+m)), true)
			for i := 0; i < eadesUpdates && e.Step(); i++ {
			}
			pos := e.Positions()
			if len(pos) != 3*n || !finite(pos) {
				return false
			}
			for i := 2; i < len(pos); i += 3 {
				if pos[i] != 0 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
		gen.IntRange(0, 80),
	))

	properties.TestingRun(t)
}

func recvStep(t *testing.T, tr transport.Transport, within time.Duration) (protocol.Message, bool) {
	t.Helper()
	select {
	case m, ok := <-tr.Inbound():
		if !ok {
			t.Fatalf("inbound closed")
		}
		return m, true
	case <-time.After(within):
		return protocol.Message{}, false
	}
}

func TestRunEmitsSteps(t *testing.T) {
	coord, side := transport.NewPipe(16)
	defer coord.Close()

	w, err := New(side, Config{Engine: EngineForce3D, StepInterval: 5 * time.Millisecond, Seed: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	if _, ok := recvStep(t, coord, 50*time.Millisecond); ok {
		t.Fatalf("worker emitted a step before init")
	}

	snap := randomSnapshot(20, 30, 9)
	if err := coord.Send(ctx, protocol.Init(snap, false)); err != nil {
		t.Fatalf("Send init: %v", err)
	}
	m, ok := recvStep(t, coord, 5*time.Second)
	if !ok {
		t.Fatalf("no layoutStep after init")
	}
	if m.Type != protocol.TypeLayoutStep || len(m.Positions) != 60 {
		t.Errorf("got %s with %d coordinates, want layoutStep with 60", m.Type, len(m.Positions))
	}

	if err := coord.Send(ctx, protocol.Stop()); err != nil {
		t.Fatalf("Send stop: %v", err)
	}
	// Drain steps already in flight, then expect silence.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, ok := recvStep(t, coord, 100*time.Millisecond); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("worker kept emitting after stop")
		}
	}

	if err := coord.Send(ctx, protocol.Restart()); err != nil {
		t.Fatalf("Send restart: %v", err)
	}
	if _, ok := recvStep(t, coord, 5*time.Second); !ok {
		t.Errorf("no layoutStep after restart")
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run: got %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunReturnsOnClose(t *testing.T) {
	coord, side := transport.NewPipe(1)
	w, err := New(side, Config{StepInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	errc := make(chan error, 1)
	go func() { errc <- w.Run(context.Background()) }()

	coord.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run: got %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after close")
	}
}
