package worker

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/Faultbox/netviz/internal/layout/protocol"
)

// Eades parameters, in layout units. One layout unit is eadesScale world
// units.
const (
	eadesUpdates   = 300
	eadesScale     = 100.0
	eadesRepulsion = 1.0
	eadesRate      = 0.05
	eadesTheta     = 0.2
	// eadesMaxStep caps the displacement of one node in one update.
	eadesMaxStep = 0.5
	eadesSettled = 1e-3
	eadesJitter  = 1e-3
)

type eadesParticle struct {
	pos r2.Vec
}

func (p eadesParticle) Coord2() r2.Vec { return p.pos }
func (p eadesParticle) Mass() float64  { return 1 }

// Eades is a planar spring embedder: logarithmic springs along edges and
// Barnes-Hut inverse-square repulsion between all nodes. Moves are capped
// per update and non-finite forces are dropped, so coordinates stay finite
// on dense graphs.
type Eades struct {
	rng *rand.Rand

	n         int
	opt       layout.OptimizerR2
	particles []barneshut.Particle2
	forces    []r2.Vec
	updates   int
	out       []float32
}

// NewEades creates an engine; seed drives the jitter separating coincident
// starting positions.
func NewEades(seed uint64) *Eades {
	return &Eades{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (e *Eades) Init(snap *protocol.Snapshot, _ bool) {
	e.n = snap.Nodes
	e.out = make([]float32, e.n*3)
	e.particles = make([]barneshut.Particle2, e.n)
	e.forces = make([]r2.Vec, e.n)
	e.updates = eadesUpdates

	g := simple.NewUndirectedGraph()
	for i := 0; i < e.n; i++ {
		g.AddNode(simple.Node(i))

		var p r2.Vec
		if 3*i+1 < len(snap.Positions) {
			p = r2.Vec{X: float64(snap.Positions[3*i]), Y: float64(snap.Positions[3*i+1])}
			p = r2.Scale(1/eadesScale, p)
		}
		if !finiteVec(p) {
			p = r2.Vec{}
		}
		p.X += (e.rng.Float64() - 0.5) * eadesJitter
		p.Y += (e.rng.Float64() - 0.5) * eadesJitter
		e.particles[i] = eadesParticle{pos: p}
	}
	for k := 0; k+1 < len(snap.Edges); k += 2 {
		s, t := int64(snap.Edges[k]), int64(snap.Edges[k+1])
		if s == t || g.HasEdgeBetween(s, t) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(s), simple.Node(t)))
	}

	e.opt = layout.NewOptimizerR2(g, e.update)
	e.publish()
}

// update is a gonum layout update function.
func (e *Eades) update(g graph.Graph, l layout.LayoutR2) bool {
	if e.updates <= 0 || e.n == 0 {
		return false
	}
	e.updates--

	plane, err := barneshut.NewPlane(e.particles)
	if err != nil {
		return false
	}
	for i, p := range e.particles {
		e.forces[i] = r2.Scale(-eadesRepulsion, plane.ForceOn(p, eadesTheta, barneshut.Gravity2))
	}

	nodes := g.Nodes()
	for nodes.Next() {
		x := nodes.Node().ID()
		to := g.From(x)
		for to.Next() {
			y := to.Node().ID()
			if y < x {
				continue
			}
			v := r2.Sub(e.particles[y].Coord2(), e.particles[x].Coord2())
			d := r2.Norm(v)
			if d == 0 {
				continue
			}
			f := r2.Scale(math.Log(d)/d, v)
			e.forces[x] = r2.Add(e.forces[x], f)
			e.forces[y] = r2.Sub(e.forces[y], f)
		}
	}

	moving := false
	for i, f := range e.forces {
		step := r2.Scale(eadesRate, f)
		if !finiteVec(step) {
			continue
		}
		if n := r2.Norm(step); n > eadesMaxStep {
			step = r2.Scale(eadesMaxStep/n, step)
		}
		if r2.Norm(step) > eadesSettled {
			moving = true
		}
		p := eadesParticle{pos: r2.Add(e.particles[i].Coord2(), step)}
		e.particles[i] = p
		l.SetCoord2(int64(i), p.pos)
	}
	return moving
}

func (e *Eades) Step() bool {
	if e.n == 0 {
		return false
	}
	moving := e.opt.Update()
	e.publish()
	return moving
}

// publish copies the particles to the output in world units. A node whose
// coordinates are not finite keeps its previous output.
func (e *Eades) publish() {
	for i, p := range e.particles {
		c := r2.Scale(eadesScale, p.Coord2())
		if !finiteVec(c) {
			continue
		}
		e.out[i*3] = float32(c.X)
		e.out[i*3+1] = float32(c.Y)
		e.out[i*3+2] = 0
	}
}

func (e *Eades) Positions() []float32 { return e.out }

func (e *Eades) Reheat() {
	if e.n > 0 && e.updates <= 0 {
		e.updates = eadesUpdates / 2
	}
}

func finiteVec(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
