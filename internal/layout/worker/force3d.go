package worker

import (
	"math"
	"math/rand/v2"

	"github.com/Faultbox/netviz/internal/layout/protocol"
)

// Force3D parameters.
const (
	// IdealDistance is the rest length k of the spring model.
	IdealDistance = 30.0

	startTemperature = 50.0
	minTemperature   = 0.5
	cooling          = 0.98
	gravity          = 0.01
	minDistance      = 0.01
)

type cell [3]int32

// Force3D is a Fruchterman-Reingold layout in three dimensions: repulsion
// k^2/d between nodes sharing a grid neighborhood, attraction d^2/k along
// edges, weak gravity toward the origin, and a cooling temperature capping
// each displacement.
type Force3D struct {
	rng   *rand.Rand
	use2D bool

	n     int
	pos   []float64
	disp  []float64
	edges []uint32
	out   []float32

	temperature float64
	grid        map[cell][]int
}

// NewForce3D creates an engine; seed drives the jitter applied to
// coincident nodes.
func NewForce3D(seed uint64) *Force3D {
	return &Force3D{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		grid: make(map[cell][]int),
	}
}

func (f *Force3D) Init(snap *protocol.Snapshot, use2D bool) {
	f.use2D = use2D
	f.n = snap.Nodes
	f.pos = make([]float64, f.n*3)
	f.disp = make([]float64, f.n*3)
	f.out = make([]float32, f.n*3)
	f.edges = append(f.edges[:0], snap.Edges...)
	for i, v := range snap.Positions {
		f.pos[i] = float64(v)
	}
	if use2D {
		for i := 2; i < len(f.pos); i += 3 {
			f.pos[i] = 0
		}
	}
	f.temperature = startTemperature
	f.sync()
}

func (f *Force3D) Positions() []float32 { return f.out }

func (f *Force3D) Reheat() {
	f.temperature = max(f.temperature, startTemperature/2)
}

// Temperature returns the current displacement cap.
func (f *Force3D) Temperature() float64 { return f.temperature }

func (f *Force3D) Step() bool {
	if f.n == 0 || f.temperature < minTemperature {
		return false
	}
	clear(f.disp)

	f.repulse()
	f.attract()

	for i := 0; i < f.n; i++ {
		d := f.disp[i*3 : i*3+3]
		p := f.pos[i*3 : i*3+3]
		for a := 0; a < 3; a++ {
			d[a] -= gravity * p[a]
		}
		if f.use2D {
			d[2] = 0
		}
		l := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
		if l < minDistance {
			continue
		}
		s := math.Min(l, f.temperature) / l
		for a := 0; a < 3; a++ {
			p[a] += d[a] * s
		}
	}

	f.temperature *= cooling
	f.sync()
	return f.temperature >= minTemperature
}

// repulse accumulates repulsion between nodes in the same or adjacent grid
// cells. Cells are 2k wide so pairs further apart are ignored.
func (f *Force3D) repulse() {
	size := 2 * IdealDistance
	if len(f.grid) > 4*f.n {
		f.grid = make(map[cell][]int, f.n)
	}
	for c := range f.grid {
		f.grid[c] = f.grid[c][:0]
	}
	cells := make([]cell, f.n)
	for i := 0; i < f.n; i++ {
		c := cell{
			int32(math.Floor(f.pos[i*3] / size)),
			int32(math.Floor(f.pos[i*3+1] / size)),
			int32(math.Floor(f.pos[i*3+2] / size)),
		}
		cells[i] = c
		f.grid[c] = append(f.grid[c], i)
	}

	k2 := IdealDistance * IdealDistance
	for i := 0; i < f.n; i++ {
		c := cells[i]
		for dx := int32(-1); dx <= 1; dx++ {
			for dy := int32(-1); dy <= 1; dy++ {
				for dz := int32(-1); dz <= 1; dz++ {
					for _, j := range f.grid[cell{c[0] + dx, c[1] + dy, c[2] + dz}] {
						if j <= i {
							continue
						}
						vx, vy, vz, d := f.delta(i, j)
						force := k2 / d
						f.push(i, j, vx/d*force, vy/d*force, vz/d*force)
					}
				}
			}
		}
	}
}

func (f *Force3D) attract() {
	for e := 0; e+1 < len(f.edges); e += 2 {
		i, j := int(f.edges[e]), int(f.edges[e+1])
		if i == j || i >= f.n || j >= f.n {
			continue
		}
		vx, vy, vz, d := f.delta(i, j)
		force := d * d / IdealDistance
		f.push(i, j, -vx/d*force, -vy/d*force, -vz/d*force)
	}
}

// delta returns pos[i]-pos[j] and its length, jittering coincident nodes
// apart.
func (f *Force3D) delta(i, j int) (x, y, z, d float64) {
	x = f.pos[i*3] - f.pos[j*3]
	y = f.pos[i*3+1] - f.pos[j*3+1]
	z = f.pos[i*3+2] - f.pos[j*3+2]
	d = math.Sqrt(x*x + y*y + z*z)
	if d < minDistance {
		x = (f.rng.Float64() - 0.5) * minDistance
		y = (f.rng.Float64() - 0.5) * minDistance
		if !f.use2D {
			z = (f.rng.Float64() - 0.5) * minDistance
		}
		d = math.Max(math.Sqrt(x*x+y*y+z*z), minDistance)
	}
	return x, y, z, d
}

// push adds (x, y, z) to node i and subtracts it from node j.
func (f *Force3D) push(i, j int, x, y, z float64) {
	f.disp[i*3] += x
	f.disp[i*3+1] += y
	f.disp[i*3+2] += z
	f.disp[j*3] -= x
	f.disp[j*3+1] -= y
	f.disp[j*3+2] -= z
}

func (f *Force3D) sync() {
	for i, v := range f.pos {
		f.out[i] = float32(v)
	}
}
