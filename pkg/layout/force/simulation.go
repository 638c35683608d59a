package force

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/lens/pkg/lineage"
)

// Point is a 2D coordinate in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// State is the lifecycle phase of a [Simulation].
type State int

const (
	// Uninitialized: no graph loaded yet; Step is a no-op.
	Uninitialized State = iota
	// Running: energy above threshold, positions change every tick.
	Running
	// Settled: energy decayed below AlphaMin, positions frozen until perturbed.
	Settled
	// Perturbed: a drag reheated a settled run; the next Step resumes Running.
	Perturbed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Settled:
		return "settled"
	case Perturbed:
		return "perturbed"
	default:
		return "uninitialized"
	}
}

type body struct {
	id     string
	pos    Point
	vel    Point
	pinned bool
	pin    Point
}

type spring struct {
	src, dst int
	strength float64
	bias     float64
}

// Simulation is a force-directed layout of a lineage graph.
//
// Each [Simulation.Step] cools the energy term (alpha) towards its target,
// accumulates link, charge and centering forces into velocities, integrates
// positions with friction, and finally pushes overlapping nodes apart. Nodes
// pinned by a drag ignore all forces and sit exactly at the pointer.
//
// A Simulation is driven by a single host loop: Step and the drag methods
// must not be called concurrently. Calls interleave freely, so a pin set by
// UpdateDrag is in place before the next force accumulation.
type Simulation struct {
	opts Options
	rng  *rand.Rand

	bodies  []body
	index   map[string]int
	springs []spring

	width, height float64
	alpha         float64
	alphaTarget   float64
	state         State
	generation    uint64
	drags         int
	lastMovement  float64
}

// New creates an uninitialized simulation. Zero option fields take defaults.
func New(opts Options) *Simulation {
	return &Simulation{opts: opts.withDefaults(), index: map[string]int{}}
}

// Options returns the effective configuration.
func (s *Simulation) Options() Options { return s.opts }

// Initialize discards all layout state and starts a fresh run for g.
//
// Nodes are placed on a phyllotaxis spiral around the viewport centre, the
// energy is reset to 1 and the generation counter advances so ticks
// scheduled for the previous run can be recognised and dropped.
func (s *Simulation) Initialize(g *lineage.Graph, width, height float64) {
	s.generation++
	s.rng = rand.New(rand.NewPCG(s.opts.Seed, s.opts.Seed^0xdeadbeef))
	s.width, s.height = width, height
	s.alpha, s.alphaTarget = 1, 0
	s.drags = 0
	s.lastMovement = 0

	nodes := g.Nodes()
	s.bodies = make([]body, len(nodes))
	s.index = make(map[string]int, len(nodes))
	cx, cy := width/2, height/2
	golden := math.Pi * (3 - math.Sqrt(5))
	for i, n := range nodes {
		r := 10 * math.Sqrt(0.5+float64(i))
		a := float64(i) * golden
		s.bodies[i] = body{id: n.ID, pos: Point{cx + r*math.Cos(a), cy + r*math.Sin(a)}}
		s.index[n.ID] = i
	}

	s.springs = s.springs[:0]
	degree := make([]int, len(nodes))
	for _, e := range g.ResolvedEdges() {
		if e.Source == e.Target {
			continue
		}
		si, ti := s.index[e.Source], s.index[e.Target]
		degree[si]++
		degree[ti]++
		s.springs = append(s.springs, spring{src: si, dst: ti})
	}
	for i := range s.springs {
		sp := &s.springs[i]
		ds, dt := float64(degree[sp.src]), float64(degree[sp.dst])
		sp.strength = 1 / math.Min(ds, dt)
		sp.bias = ds / (ds + dt)
	}

	s.state = Running
}

// Step advances the simulation by one tick and returns the total distance
// moved by all nodes. It is a no-op returning 0 before Initialize and once
// the run has settled.
func (s *Simulation) Step() float64 {
	switch s.state {
	case Uninitialized, Settled:
		return 0
	case Perturbed:
		s.state = Running
	}

	s.alpha += (s.alphaTarget - s.alpha) * s.opts.AlphaDecay

	prev := make([]Point, len(s.bodies))
	for i := range s.bodies {
		prev[i] = s.bodies[i].pos
	}

	s.applyLinks()
	s.applyCharge()
	s.integrate()
	s.applyCenter()
	s.applyCollide()

	moved := 0.0
	for i := range s.bodies {
		moved += prev[i].Dist(s.bodies[i].pos)
	}
	s.lastMovement = moved

	if s.alpha < s.opts.AlphaMin && s.drags == 0 {
		s.state = Settled
	}
	return moved
}

// Advance steps the simulation only if gen is the current generation. Ticks
// scheduled for a run that Initialize has since replaced are dropped and
// report false.
func (s *Simulation) Advance(gen uint64) (float64, bool) {
	if gen != s.generation {
		return 0, false
	}
	return s.Step(), true
}

// Settle steps until the simulation settles, maxTicks is reached or ctx is
// cancelled. It returns the number of ticks taken.
func (s *Simulation) Settle(ctx context.Context, maxTicks int) (int, error) {
	ticks := 0
	for ticks < maxTicks && (s.state == Running || s.state == Perturbed) {
		if ticks%32 == 0 {
			if err := ctx.Err(); err != nil {
				return ticks, err
			}
		}
		s.Step()
		ticks++
	}
	return ticks, nil
}

// Resize moves the centering target to the middle of a width x height
// viewport. Positions are kept; a settled run is reheated so the graph
// drifts to the new centre. Non-positive sizes are ignored.
func (s *Simulation) Resize(width, height float64) {
	if width <= 0 || height <= 0 || (width == s.width && height == s.height) {
		return
	}
	s.width, s.height = width, height
	if s.state == Settled {
		s.alpha = math.Max(s.alpha, s.opts.DragAlphaTarget)
		s.state = Running
	}
}

// BeginDrag pins the node at p and reheats the simulation to at least
// DragAlphaTarget so the rest of the graph reacts. Unknown IDs are ignored and report false.
func (s *Simulation) BeginDrag(id string, p Point) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	b := &s.bodies[i]
	if !b.pinned {
		s.drags++
	}
	b.pinned, b.pin, b.pos, b.vel = true, p, p, Point{}
	s.alphaTarget = s.opts.DragAlphaTarget
	// Raise the energy itself too, so a drag released before the next tick
	// still relaxes the graph around the moved node.
	s.alpha = math.Max(s.alpha, s.opts.DragAlphaTarget)
	if s.state == Settled {
		s.state = Perturbed
	}
	return true
}

// UpdateDrag moves a pinned node to p. It reports false if the node is
// unknown or not being dragged.
func (s *Simulation) UpdateDrag(id string, p Point) bool {
	i, ok := s.index[id]
	if !ok || !s.bodies[i].pinned {
		return false
	}
	s.bodies[i].pin, s.bodies[i].pos = p, p
	return true
}

// EndDrag releases a pinned node back into the simulation. Once no drag is
// active the energy target drops to zero and the run cools down again.
func (s *Simulation) EndDrag(id string) bool {
	i, ok := s.index[id]
	if !ok || !s.bodies[i].pinned {
		return false
	}
	s.bodies[i].pinned = false
	s.drags--
	if s.drags == 0 {
		s.alphaTarget = 0
	}
	return true
}

// =============================================================================
// Queries
// =============================================================================

// Positions returns a copy of every node position keyed by ID.
func (s *Simulation) Positions() map[string]Point {
	out := make(map[string]Point, len(s.bodies))
	for _, b := range s.bodies {
		out[b.id] = b.pos
	}
	return out
}

// Position returns the position of a single node.
func (s *Simulation) Position(id string) (Point, bool) {
	i, ok := s.index[id]
	if !ok {
		return Point{}, false
	}
	return s.bodies[i].pos, true
}

// Pinned reports whether the node is currently held by a drag.
func (s *Simulation) Pinned(id string) bool {
	i, ok := s.index[id]
	return ok && s.bodies[i].pinned
}

// IDs returns node IDs in graph order.
func (s *Simulation) IDs() []string {
	ids := make([]string, len(s.bodies))
	for i, b := range s.bodies {
		ids[i] = b.id
	}
	return ids
}

func (s *Simulation) Alpha() float64        { return s.alpha }
func (s *Simulation) State() State          { return s.state }
func (s *Simulation) Generation() uint64    { return s.generation }
func (s *Simulation) LastMovement() float64 { return s.lastMovement }

// Size returns the current viewport dimensions.
func (s *Simulation) Size() (width, height float64) { return s.width, s.height }

// Frame is a point-in-time view of a simulation for renderers and APIs.
type Frame struct {
	Generation uint64           `json:"generation"`
	State      string           `json:"state"`
	Alpha      float64          `json:"alpha"`
	Movement   float64          `json:"movement"`
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Positions  map[string]Point `json:"positions"`
	Pinned     []string         `json:"pinned,omitempty"`
}

// Snapshot captures the current frame.
func (s *Simulation) Snapshot() Frame {
	f := Frame{
		Generation: s.generation,
		State:      s.state.String(),
		Alpha:      s.alpha,
		Movement:   s.lastMovement,
		Width:      s.width,
		Height:     s.height,
		Positions:  s.Positions(),
	}
	for _, b := range s.bodies {
		if b.pinned {
			f.Pinned = append(f.Pinned, b.id)
		}
	}
	return f
}
