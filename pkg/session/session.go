// Package session manages live force-layout sessions for the HTTP server.
//
// A [Session] owns one [force.Simulation] for the lineage of a single asset.
// Browsers drive it remotely: they request ticks, forward pointer events as
// drag calls and report viewport changes. The session mutex serializes those
// calls so the simulation itself stays single-threaded.
//
// # Generations
//
// Every [Session.Reload] re-initializes the simulation and bumps its
// generation. Clients tag tick requests with the generation they last saw;
// [Session.Advance] drops requests for an older generation, so ticks that
// were in flight when the user switched assets never touch the new layout.
//
// # Usage
//
//	store := session.NewStore(session.DefaultTTL)
//	sess, err := store.Create(ctx, session.Params{AssetID: id, Graph: g, Focal: focal, Width: 1200, Height: 800})
//	frame, ok := sess.Advance(frame.Generation, 10)
//	sess.BeginDrag("stg_orders", force.Point{X: 300, Y: 200})
package session

import (
	"context"
	"sync"
	"time"

	lenserr "github.com/matzehuels/lens/pkg/errors"
	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
	"github.com/matzehuels/lens/pkg/observability"
)

// Default durations and limits.
const (
	// DefaultTTL is how long an idle session survives.
	DefaultTTL = 30 * time.Minute

	// MaxStepsPerCall bounds a single Advance so one request cannot pin a CPU.
	MaxStepsPerCall = 500
)

// Params describes a new session.
type Params struct {
	AssetID string
	Graph   *lineage.Graph
	Focal   string
	Width   float64
	Height  float64
	Force   force.Options // zero fields take defaults
}

// Session is a live layout of one asset's lineage.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	assetID   string
	focal     string
	graph     *lineage.Graph
	sim       *force.Simulation
	ticks     int
	ttl       time.Duration
	expiresAt time.Time
	now       func() time.Time
}

// Info is the JSON summary of a session.
type Info struct {
	ID         string    `json:"id"`
	AssetID    string    `json:"asset_id"`
	Focal      string    `json:"focal"`
	Generation uint64    `json:"generation"`
	State      string    `json:"state"`
	Ticks      int       `json:"ticks"`
	Nodes      int       `json:"nodes"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func newSession(id string, p Params, ttl time.Duration, clock func() time.Time) (*Session, error) {
	if err := lenserr.ValidateViewport(p.Width, p.Height); err != nil {
		return nil, err
	}
	if p.Graph == nil {
		return nil, lenserr.New(lenserr.ErrCodeInvalidGraph, "session needs a graph")
	}
	now := clock()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		assetID:   p.AssetID,
		focal:     p.Focal,
		graph:     p.Graph,
		sim:       force.New(p.Force),
		ttl:       ttl,
		expiresAt: now.Add(ttl),
		now:       clock,
	}
	s.sim.Initialize(p.Graph, p.Width, p.Height)
	return s, nil
}

// AssetID returns the asset the session currently shows.
func (s *Session) AssetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assetID
}

// Info summarizes the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:         s.ID,
		AssetID:    s.assetID,
		Focal:      s.focal,
		Generation: s.sim.Generation(),
		State:      s.sim.State().String(),
		Ticks:      s.ticks,
		Nodes:      s.graph.NodeCount(),
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.expiresAt,
	}
}

// Expired reports whether the session has been idle past its TTL.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.expiresAt)
}

// touch extends the expiry. Callers hold mu.
func (s *Session) touch() {
	s.expiresAt = s.now().Add(s.ttl)
}

// =============================================================================
// Simulation Control
// =============================================================================

// Advance runs up to n ticks if gen matches the current generation and
// returns the resulting frame. A stale generation runs nothing and reports
// false along with the current frame so the client can resynchronise.
//
// Ticking stops early once the simulation settles.
func (s *Session) Advance(ctx context.Context, gen uint64, n int) (force.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	n = min(max(n, 1), MaxStepsPerCall)
	ran := 0
	for ; ran < n; ran++ {
		if st := s.sim.State(); st != force.Running && st != force.Perturbed {
			break
		}
		if _, ok := s.sim.Advance(gen); !ok {
			return s.sim.Snapshot(), false
		}
	}
	if gen != s.sim.Generation() {
		return s.sim.Snapshot(), false
	}
	s.ticks += ran
	if ran > 0 {
		observability.Session().OnTicks(ctx, ran, s.sim.State().String())
	}
	return s.sim.Snapshot(), true
}

// Frame returns the current frame without ticking.
func (s *Session) Frame() force.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Layout captures the current positions in wire form.
func (s *Session) Layout() graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.FromSimulation(s.graph, s.focal, s.sim, s.ticks)
}

// Reload replaces the graph and restarts the layout from scratch at the
// current viewport. Pins and velocities are discarded and the generation
// advances.
func (s *Session) Reload(assetID string, g *lineage.Graph, focal string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	w, h := s.sim.Size()
	s.assetID, s.graph, s.focal, s.ticks = assetID, g, focal, 0
	s.sim.Initialize(g, w, h)
	return s.sim.Generation()
}

// Resize changes the viewport.
func (s *Session) Resize(width, height float64) error {
	if err := lenserr.ValidateViewport(width, height); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.sim.Resize(width, height)
	return nil
}

// BeginDrag pins a node under the pointer.
func (s *Session) BeginDrag(id string, p force.Point) error {
	return s.drag(id, func() bool { return s.sim.BeginDrag(id, p) })
}

// UpdateDrag moves a pinned node.
func (s *Session) UpdateDrag(id string, p force.Point) error {
	return s.drag(id, func() bool { return s.sim.UpdateDrag(id, p) })
}

// EndDrag releases a pinned node.
func (s *Session) EndDrag(id string) error {
	return s.drag(id, func() bool { return s.sim.EndDrag(id) })
}

func (s *Session) drag(id string, fn func() bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if !s.graph.Has(id) {
		return lenserr.New(lenserr.ErrCodeNodeNotFound, "node %q is not in the layout", id)
	}
	if !fn() {
		return lenserr.New(lenserr.ErrCodeInvalidInput, "node %q is not being dragged", id)
	}
	return nil
}
