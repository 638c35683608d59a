package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
)

// =============================================================================
// Layout - Positioned Lineage
// =============================================================================

// Layout is the serialization format for a computed force layout.
//
// Positions are in viewport pixels with the origin at the top-left. Ticks
// records how many simulation steps produced the layout and Settled whether
// the energy had decayed below threshold when it was captured.
type Layout struct {
	Width      float64 `json:"width" bson:"width"`
	Height     float64 `json:"height" bson:"height"`
	Seed       uint64  `json:"seed" bson:"seed"`
	Ticks      int     `json:"ticks" bson:"ticks"`
	Settled    bool    `json:"settled" bson:"settled"`
	Alpha      float64 `json:"alpha" bson:"alpha"`
	Generation uint64  `json:"generation,omitempty" bson:"generation,omitempty"`

	Focal string       `json:"focal,omitempty" bson:"focal,omitempty"`
	Nodes []LayoutNode `json:"nodes" bson:"nodes"`
	Links []Link       `json:"links" bson:"links"`
}

// LayoutNode is a node with its computed position.
type LayoutNode struct {
	Node   `bson:",inline"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Focal  bool    `json:"focal,omitempty" bson:"focal,omitempty"`
	Pinned bool    `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// Position returns the node position as a force.Point.
func (n LayoutNode) Position() force.Point { return force.Point{X: n.X, Y: n.Y} }

// Lookup returns the layout node with the given ID.
func (l *Layout) Lookup(id string) (LayoutNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return LayoutNode{}, false
}

// FromSimulation captures the current state of sim as a Layout. Only
// resolvable edges are emitted as links since dangling edges have no
// position to draw from.
func FromSimulation(g *lineage.Graph, focal string, sim *force.Simulation, ticks int) Layout {
	w, h := sim.Size()
	out := Layout{
		Width:      w,
		Height:     h,
		Seed:       sim.Options().Seed,
		Ticks:      ticks,
		Settled:    sim.State() == force.Settled,
		Alpha:      sim.Alpha(),
		Generation: sim.Generation(),
		Focal:      focal,
	}
	pos := sim.Positions()
	for _, n := range g.Nodes() {
		p := pos[n.ID]
		out.Nodes = append(out.Nodes, LayoutNode{
			Node:   nodeFromLineage(n),
			X:      p.X,
			Y:      p.Y,
			Focal:  n.ID == focal,
			Pinned: sim.Pinned(n.ID),
		})
	}
	for _, e := range g.ResolvedEdges() {
		out.Links = append(out.Links, Link{Source: e.Source, Target: e.Target})
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Rejects layouts without a positive viewport.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return Layout{}, fmt.Errorf("layout must have a positive viewport, got %vx%v", l.Width, l.Height)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
