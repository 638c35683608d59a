package graph

import (
	"fmt"

	"github.com/matzehuels/lens/pkg/lineage"
)

// =============================================================================
// Graph - Lineage Serialization
// =============================================================================

// Graph is the canonical serialization format for lineage graphs.
// Used for catalog payloads, API responses, files and caching.
//
// The node and link shapes match what catalog front-ends already exchange:
// nodes carry a display name, a type and an optional status badge, links
// name their endpoints by ID.
type Graph struct {
	Focal string `json:"focal,omitempty" bson:"focal,omitempty" toml:"focal,omitempty"`
	Nodes []Node `json:"nodes" bson:"nodes" toml:"nodes"`
	Links []Link `json:"links" bson:"links" toml:"links"`
}

// Node is a serialized lineage node.
type Node struct {
	ID     string `json:"id" bson:"id" toml:"id"`
	Name   string `json:"name" bson:"name" toml:"name"`
	Type   string `json:"type" bson:"type" toml:"type"`                                  // "Table", "View", "Dashboard", "Pipeline", "API Endpoint"
	Status string `json:"status,omitempty" bson:"status,omitempty" toml:"status,omitempty"` // certification badge
}

// Link is a directed lineage edge: Source feeds Target.
type Link struct {
	Source string `json:"source" bson:"source" toml:"source"`
	Target string `json:"target" bson:"target" toml:"target"`
}

// =============================================================================
// Lineage - Traversal Report
// =============================================================================

// Entry is a traced node with its relationship to the focal node.
type Entry struct {
	Node   `bson:",inline"`
	Direct bool `json:"direct" bson:"direct"`
	Depth  int  `json:"depth" bson:"depth"`
}

// Lineage is the serialized result of a lineage trace.
type Lineage struct {
	Focal      Node    `json:"focal" bson:"focal"`
	Upstream   []Entry `json:"upstream" bson:"upstream"`
	Downstream []Entry `json:"downstream" bson:"downstream"`
	Skipped    []Link  `json:"skipped,omitempty" bson:"skipped,omitempty"`

	// Badge counts: edges into and out of the focal node.
	DirectUpstream   int `json:"direct_upstream" bson:"direct_upstream"`
	DirectDownstream int `json:"direct_downstream" bson:"direct_downstream"`
}

// =============================================================================
// lineage.Graph <-> Graph Conversion
// =============================================================================

// FromLineage converts a lineage graph to its serialization format. Nodes
// keep insertion order and every edge, dangling or not, is emitted.
func FromLineage(g *lineage.Graph, focal string) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Focal: focal,
		Nodes: make([]Node, len(nodes)),
		Links: make([]Link, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromLineage(n)
	}
	for i, e := range edges {
		out.Links[i] = Link{Source: e.Source, Target: e.Target}
	}
	return out
}

// ToLineage converts a Graph into a lineage graph.
// Node types and statuses are parsed leniently (case-insensitive, with the
// usual aliases). Links that reference unknown nodes are kept as dangling
// edges rather than rejected.
func ToLineage(gj Graph) (*lineage.Graph, error) {
	nodes := make([]lineage.Node, len(gj.Nodes))
	for i, nj := range gj.Nodes {
		kind, err := lineage.ParseKind(nj.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nj.ID, err)
		}
		cert, err := lineage.ParseCertification(nj.Status)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", nj.ID, err)
		}
		nodes[i] = lineage.Node{ID: nj.ID, Name: nj.Name, Kind: kind, Certification: cert}
	}
	edges := make([]lineage.Edge, len(gj.Links))
	for i, l := range gj.Links {
		edges[i] = lineage.Edge{Source: l.Source, Target: l.Target}
	}
	return lineage.FromParts(nodes, edges)
}

// FromResult converts a trace result to its report format.
func FromResult(g *lineage.Graph, r lineage.Result) Lineage {
	out := Lineage{
		Upstream:   entriesFrom(r.Upstream),
		Downstream: entriesFrom(r.Downstream),
	}
	if n, ok := g.Node(r.Focal); ok {
		out.Focal = nodeFromLineage(n)
	} else {
		out.Focal = Node{ID: r.Focal}
	}
	for _, e := range r.Skipped {
		out.Skipped = append(out.Skipped, Link{Source: e.Source, Target: e.Target})
	}
	out.DirectUpstream, out.DirectDownstream = lineage.DirectCounts(g, r.Focal)
	return out
}

// =============================================================================
// Internal Helpers
// =============================================================================

func nodeFromLineage(n lineage.Node) Node {
	return Node{
		ID:     n.ID,
		Name:   n.Label(),
		Type:   string(n.Kind),
		Status: string(n.Certification),
	}
}

func entriesFrom(entries []lineage.Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Node: nodeFromLineage(e.Node), Direct: e.Direct, Depth: e.Depth}
	}
	return out
}
