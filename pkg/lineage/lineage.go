package lineage

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs are unique across the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidKind is returned when a node kind is outside the closed
	// [Kind] enumeration.
	ErrInvalidKind = errors.New("invalid node kind")

	// ErrInvalidCertification is returned by [ParseCertification] for values
	// outside the [Certification] enumeration.
	ErrInvalidCertification = errors.New("invalid certification status")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the Source
	// node does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the Target
	// node does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDanglingEdge is returned by [Graph.Validate] when an edge references
	// a node that is not part of the graph.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// Kind is the catalog entity type of a lineage node. It drives icon and
// colour selection in renderers and is a closed enumeration.
type Kind string

const (
	KindTable     Kind = "Table"
	KindView      Kind = "View"
	KindDashboard Kind = "Dashboard"
	KindPipeline  Kind = "Pipeline"
	KindAPI       Kind = "API Endpoint"
)

// Kinds lists every valid [Kind] in display order.
var Kinds = []Kind{KindTable, KindView, KindDashboard, KindPipeline, KindAPI}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// ParseKind converts a user-supplied string to a [Kind]. Matching is
// case-insensitive and "api" is accepted as shorthand for "API Endpoint".
func ParseKind(s string) (Kind, error) {
	v := strings.TrimSpace(s)
	if strings.EqualFold(v, "api") {
		return KindAPI, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(v, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Certification is the governance status of a node. The zero value means the
// status does not apply (pipelines, external APIs).
type Certification string

const (
	CertNone       Certification = ""
	CertCertified  Certification = "Certified"
	CertPending    Certification = "Pending Review"
	CertDeprecated Certification = "Deprecated"
	CertWarning    Certification = "Warning"
)

var certifications = []Certification{CertCertified, CertPending, CertDeprecated, CertWarning}

// ParseCertification converts a string to a [Certification]. The empty string
// maps to [CertNone]; "pending" is accepted as shorthand for "Pending Review".
func ParseCertification(s string) (Certification, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return CertNone, nil
	}
	if strings.EqualFold(v, "pending") {
		return CertPending, nil
	}
	for _, c := range certifications {
		if strings.EqualFold(v, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCertification, s)
}

// Node is a catalog entity participating in lineage: a dataset, dashboard,
// pipeline or API.
type Node struct {
	ID            string        // Unique, render-stable identifier
	Name          string        // Display label
	Kind          Kind          // Entity type
	Certification Certification // Optional governance status
}

// Label returns the display name, falling back to the ID.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Edge is a directed lineage relationship: Source feeds or produces Target.
type Edge struct {
	Source string
	Target string
}

func (e Edge) String() string { return e.Source + "->" + e.Target }

// Graph holds lineage nodes and the directed edges between them.
//
// Edges whose endpoints both exist are indexed for traversal. Edges added
// through [FromParts] that reference unknown nodes are kept in the edge list
// but never indexed, so traversal skips them. Parallel edges are kept.
//
// The zero value is not usable; use [New] or [FromParts].
// Graph is not safe for concurrent mutation.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> target IDs
	incoming map[string][]string // nodeID -> source IDs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// FromParts builds a graph from the node and edge lists supplied by a catalog.
// Node errors (empty or duplicate IDs, invalid kinds) are returned. Edges are
// appended leniently: dangling edges are retained and reported by
// [Graph.Dangling] rather than rejected.
func FromParts(nodes []Node, edges []Edge) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	for _, e := range edges {
		g.appendEdge(e)
	}
	return g, nil
}

// AddNode adds a node to the graph. Returns ErrInvalidNodeID for an empty
// ID, ErrDuplicateNodeID if the ID is taken and ErrInvalidKind if the kind
// is not enumerated.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, n.Kind)
	}
	node := n
	g.nodes[n.ID] = &node
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode or ErrUnknownTargetNode when an endpoint is
// missing. Multiple edges between the same pair are allowed.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.Source]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return ErrUnknownTargetNode
	}
	g.appendEdge(e)
	return nil
}

func (g *Graph) appendEdge(e Edge) {
	g.edges = append(g.edges, e)
	if !g.resolvable(e) {
		return
	}
	g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	g.incoming[e.Target] = append(g.incoming[e.Target], e.Source)
}

func (g *Graph) resolvable(e Edge) bool {
	_, okS := g.nodes[e.Source]
	_, okT := g.nodes[e.Target]
	return okS && okT
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, *g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges, dangling ones included, in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// ResolvedEdges returns the edges whose endpoints both exist.
func (g *Graph) ResolvedEdges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if g.resolvable(e) {
			out = append(out, e)
		}
	}
	return out
}

// Dangling returns the edges that reference a node missing from the graph.
func (g *Graph) Dangling() []Edge {
	var out []Edge
	for _, e := range g.edges {
		if !g.resolvable(e) {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, dangling ones included.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Sources returns the IDs of nodes with an edge into id (direct upstream).
// The returned slice is a read-only view.
func (g *Graph) Sources(id string) []string { return g.incoming[id] }

// Targets returns the IDs of nodes id has an edge to (direct downstream).
// The returned slice is a read-only view.
func (g *Graph) Targets(id string) []string { return g.outgoing[id] }

// Validate returns ErrDanglingEdge, wrapped with the first offending edge,
// if any edge references an unknown node.
func (g *Graph) Validate() error {
	if d := g.Dangling(); len(d) > 0 {
		return fmt.Errorf("%w: %s", ErrDanglingEdge, d[0])
	}
	return nil
}
