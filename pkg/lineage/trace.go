package lineage

// Entry is a node reached from the focal node in one direction.
type Entry struct {
	Node   Node
	Direct bool // one edge away from the focal node
	Depth  int  // shortest hop count from the focal node
}

// Result is the classified lineage of a focal node.
type Result struct {
	Focal      string
	Upstream   []Entry // everything that transitively feeds the focal node
	Downstream []Entry // everything the focal node transitively feeds
	Skipped    []Edge  // dangling edges ignored while resolving neighbours
}

// IDs returns the node IDs of entries in order.
func IDs(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.Node.ID
	}
	return ids
}

// Find returns the entry for id, if present.
func Find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.Node.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// direction selects the adjacency followed by a traversal.
type direction func(g *Graph, id string) []string

func upstream(g *Graph, id string) []string   { return g.incoming[id] }
func downstream(g *Graph, id string) []string { return g.outgoing[id] }

// Trace computes the transitive upstream and downstream closures of focal.
//
// A node is Direct when an edge connects it to focal in the relevant
// direction. The focal node never appears in its own result, even through
// self-loops or cycles, and a node on a cycle through focal may appear in
// both directions. Unreachable nodes are omitted. An unknown focal ID yields
// an empty result rather than an error.
//
// Each direction is a breadth-first walk over an explicit queue guarded by a
// visited set, so the cost is O(V+E) and deep chains do not grow the stack.
// Entries follow graph insertion order.
func Trace(g *Graph, focal string) Result {
	res := Result{Focal: focal, Skipped: g.Dangling()}
	if !g.Has(focal) {
		return res
	}
	res.Upstream = g.collect(walk(g, focal, upstream))
	res.Downstream = g.collect(walk(g, focal, downstream))
	return res
}

// walk returns the hop distance of every node reachable from start along
// next, excluding start itself.
func walk(g *Graph, start string, next direction) map[string]int {
	depth := make(map[string]int)
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, nb := range next(g, id) {
			if visited[nb] {
				continue
			}
			visited[nb] = true
			depth[nb] = depth[id] + 1
			queue = append(queue, nb)
		}
	}
	return depth
}

func (g *Graph) collect(depth map[string]int) []Entry {
	if len(depth) == 0 {
		return nil
	}
	out := make([]Entry, 0, len(depth))
	for _, id := range g.order {
		d, ok := depth[id]
		if !ok {
			continue
		}
		out = append(out, Entry{Node: *g.nodes[id], Direct: d == 1, Depth: d})
	}
	return out
}

// DirectCounts returns the number of edges entering and leaving focal.
// Parallel edges are counted individually and dangling edges are ignored.
func DirectCounts(g *Graph, focal string) (upstream, downstream int) {
	return len(g.incoming[focal]), len(g.outgoing[focal])
}

// Subgraph returns a graph holding the focal node, every traced node and
// the resolvable edges among them. Node order follows g.
func Subgraph(g *Graph, r Result) *Graph {
	keep := make(map[string]bool, len(r.Upstream)+len(r.Downstream)+1)
	if g.Has(r.Focal) {
		keep[r.Focal] = true
	}
	for _, e := range r.Upstream {
		keep[e.Node.ID] = true
	}
	for _, e := range r.Downstream {
		keep[e.Node.ID] = true
	}

	sub := New()
	for _, id := range g.order {
		if keep[id] {
			_ = sub.AddNode(*g.nodes[id])
		}
	}
	for _, e := range g.edges {
		if keep[e.Source] && keep[e.Target] {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}
