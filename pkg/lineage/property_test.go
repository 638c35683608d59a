package lineage

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propNodes = 12

// randomGraph pairs consecutive values of raw into edges over a fixed set of
// propNodes nodes. Self-loops, parallel edges and cycles occur naturally.
func randomGraph(raw []int) *Graph {
	g := New()
	for i := 0; i < propNodes; i++ {
		_ = g.AddNode(Node{ID: nodeName(i), Kind: Kinds[i%len(Kinds)]})
	}
	for i := 0; i+1 < len(raw); i += 2 {
		_ = g.AddEdge(Edge{Source: nodeName(raw[i]), Target: nodeName(raw[i+1])})
	}
	return g
}

func nodeName(i int) string { return fmt.Sprintf("n%02d", i) }

// closure computes reachability by fixed-point iteration over the edge list,
// independent of the adjacency index used by Trace.
func closure(g *Graph, focal string, forward bool) map[string]bool {
	reach := map[string]bool{}
	frontier := map[string]bool{focal: true}
	for changed := true; changed; {
		changed = false
		for _, e := range g.Edges() {
			from, to := e.Source, e.Target
			if !forward {
				from, to = to, from
			}
			if (frontier[from] || reach[from]) && !reach[to] {
				reach[to] = true
				changed = true
			}
		}
	}
	delete(reach, focal)
	return reach
}

func TestTraceProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	edgesGen := gen.SliceOf(gen.IntRange(0, propNodes-1))
	focalGen := gen.IntRange(0, propNodes-1)

	properties.Property("each reachable node appears exactly once per direction", prop.ForAll(
		func(raw []int, f int) bool {
			res := Trace(randomGraph(raw), nodeName(f))
			return unique(res.Upstream) && unique(res.Downstream)
		},
		edgesGen, focalGen,
	))

	properties.Property("focal node is never in its own lineage", prop.ForAll(
		func(raw []int, f int) bool {
			res := Trace(randomGraph(raw), nodeName(f))
			_, up := Find(res.Upstream, nodeName(f))
			_, down := Find(res.Downstream, nodeName(f))
			return !up && !down
		},
		edgesGen, focalGen,
	))

	properties.Property("direct flag matches edges touching focal", prop.ForAll(
		func(raw []int, f int) bool {
			g := randomGraph(raw)
			focal := nodeName(f)
			res := Trace(g, focal)
			for _, e := range g.Edges() {
				if e.Source == e.Target {
					continue
				}
				if e.Target == focal {
					if entry, ok := Find(res.Upstream, e.Source); !ok || !entry.Direct {
						return false
					}
				}
				if e.Source == focal {
					if entry, ok := Find(res.Downstream, e.Target); !ok || !entry.Direct {
						return false
					}
				}
			}
			for _, entry := range append(res.Upstream, res.Downstream...) {
				if entry.Direct != (entry.Depth == 1) {
					return false
				}
			}
			return true
		},
		edgesGen, focalGen,
	))

	properties.Property("result equals the transitive closure", prop.ForAll(
		func(raw []int, f int) bool {
			g := randomGraph(raw)
			focal := nodeName(f)
			res := Trace(g, focal)
			return sameSet(res.Upstream, closure(g, focal, false)) &&
				sameSet(res.Downstream, closure(g, focal, true))
		},
		edgesGen, focalGen,
	))

	properties.TestingRun(t)
}

func unique(entries []Entry) bool {
	seen := map[string]bool{}
	for _, e := range entries {
		if seen[e.Node.ID] {
			return false
		}
		seen[e.Node.ID] = true
	}
	return true
}

func sameSet(entries []Entry, want map[string]bool) bool {
	if len(entries) != len(want) {
		return false
	}
	for _, e := range entries {
		if !want[e.Node.ID] {
			return false
		}
	}
	return true
}
