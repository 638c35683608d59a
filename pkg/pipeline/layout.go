package pipeline

import (
	"context"

	"github.com/matzehuels/lens/pkg/graph"
	"github.com/matzehuels/lens/pkg/layout/force"
	"github.com/matzehuels/lens/pkg/lineage"
)

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout runs a fresh force simulation over g until it settles or
// opts.MaxTicks is reached, and captures the result.
//
// A layout that hits the tick budget is returned with Settled=false; it is
// still usable, just not at rest.
func ComputeLayout(ctx context.Context, g *lineage.Graph, focal string, opts Options) (graph.Layout, error) {
	opts.SetDefaults()
	sim := force.New(force.Options{Seed: opts.Seed})
	sim.Initialize(g, opts.Width, opts.Height)

	ticks, err := sim.Settle(ctx, opts.MaxTicks)
	if err != nil {
		return graph.Layout{}, err
	}
	return graph.FromSimulation(g, focal, sim, ticks), nil
}

// markFocal re-targets a cached layout to focal. Positions do not depend on
// the focal node, so one settled layout serves every focal choice.
func markFocal(l *graph.Layout, focal string) {
	l.Focal = focal
	for i := range l.Nodes {
		l.Nodes[i].Focal = l.Nodes[i].ID == focal
	}
}
