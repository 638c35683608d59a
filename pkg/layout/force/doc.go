// Package force computes interactive force-directed layouts for lineage graphs.
//
// A [Simulation] models nodes as charged particles connected by springs:
//
//   - Link: each resolvable edge pulls its endpoints towards LinkDistance.
//   - Charge: every pair of nodes repels with strength Charge.
//   - Center: the graph's centroid is drawn to the viewport centre.
//   - Collide: nodes are kept at least 2*CollideRadius apart.
//
// Motion is governed by an energy term alpha that starts at 1 and decays
// geometrically each tick. When alpha drops below AlphaMin the simulation
// settles and stops moving until it is perturbed by a drag or a resize.
//
// # Lifecycle
//
//	Uninitialized --Initialize--> Running --alpha<min--> Settled
//	Settled --BeginDrag--> Perturbed --Step--> Running
//	any --Initialize--> Running (new generation)
//
// Each Initialize bumps a generation counter. Hosts that schedule ticks
// asynchronously tag them with [Simulation.Generation] and call
// [Simulation.Advance] so ticks belonging to a replaced graph are dropped.
//
// Headless callers use [Simulation.Settle] to run to completion:
//
//	sim := force.New(force.Options{})
//	sim.Initialize(g, 800, 600)
//	ticks, err := sim.Settle(ctx, 500)
//	pos := sim.Positions()
//
// All randomness comes from a PCG source seeded by Options.Seed, so equal
// inputs always produce equal layouts.
package force
