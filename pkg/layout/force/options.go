package force

import "math"

// Options configures the forces and cooling schedule of a [Simulation].
// Zero fields take the defaults listed on each field.
type Options struct {
	// LinkDistance is the ideal edge length in pixels. Default: 150.
	LinkDistance float64

	// Charge is the many-body strength; negative values repel. Default: -500.
	Charge float64

	// DistanceMin bounds charge at very small separations. Default: 1.
	DistanceMin float64

	// CollideRadius is the per-node radius kept clear of other nodes. Default: 50.
	CollideRadius float64

	// CollideStrength is the fraction of an overlap resolved per tick (0-1]. Default: 1.
	CollideStrength float64

	// CenterStrength is the fraction of the centroid offset removed per tick (0-1]. Default: 1.
	CenterStrength float64

	// VelocityDecay is the friction applied to velocities each tick. Default: 0.4.
	VelocityDecay float64

	// AlphaMin is the energy below which the simulation settles. Default: 0.001.
	AlphaMin float64

	// AlphaDecay is the per-tick cooling rate. Default: 1 - AlphaMin^(1/300),
	// which settles an undisturbed run in about 300 ticks.
	AlphaDecay float64

	// DragAlphaTarget is the energy the simulation is reheated towards while a
	// node is dragged. Default: 0.3.
	DragAlphaTarget float64

	// Seed drives the deterministic jitter used to separate coincident nodes. Default: 42.
	Seed uint64
}

// DefaultOptions returns the default force configuration.
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.LinkDistance == 0 {
		o.LinkDistance = 150
	}
	if o.Charge == 0 {
		o.Charge = -500
	}
	if o.DistanceMin == 0 {
		o.DistanceMin = 1
	}
	if o.CollideRadius == 0 {
		o.CollideRadius = 50
	}
	if o.CollideStrength == 0 {
		o.CollideStrength = 1
	}
	if o.CenterStrength == 0 {
		o.CenterStrength = 1
	}
	if o.VelocityDecay == 0 {
		o.VelocityDecay = 0.4
	}
	if o.AlphaMin == 0 {
		o.AlphaMin = 0.001
	}
	if o.AlphaDecay == 0 {
		o.AlphaDecay = 1 - math.Pow(o.AlphaMin, 1.0/300)
	}
	if o.DragAlphaTarget == 0 {
		o.DragAlphaTarget = 0.3
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	return o
}
