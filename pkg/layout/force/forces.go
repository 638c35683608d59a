package force

import "math"

// jiggle returns a tiny non-zero offset from the seeded source. It separates
// coincident nodes without dividing by zero and is reproducible per seed.
func (s *Simulation) jiggle() float64 {
	if v := (s.rng.Float64() - 0.5) * 1e-6; v != 0 {
		return v
	}
	return 1e-7
}

// applyLinks pulls each edge's endpoints towards LinkDistance. The spring
// acts on predicted positions and splits the correction by endpoint degree
// so hubs move less than leaves.
func (s *Simulation) applyLinks() {
	for _, sp := range s.springs {
		src, dst := &s.bodies[sp.src], &s.bodies[sp.dst]
		x := dst.pos.X + dst.vel.X - src.pos.X - src.vel.X
		y := dst.pos.Y + dst.vel.Y - src.pos.Y - src.vel.Y
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		l := math.Sqrt(x*x + y*y)
		l = (l - s.opts.LinkDistance) / l * s.alpha * sp.strength
		x, y = x*l, y*l
		dst.vel.X -= x * sp.bias
		dst.vel.Y -= y * sp.bias
		src.vel.X += x * (1 - sp.bias)
		src.vel.Y += y * (1 - sp.bias)
	}
}

// applyCharge applies pairwise repulsion scaled by inverse squared distance.
// Squared distances below DistanceMin^2 are clamped.
func (s *Simulation) applyCharge() {
	min2 := s.opts.DistanceMin * s.opts.DistanceMin
	k := s.opts.Charge * s.alpha
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			x, y := b.pos.X-a.pos.X, b.pos.Y-a.pos.Y
			if x == 0 {
				x = s.jiggle()
			}
			if y == 0 {
				y = s.jiggle()
			}
			l := math.Max(x*x+y*y, min2)
			fx, fy := x*k/l, y*k/l
			a.vel.X += fx
			a.vel.Y += fy
			b.vel.X -= fx
			b.vel.Y -= fy
		}
	}
}

// integrate applies friction and moves free nodes by their velocity. Pinned
// nodes are snapped to their pin with zero velocity.
func (s *Simulation) integrate() {
	keep := 1 - s.opts.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.pos, b.vel = b.pin, Point{}
			continue
		}
		b.vel.X *= keep
		b.vel.Y *= keep
		b.pos.X += b.vel.X
		b.pos.Y += b.vel.Y
	}
}

// applyCenter translates free nodes so the centroid moves towards the
// viewport centre. Relative positions are preserved.
func (s *Simulation) applyCenter() {
	if len(s.bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range s.bodies {
		sx += b.pos.X
		sy += b.pos.Y
	}
	n := float64(len(s.bodies))
	dx := (sx/n - s.width/2) * s.opts.CenterStrength
	dy := (sy/n - s.height/2) * s.opts.CenterStrength
	for i := range s.bodies {
		if s.bodies[i].pinned {
			continue
		}
		s.bodies[i].pos.X -= dx
		s.bodies[i].pos.Y -= dy
	}
}

// applyCollide pushes overlapping nodes apart after integration. A pinned
// node never moves; its free partner absorbs the whole correction.
func (s *Simulation) applyCollide() {
	minSep := 2 * s.opts.CollideRadius
	for i := range s.bodies {
		for j := i + 1; j < len(s.bodies); j++ {
			a, b := &s.bodies[i], &s.bodies[j]
			if a.pinned && b.pinned {
				continue
			}
			x, y := b.pos.X-a.pos.X, b.pos.Y-a.pos.Y
			d := math.Hypot(x, y)
			if d >= minSep {
				continue
			}
			if d == 0 {
				x, y = s.jiggle(), s.jiggle()
				d = math.Hypot(x, y)
			}
			push := (minSep - d) / d * s.opts.CollideStrength
			x, y = x*push, y*push
			switch {
			case a.pinned:
				b.pos.X += x
				b.pos.Y += y
			case b.pinned:
				a.pos.X -= x
				a.pos.Y -= y
			default:
				a.pos.X -= x / 2
				a.pos.Y -= y / 2
				b.pos.X += x / 2
				b.pos.Y += y / 2
			}
		}
	}
}
