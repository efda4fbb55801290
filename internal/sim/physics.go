package sim

import "math"

// softZoneDamping is the extra per-second damping rate applied inside the
// soft boundary zone, scaled by boundary penetration.
const softZoneDamping = 0.5

// accumulateGravity recomputes the acceleration of every movable body by
// softened direct summation over all other bodies.
//
// Static bodies are excluded as subjects (they never move) but still act
// as gravity sources. Quarantined bodies are excluded on both sides so a
// non-finite body cannot contaminate the rest of the set. The summation is
// deliberately O(n²): body counts stay small enough that a tree code is
// unnecessary, and keeping the loop flat makes it trivial to swap for a
// grid-restricted or Barnes-Hut variant later without touching callers.
func accumulateGravity(bodies []*Body, cfg *Config) {
	softeningSq := cfg.SofteningFactor * cfg.SofteningFactor
	minDistSq := cfg.MinInteractionDistance * cfg.MinInteractionDistance

	for _, b := range bodies {
		if b.IsStatic || !b.alive || b.quarantined {
			continue
		}
		b.Acceleration = Vec3{}
		for _, o := range bodies {
			if o == b || !o.alive || o.quarantined {
				continue
			}
			delta := o.Position.Sub(b.Position)
			distSq := delta.LengthSq()
			if distSq < minDistSq {
				// Near-coincident pair; skipping here is the guard that
				// keeps the softened law from producing huge kicks.
				continue
			}
			dist := math.Sqrt(distSq)
			mag := cfg.G * o.Mass / (distSq + softeningSq)
			b.Acceleration = b.Acceleration.Add(delta.Scale(mag / dist))
		}
	}
}

// integrate advances every movable body by dt using semi-implicit Euler:
// velocity is updated first and the position step uses the new velocity.
// This ordering has markedly better energy behavior in orbital dynamics
// than explicit Euler and must not be swapped.
func integrate(bodies []*Body, dt float64, cfg *Config) {
	drag := 1 - cfg.DragFactor*dt
	if drag < 0 {
		drag = 0
	}

	for _, b := range bodies {
		if b.IsStatic || !b.alive || b.quarantined {
			continue
		}
		if drag != 1 {
			b.Velocity = b.Velocity.Scale(drag)
		}
		b.Velocity = b.Velocity.Add(b.Acceleration.Scale(dt))
		b.Position = b.Position.Add(b.Velocity.Scale(dt))
		confine(b, dt, cfg)
	}
}

// confine applies the two-tier boundary. Inside the soft zone the body gets
// an inward velocity correction ramping linearly with penetration, plus
// damping proportional to the same ramp, so slow bodies decelerate smoothly
// before any discontinuous clamp. The hard tier then guarantees
// |position| <= boundary at the end of every tick no matter how fast the
// body was moving.
func confine(b *Body, dt float64, cfg *Config) {
	boundary := cfg.GalaxyBoundary
	soft := boundary * cfg.SoftBoundaryRatio
	dist := b.Position.Length()

	if dist > soft {
		bounce := (dist - soft) / (boundary - soft)
		if bounce > 1 {
			bounce = 1
		}
		inward := b.Position.Scale(-1 / dist)
		b.Velocity = b.Velocity.Add(inward.Scale(bounce * cfg.BounceForceConstant))

		damp := 1 - bounce*softZoneDamping*dt
		if damp < 0 {
			damp = 0
		}
		b.Velocity = b.Velocity.Scale(damp)
	}

	if dist > boundary {
		b.Position = b.Position.Scale(boundary / dist)
		b.Velocity = b.Velocity.Scale(cfg.BoundaryDamping)
	}
}
