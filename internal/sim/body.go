package sim

import "fmt"

// BodyKind classifies a body for the gameplay layer. The force law never
// reads the kind; it only matters to merge hooks and spawn helpers.
type BodyKind string

const (
	KindAsteroid  BodyKind = "asteroid"
	KindComet     BodyKind = "comet"
	KindMoon      BodyKind = "moon"
	KindPlanet    BodyKind = "planet"
	KindStar      BodyKind = "star"
	KindBlackHole BodyKind = "black_hole"
)

// validKinds is the accepted kind set for spawn validation.
var validKinds = map[BodyKind]bool{
	KindAsteroid:  true,
	KindComet:     true,
	KindMoon:      true,
	KindPlanet:    true,
	KindStar:      true,
	KindBlackHole: true,
}

// Body is a simulated point mass. Position and velocity are world units;
// acceleration is recomputed every tick and never persists across ticks.
//
// Bodies are owned by the Store and mutated in place by the tick. A body
// with IsStatic set never integrates its own motion but still exerts
// gravity and still participates in collisions.
type Body struct {
	ID       uint64   `json:"id"`
	Kind     BodyKind `json:"kind"`
	Position Vec3     `json:"position"`
	Velocity Vec3     `json:"velocity"`
	// Acceleration is scratch state for the current tick.
	Acceleration Vec3    `json:"-"`
	Mass         float64 `json:"mass"`
	Radius       float64 `json:"radius"`
	IsStatic     bool    `json:"isStatic"`

	// Meta carries opaque per-kind gameplay state (stellar temperature,
	// population, life stage). The core never interprets it; merge hooks
	// receive both bodies so the gameplay layer can combine it.
	Meta map[string]interface{} `json:"meta,omitempty"`

	// alive is cleared when the body is absorbed mid-tick so later pair
	// tests and the integrator skip it before the store compacts.
	alive bool

	// quarantined marks a body that entered the tick with non-finite
	// state. It neither moves nor exerts gravity for that tick.
	quarantined bool
}

// BodyOptions contains the fields required to create a body. The creation
// collaborator must populate all physical fields.
type BodyOptions struct {
	Kind     BodyKind
	Position Vec3
	Velocity Vec3
	Mass     float64
	Radius   float64
	IsStatic bool
	Meta     map[string]interface{}
}

// Validate checks the body invariants: positive mass and radius, finite
// position and velocity, known kind.
func (o BodyOptions) Validate() error {
	if !validKinds[o.Kind] {
		return fmt.Errorf("unknown body kind %q", o.Kind)
	}
	if !(o.Mass > 0) || !isFinite(o.Mass) {
		return fmt.Errorf("body mass must be a positive finite number, got %v", o.Mass)
	}
	if !(o.Radius > 0) || !isFinite(o.Radius) {
		return fmt.Errorf("body radius must be a positive finite number, got %v", o.Radius)
	}
	if !o.Position.IsFinite() {
		return fmt.Errorf("body position must be finite, got %+v", o.Position)
	}
	if !o.Velocity.IsFinite() {
		return fmt.Errorf("body velocity must be finite, got %+v", o.Velocity)
	}
	return nil
}

// StateFinite reports whether the body's physical state is free of
// NaN/Infinity contamination.
func (b *Body) StateFinite() bool {
	return b.Position.IsFinite() && b.Velocity.IsFinite() &&
		isFinite(b.Mass) && b.Mass > 0 &&
		isFinite(b.Radius) && b.Radius > 0
}

// Alive reports whether the body is still part of the simulation.
func (b *Body) Alive() bool {
	return b.alive
}

// ToJSON returns an API-friendly representation of the body.
func (b *Body) ToJSON() map[string]interface{} {
	out := map[string]interface{}{
		"id":       b.ID,
		"kind":     b.Kind,
		"position": b.Position,
		"velocity": b.Velocity,
		"mass":     b.Mass,
		"radius":   b.Radius,
		"isStatic": b.IsStatic,
	}
	if len(b.Meta) > 0 {
		out["meta"] = b.Meta
	}
	return out
}
