package sim

import (
	"math"
	"testing"
)

// newTestEngine builds an engine with the given physics config, failing
// the test on invalid configuration.
func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(EngineConfig{TickRate: 30, Physics: cfg})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func mustSpawn(t *testing.T, e *Engine, opts BodyOptions) *Body {
	t.Helper()
	b, err := e.SpawnBody(opts)
	if err != nil {
		t.Fatalf("SpawnBody: %v", err)
	}
	return b
}

func totalMomentum(e *Engine) Vec3 {
	p := Vec3{}
	for _, b := range e.store.Bodies() {
		p = p.Add(b.Velocity.Scale(b.Mass))
	}
	return p
}

// TestMomentumConservation verifies that gravity alone never changes the
// total momentum of the system. Collisions are disabled and all bodies
// stay far from the boundary, so the only forces are pairwise and must
// cancel.
func TestMomentumConservation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollisionDetectionEnabled = false
	e := newTestEngine(t, cfg)

	mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 500, Radius: 10, Position: Vec3{X: 100}, Velocity: Vec3{Y: 2}})
	mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 300, Radius: 8, Position: Vec3{X: -80, Y: 50}, Velocity: Vec3{Y: -1, Z: 0.5}})
	mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 5, Radius: 2, Position: Vec3{Z: 120}, Velocity: Vec3{X: 3}})
	mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 2, Radius: 1, Position: Vec3{X: 40, Y: -60}, Velocity: Vec3{}})

	before := totalMomentum(e)

	for i := 0; i < 500; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	after := totalMomentum(e)
	drift := after.Sub(before).Length()
	scale := before.Length()
	if scale < 1 {
		scale = 1
	}
	if drift/scale > 1e-9 {
		t.Errorf("momentum drifted by %v (relative %v)", drift, drift/scale)
	}
}

// TestCircularOrbitStability places one orbiter at the circular-orbit
// speed for the softened force law and checks the orbit radius holds over
// many ticks. Semi-implicit Euler should keep the radius bounded instead
// of spiraling.
func TestCircularOrbitStability(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollisionDetectionEnabled = false
	e := newTestEngine(t, cfg)

	const starMass = 100000.0
	const orbitRadius = 300.0

	mustSpawn(t, e, BodyOptions{Kind: KindStar, Mass: starMass, Radius: 50, IsStatic: true})

	// Circular speed for the softened law: a = G·M/(r²+ε²), v = sqrt(a·r).
	eps := cfg.SofteningFactor
	speed := math.Sqrt(cfg.G * starMass * orbitRadius / (orbitRadius*orbitRadius + eps*eps))
	orbiter := mustSpawn(t, e, BodyOptions{
		Kind:     KindPlanet,
		Mass:     100,
		Radius:   5,
		Position: Vec3{X: orbitRadius},
		Velocity: Vec3{Y: speed},
	})

	for i := 0; i < 1000; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
		r := orbiter.Position.Length()
		if math.Abs(r-orbitRadius)/orbitRadius > 0.05 {
			t.Fatalf("orbit radius drifted to %v after %d ticks", r, i+1)
		}
	}
}

// TestHardBoundaryClamp fires a body outward at escape-anything velocity
// and verifies the position never ends a tick outside the boundary.
func TestHardBoundaryClamp(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)

	b := mustSpawn(t, e, BodyOptions{
		Kind:     KindComet,
		Mass:     10,
		Radius:   2,
		Position: Vec3{X: cfg.GalaxyBoundary * 0.99},
		Velocity: Vec3{X: 1e6},
	})

	for i := 0; i < 10; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if d := b.Position.Length(); d > cfg.GalaxyBoundary+1e-9 {
			t.Fatalf("body escaped to %v (boundary %v)", d, cfg.GalaxyBoundary)
		}
	}
}

// TestSoftBoundaryDecelerates checks the soft zone pushes an outbound body
// back inward before the hard clamp is needed.
func TestSoftBoundaryDecelerates(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)

	soft := cfg.GalaxyBoundary * cfg.SoftBoundaryRatio
	b := mustSpawn(t, e, BodyOptions{
		Kind:     KindComet,
		Mass:     10,
		Radius:   2,
		Position: Vec3{X: soft + 100},
		Velocity: Vec3{X: 5},
	})

	outward := b.Velocity.X
	for i := 0; i < 200; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if b.Velocity.X >= outward {
		t.Errorf("outward velocity never decreased: %v -> %v", outward, b.Velocity.X)
	}
}

func TestDragDampsVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DragFactor = 0.5
	cfg.CollisionDetectionEnabled = false
	e := newTestEngine(t, cfg)

	b := mustSpawn(t, e, BodyOptions{Kind: KindComet, Mass: 1, Radius: 1, Velocity: Vec3{X: 10}})

	for i := 0; i < 50; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if b.Velocity.Length() >= 10 {
		t.Errorf("drag did not reduce speed: %v", b.Velocity.Length())
	}
}

// TestStaticBodyNeverMoves pins a static star near a heavy neighbor and
// verifies gravity never displaces it.
func TestStaticBodyNeverMoves(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CollisionDetectionEnabled = false
	e := newTestEngine(t, cfg)

	star := mustSpawn(t, e, BodyOptions{Kind: KindStar, Mass: 1000, Radius: 20, IsStatic: true})
	mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 900, Radius: 10, Position: Vec3{X: 50}})

	for i := 0; i < 100; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if star.Position != (Vec3{}) {
		t.Errorf("static body moved to %+v", star.Position)
	}
	if star.Velocity != (Vec3{}) {
		t.Errorf("static body gained velocity %+v", star.Velocity)
	}
}
