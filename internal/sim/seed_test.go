package sim

import (
	"math"
	"testing"
)

func TestSeedGalaxyDeterministic(t *testing.T) {
	spec := DefaultSeedSpec()

	a := newTestEngine(t, DefaultConfig())
	b := newTestEngine(t, DefaultConfig())

	countA, err := a.SeedGalaxy(spec)
	if err != nil {
		t.Fatalf("SeedGalaxy: %v", err)
	}
	countB, err := b.SeedGalaxy(spec)
	if err != nil {
		t.Fatalf("SeedGalaxy: %v", err)
	}

	want := 1 + spec.Planets + spec.Asteroids
	if countA != want || countB != want {
		t.Fatalf("counts = %d/%d, want %d", countA, countB, want)
	}

	bodiesA := a.store.Bodies()
	bodiesB := b.store.Bodies()
	for i := range bodiesA {
		ba, bb := bodiesA[i], bodiesB[i]
		if ba.Position != bb.Position || ba.Velocity != bb.Velocity ||
			ba.Mass != bb.Mass || ba.Radius != bb.Radius || ba.Kind != bb.Kind {
			t.Fatalf("body %d differs between identically seeded engines", i)
		}
	}
}

func TestSeedGalaxyDifferentSeedsDiffer(t *testing.T) {
	specA := DefaultSeedSpec()
	specB := DefaultSeedSpec()
	specB.Seed = 2

	a := newTestEngine(t, DefaultConfig())
	b := newTestEngine(t, DefaultConfig())
	a.SeedGalaxy(specA)
	b.SeedGalaxy(specB)

	same := true
	bodiesA := a.store.Bodies()
	bodiesB := b.store.Bodies()
	for i := range bodiesA {
		if bodiesA[i].Position != bodiesB[i].Position {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical galaxies")
	}
}

// TestSeedGalaxyOrbitalSpeed checks every orbiter launches at the
// circular-orbit speed for its radius.
func TestSeedGalaxyOrbitalSpeed(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)

	spec := DefaultSeedSpec()
	if _, err := e.SeedGalaxy(spec); err != nil {
		t.Fatalf("SeedGalaxy: %v", err)
	}

	for _, b := range e.store.Bodies() {
		if b.IsStatic {
			continue
		}
		r := b.Position.Length()
		if r < spec.MinOrbit*0.9 || r > spec.MaxOrbit*1.1 {
			t.Errorf("body %d at radius %v outside orbit range [%v,%v]", b.ID, r, spec.MinOrbit, spec.MaxOrbit)
		}
		want := math.Sqrt(cfg.G * spec.StarMass / r)
		got := b.Velocity.Length()
		if math.Abs(got-want)/want > 0.01 {
			t.Errorf("body %d speed = %v, want circular %v", b.ID, got, want)
		}
		// Tangential launch: no radial velocity component.
		radial := b.Position.Normalize()
		if math.Abs(b.Velocity.Dot(radial)) > want*0.05 {
			t.Errorf("body %d has radial velocity component", b.ID)
		}
	}
}

func TestSeedGalaxyValidation(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	bad := DefaultSeedSpec()
	bad.Planets = -1
	if _, err := e.SeedGalaxy(bad); err == nil {
		t.Error("expected error for negative planet count")
	}

	bad = DefaultSeedSpec()
	bad.StarMass = 0
	if _, err := e.SeedGalaxy(bad); err == nil {
		t.Error("expected error for zero star mass")
	}

	bad = DefaultSeedSpec()
	bad.MaxOrbit = bad.MinOrbit
	if _, err := e.SeedGalaxy(bad); err == nil {
		t.Error("expected error for empty orbit range")
	}

	bad = DefaultSeedSpec()
	bad.MaxOrbit = DefaultConfig().GalaxyBoundary
	if _, err := e.SeedGalaxy(bad); err == nil {
		t.Error("expected error for orbits reaching the boundary zone")
	}
}

// TestSeededGalaxySurvivesTicks runs the default galaxy briefly and checks
// nothing blows up: mass is conserved modulo merges and every body stays
// finite.
func TestSeededGalaxySurvivesTicks(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	if _, err := e.SeedGalaxy(DefaultSeedSpec()); err != nil {
		t.Fatalf("SeedGalaxy: %v", err)
	}

	before := e.TotalMass()
	for i := 0; i < 100; i++ {
		if _, err := e.Step(0.033); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if math.Abs(e.TotalMass()-before) > 1e-6 {
		t.Errorf("total mass changed from %v to %v", before, e.TotalMass())
	}
	for _, b := range e.store.Bodies() {
		if !b.StateFinite() {
			t.Fatalf("body %d has non-finite state after ticks", b.ID)
		}
	}
}
