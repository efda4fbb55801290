package sim

import (
	"fmt"
	"math"
	"math/rand"
)

// SeedSpec configures deterministic galaxy seeding: one central static
// star plus a disc of orbiters placed at circular-orbit velocity. The same
// seed always produces the same galaxy.
type SeedSpec struct {
	Seed       int64   `json:"seed"`
	Planets    int     `json:"planets"`
	Asteroids  int     `json:"asteroids"`
	StarMass   float64 `json:"starMass"`
	StarRadius float64 `json:"starRadius"`
	MinOrbit   float64 `json:"minOrbit"`
	MaxOrbit   float64 `json:"maxOrbit"`
}

// DefaultSeedSpec returns a small stable starter galaxy.
func DefaultSeedSpec() SeedSpec {
	return SeedSpec{
		Seed:       1,
		Planets:    8,
		Asteroids:  40,
		StarMass:   100000,
		StarRadius: 50,
		MinOrbit:   300,
		MaxOrbit:   2500,
	}
}

// kindDefaults are the spawn-time mass/radius ranges per body kind. Only
// the seeding helpers read these; the force law is kind-agnostic.
var kindDefaults = map[BodyKind]struct {
	minMass, maxMass     float64
	minRadius, maxRadius float64
}{
	KindPlanet:   {200, 1000, 8, 20},
	KindAsteroid: {1, 10, 1, 3},
}

// SeedGalaxy populates the store with a deterministic galaxy and returns
// the number of bodies created. Orbiters get the circular-orbit speed
// sqrt(G·M/r) tangent to the radius vector in the disc plane, so a freshly
// seeded galaxy is stable rather than collapsing into the star.
func (e *Engine) SeedGalaxy(spec SeedSpec) (int, error) {
	if spec.Planets < 0 || spec.Asteroids < 0 {
		return 0, fmt.Errorf("sim: seed counts must be non-negative")
	}
	if !(spec.StarMass > 0) || !(spec.StarRadius > 0) {
		return 0, fmt.Errorf("sim: seed star mass and radius must be positive")
	}
	if !(spec.MinOrbit > 0) || spec.MaxOrbit <= spec.MinOrbit {
		return 0, fmt.Errorf("sim: seed orbit range [%v,%v] is invalid", spec.MinOrbit, spec.MaxOrbit)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if spec.MaxOrbit > e.cfg.GalaxyBoundary*e.cfg.SoftBoundaryRatio {
		return 0, fmt.Errorf("sim: max orbit %v reaches into the boundary zone", spec.MaxOrbit)
	}

	rng := rand.New(rand.NewSource(spec.Seed))

	star, err := e.spawnBody(BodyOptions{
		Kind:     KindStar,
		Mass:     spec.StarMass,
		Radius:   spec.StarRadius,
		IsStatic: true,
	})
	if err != nil {
		return 0, err
	}

	created := 1
	spawnOrbiter := func(kind BodyKind) error {
		def := kindDefaults[kind]
		opts := BodyOptions{
			Kind:   kind,
			Mass:   def.minMass + rng.Float64()*(def.maxMass-def.minMass),
			Radius: def.minRadius + rng.Float64()*(def.maxRadius-def.minRadius),
		}

		r := spec.MinOrbit + rng.Float64()*(spec.MaxOrbit-spec.MinOrbit)
		theta := rng.Float64() * 2 * math.Pi
		// Thin disc: small vertical scatter relative to orbit radius.
		opts.Position = Vec3{
			X: r * math.Cos(theta),
			Y: r * math.Sin(theta),
			Z: (rng.Float64() - 0.5) * 0.05 * r,
		}

		axis := Vec3{Z: 1}
		tangent := axis.Cross(opts.Position.Normalize()).Normalize()
		speed := math.Sqrt(e.cfg.G * star.Mass / opts.Position.Length())
		opts.Velocity = tangent.Scale(speed)

		_, err := e.spawnBody(opts)
		if err != nil {
			return err
		}
		created++
		return nil
	}

	for i := 0; i < spec.Planets; i++ {
		if err := spawnOrbiter(KindPlanet); err != nil {
			return created, err
		}
	}
	for i := 0; i < spec.Asteroids; i++ {
		if err := spawnOrbiter(KindAsteroid); err != nil {
			return created, err
		}
	}

	e.eventLog.EmitSimple(EventTypeSeed, e.tickCount, "",
		SeedPayload{Seed: spec.Seed, BodyCount: created})

	return created, nil
}
