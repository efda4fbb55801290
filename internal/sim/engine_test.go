package sim

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewEngineRejectsInvalidConfig(t *testing.T) {
	bad := DefaultConfig()
	bad.SpatialGridCellSize = 0
	if _, err := NewEngine(EngineConfig{TickRate: 30, Physics: bad}); err == nil {
		t.Error("expected error for zero cell size")
	}

	bad = DefaultConfig()
	bad.SoftBoundaryRatio = 1.0
	if _, err := NewEngine(EngineConfig{TickRate: 30, Physics: bad}); err == nil {
		t.Error("expected error for soft boundary ratio of 1")
	}

	bad = DefaultConfig()
	bad.DragFactor = 1.0
	if _, err := NewEngine(EngineConfig{TickRate: 30, Physics: bad}); err == nil {
		t.Error("expected error for drag factor of 1")
	}

	bad = DefaultConfig()
	bad.BoundaryDamping = 1.0
	if _, err := NewEngine(EngineConfig{TickRate: 30, Physics: bad}); err == nil {
		t.Error("expected error for boundary damping of 1")
	}

	if _, err := NewEngine(EngineConfig{TickRate: 0, Physics: DefaultConfig()}); err == nil {
		t.Error("expected error for zero tick rate")
	}
}

func TestStepRejectsInvalidDelta(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	for _, dt := range []float64{0, -0.01, math.NaN(), math.Inf(1), DefaultConfig().MaxDeltaTime * 2} {
		_, err := e.Step(dt)
		if !errors.Is(err, ErrInvalidDelta) {
			t.Errorf("Step(%v): got %v, want ErrInvalidDelta", dt, err)
		}
	}
}

func TestSpawnValidation(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	cases := []BodyOptions{
		{Kind: "goose", Mass: 1, Radius: 1},
		{Kind: KindAsteroid, Mass: 0, Radius: 1},
		{Kind: KindAsteroid, Mass: -5, Radius: 1},
		{Kind: KindAsteroid, Mass: 1, Radius: 0},
		{Kind: KindAsteroid, Mass: math.NaN(), Radius: 1},
		{Kind: KindAsteroid, Mass: 1, Radius: 1, Position: Vec3{X: math.Inf(1)}},
		{Kind: KindAsteroid, Mass: 1, Radius: 1, Velocity: Vec3{Y: math.NaN()}},
	}
	for _, opts := range cases {
		if _, err := e.SpawnBody(opts); err == nil {
			t.Errorf("SpawnBody(%+v): expected validation error", opts)
		}
	}
	if e.BodyCount() != 0 {
		t.Errorf("rejected spawns leaked into the store: %d", e.BodyCount())
	}
}

func TestSpawnBodyLimit(t *testing.T) {
	e, err := NewEngine(EngineConfig{
		TickRate: 30,
		Physics:  DefaultConfig(),
		Limits:   Limits{MaxBodies: 3, MaxSnapshotBodies: 3},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	for i := 0; i < 3; i++ {
		mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 1, Radius: 1, Position: Vec3{X: float64(i) * 100}})
	}

	_, err = e.SpawnBody(BodyOptions{Kind: KindAsteroid, Mass: 1, Radius: 1})
	if !errors.Is(err, ErrBodyLimit) {
		t.Errorf("got %v, want ErrBodyLimit", err)
	}
}

// TestQuarantineIsolatesCorruption injects NaN into one body and checks
// the contamination never reaches its neighbors.
func TestQuarantineIsolatesCorruption(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(t, cfg)

	sick := mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 500, Radius: 5, Position: Vec3{X: 50}})
	healthy := mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 500, Radius: 5, Position: Vec3{X: -50}})

	sick.Velocity = Vec3{X: math.NaN()}
	posBefore := sick.Position

	for i := 0; i < 10; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if !healthy.StateFinite() {
		t.Errorf("healthy body contaminated: pos %+v vel %+v", healthy.Position, healthy.Velocity)
	}
	// A quarantined body neither integrates nor gets integrated into.
	if sick.Position != posBefore {
		t.Errorf("quarantined body moved from %+v to %+v", posBefore, sick.Position)
	}
	if e.BodyCount() != 2 {
		t.Errorf("body count = %d, want 2", e.BodyCount())
	}
}

func TestSnapshotReflectsState(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	mustSpawn(t, e, BodyOptions{Kind: KindStar, Mass: 1000, Radius: 20, IsStatic: true})
	mustSpawn(t, e, BodyOptions{Kind: KindPlanet, Mass: 50, Radius: 5, Position: Vec3{X: 400}})

	if _, err := e.Step(0.02); err != nil {
		t.Fatalf("Step: %v", err)
	}

	snap := e.Snapshot()
	if snap.BodyCount != 2 {
		t.Fatalf("snapshot body count = %d, want 2", snap.BodyCount)
	}
	if snap.TotalMass != 1050 {
		t.Errorf("snapshot total mass = %v, want 1050", snap.TotalMass)
	}
	if snap.TickNumber != 1 {
		t.Errorf("snapshot tick = %d, want 1", snap.TickNumber)
	}

	seq := snap.Sequence
	if _, err := e.Step(0.02); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if next := e.Snapshot(); next.Sequence <= seq {
		t.Errorf("sequence did not advance: %d -> %d", seq, next.Sequence)
	}
}

func TestSnapshotCapsBodies(t *testing.T) {
	e, err := NewEngine(EngineConfig{
		TickRate: 30,
		Physics:  DefaultConfig(),
		Limits:   Limits{MaxBodies: 10, MaxSnapshotBodies: 4},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	for i := 0; i < 8; i++ {
		mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 1, Radius: 1, Position: Vec3{X: float64(i) * 100}})
	}
	if _, err := e.Step(0.02); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if snap := e.Snapshot(); len(snap.Bodies) != 4 {
		t.Errorf("snapshot bodies = %d, want cap of 4", len(snap.Bodies))
	}
}

func TestStartStopIdempotent(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	e.Start()
	e.Start() // second start is a no-op
	time.Sleep(50 * time.Millisecond)
	e.Stop()
	e.Stop() // second stop is a no-op

	if e.Stats().Running {
		t.Error("engine still reports running after Stop")
	}
}

func TestTickObserver(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 1, Radius: 1})

	var reports []TickReport
	e.SetTickObserver(func(r TickReport) { reports = append(reports, r) })

	for i := 0; i < 3; i++ {
		if _, err := e.Step(0.02); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	if len(reports) != 3 {
		t.Fatalf("observer saw %d reports, want 3", len(reports))
	}
	if reports[0].BodyCount != 1 {
		t.Errorf("report body count = %d, want 1", reports[0].BodyCount)
	}
}

func TestStatsAccumulate(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 10, Radius: 3})
	mustSpawn(t, e, BodyOptions{Kind: KindAsteroid, Mass: 30, Radius: 3, Position: Vec3{X: 2}})

	if _, err := e.Step(0.02); err != nil {
		t.Fatalf("Step: %v", err)
	}

	stats := e.Stats()
	if stats.TickCount != 1 {
		t.Errorf("tick count = %d, want 1", stats.TickCount)
	}
	if stats.TotalMerges != 1 {
		t.Errorf("total merges = %d, want 1", stats.TotalMerges)
	}
	if stats.MassMerged != 10 {
		t.Errorf("mass merged = %v, want 10", stats.MassMerged)
	}
	if stats.BodyCount != 1 {
		t.Errorf("body count = %d, want 1", stats.BodyCount)
	}
}
