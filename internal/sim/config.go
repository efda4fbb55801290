package sim

import (
	"errors"
	"fmt"
)

// Config is the physics configuration consumed by the simulation core.
// It is passed explicitly into the engine rather than read from ambient
// state so the core stays testable in isolation.
type Config struct {
	// G is the gravitational constant, tuned for pacing, not SI units.
	G float64
	// SofteningFactor is added (squared) to squared distance in the
	// gravity law to regularize close encounters.
	SofteningFactor float64
	// DragFactor is the per-second velocity damping rate in [0,1).
	// Zero preserves pure Newtonian dynamics.
	DragFactor float64
	// CollisionDetectionEnabled gates the broad/narrow phase and merge
	// resolution. When false bodies overlap freely.
	CollisionDetectionEnabled bool
	// GalaxyBoundary is the hard confinement radius around the origin.
	GalaxyBoundary float64
	// SoftBoundaryRatio in (0,1) marks where the soft deceleration zone
	// begins, as a fraction of GalaxyBoundary.
	SoftBoundaryRatio float64
	// BounceForceConstant scales the inward velocity correction applied
	// in the soft zone.
	BounceForceConstant float64
	// BoundaryDamping in [0,1) multiplies velocity when the hard clamp
	// fires; strictly below 1 so a clamped body always loses energy.
	BoundaryDamping float64
	// SpatialGridCellSize is the broad-phase cell edge length.
	SpatialGridCellSize float64
	// MaxCollisionsPerTick caps merge resolution per tick; excess
	// colliding pairs are deferred to the next tick. Load shedding for
	// collision storms, not a correctness knob.
	MaxCollisionsPerTick int
	// MinInteractionDistance skips gravity between near-coincident
	// bodies before the softened law can blow up.
	MinInteractionDistance float64
	// CollisionQueryFactor multiplies a body's radius to form the base
	// broad-phase query radius; the detector widens every query by the
	// largest radius in the grid so oversized partners are never missed.
	CollisionQueryFactor float64
	// MaxDeltaTime is the largest tick duration the integrator accepts.
	// Larger wall-clock gaps (tab suspend, scheduler stalls) are clamped
	// by the tick loop before integration.
	MaxDeltaTime float64
}

// DefaultConfig returns the canonical simulation constants.
func DefaultConfig() Config {
	return Config{
		G:                         6.0,
		SofteningFactor:           2.0,
		DragFactor:                0.0,
		CollisionDetectionEnabled: true,
		GalaxyBoundary:            5000,
		SoftBoundaryRatio:         0.9,
		BounceForceConstant:       0.5,
		BoundaryDamping:           0.7,
		SpatialGridCellSize:       100,
		MaxCollisionsPerTick:      32,
		MinInteractionDistance:    0.1,
		CollisionQueryFactor:      3.0,
		MaxDeltaTime:              0.1,
	}
}

// Validate rejects invalid configuration before any tick runs. These are
// hard failures, distinct from runtime numerical conditions which the tick
// guards locally.
func (c Config) Validate() error {
	var errs []error
	if !(c.SpatialGridCellSize > 0) {
		errs = append(errs, fmt.Errorf("spatial grid cell size must be positive, got %v", c.SpatialGridCellSize))
	}
	if !(c.GalaxyBoundary > 0) {
		errs = append(errs, fmt.Errorf("galaxy boundary must be positive, got %v", c.GalaxyBoundary))
	}
	if c.G < 0 || !isFinite(c.G) {
		errs = append(errs, fmt.Errorf("gravitational constant must be non-negative, got %v", c.G))
	}
	if c.DragFactor < 0 || c.DragFactor >= 1 || !isFinite(c.DragFactor) {
		errs = append(errs, fmt.Errorf("drag factor must be in [0,1), got %v", c.DragFactor))
	}
	if !(c.SofteningFactor > 0) {
		errs = append(errs, fmt.Errorf("softening factor must be positive, got %v", c.SofteningFactor))
	}
	if !(c.SoftBoundaryRatio > 0) || c.SoftBoundaryRatio >= 1 {
		errs = append(errs, fmt.Errorf("soft boundary ratio must be in (0,1), got %v", c.SoftBoundaryRatio))
	}
	if c.BoundaryDamping < 0 || c.BoundaryDamping >= 1 {
		errs = append(errs, fmt.Errorf("boundary damping must be in [0,1), got %v", c.BoundaryDamping))
	}
	if c.BounceForceConstant < 0 {
		errs = append(errs, fmt.Errorf("bounce force constant must be non-negative, got %v", c.BounceForceConstant))
	}
	if c.MaxCollisionsPerTick <= 0 {
		errs = append(errs, fmt.Errorf("max collisions per tick must be positive, got %v", c.MaxCollisionsPerTick))
	}
	if !(c.MinInteractionDistance > 0) {
		errs = append(errs, fmt.Errorf("min interaction distance must be positive, got %v", c.MinInteractionDistance))
	}
	if c.CollisionQueryFactor < 1 {
		errs = append(errs, fmt.Errorf("collision query factor must be >= 1, got %v", c.CollisionQueryFactor))
	}
	if !(c.MaxDeltaTime > 0) {
		errs = append(errs, fmt.Errorf("max delta time must be positive, got %v", c.MaxDeltaTime))
	}
	return errors.Join(errs...)
}

// Limits defines hard caps protecting the engine from resource exhaustion.
type Limits struct {
	// MaxBodies is the hard cap on live bodies.
	MaxBodies int
	// MaxSnapshotBodies caps bodies copied into a snapshot.
	MaxSnapshotBodies int
}

// DefaultLimits provides production-safe defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxBodies:         2000,
		MaxSnapshotBodies: 2000,
	}
}
