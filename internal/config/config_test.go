package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, sim.DefaultConfig(), cfg.Physics)
	assert.Equal(t, sim.DefaultLimits(), cfg.Limits)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 100, cfg.Server.MaxBodiesPerRequest)
	assert.Equal(t, 30, cfg.TickRate)
	assert.Equal(t, "events.jsonl", cfg.EventLogPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SIM_G", "12.5")
	t.Setenv("SIM_DRAG", "0.1")
	t.Setenv("SIM_BOUNDARY", "8000")
	t.Setenv("SIM_GRID_CELL_SIZE", "200")
	t.Setenv("SIM_MAX_COLLISIONS_PER_TICK", "64")
	t.Setenv("SIM_COLLISIONS_ENABLED", "false")
	t.Setenv("SIM_MAX_BODIES", "500")
	t.Setenv("SIM_TICK_RATE", "60")
	t.Setenv("PORT", "8080")
	t.Setenv("EVENT_LOG_PATH", "/tmp/sim-events.jsonl")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12.5, cfg.Physics.G)
	assert.Equal(t, 0.1, cfg.Physics.DragFactor)
	assert.Equal(t, 8000.0, cfg.Physics.GalaxyBoundary)
	assert.Equal(t, 200.0, cfg.Physics.SpatialGridCellSize)
	assert.Equal(t, 64, cfg.Physics.MaxCollisionsPerTick)
	assert.False(t, cfg.Physics.CollisionDetectionEnabled)
	assert.Equal(t, 500, cfg.Limits.MaxBodies)
	assert.Equal(t, 500, cfg.Limits.MaxSnapshotBodies)
	assert.Equal(t, 60, cfg.TickRate)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "/tmp/sim-events.jsonl", cfg.EventLogPath)
}

func TestLoadRejectsInvalidPhysics(t *testing.T) {
	t.Setenv("SIM_DRAG", "1.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drag factor")
}

func TestLoadRejectsInvalidTickRate(t *testing.T) {
	t.Setenv("SIM_TICK_RATE", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tick rate")
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SIM_G", "not-a-number")
	t.Setenv("PORT", "also-not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	// Malformed values fall back to defaults instead of failing.
	assert.Equal(t, sim.DefaultConfig().G, cfg.Physics.G)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestBoundaryDampingOverride(t *testing.T) {
	t.Setenv("SIM_BOUNDARY_DAMPING", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Physics.BoundaryDamping)
}
