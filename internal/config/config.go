// Package config provides centralized configuration management.
// This is the single source of truth for all simulation and server
// settings. Environment variables override defaults; validation happens
// here, at load time, before the engine ever ticks.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                int
	MaxBodiesPerRequest int // Cap on batch spawn size per API call
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:                3000,
		MaxBodiesPerRequest: 100,
	}
}

// ServerFromEnv returns server configuration with environment overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if mb := getEnvInt("MAX_BODIES_PER_REQUEST", 0); mb > 0 {
		cfg.MaxBodiesPerRequest = mb
	}

	return cfg
}

// PhysicsFromEnv returns the simulation configuration with environment
// overrides applied on top of the canonical defaults.
func PhysicsFromEnv() sim.Config {
	cfg := sim.DefaultConfig()

	if v := getEnvFloat("SIM_G", -1); v >= 0 {
		cfg.G = v
	}
	if v := getEnvFloat("SIM_SOFTENING", -1); v > 0 {
		cfg.SofteningFactor = v
	}
	if v := getEnvFloat("SIM_DRAG", -1); v >= 0 {
		cfg.DragFactor = v
	}
	if os.Getenv("SIM_COLLISIONS_ENABLED") == "false" {
		cfg.CollisionDetectionEnabled = false
	}
	if v := getEnvFloat("SIM_BOUNDARY", -1); v > 0 {
		cfg.GalaxyBoundary = v
	}
	if v := getEnvFloat("SIM_SOFT_BOUNDARY_RATIO", -1); v > 0 {
		cfg.SoftBoundaryRatio = v
	}
	if v := getEnvFloat("SIM_BOUNCE_FORCE", -1); v >= 0 {
		cfg.BounceForceConstant = v
	}
	if v := getEnvFloat("SIM_BOUNDARY_DAMPING", -1); v >= 0 {
		cfg.BoundaryDamping = v
	}
	if v := getEnvFloat("SIM_GRID_CELL_SIZE", -1); v > 0 {
		cfg.SpatialGridCellSize = v
	}
	if v := getEnvInt("SIM_MAX_COLLISIONS_PER_TICK", 0); v > 0 {
		cfg.MaxCollisionsPerTick = v
	}
	if v := getEnvFloat("SIM_MAX_DELTA_TIME", -1); v > 0 {
		cfg.MaxDeltaTime = v
	}

	return cfg
}

// LimitsFromEnv returns resource limits with environment overrides.
func LimitsFromEnv() sim.Limits {
	limits := sim.DefaultLimits()

	if v := getEnvInt("SIM_MAX_BODIES", 0); v > 0 {
		limits.MaxBodies = v
		limits.MaxSnapshotBodies = v
	}

	return limits
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Physics      sim.Config
	Limits       sim.Limits
	Server       ServerConfig
	TickRate     int
	EventLogPath string
}

// Load returns the complete configuration with environment overrides.
// Invalid physics configuration is a hard error here, keeping
// configuration mistakes clearly separated from runtime conditions.
func Load() (AppConfig, error) {
	cfg := AppConfig{
		Physics:      PhysicsFromEnv(),
		Limits:       LimitsFromEnv(),
		Server:       ServerFromEnv(),
		TickRate:     getEnvInt("SIM_TICK_RATE", 30),
		EventLogPath: getEnvString("EVENT_LOG_PATH", "events.jsonl"),
	}

	if err := cfg.Physics.Validate(); err != nil {
		return AppConfig{}, fmt.Errorf("config: %w", err)
	}
	if cfg.TickRate <= 0 {
		return AppConfig{}, fmt.Errorf("config: tick rate must be positive, got %d", cfg.TickRate)
	}

	return cfg, nil
}

// Helper functions

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
