package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim"
)

// Handler methods for routerHandlers.
// These are used by both the standalone router (for testing) and the full
// Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// Lock-free snapshot read; never contends with the tick.
	snap := h.engine.Snapshot()

	writeJSON(w, map[string]interface{}{
		"tickNumber": snap.TickNumber,
		"bodies":     snap.Bodies,
		"bodyCount":  snap.BodyCount,
		"totalMass":  snap.TotalMass,
	})
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Stats()
	writeJSON(w, map[string]interface{}{
		"tickCount":          stats.TickCount,
		"bodyCount":          stats.BodyCount,
		"totalMass":          stats.TotalMass,
		"totalMerges":        stats.TotalMerges,
		"massMerged":         stats.MassMerged,
		"deferredCollisions": stats.DeferredCollisions,
		"running":            stats.Running,
		"eventLog":           h.engine.GetEventLogStats(),
	})
}

func (h *routerHandlers) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	writeJSON(w, map[string]interface{}{
		"g":                         cfg.G,
		"softeningFactor":           cfg.SofteningFactor,
		"dragFactor":                cfg.DragFactor,
		"collisionDetectionEnabled": cfg.CollisionDetectionEnabled,
		"galaxyBoundary":            cfg.GalaxyBoundary,
		"softBoundaryRatio":         cfg.SoftBoundaryRatio,
		"bounceForceConstant":       cfg.BounceForceConstant,
		"boundaryDamping":           cfg.BoundaryDamping,
		"spatialGridCellSize":       cfg.SpatialGridCellSize,
		"maxCollisionsPerTick":      cfg.MaxCollisionsPerTick,
	})
}

// spawnRequest is the wire form of a body creation request.
type spawnRequest struct {
	Kind     string                 `json:"kind"`
	Position sim.Vec3               `json:"position"`
	Velocity sim.Vec3               `json:"velocity"`
	Mass     float64                `json:"mass"`
	Radius   float64                `json:"radius"`
	IsStatic bool                   `json:"isStatic"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

func (req spawnRequest) toOptions() sim.BodyOptions {
	return sim.BodyOptions{
		Kind:     sim.BodyKind(req.Kind),
		Position: req.Position,
		Velocity: req.Velocity,
		Mass:     req.Mass,
		Radius:   req.Radius,
		IsStatic: req.IsStatic,
		Meta:     req.Meta,
	}
}

func (h *routerHandlers) handleSpawnBody(w http.ResponseWriter, r *http.Request) {
	var req spawnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	body, err := h.engine.SpawnBody(req.toOptions())
	if err != nil {
		if errors.Is(err, sim.ErrBodyLimit) {
			writeError(w, "Body limit reached", http.StatusServiceUnavailable)
			return
		}
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, body.ToJSON())
}

func (h *routerHandlers) handleBatchSpawn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Bodies []spawnRequest `json:"bodies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if len(req.Bodies) == 0 {
		writeError(w, "No bodies given", http.StatusBadRequest)
		return
	}
	if len(req.Bodies) > h.maxBodiesPerRequest {
		writeError(w, "Too many bodies in one request", http.StatusBadRequest)
		return
	}

	created := make([]map[string]interface{}, 0, len(req.Bodies))
	var firstErr string
	for _, br := range req.Bodies {
		body, err := h.engine.SpawnBody(br.toOptions())
		if err != nil {
			if firstErr == "" {
				firstErr = err.Error()
			}
			continue
		}
		created = append(created, body.ToJSON())
	}

	writeJSON(w, map[string]interface{}{
		"created": created,
		"count":   len(created),
		"error":   firstErr,
	})
}

func (h *routerHandlers) handleSeed(w http.ResponseWriter, r *http.Request) {
	spec := sim.DefaultSeedSpec()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
			writeError(w, "Invalid request", http.StatusBadRequest)
			return
		}
	}

	count, err := h.engine.SeedGalaxy(spec)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]interface{}{
		"success": true,
		"seed":    spec.Seed,
		"count":   count,
	})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
