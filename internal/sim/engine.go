package sim

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim/spatial"
)

// ErrInvalidDelta is returned by Step for a dt that is negative, zero,
// non-finite or larger than the configured maximum. The tick loop clamps
// wall-clock deltas before calling Step; embedders driving Step directly
// get the same protection through this error.
var ErrInvalidDelta = errors.New("sim: invalid tick delta")

// ErrBodyLimit is returned when spawning would exceed the body cap.
var ErrBodyLimit = errors.New("sim: body limit reached")

// TickReport summarizes one completed tick for observers (metrics).
type TickReport struct {
	Duration  time.Duration
	BodyCount int
	Merges    int
	Deferred  int
}

// EngineStats is an aggregate view for the statistics collaborator.
type EngineStats struct {
	TickCount          uint64  `json:"tickCount"`
	BodyCount          int     `json:"bodyCount"`
	TotalMass          float64 `json:"totalMass"`
	TotalMerges        uint64  `json:"totalMerges"`
	MassMerged         float64 `json:"massMerged"`
	DeferredCollisions uint64  `json:"deferredCollisions"`
	Running            bool    `json:"running"`
}

// EngineConfig bundles everything needed to construct an engine.
type EngineConfig struct {
	// TickRate is the target ticks per second for the internal loop.
	TickRate int
	// Physics is the simulation configuration; validated at construction.
	Physics Config
	// Limits are the resource caps; zero value gets defaults.
	Limits Limits
}

// Engine owns the simulation tick: spatial grid rebuild, collision
// detection, merge resolution and force integration, in that order, all
// under one mutex so readers never observe a partially updated store.
type Engine struct {
	mu    sync.RWMutex
	store *Store
	grid  *spatial.Grid
	cfg   Config

	limits   Limits
	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	lastTick time.Time

	// Stats
	tickCount     uint64
	totalMerges   uint64
	massMerged    float64
	deferredTotal uint64

	// Snapshot system for lock-free reader separation
	snapshotPool *SnapshotPool

	// Event sourcing for audit and statistics
	eventLog *EventLog

	// Hooks for the gameplay/statistics collaborators. Both run
	// synchronously inside the tick, under the engine lock; keep them
	// cheap. OnMerge sees both bodies before the physical update so
	// kind-specific state can be blended.
	OnMerge func(survivor, absorbed *Body)
	OnSpawn func(body *Body)

	// onTick is the metrics observer, invoked after each tick.
	onTick func(TickReport)
}

// NewEngine validates the configuration and builds an engine. Invalid
// physics configuration is a hard failure here, before any tick runs.
func NewEngine(ec EngineConfig) (*Engine, error) {
	if err := ec.Physics.Validate(); err != nil {
		return nil, fmt.Errorf("sim: invalid configuration: %w", err)
	}
	if ec.TickRate <= 0 {
		return nil, fmt.Errorf("sim: tick rate must be positive, got %d", ec.TickRate)
	}
	limits := ec.Limits
	if limits.MaxBodies <= 0 {
		limits = DefaultLimits()
	}

	return &Engine{
		store:        NewStore(limits.MaxBodies),
		grid:         spatial.NewGrid(2*ec.Physics.GalaxyBoundary, ec.Physics.SpatialGridCellSize),
		cfg:          ec.Physics,
		limits:       limits,
		tickRate:     ec.TickRate,
		stopChan:     make(chan struct{}),
		snapshotPool: NewSnapshotPool(limits),
		eventLog:     NewEventLog(),
	}, nil
}

// Start begins the tick loop.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.lastTick = time.Now()
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.loopTick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("simulation engine started at %d TPS", e.tickRate)
}

// Stop stops the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("simulation engine stopped")
}

// loopTick advances by the wall-clock delta since the previous tick,
// clamped to a sane range. Suspend/resume gaps are capped at MaxDeltaTime
// instead of being integrated as one destabilizing jump.
func (e *Engine) loopTick() {
	now := time.Now()

	e.mu.Lock()
	dt := now.Sub(e.lastTick).Seconds()
	e.lastTick = now
	if !isFinite(dt) || dt <= 0 {
		dt = 1.0 / float64(e.tickRate)
	}
	if dt > e.cfg.MaxDeltaTime {
		dt = e.cfg.MaxDeltaTime
	}
	e.step(dt)
	e.mu.Unlock()
}

// Step advances the simulation by exactly dt seconds and returns the merge
// events produced. It is the external tick entry point for embedders and
// tests that drive the engine without the internal loop.
func (e *Engine) Step(dt float64) ([]MergeEvent, error) {
	if !isFinite(dt) || dt <= 0 || dt > e.cfg.MaxDeltaTime {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDelta, dt)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.step(dt), nil
}

// step runs one full tick. Callers hold e.mu.
// Phase order: quarantine scan -> grid rebuild -> detection -> resolution
// -> gravity -> integration -> snapshot. Each phase completes before the
// next starts, so the store is fully consistent when the lock drops.
func (e *Engine) step(dt float64) []MergeEvent {
	start := time.Now()
	e.tickCount++

	bodies := e.store.Bodies()

	// Quarantine bodies that entered the tick with corrupted state: they
	// neither integrate nor exert gravity this tick, so contamination
	// stays local to the offending body.
	for _, b := range bodies {
		wasQuarantined := b.quarantined
		b.quarantined = !b.StateFinite()
		if b.quarantined && !wasQuarantined {
			log.Printf("sim: body %d has non-finite state, skipping for this tick", b.ID)
			e.eventLog.EmitSimple(EventTypeBodyRejected, e.tickCount, strconv.FormatUint(b.ID, 10),
				RejectPayload{BodyID: b.ID, Reason: "non-finite state"})
		}
	}

	var events []MergeEvent
	deferred := 0
	if e.cfg.CollisionDetectionEnabled {
		events, deferred = detectAndResolve(e.store, e.grid, &e.cfg, e.OnMerge)
		for _, ev := range events {
			e.totalMerges++
			e.massMerged += ev.MassTransferred
			survivor := e.store.Get(ev.SurvivorID)
			survivorMass := 0.0
			if survivor != nil {
				survivorMass = survivor.Mass
			}
			e.eventLog.EmitSimple(EventTypeMerge, e.tickCount, strconv.FormatUint(ev.SurvivorID, 10),
				MergePayload{
					SurvivorID:      ev.SurvivorID,
					AbsorbedID:      ev.AbsorbedID,
					MassTransferred: ev.MassTransferred,
					SurvivorMass:    survivorMass,
				})
		}
		e.deferredTotal += uint64(deferred)
		bodies = e.store.Bodies() // resolution may have compacted the slice
	}

	accumulateGravity(bodies, &e.cfg)
	integrate(bodies, dt, &e.cfg)

	e.produceSnapshot()

	e.eventLog.EmitSimple(EventTypeTick, e.tickCount, "",
		TickPayload{
			BodyCount:   len(bodies),
			MergeCount:  len(events),
			Deferred:    deferred,
			DeltaTimeNs: int64(dt * 1e9),
		})

	if e.onTick != nil {
		e.onTick(TickReport{
			Duration:  time.Since(start),
			BodyCount: len(bodies),
			Merges:    len(events),
			Deferred:  deferred,
		})
	}

	return events
}

// SpawnBody adds a new body from the creation collaborator.
func (e *Engine) SpawnBody(opts BodyOptions) (*Body, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spawnBody(opts)
}

// spawnBody is the lock-held spawn path shared with SeedGalaxy.
func (e *Engine) spawnBody(opts BodyOptions) (*Body, error) {
	if e.store.Len() >= e.limits.MaxBodies {
		return nil, ErrBodyLimit
	}
	body, err := e.store.Add(opts)
	if err != nil {
		return nil, err
	}

	e.eventLog.EmitSimple(EventTypeBodySpawn, e.tickCount, strconv.FormatUint(body.ID, 10),
		SpawnPayload{
			BodyID:   body.ID,
			Kind:     body.Kind,
			Mass:     body.Mass,
			Radius:   body.Radius,
			IsStatic: body.IsStatic,
			Position: body.Position,
		})

	if e.OnSpawn != nil {
		e.OnSpawn(body)
	}
	return body, nil
}

// GetBody returns a body by id, or nil.
func (e *Engine) GetBody(id uint64) *Body {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Get(id)
}

// BodyCount returns the number of live bodies.
func (e *Engine) BodyCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.Len()
}

// TotalMass returns the summed mass of all live bodies.
func (e *Engine) TotalMass() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.store.TotalMass()
}

// Config returns the effective physics configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Stats returns aggregate statistics.
func (e *Engine) Stats() EngineStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return EngineStats{
		TickCount:          e.tickCount,
		BodyCount:          e.store.Len(),
		TotalMass:          e.store.TotalMass(),
		TotalMerges:        e.totalMerges,
		MassMerged:         e.massMerged,
		DeferredCollisions: e.deferredTotal,
		Running:            e.running,
	}
}

// Snapshot returns the latest immutable snapshot for lock-free readers.
func (e *Engine) Snapshot() *SimSnapshot {
	return e.snapshotPool.AcquireRead()
}

// produceSnapshot copies the current body set into the write buffer and
// publishes it. Called at the end of each tick with the lock held.
func (e *Engine) produceSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	snap.TickNumber = e.tickCount
	snap.TotalMerges = e.totalMerges
	snap.MassMerged = e.massMerged
	snap.DeferredCollisions = e.deferredTotal

	totalMass := 0.0
	for _, b := range e.store.Bodies() {
		if len(snap.Bodies) >= e.limits.MaxSnapshotBodies {
			break
		}
		snap.Bodies = append(snap.Bodies, BodySnapshot{
			ID:       b.ID,
			Kind:     b.Kind,
			Position: b.Position,
			Velocity: b.Velocity,
			Mass:     b.Mass,
			Radius:   b.Radius,
			IsStatic: b.IsStatic,
		})
		totalMass += b.Mass
	}
	snap.BodyCount = len(snap.Bodies)
	snap.TotalMass = totalMass

	e.snapshotPool.PublishWrite()
}

// SetTickObserver registers the metrics hook invoked after every tick.
func (e *Engine) SetTickObserver(fn func(TickReport)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// GetLimits returns the current resource limits
func (e *Engine) GetLimits() Limits {
	return e.limits
}

// GridStats returns broad-phase occupancy statistics for debugging.
func (e *Engine) GridStats() spatial.GridStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.grid.Stats()
}
