package sim

import (
	"sync/atomic"
	"time"
)

// BodySnapshot is an immutable copy of body state for readers outside the
// tick. Value types only, so a published snapshot can never observe a
// half-updated body.
type BodySnapshot struct {
	ID       uint64   `json:"id"`
	Kind     BodyKind `json:"kind"`
	Position Vec3     `json:"position"`
	Velocity Vec3     `json:"velocity"`
	Mass     float64  `json:"mass"`
	Radius   float64  `json:"radius"`
	IsStatic bool     `json:"isStatic"`
}

// SimSnapshot is a complete immutable view of the simulation produced at
// the end of each tick.
type SimSnapshot struct {
	Sequence   uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"` // When snapshot was created
	TickNumber uint64    `json:"tickNumber"`

	Bodies []BodySnapshot `json:"bodies"`

	// Aggregate stats
	BodyCount          int     `json:"bodyCount"`
	TotalMass          float64 `json:"totalMass"`
	TotalMerges        uint64  `json:"totalMerges"`
	MassMerged         float64 `json:"massMerged"`
	DeferredCollisions uint64  `json:"deferredCollisions"`
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer: the tick writes
// one buffer while readers hold another, and PublishWrite flips them.
type SnapshotPool struct {
	snapshots [3]SimSnapshot // Triple buffer
	limits    Limits
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated body slices
func NewSnapshotPool(limits Limits) *SnapshotPool {
	pool := &SnapshotPool{limits: limits}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = SimSnapshot{
			Bodies: make([]BodySnapshot, 0, limits.MaxSnapshotBodies),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *SimSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Bodies = snap.Bodies[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer side).
func (p *SnapshotPool) AcquireRead() *SimSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// GetLimits returns the resource limits
func (p *SnapshotPool) GetLimits() Limits {
	return p.limits
}
