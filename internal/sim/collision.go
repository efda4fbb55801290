package sim

import (
	"log"
	"math"

	"github.com/Zephyrlll/Fillstellar-sub002/internal/sim/spatial"
)

// MergeEvent reports one resolved collision to the statistics collaborator.
// MassTransferred is the absorbed body's mass, which moved into the
// survivor; summing it with live mass always reproduces the original total.
type MergeEvent struct {
	SurvivorID      uint64  `json:"survivorId"`
	AbsorbedID      uint64  `json:"absorbedId"`
	MassTransferred float64 `json:"massTransferred"`
}

// pairKey canonically orders an unordered body pair so (A,B) and (B,A)
// dedupe to the same key within a tick.
type pairKey struct {
	lo, hi uint64
}

func makePairKey(a, b uint64) pairKey {
	if a < b {
		return pairKey{a, b}
	}
	return pairKey{b, a}
}

// detectAndResolve runs one tick of collision handling: grid rebuild,
// broad-phase candidate enumeration, narrow-phase overlap tests and merge
// resolution. It returns the merges performed and the number of colliding
// pairs deferred to the next tick by the per-tick cap.
//
// Static bodies are never subjects (outer loop) but remain valid
// candidates, so a static black hole can still absorb whatever falls in.
// Bodies absorbed earlier in the same tick are flagged dead immediately
// and skipped by every later pair test.
func detectAndResolve(store *Store, grid *spatial.Grid, cfg *Config, onMerge func(survivor, absorbed *Body)) (events []MergeEvent, deferred int) {
	bodies := store.Bodies()

	grid.Clear()
	maxRadius := 0.0
	for i, b := range bodies {
		if b.quarantined {
			continue
		}
		grid.Insert(uint32(i), b.Position.X, b.Position.Y, b.Position.Z)
		if b.Radius > maxRadius {
			maxRadius = b.Radius
		}
	}

	seen := make(map[pairKey]struct{}, 32)

	for _, b := range bodies {
		if b.IsStatic || !b.alive || b.quarantined {
			continue
		}
		// The query must cover any partner whose combined radius with b
		// could overlap, including partners much larger than b (a small
		// mover brushing a huge static body), so the largest inserted
		// radius widens every query.
		queryRadius := b.Radius*cfg.CollisionQueryFactor + maxRadius
		for _, idx := range grid.QueryNearby(b.Position.X, b.Position.Y, b.Position.Z, queryRadius) {
			if !b.alive {
				// b was absorbed by an earlier pair in this list.
				break
			}
			o := bodies[idx]
			if o == b || !o.alive || o.quarantined {
				continue
			}
			key := makePairKey(b.ID, o.ID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			combined := b.Radius + o.Radius
			if b.Position.Sub(o.Position).LengthSq() >= combined*combined {
				continue
			}

			if len(events) >= cfg.MaxCollisionsPerTick {
				// Load shedding: the pair stays overlapping and will be
				// re-detected next tick.
				deferred++
				continue
			}
			if ev, ok := resolveMerge(store, b, o, onMerge); ok {
				events = append(events, ev)
			}
		}
	}

	store.Compact()
	return events, deferred
}

// resolveMerge combines a colliding pair into one surviving body.
//
// Survivor selection: greater mass wins; equal masses tie-break on lower
// ID so results are reproducible. The survivor takes the momentum-
// conserving velocity, the mass-weighted center of mass, the exact summed
// mass and the constant-density radius; the absorbed body is removed.
func resolveMerge(store *Store, a, b *Body, onMerge func(survivor, absorbed *Body)) (MergeEvent, bool) {
	if a.Mass <= 0 || b.Mass <= 0 {
		// Precondition violation: the store never admits non-positive
		// mass. Skip the pair rather than poison the tick.
		log.Printf("collision: skipping degenerate pair %d/%d (mass %v/%v)", a.ID, b.ID, a.Mass, b.Mass)
		return MergeEvent{}, false
	}

	survivor, absorbed := a, b
	if b.Mass > a.Mass || (b.Mass == a.Mass && b.ID < a.ID) {
		survivor, absorbed = b, a
	}

	// The gameplay layer sees both bodies before the physical update so it
	// can blend kind-specific state (stellar temperature, populations).
	if onMerge != nil {
		onMerge(survivor, absorbed)
	}

	totalMass := survivor.Mass + absorbed.Mass
	survivor.Velocity = survivor.Velocity.Scale(survivor.Mass).
		Add(absorbed.Velocity.Scale(absorbed.Mass)).
		Scale(1 / totalMass)
	survivor.Position = survivor.Position.Scale(survivor.Mass).
		Add(absorbed.Position.Scale(absorbed.Mass)).
		Scale(1 / totalMass)
	// Constant density: volume scales with mass, radius with its cube root.
	survivor.Radius = survivor.Radius * math.Cbrt(totalMass/survivor.Mass)
	survivor.Mass = totalMass

	store.remove(absorbed)

	return MergeEvent{
		SurvivorID:      survivor.ID,
		AbsorbedID:      absorbed.ID,
		MassTransferred: absorbed.Mass,
	}, true
}
