package spatial

import (
	"math"
	"math/rand"
	"testing"
)

type point struct {
	x, y, z float64
}

// TestQueryNearbySuperset inserts random points and checks QueryNearby
// always returns a superset of the points within the query radius. The
// grid is a broad phase: false positives are fine, false negatives are
// not.
func TestQueryNearbySuperset(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	g := NewGrid(1000, 50)

	points := make([]point, 200)
	for i := range points {
		points[i] = point{
			x: (rng.Float64() - 0.5) * 1000,
			y: (rng.Float64() - 0.5) * 1000,
			z: (rng.Float64() - 0.5) * 1000,
		}
		g.Insert(uint32(i), points[i].x, points[i].y, points[i].z)
	}

	for trial := 0; trial < 50; trial++ {
		q := point{
			x: (rng.Float64() - 0.5) * 1000,
			y: (rng.Float64() - 0.5) * 1000,
			z: (rng.Float64() - 0.5) * 1000,
		}
		radius := 20 + rng.Float64()*80

		got := make(map[uint32]bool)
		for _, id := range g.QueryNearby(q.x, q.y, q.z, radius) {
			got[id] = true
		}

		for i, p := range points {
			dx, dy, dz := p.x-q.x, p.y-q.y, p.z-q.z
			if math.Sqrt(dx*dx+dy*dy+dz*dz) <= radius && !got[uint32(i)] {
				t.Fatalf("trial %d: point %d within radius %v but missing from query", trial, i, radius)
			}
		}
	}
}

func TestQueryIncludesOwnCell(t *testing.T) {
	g := NewGrid(1000, 100)
	g.Insert(7, 10, 10, 10)

	got := g.QueryNearby(12, 12, 12, 1)
	found := false
	for _, id := range got {
		if id == 7 {
			found = true
		}
	}
	if !found {
		t.Error("entity in same cell missing from query result")
	}
}

func TestQueryAcrossCellBoundary(t *testing.T) {
	g := NewGrid(1000, 100)
	// Two points 2 units apart but on opposite sides of a cell boundary.
	g.Insert(1, 99, 0, 0)
	g.Insert(2, 101, 0, 0)

	got := g.QueryNearby(99, 0, 0, 5)
	found := false
	for _, id := range got {
		if id == 2 {
			found = true
		}
	}
	if !found {
		t.Error("neighbor across cell boundary missing from query result")
	}
}

func TestClearEmptiesGrid(t *testing.T) {
	g := NewGrid(1000, 50)
	for i := 0; i < 20; i++ {
		g.Insert(uint32(i), float64(i)*10, 0, 0)
	}

	g.Clear()

	if got := g.QueryNearby(0, 0, 0, 500); len(got) != 0 {
		t.Errorf("query after Clear returned %d entities", len(got))
	}
	if stats := g.Stats(); stats.TotalEntities != 0 {
		t.Errorf("stats report %d entities after Clear", stats.TotalEntities)
	}
}

func TestGridReuseAfterClear(t *testing.T) {
	g := NewGrid(1000, 50)

	for tick := 0; tick < 5; tick++ {
		g.Clear()
		g.Insert(1, 0, 0, 0)
		g.Insert(2, 10, 0, 0)

		got := g.QueryNearby(0, 0, 0, 20)
		if len(got) != 2 {
			t.Fatalf("tick %d: query returned %d entities, want 2", tick, len(got))
		}
	}
}

func TestStats(t *testing.T) {
	g := NewGrid(1000, 100)
	// Three in one cell, one in another.
	g.Insert(1, 0, 0, 0)
	g.Insert(2, 1, 1, 1)
	g.Insert(3, 2, 2, 2)
	g.Insert(4, 300, 300, 300)

	stats := g.Stats()
	if stats.TotalEntities != 4 {
		t.Errorf("total entities = %d, want 4", stats.TotalEntities)
	}
	if stats.NonEmptyCells != 2 {
		t.Errorf("non-empty cells = %d, want 2", stats.NonEmptyCells)
	}
	if stats.MaxInCell != 3 {
		t.Errorf("max in cell = %d, want 3", stats.MaxInCell)
	}
	if stats.AvgPerNonEmpty != 2 {
		t.Errorf("avg per non-empty = %v, want 2", stats.AvgPerNonEmpty)
	}
}

func TestNegativeCoordinates(t *testing.T) {
	g := NewGrid(1000, 50)
	g.Insert(1, -499, -499, -499)

	got := g.QueryNearby(-495, -495, -495, 10)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("entity near the negative world corner missing: %v", got)
	}
}
