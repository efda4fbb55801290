// Package spatial provides the uniform 3-D hash grid used as the
// broad-phase index for collision detection.
//
// Cells hold entity indices (not pointers) and their backing arrays are
// reused across ticks to minimize GC pressure.
package spatial

import "math"

// cellKey is the discretized 3-D coordinate of a grid cell.
type cellKey struct {
	X, Y, Z int32
}

// Grid is a uniform hash grid over the bounded world. It is rebuilt from
// scratch every tick (Clear + Insert per body); a full rebuild is linear in
// body count and cheaper than incremental updates when everything moves.
//
// Cell size is a fixed configuration constant: too small and a query scans
// many cells, too large and a cell holds many bodies, degrading toward
// O(n²) in the narrow phase.
type Grid struct {
	cellSize    float64
	invCellSize float64
	halfWorld   float64
	cells       map[cellKey][]uint32
	scratch     []uint32
}

// maxRetainedCells bounds how many empty cell buckets Clear keeps around
// before dropping the map; bodies drifting through space would otherwise
// leave an ever-growing trail of empty buckets.
const maxRetainedCells = 16384

// NewGrid creates a grid covering a cubic world of the given edge length.
func NewGrid(worldSize, cellSize float64) *Grid {
	return &Grid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		halfWorld:   worldSize / 2,
		cells:       make(map[cellKey][]uint32, 256),
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear empties all cells, keeping bucket capacity for reuse.
func (g *Grid) Clear() {
	if len(g.cells) > maxRetainedCells {
		g.cells = make(map[cellKey][]uint32, 256)
		return
	}
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
}

// keyFor discretizes a world position into its cell coordinate.
// World positions live in [-halfWorld, +halfWorld] per axis.
func (g *Grid) keyFor(x, y, z float64) cellKey {
	return cellKey{
		X: int32(math.Floor((x + g.halfWorld) * g.invCellSize)),
		Y: int32(math.Floor((y + g.halfWorld) * g.invCellSize)),
		Z: int32(math.Floor((z + g.halfWorld) * g.invCellSize)),
	}
}

// Insert adds an entity index at the given world position.
// Iteration order within a cell is insertion order, which keeps pair
// enumeration deterministic for tests.
func (g *Grid) Insert(id uint32, x, y, z float64) {
	k := g.keyFor(x, y, z)
	g.cells[k] = append(g.cells[k], id)
}

// QueryNearby returns every entity index stored in the cube of cells
// within ceil(radius/cellSize) cells of the position's cell, including the
// cell of the query position itself. The caller must exclude self and run
// the precise narrow-phase distance test.
//
// The returned slice is an internal scratch buffer reused on the next
// call; copy it if it must persist.
func (g *Grid) QueryNearby(x, y, z, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	center := g.keyFor(x, y, z)
	cellRadius := int32(math.Ceil(radius * g.invCellSize))

	for dx := -cellRadius; dx <= cellRadius; dx++ {
		for dy := -cellRadius; dy <= cellRadius; dy++ {
			for dz := -cellRadius; dz <= cellRadius; dz++ {
				k := cellKey{center.X + dx, center.Y + dy, center.Z + dz}
				if ids, ok := g.cells[k]; ok {
					g.scratch = append(g.scratch, ids...)
				}
			}
		}
	}

	return g.scratch
}

// CellSize returns the configured cell edge length.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Stats returns occupancy statistics for debugging and metrics.
func (g *Grid) Stats() GridStats {
	var total, maxInCell, nonEmpty int
	for _, cell := range g.cells {
		n := len(cell)
		total += n
		if n > maxInCell {
			maxInCell = n
		}
		if n > 0 {
			nonEmpty++
		}
	}

	avg := 0.0
	if nonEmpty > 0 {
		avg = float64(total) / float64(nonEmpty)
	}

	return GridStats{
		TotalCells:     len(g.cells),
		NonEmptyCells:  nonEmpty,
		TotalEntities:  total,
		MaxInCell:      maxInCell,
		AvgPerNonEmpty: avg,
	}
}

// GridStats contains grid occupancy statistics.
type GridStats struct {
	TotalCells     int
	NonEmptyCells  int
	TotalEntities  int
	MaxInCell      int
	AvgPerNonEmpty float64
}
