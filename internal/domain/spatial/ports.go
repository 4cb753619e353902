package spatial

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// SpatialIndex buckets entities by position for radius and area queries.
// Implementations are not required to be safe for concurrent use; the
// scheduler owns its index for the duration of a tick.
type SpatialIndex interface {
	Insert(id shared.EntityID, cell shared.Cell)
	Move(id shared.EntityID, cell shared.Cell)
	Remove(id shared.EntityID)
	QueryRadius(center shared.Cell, radius int) []shared.EntityID
	QueryRect(area shared.Rect) []shared.EntityID
}

// Walkability answers questions about the static tile grid
type Walkability interface {
	InBounds(c shared.Cell) bool
	IsWalkable(c shared.Cell) bool
	// IsWater reports whether buckets can be filled from the cell
	IsWater(c shared.Cell) bool
	// NearestWalkable returns the closest walkable cell to c, or false when none exists
	NearestWalkable(c shared.Cell) (shared.Cell, bool)
}

// Reachability is the path oracle. The search algorithm is not the scheduler's concern.
type Reachability interface {
	// FindPath returns the cells from start (exclusive) to goal (inclusive)
	FindPath(start, goal shared.Cell) ([]shared.Cell, bool)
	// FindPathToAny returns a path to whichever goal is cheapest to reach
	FindPathToAny(start shared.Cell, goals []shared.Cell) ([]shared.Cell, bool)
}

// ApproachCells returns the walkable cells from which a worker can act on a
// footprint: the footprint cells themselves when walkable, plus every walkable
// cell touching the footprint.
func ApproachCells(grid Walkability, footprint []shared.Cell) []shared.Cell {
	seen := make(map[shared.Cell]bool, len(footprint)*9)
	inFootprint := make(map[shared.Cell]bool, len(footprint))
	for _, c := range footprint {
		inFootprint[c] = true
	}

	var out []shared.Cell
	add := func(c shared.Cell) {
		if seen[c] {
			return
		}
		seen[c] = true
		if grid.InBounds(c) && grid.IsWalkable(c) {
			out = append(out, c)
		}
	}
	for _, c := range footprint {
		add(c)
		for _, n := range c.Neighbors() {
			if !inFootprint[n] {
				add(n)
			}
		}
	}
	return out
}
