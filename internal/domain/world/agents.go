package world

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// DefaultWorkerSpeed is tiles travelled per tick
const DefaultWorkerSpeed = 0.25

// Supervisor oversees a set of workers and bounds their search to a command area
type Supervisor struct {
	ID   shared.EntityID
	Cell shared.Cell
	// Area limits candidate work; the zero Rect means unbounded
	Area shared.Rect
}

// Load is what a worker carries. At most one of the three shapes is set.
type Load struct {
	Resource    shared.ResourceKind
	Count       int
	Bucket      shared.EntityID
	Wheelbarrow shared.EntityID
}

// IsEmpty reports whether the worker's hands are free
func (l Load) IsEmpty() bool {
	return l.Count == 0 && l.Bucket.IsNone() && l.Wheelbarrow.IsNone()
}

// Worker is a mobile agent that executes one assigned task at a time
type Worker struct {
	ID         shared.EntityID
	Supervisor shared.EntityID
	Pos        shared.Vec2
	Speed      float64
	Load       Load
}

// Cell returns the tile under the worker
func (w *Worker) Cell() shared.Cell {
	return w.Pos.Cell()
}
