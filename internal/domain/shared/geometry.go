package shared

import (
	"fmt"
	"math"
)

// Cell is a tile coordinate on the walkability grid
type Cell struct {
	X int
	Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Center returns the world-space position of the cell's center
func (c Cell) Center() Vec2 {
	return Vec2{X: float64(c.X), Y: float64(c.Y)}
}

// Add offsets the cell
func (c Cell) Add(dx, dy int) Cell {
	return Cell{X: c.X + dx, Y: c.Y + dy}
}

// Neighbors returns the 8 surrounding cells in a fixed order
func (c Cell) Neighbors() []Cell {
	return []Cell{
		c.Add(0, -1), c.Add(1, 0), c.Add(0, 1), c.Add(-1, 0),
		c.Add(1, -1), c.Add(1, 1), c.Add(-1, 1), c.Add(-1, -1),
	}
}

// IsAdjacent reports whether other touches c (including diagonals) or equals it
func (c Cell) IsAdjacent(other Cell) bool {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1
}

// DistanceSquared between two cells in tile units
func (c Cell) DistanceSquared(other Cell) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return dx*dx + dy*dy
}

// Vec2 is a continuous world position measured in tiles
type Vec2 struct {
	X float64
	Y float64
}

// Cell returns the tile containing the position
func (v Vec2) Cell() Cell {
	return Cell{X: int(math.Round(v.X)), Y: int(math.Round(v.Y))}
}

// DistanceSquared returns the squared euclidean distance
func (v Vec2) DistanceSquared(other Vec2) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}

// MoveTowards steps at most maxStep towards target and returns the new position
func (v Vec2) MoveTowards(target Vec2, maxStep float64) Vec2 {
	d2 := v.DistanceSquared(target)
	if d2 <= maxStep*maxStep || d2 == 0 {
		return target
	}
	d := math.Sqrt(d2)
	return Vec2{
		X: v.X + (target.X-v.X)/d*maxStep,
		Y: v.Y + (target.Y-v.Y)/d*maxStep,
	}
}

// Rect is an inclusive tile rectangle, used for supervisor command areas
type Rect struct {
	Min Cell
	Max Cell
}

// NewRectAround builds the square of the given radius centered on c
func NewRectAround(c Cell, radius int) Rect {
	return Rect{Min: c.Add(-radius, -radius), Max: c.Add(radius, radius)}
}

// Contains reports whether the cell lies inside the rectangle
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// IsEmpty is true for the zero rectangle, which means "unbounded" for command areas
func (r Rect) IsEmpty() bool {
	return r == Rect{}
}
