package grid

import (
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// Tile is the terrain of one cell
type Tile uint8

const (
	TileGround Tile = iota
	TileWall
	TileWater
)

// Grid is a fixed-size walkability map. Water tiles are not walkable but
// buckets can be filled from any walkable tile next to them.
type Grid struct {
	width  int
	height int
	tiles  []Tile
}

// New creates an all-ground grid
func New(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	return &Grid{width: width, height: height, tiles: make([]Tile, width*height)}, nil
}

// Parse builds a grid from rows of '.' ground, '#' wall and '~' water
func Parse(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("grid has no rows")
	}
	g, err := New(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("row %d has width %d, expected %d", y, len(row), g.width)
		}
		for x, r := range row {
			switch r {
			case '.':
				g.tiles[y*g.width+x] = TileGround
			case '#':
				g.tiles[y*g.width+x] = TileWall
			case '~':
				g.tiles[y*g.width+x] = TileWater
			default:
				return nil, fmt.Errorf("unknown tile %q at %d,%d", r, x, y)
			}
		}
	}
	return g, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Set changes the terrain of a cell. Out of bounds cells are ignored.
func (g *Grid) Set(c shared.Cell, t Tile) {
	if g.InBounds(c) {
		g.tiles[c.Y*g.width+c.X] = t
	}
}

// At returns the terrain of an in-bounds cell
func (g *Grid) At(c shared.Cell) Tile {
	if !g.InBounds(c) {
		return TileWall
	}
	return g.tiles[c.Y*g.width+c.X]
}

// InBounds reports whether c lies on the map
func (g *Grid) InBounds(c shared.Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < g.width && c.Y < g.height
}

// IsWalkable reports whether workers can stand on c
func (g *Grid) IsWalkable(c shared.Cell) bool {
	return g.At(c) == TileGround
}

// IsWater reports whether c holds water
func (g *Grid) IsWater(c shared.Cell) bool {
	return g.InBounds(c) && g.At(c) == TileWater
}

// NearestWalkable scans outward ring by ring for the closest walkable cell
func (g *Grid) NearestWalkable(c shared.Cell) (shared.Cell, bool) {
	if g.IsWalkable(c) {
		return c, true
	}
	maxRing := g.width + g.height
	for r := 1; r <= maxRing; r++ {
		best := shared.Cell{}
		bestD := -1
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if dx != -r && dx != r && dy != -r && dy != r {
					continue
				}
				cand := c.Add(dx, dy)
				if !g.IsWalkable(cand) {
					continue
				}
				d := cand.DistanceSquared(c)
				if bestD < 0 || d < bestD {
					best, bestD = cand, d
				}
			}
		}
		if bestD >= 0 {
			return best, true
		}
	}
	return shared.Cell{}, false
}

// WaterEdges lists walkable cells orthogonally adjacent to water, in row-major order
func (g *Grid) WaterEdges() []shared.Cell {
	var out []shared.Cell
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := shared.Cell{X: x, Y: y}
			if !g.IsWalkable(c) {
				continue
			}
			for _, n := range c.Neighbors()[:4] {
				if g.IsWater(n) {
					out = append(out, c)
					break
				}
			}
		}
	}
	return out
}
