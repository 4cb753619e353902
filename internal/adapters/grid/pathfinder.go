package grid

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// Pathfinder is a breadth-first reachability oracle over a Grid. Moves are
// 8-connected; diagonal steps may not cut a blocked corner.
type Pathfinder struct {
	grid     *Grid
	maxNodes int
}

// NewPathfinder creates an oracle. maxNodes bounds a single search; 0 means
// the whole grid.
func NewPathfinder(g *Grid, maxNodes int) *Pathfinder {
	if maxNodes <= 0 {
		maxNodes = g.width * g.height
	}
	return &Pathfinder{grid: g, maxNodes: maxNodes}
}

// FindPath returns the cells after start up to and including goal
func (p *Pathfinder) FindPath(start, goal shared.Cell) ([]shared.Cell, bool) {
	return p.FindPathToAny(start, []shared.Cell{goal})
}

// FindPathToAny searches towards the nearest (fewest steps) of goals
func (p *Pathfinder) FindPathToAny(start shared.Cell, goals []shared.Cell) ([]shared.Cell, bool) {
	if len(goals) == 0 || !p.grid.IsWalkable(start) {
		return nil, false
	}
	goalSet := make(map[shared.Cell]bool, len(goals))
	for _, g := range goals {
		if p.grid.IsWalkable(g) {
			goalSet[g] = true
		}
	}
	if len(goalSet) == 0 {
		return nil, false
	}
	if goalSet[start] {
		return []shared.Cell{}, true
	}

	parent := map[shared.Cell]shared.Cell{start: start}
	queue := []shared.Cell{start}
	for len(queue) > 0 && len(parent) <= p.maxNodes {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if _, seen := parent[n]; seen {
				continue
			}
			if !p.canStep(cur, n) {
				continue
			}
			parent[n] = cur
			if goalSet[n] {
				return unwind(parent, start, n), true
			}
			queue = append(queue, n)
		}
	}
	return nil, false
}

func (p *Pathfinder) canStep(from, to shared.Cell) bool {
	if !p.grid.IsWalkable(to) {
		return false
	}
	dx := to.X - from.X
	dy := to.Y - from.Y
	if dx != 0 && dy != 0 {
		return p.grid.IsWalkable(from.Add(dx, 0)) && p.grid.IsWalkable(from.Add(0, dy))
	}
	return true
}

func unwind(parent map[shared.Cell]shared.Cell, start, end shared.Cell) []shared.Cell {
	var rev []shared.Cell
	for c := end; c != start; c = parent[c] {
		rev = append(rev, c)
	}
	path := make([]shared.Cell, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}
