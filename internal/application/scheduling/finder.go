package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// Candidate is a work item a worker could take this cycle
type Candidate struct {
	Item            *work.WorkItem
	DistanceSquared int
	// Committed is true when the item is already owned by the worker's supervisor
	Committed bool
}

type probeKey struct {
	from shared.Cell
	item shared.EntityID
}

// ProbeBudget caps reachability probes for one Decide cycle and memoizes
// their results. Candidates that would need a probe after the budget is
// spent are deferred to a later cycle.
type ProbeBudget struct {
	limit    int
	used     int
	deferred int
	cache    map[probeKey]bool
}

// NewProbeBudget creates a budget of limit probes
func NewProbeBudget(limit int) *ProbeBudget {
	return &ProbeBudget{limit: limit, cache: make(map[probeKey]bool)}
}

func (b *ProbeBudget) Used() int     { return b.used }
func (b *ProbeBudget) Deferred() int { return b.deferred }

// CandidateFinder produces the work items a worker may be assigned
type CandidateFinder struct {
	board *work.Board
	world *world.World
	grid  spatial.Walkability
	paths spatial.Reachability
}

// NewCandidateFinder wires the finder to its collaborators
func NewCandidateFinder(board *work.Board, w *world.World, grid spatial.Walkability, paths spatial.Reachability) *CandidateFinder {
	return &CandidateFinder{board: board, world: w, grid: grid, paths: paths}
}

// Find returns items that are claimable by sup, have an open slot counting
// this cycle's claims, and lie in sup's area (or are already sup's). It does
// not probe reachability; callers check Reachable in ranked order so the
// cycle's probe budget goes to items a worker would actually take.
func (f *CandidateFinder) Find(sup *world.Supervisor, wk *world.Worker, view ledger.View) []Candidate {
	pool := f.pool(sup)
	origin := wk.Cell()

	candidates := make([]Candidate, 0, len(pool))
	for _, item := range pool {
		if !item.IsClaimableBy(sup.ID) {
			continue
		}
		if item.Claims()+view.CycleClaims(item.ID()) >= item.SlotCapacity() {
			continue
		}
		candidates = append(candidates, Candidate{
			Item:            item,
			DistanceSquared: origin.DistanceSquared(item.Cell()),
			Committed:       !sup.ID.IsNone() && item.IsOwnedBy(sup.ID),
		})
	}
	return candidates
}

// Reachable reports whether wk can get to item from its nearest walkable
// cell. Adjacent and already-probed items are free; anything else spends one
// probe, and once the budget is gone the item is deferred and reads false.
func (f *CandidateFinder) Reachable(wk *world.Worker, item *work.WorkItem, budget *ProbeBudget) bool {
	start, ok := f.grid.NearestWalkable(wk.Cell())
	if !ok {
		return false
	}
	return f.reachable(start, item, budget)
}

func (f *CandidateFinder) pool(sup *world.Supervisor) []*work.WorkItem {
	if sup.Area.IsEmpty() {
		return f.board.All()
	}
	inArea := f.board.InArea(sup.Area)
	seen := make(map[shared.EntityID]bool, len(inArea))
	for _, item := range inArea {
		seen[item.ID()] = true
	}
	for _, item := range f.board.OwnedBy(sup.ID) {
		if !seen[item.ID()] {
			inArea = append(inArea, item)
		}
	}
	return inArea
}

func (f *CandidateFinder) reachable(start shared.Cell, item *work.WorkItem, budget *ProbeBudget) bool {
	footprint := f.footprint(item)
	for _, c := range footprint {
		if start.IsAdjacent(c) {
			return true
		}
	}

	key := probeKey{from: start, item: item.ID()}
	if ok, cached := budget.cache[key]; cached {
		return ok
	}
	if budget.used >= budget.limit {
		budget.deferred++
		return false
	}
	budget.used++
	goals := spatial.ApproachCells(f.grid, footprint)
	_, ok := f.paths.FindPathToAny(start, goals)
	budget.cache[key] = ok
	return ok
}

// footprint returns the cells a worker must reach to act on item
func (f *CandidateFinder) footprint(item *work.WorkItem) []shared.Cell {
	if item.Kind() == work.KindBuild || item.Kind().IsRequestBacked() {
		if cells, ok := f.world.Footprint(item.Target()); ok && len(cells) > 0 {
			return cells
		}
	}
	return []shared.Cell{item.Cell()}
}
