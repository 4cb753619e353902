package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/spatial"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// freeItem reports whether nobody has claimed the item and no lease batches it
func freeItem(item *world.Item, view ledger.View, leases *transport.LeaseRegistry) bool {
	return view.Source(item.ID) == 0 && !leases.Covers(item.ID)
}

// nearestSource returns the closest unclaimed item of r, loose or stored
func nearestSource(in PolicyInput, r shared.ResourceKind, from shared.Cell) (*world.Item, bool) {
	var best *world.Item
	bestDist := 0
	for _, item := range in.World.Items() {
		if item.Resource != r || !freeItem(item, in.View, in.Leases) {
			continue
		}
		d := from.DistanceSquared(item.Cell)
		if best == nil || d < bestDist {
			best, bestDist = item, d
		}
	}
	return best, best != nil
}

// looseFreeCount counts loose unclaimed units of r
func looseFreeCount(w *world.World, r shared.ResourceKind, view ledger.View, leases *transport.LeaseRegistry) int {
	n := 0
	for _, item := range w.Items() {
		if item.Resource == r && item.IsLoose() && freeItem(item, view, leases) {
			n++
		}
	}
	return n
}

// stockpileRoom returns the units a stockpile can still take for r after
// reservations, or 0 when it cannot take r at all for supervisor sup
func stockpileRoom(sp *world.Stockpile, r shared.ResourceKind, sup shared.EntityID, view ledger.View) int {
	if !sp.AcceptsResource(r) {
		return 0
	}
	if !sp.Owner.IsNone() && sp.Owner != sup {
		return 0
	}
	booked := view.DestinationTotal(sp.ID)
	if sp.Accepts == shared.ResourceNone && booked-view.Destination(sp.ID, r) > 0 {
		// an unlocked stockpile already promised to another kind
		return 0
	}
	room := sp.Remaining() - booked
	if room < 0 {
		return 0
	}
	return room
}

// nearestStockpile returns the closest stockpile with at least need units of room for r
func nearestStockpile(w *world.World, r shared.ResourceKind, sup shared.EntityID, from shared.Cell, need int, view ledger.View) (*world.Stockpile, bool) {
	var best *world.Stockpile
	bestDist := 0
	for _, sp := range w.Stockpiles() {
		if stockpileRoom(sp, r, sup, view) < need {
			continue
		}
		d := from.DistanceSquared(sp.Cell)
		if best == nil || d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best, best != nil
}

// idleHomeBucket returns the nearest unclaimed bucket belonging to tank
func idleHomeBucket(w *world.World, tank shared.EntityID, from shared.Cell, view ledger.View) (*world.Bucket, bool) {
	var best *world.Bucket
	bestDist := 0
	for _, b := range w.Buckets() {
		if b.Home != tank || !b.IsIdle() || view.Source(b.ID) > 0 {
			continue
		}
		d := from.DistanceSquared(b.Cell)
		if best == nil || d < bestDist {
			best, bestDist = b, d
		}
	}
	return best, best != nil
}

// nearestWaterEdge finds the closest walkable cell orthogonally next to water
// within radius of center
func nearestWaterEdge(grid spatial.Walkability, center shared.Cell, radius int) (shared.Cell, bool) {
	var best shared.Cell
	found := false
	bestDist := 0
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			c := center.Add(dx, dy)
			d := dx*dx + dy*dy
			if d > radius*radius || (found && d >= bestDist) {
				continue
			}
			if !grid.IsWalkable(c) || !touchesWater(grid, c) {
				continue
			}
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func touchesWater(grid spatial.Walkability, c shared.Cell) bool {
	for _, n := range c.Neighbors()[:4] {
		if grid.IsWater(n) {
			return true
		}
	}
	return false
}
