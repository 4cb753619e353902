package scheduling

import (
	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// wheelbarrowPolicy batches items into one trip when the destination has
// room for a worthwhile batch and a wheelbarrow is free; otherwise it falls
// back to a plain single-item haul.
type wheelbarrowPolicy struct{}

func (wheelbarrowPolicy) Kind() work.Kind { return work.KindHaulWithWheelbarrow }

func (p wheelbarrowPolicy) Build(in PolicyInput) (Assignment, bool) {
	sp, ok := in.World.Stockpile(in.Item.Target())
	if !ok {
		return Assignment{}, false
	}
	minBatch := max(in.Tuning.WheelbarrowMinBatch, 1)

	if a, ok := p.reuseLease(in, sp, minBatch); ok {
		return a, true
	}
	if a, ok := p.mintLease(in, sp, minBatch); ok {
		return a, true
	}
	return p.direct(in, sp)
}

func (wheelbarrowPolicy) reuseLease(in PolicyInput, sp *world.Stockpile, minBatch int) (Assignment, bool) {
	exists := in.World.Exists
	for _, lease := range in.Leases.Unheld(sp.ID) {
		if _, stale := lease.StaleCheck(in.Now, exists); stale {
			continue
		}
		wb, ok := in.World.Wheelbarrow(lease.Wheelbarrow())
		if !ok || !wb.IsIdle() || in.View.Source(wb.ID) > 0 {
			continue
		}
		var live []shared.EntityID
		for _, id := range lease.Items() {
			if item, ok := in.World.Item(id); ok && in.View.Source(item.ID) == 0 {
				live = append(live, id)
			}
		}
		room := stockpileRoom(sp, lease.Resource(), in.Supervisor.ID, in.View)
		if len(live) < minBatch || room < len(live) {
			continue
		}
		a := batchAssignment(in, wb.ID, live, sp.ID, lease.Resource())
		a.Lease = lease.ID()
		return a, true
	}
	return Assignment{}, false
}

func (wheelbarrowPolicy) mintLease(in PolicyInput, sp *world.Stockpile, minBatch int) (Assignment, bool) {
	wb, ok := nearestIdleWheelbarrow(in)
	if !ok {
		return Assignment{}, false
	}
	seed, ok := nearestLooseFor(in, sp, wb.Cell)
	if !ok {
		return Assignment{}, false
	}
	room := stockpileRoom(sp, seed.Resource, in.Supervisor.ID, in.View)
	limit := min(wb.Room(), room)
	if limit < minBatch {
		return Assignment{}, false
	}

	batch := []shared.EntityID{seed.ID}
	for _, item := range in.World.ItemsNear(seed.Cell, in.Tuning.WheelbarrowBatchRadius) {
		if len(batch) >= limit {
			break
		}
		if item.ID == seed.ID || item.Resource != seed.Resource || !item.IsLoose() || !freeItem(item, in.View, in.Leases) {
			continue
		}
		batch = append(batch, item.ID)
	}
	if len(batch) < minBatch {
		return Assignment{}, false
	}
	a := batchAssignment(in, wb.ID, batch, sp.ID, seed.Resource)
	a.LeasePlan = &LeasePlan{Wheelbarrow: wb.ID, Items: batch, Destination: sp.ID, Resource: seed.Resource}
	return a, true
}

func (wheelbarrowPolicy) direct(in PolicyInput, sp *world.Stockpile) (Assignment, bool) {
	item, ok := nearestLooseFor(in, sp, in.Worker.Cell())
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		Task: task.NewHaul(in.Item.ID(), in.Supervisor.ID, item.ID, sp.ID, item.Resource),
		Ops: []ledger.ReservationRequest{
			ledger.ReserveSource(item.ID),
			ledger.ReserveDestination(sp.ID, item.Resource, 1),
		},
	}, true
}

func batchAssignment(in PolicyInput, wb shared.EntityID, items []shared.EntityID, sp shared.EntityID, r shared.ResourceKind) Assignment {
	ops := make([]ledger.ReservationRequest, 0, len(items)+2)
	ops = append(ops, ledger.ReserveSource(wb))
	for _, id := range items {
		ops = append(ops, ledger.ReserveSource(id))
	}
	ops = append(ops, ledger.ReserveDestination(sp, r, len(items)))
	return Assignment{
		Task: task.NewHaulWithWheelbarrow(in.Item.ID(), in.Supervisor.ID, uuid.Nil, wb, items, sp, r),
		Ops:  ops,
	}
}

func nearestIdleWheelbarrow(in PolicyInput) (*world.Wheelbarrow, bool) {
	from := in.Worker.Cell()
	var best *world.Wheelbarrow
	bestDist := 0
	for _, wb := range in.World.Wheelbarrows() {
		if !wb.IsIdle() || len(wb.Load) > 0 || in.View.Source(wb.ID) > 0 {
			continue
		}
		if _, leased := in.Leases.ForWheelbarrow(wb.ID); leased {
			continue
		}
		d := from.DistanceSquared(wb.Cell)
		if best == nil || d < bestDist {
			best, bestDist = wb, d
		}
	}
	return best, best != nil
}

// nearestLooseFor returns the closest loose free item the stockpile can take
func nearestLooseFor(in PolicyInput, sp *world.Stockpile, from shared.Cell) (*world.Item, bool) {
	var best *world.Item
	bestDist := 0
	for _, item := range in.World.Items() {
		if !item.IsLoose() || !freeItem(item, in.View, in.Leases) {
			continue
		}
		if want := in.Item.Resource(); want != shared.ResourceNone && item.Resource != want {
			continue
		}
		if stockpileRoom(sp, item.Resource, in.Supervisor.ID, in.View) < 1 {
			continue
		}
		d := from.DistanceSquared(item.Cell)
		if best == nil || d < bestDist {
			best, bestDist = item, d
		}
	}
	return best, best != nil
}
