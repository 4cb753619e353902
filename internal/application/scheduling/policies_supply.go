package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

type gatherPolicy struct{}

func (gatherPolicy) Kind() work.Kind { return work.KindGather }

func (gatherPolicy) Build(in PolicyInput) (Assignment, bool) {
	node, ok := in.World.Node(in.Item.Target())
	if !ok || node.Remaining <= 0 || in.View.Source(node.ID) > 0 {
		return Assignment{}, false
	}
	return Assignment{
		Task: task.NewGather(in.Item.ID(), in.Supervisor.ID, node.ID),
		Ops:  []ledger.ReservationRequest{ledger.ReserveSource(node.ID)},
	}, true
}

type haulPolicy struct{}

func (haulPolicy) Kind() work.Kind { return work.KindHaul }

func (haulPolicy) Build(in PolicyInput) (Assignment, bool) {
	item, ok := in.World.Item(in.Item.Target())
	if !ok || !item.IsLoose() || !freeItem(item, in.View, in.Leases) {
		return Assignment{}, false
	}
	sp, ok := nearestStockpile(in.World, item.Resource, in.Supervisor.ID, item.Cell, 1, in.View)
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

// requestSource resolves the item a request-backed work item should move:
// the pinned source of a manual request, else the nearest free unit
func requestSource(in PolicyInput, r shared.ResourceKind) (*world.Item, bool) {
	if in.Item.HasRequest() {
		if req, ok := in.Requests.Get(in.Item.Request()); ok && !req.PinnedSource().IsNone() {
			item, ok := in.World.Item(req.PinnedSource())
			if !ok || item.Resource != r || !freeItem(item, in.View, in.Leases) {
				return nil, false
			}
			return item, true
		}
	}
	return nearestSource(in, r, in.Worker.Cell())
}

// anchorNeeded returns units of r a blueprint or site still needs, before reservations
func anchorNeeded(w *world.World, anchor shared.EntityID, r shared.ResourceKind) (int, bool) {
	if bp, ok := w.Blueprint(anchor); ok {
		return bp.Needed(r), true
	}
	if site, ok := w.Site(anchor); ok {
		return site.Needed(r), true
	}
	return 0, false
}

type haulToBlueprintPolicy struct{}

func (haulToBlueprintPolicy) Kind() work.Kind { return work.KindHaulToBlueprint }

func (haulToBlueprintPolicy) Build(in PolicyInput) (Assignment, bool) {
	anchor, r := in.Item.Target(), in.Item.Resource()
	needed, ok := anchorNeeded(in.World, anchor, r)
	if !ok || needed-in.View.Destination(anchor, r) < 1 {
		return Assignment{}, false
	}
	src, ok := requestSource(in, r)
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		Task: task.NewHaulToBlueprint(in.Item.ID(), in.Supervisor.ID, src.ID, anchor, r),
		Ops: []ledger.ReservationRequest{
			ledger.ReserveSource(src.ID),
			ledger.ReserveDestination(anchor, r, 1),
		},
	}, true
}

type haulToMixerPolicy struct{}

func (haulToMixerPolicy) Kind() work.Kind { return work.KindHaulToMixer }

func (haulToMixerPolicy) Build(in PolicyInput) (Assignment, bool) {
	mixer, ok := in.World.Mixer(in.Item.Target())
	r := in.Item.Resource()
	if !ok || !mixer.Accepts(r) || !r.IsItem() {
		return Assignment{}, false
	}
	if mixer.Spare(r)-in.View.MixerDestination(mixer.ID, r) < 1 {
		return Assignment{}, false
	}
	src, ok := requestSource(in, r)
	if !ok {
		return Assignment{}, false
	}
	return Assignment{
		Task: task.NewHaulToMixer(in.Item.ID(), in.Supervisor.ID, src.ID, mixer.ID, r),
		Ops: []ledger.ReservationRequest{
			ledger.ReserveSource(src.ID),
			ledger.ReserveMixerDestination(mixer.ID, r, 1),
		},
	}, true
}

// collectPolicy digs sand or bone only while open downstream demand exceeds
// what loose units and in-flight collections already cover
type collectPolicy struct {
	kind work.Kind
}

func (p collectPolicy) Kind() work.Kind { return p.kind }

func (p collectPolicy) Build(in PolicyInput) (Assignment, bool) {
	pile, ok := in.World.Node(in.Item.Target())
	if !ok || pile.Remaining <= 0 || in.View.Source(pile.ID) > 0 {
		return Assignment{}, false
	}
	r := pile.Resource()
	if collectDemand(in.Requests, r) <= collectSupply(in, r) {
		return Assignment{}, false
	}
	var t task.AssignedTask
	if p.kind == work.KindCollectSand {
		t = task.NewCollectSand(in.Item.ID(), in.Supervisor.ID, pile.ID)
	} else {
		t = task.NewCollectBone(in.Item.ID(), in.Supervisor.ID, pile.ID)
	}
	return Assignment{
		Task: t,
		Ops:  []ledger.ReservationRequest{ledger.ReserveSource(pile.ID)},
	}, true
}

// collectDemand sums open request slots that consume r. Mud deliveries count
// as sand demand since mud is refined from it.
func collectDemand(requests *transport.Registry, r shared.ResourceKind) int {
	demand := 0
	for _, req := range requests.All() {
		if req.IsClosed() {
			continue
		}
		wanted := req.Resource()
		if r == shared.ResourceSand && req.Kind() == work.KindHaulToBlueprint && wanted == shared.ResourceMud {
			wanted = shared.ResourceSand
		}
		if wanted == r && (req.Kind() == work.KindHaulToBlueprint || req.Kind() == work.KindHaulToMixer) {
			demand += req.Demand().Open()
		}
	}
	return demand
}

func collectSupply(in PolicyInput, r shared.ResourceKind) int {
	supply := looseFreeCount(in.World, r, in.View, in.Leases)
	for _, node := range in.World.Nodes() {
		if node.Resource() == r {
			supply += in.View.Source(node.ID) * node.Yield
		}
	}
	return supply
}
