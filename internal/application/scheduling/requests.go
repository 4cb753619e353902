package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/transport"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// defaultRequestPriority is the base priority of demand-driven requests
const defaultRequestPriority = 0

// demand is one anchor's recomputed need for a transport kind
type demand struct {
	anchor   shared.EntityID
	kind     work.Kind
	resource shared.ResourceKind
	owner    shared.EntityID
	cell     shared.Cell
	needed   int
}

// recomputeDemand rebuilds every demand-driven request from world state.
// Needed slots are required minus delivered minus already booked, clipped
// at zero. Requests nobody refreshed drop to zero desired slots and close
// once nothing is in flight.
func (s *Scheduler) recomputeDemand(ctx context.Context) int {
	touched := make(map[uuid.UUID]bool)
	created := 0
	for _, d := range s.collectDemand() {
		req, isNew := s.upsertDemand(ctx, d)
		if req == nil {
			continue
		}
		touched[req.ID()] = true
		if isNew {
			created++
		}
	}

	for _, req := range s.requests.All() {
		if touched[req.ID()] {
			continue
		}
		inflight := 0
		if wi, ok := s.board.Get(req.WorkItem()); ok {
			inflight = wi.Claims()
		}
		desired := 0
		if req.IsSingleShot() && s.world.Exists(req.PinnedSource()) {
			desired = 1
		}
		req.SetDemand(desired, inflight)
	}
	return created
}

func (s *Scheduler) upsertDemand(ctx context.Context, d demand) (*transport.TransportRequest, bool) {
	key := transport.Key{Anchor: d.anchor, Kind: d.kind, Resource: d.resource}
	if _, exists := s.requests.Find(key); !exists && d.needed <= 0 {
		return nil, false
	}
	issuer, ok := s.issuerFor(d.owner, d.cell)
	if !ok {
		return nil, false
	}
	req, isNew, err := s.requests.Upsert(key, issuer, defaultRequestPriority, s.clock.Now())
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Transport request rejected", map[string]interface{}{
			"key":   key.String(),
			"error": err.Error(),
		})
		return nil, false
	}
	req.SetIssuer(issuer)

	wi, ok := s.board.Get(req.WorkItem())
	if !ok {
		var createdItem bool
		wi, createdItem, err = s.board.Designate(work.Designation{
			Kind:     d.kind,
			Cell:     d.cell,
			Target:   d.anchor,
			Issuer:   issuer,
			Priority: req.Priority(),
			Resource: d.resource,
			Request:  req.ID(),
		})
		if err != nil {
			return nil, false
		}
		if createdItem {
			req.Attach(wi.ID())
		} else {
			req.Adopt(wi.ID())
			wi.AttachRequest(req.ID())
		}
	}

	claims := wi.Claims()
	desired := max(d.needed, 0) + claims
	req.SetDemand(desired, claims)
	wi.SetSlotCapacity(desired)
	wi.SetPriority(req.Priority())
	return req, isNew
}

// issuerFor returns the anchor's owner, or the supervisor nearest to cell
func (s *Scheduler) issuerFor(owner shared.EntityID, cell shared.Cell) (shared.EntityID, bool) {
	if _, ok := s.world.Supervisor(owner); ok {
		return owner, true
	}
	best := shared.NoEntity
	bestDist := 0
	for _, sup := range s.world.Supervisors() {
		d := cell.DistanceSquared(sup.Cell)
		if best.IsNone() || d < bestDist {
			best, bestDist = sup.ID, d
		}
	}
	return best, !best.IsNone()
}

// collectDemand lists the current need of every anchor
func (s *Scheduler) collectDemand() []demand {
	var out []demand

	for _, bp := range s.world.Blueprints() {
		for _, m := range bp.Materials {
			out = append(out, demand{
				anchor: bp.ID, kind: work.KindHaulToBlueprint, resource: m.Resource,
				owner: bp.Owner, cell: bp.Anchor(),
				needed: bp.Needed(m.Resource) - s.ledger.Destination(bp.ID, m.Resource),
			})
		}
	}

	for _, site := range s.world.Sites() {
		r := site.Material()
		if r == shared.ResourceNone || len(site.Tiles) == 0 {
			continue
		}
		out = append(out, demand{
			anchor: site.ID, kind: work.KindHaulToBlueprint, resource: r,
			owner: site.Owner, cell: site.Tiles[0].Cell,
			needed: site.Needed(r) - s.ledger.Destination(site.ID, r),
		})
	}

	bucketCap := s.largestBucket()
	for _, mixer := range s.world.Mixers() {
		for _, r := range []shared.ResourceKind{shared.ResourceSand, shared.ResourceRock} {
			if !mixer.Accepts(r) {
				continue
			}
			out = append(out, demand{
				anchor: mixer.ID, kind: work.KindHaulToMixer, resource: r,
				owner: mixer.Owner, cell: mixer.Cell,
				needed: mixer.Spare(r) - s.ledger.MixerDestination(mixer.ID, r),
			})
		}
		if mixer.Accepts(shared.ResourceWater) && len(s.world.Tanks()) > 0 {
			spare := mixer.Spare(shared.ResourceWater) - s.ledger.MixerDestination(mixer.ID, shared.ResourceWater)
			out = append(out, demand{
				anchor: mixer.ID, kind: work.KindHaulWaterToMixer, resource: shared.ResourceWater,
				owner: mixer.Owner, cell: mixer.Cell,
				needed: ceilDiv(spare, bucketCap),
			})
		}
	}

	for _, tank := range s.world.Tanks() {
		free := tank.Free() - s.ledger.Destination(tank.ID, shared.ResourceWater)
		idle, capacity := 0, 1
		for _, b := range s.world.Buckets() {
			if b.Home != tank.ID {
				continue
			}
			capacity = max(capacity, b.Capacity)
			if b.IsIdle() && s.ledger.Source(b.ID) == 0 {
				idle++
			}
		}
		out = append(out, demand{
			anchor: tank.ID, kind: work.KindGatherWater, resource: shared.ResourceWater,
			owner: tank.Owner, cell: tank.Cell,
			needed: min(idle, ceilDiv(free, capacity)),
		})
	}

	if len(s.world.Wheelbarrows()) > 0 {
		for _, sp := range s.world.Stockpiles() {
			needed := 0
			if sp.Remaining()-s.ledger.DestinationTotal(sp.ID) >= s.tuning.WheelbarrowMinBatch && s.hasLooseFor(sp.Accepts) {
				needed = 1
			}
			out = append(out, demand{
				anchor: sp.ID, kind: work.KindHaulWithWheelbarrow, resource: sp.Accepts,
				owner: sp.Owner, cell: sp.Cell, needed: needed,
			})
		}
	}
	return out
}

func (s *Scheduler) largestBucket() int {
	capacity := 1
	for _, b := range s.world.Buckets() {
		capacity = max(capacity, b.Capacity)
	}
	return capacity
}

// hasLooseFor reports whether an unclaimed loose item of r (any item kind when r is unset) exists
func (s *Scheduler) hasLooseFor(r shared.ResourceKind) bool {
	for _, item := range s.world.Items() {
		if !item.IsLoose() || !item.Resource.IsItem() {
			continue
		}
		if r != shared.ResourceNone && item.Resource != r {
			continue
		}
		if s.ledger.Source(item.ID) == 0 && !s.leases.Covers(item.ID) {
			return true
		}
	}
	return false
}

// closeRequests ends requests whose anchor, issuer or pinned source is gone,
// or that have nothing left to do
func (s *Scheduler) closeRequests(ctx context.Context) int {
	closed := 0
	for _, req := range s.requests.All() {
		_, issuerAlive := s.world.Supervisor(req.Issuer())
		reason, ok := req.ShouldClose(transport.Liveness{
			AnchorExists:       s.world.Exists(req.Anchor()),
			IssuerExists:       issuerAlive,
			PinnedSourceExists: req.IsSingleShot() && s.world.Exists(req.PinnedSource()),
		})
		if !ok {
			continue
		}
		s.closeRequest(ctx, req, reason)
		closed++
	}
	return closed
}

// closeRequest removes a request and its scheduling attributes. A work item
// created for the request goes with it; one the request adopted keeps its
// designation and loses only the link.
func (s *Scheduler) closeRequest(ctx context.Context, req *transport.TransportRequest, reason transport.CloseReason) {
	req.Close(reason)
	s.requests.Remove(req.ID())
	if wi, ok := s.board.Get(req.WorkItem()); ok {
		if req.OwnsWorkItem() {
			s.board.Remove(wi.ID())
		} else {
			wi.StripRequest()
			wi.SetSlotCapacity(max(wi.Claims(), work.DefaultSlotCapacity))
		}
	}
	common.LoggerFromContext(ctx).Log(common.LevelDebug, "Transport request closed", map[string]interface{}{
		"request": req.ID().String(),
		"key":     req.Key().String(),
		"reason":  string(reason),
	})
}

func ceilDiv(n, d int) int {
	if n <= 0 || d <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
