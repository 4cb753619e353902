package scheduling

import (
	"context"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// siteTileKind maps a site phase to the per-tile work it needs
var siteTileKind = map[world.SitePhase]work.Kind{
	world.SitePhaseReinforcing: work.KindReinforceFloor,
	world.SitePhasePouring:     work.KindPourFloor,
	world.SitePhaseCoating:     work.KindCoatWall,
}

// perceive runs every producer in a fixed order and returns how many work
// items were created
func (s *Scheduler) perceive(ctx context.Context) int {
	s.sweepOrphans(ctx)
	created := s.produceConstruction(ctx)
	created += s.recomputeDemand(ctx)
	created += s.produceAutoHaul()
	created += s.produceAutoRefine()
	created += s.produceCollection()
	return created
}

// sweepOrphans removes unclaimed items whose target left the world.
// Request-backed items are closed with their request instead.
func (s *Scheduler) sweepOrphans(ctx context.Context) {
	for _, item := range s.board.All() {
		if item.HasRequest() || item.Claims() > 0 || s.world.Exists(item.Target()) {
			continue
		}
		s.board.Remove(item.ID())
		common.LoggerFromContext(ctx).Log(common.LevelDebug, "Work item swept", map[string]interface{}{
			"work_item": item.ID().String(),
			"kind":      string(item.Kind()),
			"target":    item.Target().String(),
		})
	}
}

func (s *Scheduler) designate(d work.Designation) int {
	if _, created, err := s.board.Designate(d); err == nil && created {
		return 1
	}
	return 0
}

// produceConstruction advances finished site phases, keeps one designation
// per pending tile of the current phase and marks stocked blueprints buildable
func (s *Scheduler) produceConstruction(ctx context.Context) int {
	created := 0
	for _, site := range s.world.Sites() {
		if site.Phase != world.SitePhaseComplete && site.AllTilesDone() {
			from := site.Phase
			if err := site.AdvanceTo(site.NextPhase()); err == nil {
				common.LoggerFromContext(ctx).Log(common.LevelInfo, "Construction phase advanced", map[string]interface{}{
					"site": site.ID.String(),
					"from": string(from),
					"to":   string(site.Phase),
				})
			}
		}

		current := siteTileKind[site.Phase]
		for _, item := range s.board.ForTarget(site.ID) {
			if item.Kind().IsConstruction() && item.Kind() != current && item.Claims() == 0 {
				s.board.Remove(item.ID())
			}
		}
		if site.Phase == world.SitePhaseComplete {
			continue
		}
		for _, cell := range site.PendingTiles() {
			created += s.designate(work.Designation{
				Kind:   current,
				Cell:   cell,
				Target: site.ID,
				Issuer: site.Owner,
			})
		}
	}

	for _, bp := range s.world.Blueprints() {
		if !bp.MaterialsComplete() {
			continue
		}
		created += s.designate(work.Designation{
			Kind:   work.KindBuild,
			Cell:   bp.Anchor(),
			Target: bp.ID,
			Issuer: bp.Owner,
		})
	}
	return created
}

// produceAutoHaul designates loose items that some stockpile could take
func (s *Scheduler) produceAutoHaul() int {
	created := 0
	stockpiles := s.world.Stockpiles()
	for _, item := range s.world.Items() {
		if !item.IsLoose() || s.ledger.Source(item.ID) > 0 || s.leases.Covers(item.ID) {
			continue
		}
		if !anyStockpileTakes(stockpiles, item.Resource) {
			continue
		}
		created += s.designate(work.Designation{
			Kind:     work.KindHaul,
			Cell:     item.Cell,
			Target:   item.ID,
			Resource: item.Resource,
		})
	}
	return created
}

func anyStockpileTakes(stockpiles []*world.Stockpile, r shared.ResourceKind) bool {
	for _, sp := range stockpiles {
		if sp.AcceptsResource(r) && sp.Remaining() > 0 {
			return true
		}
	}
	return false
}

// produceAutoRefine designates mixers that hold a full recipe
func (s *Scheduler) produceAutoRefine() int {
	created := 0
	for _, mixer := range s.world.Mixers() {
		if !mixer.HasRecipe() {
			continue
		}
		created += s.designate(work.Designation{
			Kind:     work.KindRefine,
			Cell:     mixer.Cell,
			Target:   mixer.ID,
			Issuer:   mixer.Owner,
			Resource: world.RecipeOutput,
		})
	}
	return created
}

// produceCollection keeps a standing designation on every sand and bone
// pile; the collect policy decides whether digging is wanted
func (s *Scheduler) produceCollection() int {
	created := 0
	for _, node := range s.world.Nodes() {
		var kind work.Kind
		switch node.Kind {
		case world.NodeSandPile:
			kind = work.KindCollectSand
		case world.NodeBonePile:
			kind = work.KindCollectBone
		default:
			continue
		}
		created += s.designate(work.Designation{
			Kind:     kind,
			Cell:     node.Cell,
			Target:   node.ID,
			Resource: node.Resource(),
		})
	}
	return created
}
