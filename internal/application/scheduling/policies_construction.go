package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

type refinePolicy struct{}

func (refinePolicy) Kind() work.Kind { return work.KindRefine }

func (refinePolicy) Build(in PolicyInput) (Assignment, bool) {
	mixer, ok := in.World.Mixer(in.Item.Target())
	if !ok || !mixer.HasRecipe() || in.View.Source(mixer.ID) > 0 {
		return Assignment{}, false
	}
	return Assignment{
		Task: task.NewRefine(in.Item.ID(), in.Supervisor.ID, mixer.ID),
		Ops:  []ledger.ReservationRequest{ledger.ReserveSource(mixer.ID)},
	}, true
}

type buildPolicy struct{}

func (buildPolicy) Kind() work.Kind { return work.KindBuild }

func (buildPolicy) Build(in PolicyInput) (Assignment, bool) {
	bp, ok := in.World.Blueprint(in.Item.Target())
	if !ok || !bp.MaterialsComplete() {
		return Assignment{}, false
	}
	return Assignment{Task: task.NewBuild(in.Item.ID(), in.Supervisor.ID, bp.ID)}, true
}

// tilePhase maps each per-tile kind to the site phase it belongs to
var tilePhase = map[work.Kind]world.SitePhase{
	work.KindReinforceFloor: world.SitePhaseReinforcing,
	work.KindPourFloor:      world.SitePhasePouring,
	work.KindCoatWall:       world.SitePhaseCoating,
}

type tilePolicy struct {
	kind work.Kind
}

func (p tilePolicy) Kind() work.Kind { return p.kind }

func (p tilePolicy) Build(in PolicyInput) (Assignment, bool) {
	site, ok := in.World.Site(in.Item.Target())
	if !ok || site.Phase != tilePhase[p.kind] {
		return Assignment{}, false
	}
	cell := in.Item.Cell()
	tile := site.Tile(cell)
	if tile == nil || tile.Done {
		return Assignment{}, false
	}
	if site.Available(site.Material())-in.View.Source(site.ID) < 1 {
		return Assignment{}, false
	}

	var t task.AssignedTask
	switch p.kind {
	case work.KindReinforceFloor:
		t = task.NewReinforceFloor(in.Item.ID(), in.Supervisor.ID, site.ID, cell)
	case work.KindPourFloor:
		t = task.NewPourFloor(in.Item.ID(), in.Supervisor.ID, site.ID, cell)
	default:
		t = task.NewCoatWall(in.Item.ID(), in.Supervisor.ID, site.ID, cell)
	}
	return Assignment{
		Task: t,
		Ops:  []ledger.ReservationRequest{ledger.ReserveSource(site.ID)},
	}, true
}
