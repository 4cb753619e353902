package scheduling

import (
	"sort"

	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// Scored is a candidate with its computed score
type Scored struct {
	Candidate
	Score int
}

// Scorer ranks candidates: base priority plus a work-kind bonus, ties broken
// by squared distance then ID.
type Scorer struct {
	world *world.World
	bonus map[work.Kind]int
}

// NewScorer creates a scorer with the given kind bonuses
func NewScorer(w *world.World, bonus map[work.Kind]int) *Scorer {
	return &Scorer{world: w, bonus: bonus}
}

// Rank scores and orders candidates for a worker of sup. Candidates that
// cannot currently be served are dropped before ranking.
func (s *Scorer) Rank(sup shared.EntityID, candidates []Candidate, view ledger.View) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		if !s.scorable(sup, c.Item, view) {
			continue
		}
		out = append(out, Scored{Candidate: c, Score: c.Item.Priority() + s.bonus[c.Item.Kind()]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].DistanceSquared != out[j].DistanceSquared {
			return out[i].DistanceSquared < out[j].DistanceSquared
		}
		return out[i].Item.ID() < out[j].Item.ID()
	})
	return out
}

// scorable prunes items whose destination is already full: a water gather
// into a full tank, or a haul no stockpile can take.
func (s *Scorer) scorable(sup shared.EntityID, item *work.WorkItem, view ledger.View) bool {
	switch item.Kind() {
	case work.KindGatherWater:
		tank, ok := s.world.Tank(item.Target())
		if !ok {
			return false
		}
		return tank.Free()-view.Destination(tank.ID, shared.ResourceWater) > 0
	case work.KindHaul:
		loose, ok := s.world.Item(item.Target())
		if !ok {
			return false
		}
		for _, sp := range s.world.Stockpiles() {
			if stockpileRoom(sp, loose.Resource, sup, view) > 0 {
				return true
			}
		}
		return false
	default:
		return true
	}
}
