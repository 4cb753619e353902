package scheduling

import (
	"context"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// harvestHandler drives Gather, CollectSand and CollectBone: walk to the
// node, work it, and leave the yield on the ground for haulers.
type harvestHandler struct {
	kind work.Kind
}

func (h harvestHandler) Kind() work.Kind { return h.kind }

func (h harvestHandler) Step(_ context.Context, c *StepContext) Outcome {
	node, ok := c.World.Node(c.Task.Target())
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	switch c.Task.Phase() {
	case task.PhaseGoingToResource:
		arrived, o := c.travel([]shared.Cell{node.Cell})
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseCollecting)
			return o
		}
		return running()

	case task.PhaseCollecting:
		if !c.work() {
			return running()
		}
		if _, err := c.World.Harvest(node.ID); err != nil {
			return aborted(task.AbortResourceInvalid)
		}
		c.settle(task.SourceIs(node.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(!c.World.Exists(node.ID))
	}
	return aborted(task.AbortPhaseTransitions)
}

// pickUp walks to an item and lifts it, settling the item's source claim
func pickUp(c *StepContext, itemID shared.EntityID, next task.Phase) Outcome {
	item, ok := c.World.Item(itemID)
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	arrived, o := c.travel([]shared.Cell{item.Cell})
	if o != nil {
		return *o
	}
	if !arrived {
		return running()
	}
	if err := c.World.PickUp(c.Worker.ID, item.ID); err != nil {
		return aborted(task.AbortResourceInvalid)
	}
	c.settle(task.SourceIs(item.ID))
	out, _ := c.advance(next)
	return out
}

type haulHandler struct{}

func (haulHandler) Kind() work.Kind { return work.KindHaul }

func (haulHandler) Step(_ context.Context, c *StepContext) Outcome {
	h, ok := c.Task.(*task.Haul)
	if !ok {
		return aborted(task.AbortPhaseTransitions)
	}
	switch h.Phase() {
	case task.PhaseGoingToItem:
		return pickUp(c, h.Item, task.PhaseCarrying)

	case task.PhaseCarrying:
		sp, ok := c.World.Stockpile(h.Stockpile)
		if !ok {
			return aborted(task.AbortTargetVanished)
		}
		arrived, o := c.travel([]shared.Cell{sp.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		r, n := c.World.ConsumeLoad(c.Worker.ID)
		if n == 0 {
			return aborted(task.AbortResourceInvalid)
		}
		if _, err := c.World.StoreInStockpile(sp.ID, r); err != nil {
			c.Worker.Load.Resource, c.Worker.Load.Count = r, n
			return aborted(task.AbortResourceInvalid)
		}
		c.settle(task.DestinationIs(sp.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(true)
	}
	return aborted(task.AbortPhaseTransitions)
}

// deliverHandler carries one unit into a blueprint, construction site or mixer
type deliverHandler struct {
	kind work.Kind
}

func (h deliverHandler) Kind() work.Kind { return h.kind }

func (h deliverHandler) Step(_ context.Context, c *StepContext) Outcome {
	var itemID, anchor shared.EntityID
	switch t := c.Task.(type) {
	case *task.HaulToBlueprint:
		itemID, anchor = t.Item, t.Anchor
	case *task.HaulToMixer:
		itemID, anchor = t.Item, t.Mixer
	default:
		return aborted(task.AbortPhaseTransitions)
	}
	if !c.World.Exists(anchor) {
		return aborted(task.AbortTargetVanished)
	}

	switch c.Task.Phase() {
	case task.PhaseGoingToItem:
		return pickUp(c, itemID, task.PhaseDelivering)

	case task.PhaseDelivering:
		arrived, o := c.travelTo(anchor)
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		r, n := c.World.ConsumeLoad(c.Worker.ID)
		if n == 0 {
			return aborted(task.AbortResourceInvalid)
		}
		if err := c.deliver(anchor, r, n); err != nil {
			c.Worker.Load.Resource, c.Worker.Load.Count = r, n
			return aborted(task.AbortResourceInvalid)
		}
		c.settle(task.DestinationIs(anchor))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(false)
	}
	return aborted(task.AbortPhaseTransitions)
}

func (c *StepContext) deliver(anchor shared.EntityID, r shared.ResourceKind, n int) error {
	if bp, ok := c.World.Blueprint(anchor); ok {
		return bp.Deliver(r, n)
	}
	if site, ok := c.World.Site(anchor); ok {
		return site.Deliver(r, n)
	}
	if mixer, ok := c.World.Mixer(anchor); ok {
		return mixer.Add(r, n)
	}
	return shared.NewEntityNotFoundError("anchor", anchor)
}

// fetchBucket walks to a bucket and takes it
func fetchBucket(c *StepContext, bucketID shared.EntityID, next task.Phase) Outcome {
	bucket, ok := c.World.Bucket(bucketID)
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	arrived, o := c.travel([]shared.Cell{bucket.Cell})
	if o != nil {
		return *o
	}
	if !arrived {
		return running()
	}
	if err := c.World.TakeBucket(c.Worker.ID, bucket.ID); err != nil {
		return aborted(task.AbortResourceInvalid)
	}
	out, _ := c.advance(next)
	return out
}

type gatherWaterHandler struct{}

func (gatherWaterHandler) Kind() work.Kind { return work.KindGatherWater }

func (gatherWaterHandler) Step(_ context.Context, c *StepContext) Outcome {
	g, ok := c.Task.(*task.GatherWater)
	if !ok {
		return aborted(task.AbortPhaseTransitions)
	}
	tank, ok := c.World.Tank(g.Tank)
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	if g.Phase() == task.PhaseGoingToBucket {
		return fetchBucket(c, g.Bucket, task.PhaseGoingToWater)
	}
	bucket, ok := c.World.Bucket(g.Bucket)
	if !ok || bucket.Holder != c.Worker.ID {
		return aborted(task.AbortResourceInvalid)
	}

	switch g.Phase() {
	case task.PhaseGoingToWater:
		arrived, o := c.travel([]shared.Cell{g.WaterCell})
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseFilling)
			return o
		}
		return running()

	case task.PhaseFilling:
		if !c.work() {
			return running()
		}
		bucket.Water = bucket.Capacity
		o, _ := c.advance(task.PhaseReturningToTank)
		return o

	case task.PhaseReturningToTank:
		arrived, o := c.travel([]shared.Cell{tank.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		bucket.Water -= tank.Fill(bucket.Water)
		c.World.PutDownBucket(c.Worker.ID)
		c.settle(task.DestinationIs(tank.ID))
		c.settle(task.SourceIs(bucket.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(false)
	}
	return aborted(task.AbortPhaseTransitions)
}

type waterToMixerHandler struct{}

func (waterToMixerHandler) Kind() work.Kind { return work.KindHaulWaterToMixer }

func (waterToMixerHandler) Step(_ context.Context, c *StepContext) Outcome {
	h, ok := c.Task.(*task.HaulWaterToMixer)
	if !ok {
		return aborted(task.AbortPhaseTransitions)
	}
	mixer, ok := c.World.Mixer(h.Mixer)
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	if h.Phase() == task.PhaseGoingToBucket {
		return fetchBucket(c, h.Bucket, task.PhaseGoingToTank)
	}
	bucket, ok := c.World.Bucket(h.Bucket)
	if !ok || bucket.Holder != c.Worker.ID {
		return aborted(task.AbortResourceInvalid)
	}

	switch h.Phase() {
	case task.PhaseGoingToTank:
		tank, ok := c.World.Tank(h.Tank)
		if !ok {
			return aborted(task.AbortTargetVanished)
		}
		arrived, o := c.travel([]shared.Cell{tank.Cell})
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseDrawing)
			return o
		}
		return running()

	case task.PhaseDrawing:
		tank, ok := c.World.Tank(h.Tank)
		if !ok {
			return aborted(task.AbortTargetVanished)
		}
		if !c.work() {
			return running()
		}
		want := min(h.Amount, bucket.Capacity-bucket.Water)
		bucket.Water += tank.Draw(want)
		c.settle(task.SourceIs(tank.ID))
		if bucket.Water == 0 {
			return aborted(task.AbortResourceInvalid)
		}
		o, _ := c.advance(task.PhaseGoingToMixer)
		return o

	case task.PhaseGoingToMixer:
		arrived, o := c.travel([]shared.Cell{mixer.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		n := min(bucket.Water, mixer.Spare(shared.ResourceWater))
		if n == 0 {
			return aborted(task.AbortResourceInvalid)
		}
		if err := mixer.Add(shared.ResourceWater, n); err != nil {
			return aborted(task.AbortResourceInvalid)
		}
		bucket.Water -= n
		c.World.PutDownBucket(c.Worker.ID)
		c.settle(task.DestinationIs(mixer.ID))
		c.settle(task.SourceIs(bucket.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(false)
	}
	return aborted(task.AbortPhaseTransitions)
}

type refineHandler struct{}

func (refineHandler) Kind() work.Kind { return work.KindRefine }

func (refineHandler) Step(_ context.Context, c *StepContext) Outcome {
	mixer, ok := c.World.Mixer(c.Task.Target())
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	switch c.Task.Phase() {
	case task.PhaseGoingToMixer:
		arrived, o := c.travel([]shared.Cell{mixer.Cell})
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseRefining)
			return o
		}
		return running()

	case task.PhaseRefining:
		if !c.work() {
			return running()
		}
		if !mixer.ConsumeRecipe() {
			return aborted(task.AbortResourceInvalid)
		}
		out, ok := c.Grid.NearestWalkable(mixer.Cell)
		if !ok {
			out = mixer.Cell
		}
		c.World.SpawnItem(world.RecipeOutput, out)
		c.settle(task.SourceIs(mixer.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(true)
	}
	return aborted(task.AbortPhaseTransitions)
}

type buildHandler struct{}

func (buildHandler) Kind() work.Kind { return work.KindBuild }

func (buildHandler) Step(_ context.Context, c *StepContext) Outcome {
	bp, ok := c.World.Blueprint(c.Task.Target())
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	switch c.Task.Phase() {
	case task.PhaseGoingToBlueprint:
		arrived, o := c.travel(bp.Cells)
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseBuilding)
			return o
		}
		return running()

	case task.PhaseBuilding:
		if !bp.MaterialsComplete() {
			return aborted(task.AbortResourceInvalid)
		}
		done := c.work()
		bp.Progress = c.Task.Progress()
		if !done {
			return running()
		}
		c.World.Despawn(bp.ID)
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(true)
	}
	return aborted(task.AbortPhaseTransitions)
}

// tileHandler works one construction-site tile with delivered material
type tileHandler struct {
	kind work.Kind
}

func (h tileHandler) Kind() work.Kind { return h.kind }

func (h tileHandler) Step(_ context.Context, c *StepContext) Outcome {
	t, ok := c.Task.(task.TileTask)
	if !ok {
		return aborted(task.AbortPhaseTransitions)
	}
	site, ok := c.World.Site(t.TileSite())
	if !ok {
		return aborted(task.AbortTargetVanished)
	}
	tile := site.Tile(t.TileCell())
	if tile == nil || tile.Done || site.Phase != tilePhase[h.kind] {
		return aborted(task.AbortResourceInvalid)
	}

	switch t.Phase() {
	case task.PhaseGoingToTile:
		arrived, o := c.travel([]shared.Cell{tile.Cell})
		if o != nil {
			return *o
		}
		if arrived {
			o, _ := c.advance(task.PhaseWorking)
			return o
		}
		return running()

	case task.PhaseWorking:
		if !c.work() {
			return running()
		}
		if err := site.FinishTile(tile.Cell); err != nil {
			return aborted(task.AbortResourceInvalid)
		}
		c.settle(task.SourceIs(site.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(true)
	}
	return aborted(task.AbortPhaseTransitions)
}

type wheelbarrowHandler struct{}

func (wheelbarrowHandler) Kind() work.Kind { return work.KindHaulWithWheelbarrow }

func (wheelbarrowHandler) Step(_ context.Context, c *StepContext) Outcome {
	trip, ok := c.Task.(*task.HaulWithWheelbarrow)
	if !ok {
		return aborted(task.AbortPhaseTransitions)
	}
	wb, ok := c.World.Wheelbarrow(trip.Wheelbarrow)
	if !ok {
		return aborted(task.AbortHolderGone)
	}
	sp, ok := c.World.Stockpile(trip.Destination)
	if !ok {
		return aborted(task.AbortTargetVanished)
	}

	switch trip.Phase() {
	case task.PhaseGoingToWheelbarrow:
		arrived, o := c.travel([]shared.Cell{wb.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		if err := c.World.TakeWheelbarrow(c.Worker.ID, wb.ID); err != nil {
			return aborted(task.AbortResourceInvalid)
		}
		out, _ := c.advance(task.PhaseLoading)
		return out

	case task.PhaseLoading:
		if wb.Holder != c.Worker.ID {
			return aborted(task.AbortResourceInvalid)
		}
		next, more := trip.NextItem()
		if !more {
			if trip.Loaded == 0 {
				return aborted(task.AbortResourceInvalid)
			}
			o, _ := c.advance(task.PhaseGoingToDestination)
			return o
		}
		item, ok := c.World.Item(next)
		if !ok || !item.IsLoose() {
			c.settle(task.SourceIs(next))
			trip.SkipItem()
			c.Task.Nav().Reset()
			return running()
		}
		arrived, o := c.travel([]shared.Cell{item.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		if err := c.World.LoadWheelbarrow(wb.ID, item.ID); err != nil {
			return aborted(task.AbortResourceInvalid)
		}
		c.settle(task.SourceIs(item.ID))
		trip.Loaded++
		return running()

	case task.PhaseGoingToDestination:
		arrived, o := c.travel([]shared.Cell{sp.Cell})
		if o != nil {
			return *o
		}
		if !arrived {
			return running()
		}
		here := c.Worker.Cell()
		for _, r := range c.World.UnloadWheelbarrow(wb.ID) {
			if _, err := c.World.StoreInStockpile(sp.ID, r); err != nil {
				c.World.SpawnItem(r, here)
			}
		}
		c.World.PutDownWheelbarrow(c.Worker.ID)
		c.settle(task.DestinationIs(sp.ID))
		c.settle(task.SourceIs(wb.ID))
		if o, ok := c.advance(task.PhaseDone); !ok {
			return o
		}
		return completed(false)
	}
	return aborted(task.AbortPhaseTransitions)
}
