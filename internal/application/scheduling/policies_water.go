package scheduling

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/task"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

type gatherWaterPolicy struct{}

func (gatherWaterPolicy) Kind() work.Kind { return work.KindGatherWater }

func (gatherWaterPolicy) Build(in PolicyInput) (Assignment, bool) {
	tank, ok := in.World.Tank(in.Item.Target())
	if !ok {
		return Assignment{}, false
	}
	free := tank.Free() - in.View.Destination(tank.ID, shared.ResourceWater)
	if free < 1 {
		return Assignment{}, false
	}
	bucket, ok := idleHomeBucket(in.World, tank.ID, in.Worker.Cell(), in.View)
	if !ok {
		return Assignment{}, false
	}
	water, ok := nearestWaterEdge(in.Grid, tank.Cell, in.Tuning.WaterSearchRadius)
	if !ok {
		return Assignment{}, false
	}
	if start, ok := in.Grid.NearestWalkable(in.Worker.Cell()); !ok {
		return Assignment{}, false
	} else if _, ok := in.Paths.FindPath(start, water); !ok && start != water {
		return Assignment{}, false
	}
	amount := min(bucket.Capacity, free)
	return Assignment{
		Task: task.NewGatherWater(in.Item.ID(), in.Supervisor.ID, bucket.ID, tank.ID, water, amount),
		Ops: []ledger.ReservationRequest{
			ledger.ReserveSource(bucket.ID),
			ledger.ReserveDestination(tank.ID, shared.ResourceWater, amount),
		},
	}, true
}

type haulWaterToMixerPolicy struct{}

func (haulWaterToMixerPolicy) Kind() work.Kind { return work.KindHaulWaterToMixer }

func (haulWaterToMixerPolicy) Build(in PolicyInput) (Assignment, bool) {
	mixer, ok := in.World.Mixer(in.Item.Target())
	if !ok || !mixer.Accepts(shared.ResourceWater) {
		return Assignment{}, false
	}
	spare := mixer.Spare(shared.ResourceWater) - in.View.MixerDestination(mixer.ID, shared.ResourceWater)
	if spare < 1 {
		return Assignment{}, false
	}
	tank, bucket, available, ok := nearestWateredTank(in)
	if !ok {
		return Assignment{}, false
	}
	amount := min(bucket.Capacity, available, spare)
	return Assignment{
		Task: task.NewHaulWaterToMixer(in.Item.ID(), in.Supervisor.ID, bucket.ID, tank.ID, mixer.ID, amount),
		Ops: []ledger.ReservationRequest{
			ledger.ReserveSource(bucket.ID),
			ledger.ReserveSource(tank.ID),
			ledger.ReserveMixerDestination(mixer.ID, shared.ResourceWater, amount),
		},
	}, true
}

// nearestWateredTank picks the closest tank that still has unclaimed water
// and an idle bucket. Each source claim on a tank is counted as one full bucket.
func nearestWateredTank(in PolicyInput) (*world.Tank, *world.Bucket, int, bool) {
	from := in.Worker.Cell()
	var (
		bestTank   *world.Tank
		bestBucket *world.Bucket
		bestAvail  int
		bestDist   int
	)
	for _, tank := range in.World.Tanks() {
		bucket, ok := idleHomeBucket(in.World, tank.ID, from, in.View)
		if !ok {
			continue
		}
		available := tank.Water - in.View.Source(tank.ID)*bucket.Capacity
		if available < 1 {
			continue
		}
		d := from.DistanceSquared(tank.Cell)
		if bestTank == nil || d < bestDist {
			bestTank, bestBucket, bestAvail, bestDist = tank, bucket, available, d
		}
	}
	return bestTank, bestBucket, bestAvail, bestTank != nil
}
