package scheduling

import (
	"time"

	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// Tuning holds the scheduler's numeric knobs
type Tuning struct {
	// PathCheckBudget bounds reachability probes per Decide cycle
	PathCheckBudget int
	// ArrivalThreshold is the distance, in tiles, at which a worker counts as arrived
	ArrivalThreshold float64
	// PathDriftTolerance is how far a goal may move before the cached path is recomputed
	PathDriftTolerance float64
	// ProgressRates is action progress gained per tick, per work kind
	ProgressRates map[work.Kind]float64
	// KindBonus is added to a work item's priority when scoring
	KindBonus map[work.Kind]int
	// WheelbarrowMinBatch is the smallest batch worth a wheelbarrow trip
	WheelbarrowMinBatch int
	// WheelbarrowBatchRadius bounds how far apart batched items may lie
	WheelbarrowBatchRadius int
	LeaseDuration          time.Duration
	// WaterSearchRadius bounds the search for a fillable water edge
	WaterSearchRadius int
}

// DefaultProgressRates are per-tick progress increments; 1.0 completes an action
func DefaultProgressRates() map[work.Kind]float64 {
	return map[work.Kind]float64{
		work.KindGather:           0.05,
		work.KindCollectSand:      0.1,
		work.KindCollectBone:      0.1,
		work.KindGatherWater:      0.2,
		work.KindHaulWaterToMixer: 0.2,
		work.KindRefine:           0.05,
		work.KindBuild:            0.04,
		work.KindReinforceFloor:   0.08,
		work.KindPourFloor:        0.08,
		work.KindCoatWall:         0.08,
	}
}

// DefaultKindBonus ranks construction above supply chains above plain hauling
func DefaultKindBonus() map[work.Kind]int {
	return map[work.Kind]int{
		work.KindBuild:               50,
		work.KindReinforceFloor:      45,
		work.KindPourFloor:           45,
		work.KindCoatWall:            45,
		work.KindHaulToBlueprint:     30,
		work.KindHaulToMixer:         20,
		work.KindHaulWaterToMixer:    20,
		work.KindRefine:              15,
		work.KindGatherWater:         10,
		work.KindCollectSand:         5,
		work.KindCollectBone:         5,
		work.KindHaulWithWheelbarrow: 2,
		work.KindHaul:                0,
		work.KindGather:              0,
	}
}

// DefaultTuning returns the values the daemon ships with
func DefaultTuning() Tuning {
	return Tuning{
		PathCheckBudget:        48,
		ArrivalThreshold:       0.6,
		PathDriftTolerance:     1.5,
		ProgressRates:          DefaultProgressRates(),
		KindBonus:              DefaultKindBonus(),
		WheelbarrowMinBatch:    2,
		WheelbarrowBatchRadius: 4,
		LeaseDuration:          30 * time.Second,
		WaterSearchRadius:      32,
	}
}

func (t Tuning) rate(kind work.Kind) float64 {
	if r, ok := t.ProgressRates[kind]; ok && r > 0 {
		return r
	}
	return 0.1
}
