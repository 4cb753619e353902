package task

import "github.com/andrescamacho/hauler-go/internal/domain/work"

// Phase is a step of an assigned task. Every variant owns an ordered subset
// of phases and may only move forward through it.
type Phase string

const (
	PhaseGoingToResource    Phase = "GOING_TO_RESOURCE"
	PhaseCollecting         Phase = "COLLECTING"
	PhaseGoingToItem        Phase = "GOING_TO_ITEM"
	PhaseCarrying           Phase = "CARRYING"
	PhaseDelivering         Phase = "DELIVERING"
	PhaseGoingToBucket      Phase = "GOING_TO_BUCKET"
	PhaseGoingToWater       Phase = "GOING_TO_WATER"
	PhaseFilling            Phase = "FILLING"
	PhaseReturningToTank    Phase = "RETURNING_TO_TANK"
	PhaseGoingToTank        Phase = "GOING_TO_TANK"
	PhaseDrawing            Phase = "DRAWING"
	PhaseGoingToMixer       Phase = "GOING_TO_MIXER"
	PhaseRefining           Phase = "REFINING"
	PhaseGoingToBlueprint   Phase = "GOING_TO_BLUEPRINT"
	PhaseBuilding           Phase = "BUILDING"
	PhaseGoingToTile        Phase = "GOING_TO_TILE"
	PhaseWorking            Phase = "WORKING"
	PhaseGoingToWheelbarrow Phase = "GOING_TO_WHEELBARROW"
	PhaseLoading            Phase = "LOADING"
	PhaseGoingToDestination Phase = "GOING_TO_DESTINATION"
	PhaseDone               Phase = "DONE"
)

var phaseOrders = map[work.Kind][]Phase{
	work.KindGather:              {PhaseGoingToResource, PhaseCollecting, PhaseDone},
	work.KindHaul:                {PhaseGoingToItem, PhaseCarrying, PhaseDone},
	work.KindHaulToBlueprint:     {PhaseGoingToItem, PhaseDelivering, PhaseDone},
	work.KindHaulToMixer:         {PhaseGoingToItem, PhaseDelivering, PhaseDone},
	work.KindGatherWater:         {PhaseGoingToBucket, PhaseGoingToWater, PhaseFilling, PhaseReturningToTank, PhaseDone},
	work.KindHaulWaterToMixer:    {PhaseGoingToBucket, PhaseGoingToTank, PhaseDrawing, PhaseGoingToMixer, PhaseDone},
	work.KindCollectSand:         {PhaseGoingToResource, PhaseCollecting, PhaseDone},
	work.KindCollectBone:         {PhaseGoingToResource, PhaseCollecting, PhaseDone},
	work.KindRefine:              {PhaseGoingToMixer, PhaseRefining, PhaseDone},
	work.KindBuild:               {PhaseGoingToBlueprint, PhaseBuilding, PhaseDone},
	work.KindReinforceFloor:      {PhaseGoingToTile, PhaseWorking, PhaseDone},
	work.KindPourFloor:           {PhaseGoingToTile, PhaseWorking, PhaseDone},
	work.KindCoatWall:            {PhaseGoingToTile, PhaseWorking, PhaseDone},
	work.KindHaulWithWheelbarrow: {PhaseGoingToWheelbarrow, PhaseLoading, PhaseGoingToDestination, PhaseDone},
}

// Phases returns the ordered phases of a work kind's task
func Phases(kind work.Kind) []Phase {
	return phaseOrders[kind]
}

func (p Phase) String() string {
	return string(p)
}

// IsTravel reports whether the phase moves the worker towards a goal
func (p Phase) IsTravel() bool {
	switch p {
	case PhaseGoingToResource, PhaseGoingToItem, PhaseCarrying, PhaseDelivering,
		PhaseGoingToBucket, PhaseGoingToWater, PhaseReturningToTank, PhaseGoingToTank,
		PhaseGoingToMixer, PhaseGoingToBlueprint, PhaseGoingToTile, PhaseGoingToWheelbarrow,
		PhaseLoading, PhaseGoingToDestination:
		return true
	default:
		return false
	}
}
