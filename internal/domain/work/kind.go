package work

// Kind is the closed set of work the scheduler knows how to dispatch
type Kind string

const (
	KindGather              Kind = "GATHER"
	KindHaul                Kind = "HAUL"
	KindHaulToBlueprint     Kind = "HAUL_TO_BLUEPRINT"
	KindHaulToMixer         Kind = "HAUL_TO_MIXER"
	KindGatherWater         Kind = "GATHER_WATER"
	KindHaulWaterToMixer    Kind = "HAUL_WATER_TO_MIXER"
	KindCollectSand         Kind = "COLLECT_SAND"
	KindCollectBone         Kind = "COLLECT_BONE"
	KindRefine              Kind = "REFINE"
	KindBuild               Kind = "BUILD"
	KindReinforceFloor      Kind = "REINFORCE_FLOOR"
	KindPourFloor           Kind = "POUR_FLOOR"
	KindCoatWall            Kind = "COAT_WALL"
	KindHaulWithWheelbarrow Kind = "HAUL_WITH_WHEELBARROW"
)

// AllKinds returns every work kind in declaration order
func AllKinds() []Kind {
	return []Kind{
		KindGather,
		KindHaul,
		KindHaulToBlueprint,
		KindHaulToMixer,
		KindGatherWater,
		KindHaulWaterToMixer,
		KindCollectSand,
		KindCollectBone,
		KindRefine,
		KindBuild,
		KindReinforceFloor,
		KindPourFloor,
		KindCoatWall,
		KindHaulWithWheelbarrow,
	}
}

func (k Kind) String() string {
	return string(k)
}

// IsValid checks if the kind is part of the closed set
func (k Kind) IsValid() bool {
	for _, known := range AllKinds() {
		if known == k {
			return true
		}
	}
	return false
}

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", &ErrUnknownKind{Kind: s}
	}
	return k, nil
}

// IsRequestBacked is true for kinds whose work items are materialised from a
// transport request rather than designated on a physical object.
func (k Kind) IsRequestBacked() bool {
	switch k {
	case KindHaulToBlueprint, KindHaulToMixer, KindGatherWater, KindHaulWaterToMixer, KindHaulWithWheelbarrow:
		return true
	default:
		return false
	}
}

// IsConstruction is true for kinds that shape a blueprint or construction site
func (k Kind) IsConstruction() bool {
	switch k {
	case KindBuild, KindReinforceFloor, KindPourFloor, KindCoatWall:
		return true
	default:
		return false
	}
}
