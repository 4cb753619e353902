package shared

import "fmt"

// ResourceKind is the material carried, stored and consumed by colony work
type ResourceKind string

const (
	ResourceNone  ResourceKind = ""
	ResourceWood  ResourceKind = "WOOD"
	ResourceRock  ResourceKind = "ROCK"
	ResourceSand  ResourceKind = "SAND"
	ResourceBone  ResourceKind = "BONE"
	ResourceWater ResourceKind = "WATER"
	ResourceMud   ResourceKind = "MUD"
)

// AllResourceKinds lists every concrete resource in a stable order
var AllResourceKinds = []ResourceKind{
	ResourceWood, ResourceRock, ResourceSand, ResourceBone, ResourceWater, ResourceMud,
}

// ParseResourceKind validates a resource name
func ParseResourceKind(s string) (ResourceKind, error) {
	for _, k := range AllResourceKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return ResourceNone, NewValidationError("resource", fmt.Sprintf("unknown resource kind %q", s))
}

// IsItem reports whether the resource exists as discrete items on the ground.
// Water only ever lives in tanks, buckets and mixers.
func (k ResourceKind) IsItem() bool {
	return k != ResourceNone && k != ResourceWater
}

func (k ResourceKind) String() string {
	if k == ResourceNone {
		return "NONE"
	}
	return string(k)
}
