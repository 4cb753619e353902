package ledger

import "github.com/andrescamacho/hauler-go/internal/domain/shared"

// Shadow is a cycle-scoped overlay on the Ledger. Decide records every
// reservation it intends to make here so later decisions in the same cycle
// see them; the Shadow is thrown away once the cycle's intents are executed.
type Shadow struct {
	destination map[Key]int
	mixer       map[Key]int
	source      map[shared.EntityID]int
	claims      map[shared.EntityID]int
}

// NewShadow creates an empty overlay
func NewShadow() *Shadow {
	return &Shadow{
		destination: make(map[Key]int),
		mixer:       make(map[Key]int),
		source:      make(map[shared.EntityID]int),
		claims:      make(map[shared.EntityID]int),
	}
}

// Apply records the delta of a request. Malformed requests are ignored, as
// the Ledger would refuse them.
func (s *Shadow) Apply(req ReservationRequest) {
	if req.Validate() != nil {
		return
	}
	d := req.delta()
	switch TableFor(req.Op) {
	case TableDestination:
		s.destination[Key{Object: req.Object, Resource: req.Resource}] += d
	case TableMixer:
		s.mixer[Key{Object: req.Object, Resource: req.Resource}] += d
	case TableSource:
		s.source[req.Object] += d
	}
}

// ApplyAll records a batch of requests
func (s *Shadow) ApplyAll(reqs []ReservationRequest) {
	for _, r := range reqs {
		s.Apply(r)
	}
}

// AddClaim records that a work item slot was taken this cycle
func (s *Shadow) AddClaim(workItem shared.EntityID) {
	s.claims[workItem]++
}

// Claims returns slots taken on a work item this cycle
func (s *Shadow) Claims(workItem shared.EntityID) int {
	return s.claims[workItem]
}

// IsEmpty reports whether nothing has been recorded
func (s *Shadow) IsEmpty() bool {
	return len(s.destination) == 0 && len(s.mixer) == 0 && len(s.source) == 0 && len(s.claims) == 0
}

// View combines the Ledger with a Shadow for availability checks.
// A nil Shadow reads the Ledger alone.
type View struct {
	ledger *Ledger
	shadow *Shadow
}

// NewView creates a combined reader
func NewView(l *Ledger, s *Shadow) View {
	return View{ledger: l, shadow: s}
}

// Destination returns booked units on object including this cycle's intents
func (v View) Destination(object shared.EntityID, resource shared.ResourceKind) int {
	n := v.ledger.Destination(object, resource)
	if v.shadow != nil {
		n += v.shadow.destination[Key{Object: object, Resource: resource}]
	}
	return clampZero(n)
}

// DestinationTotal returns all booked units on object including this cycle's intents
func (v View) DestinationTotal(object shared.EntityID) int {
	n := v.ledger.DestinationTotal(object)
	if v.shadow != nil {
		for k, d := range v.shadow.destination {
			if k.Object == object {
				n += d
			}
		}
	}
	return clampZero(n)
}

// MixerDestination returns booked mixer units including this cycle's intents
func (v View) MixerDestination(mixer shared.EntityID, resource shared.ResourceKind) int {
	n := v.ledger.MixerDestination(mixer, resource)
	if v.shadow != nil {
		n += v.shadow.mixer[Key{Object: mixer, Resource: resource}]
	}
	return clampZero(n)
}

// Source returns claims on object including this cycle's intents
func (v View) Source(object shared.EntityID) int {
	n := v.ledger.Source(object)
	if v.shadow != nil {
		n += v.shadow.source[object]
	}
	return clampZero(n)
}

// CycleClaims returns work item slots taken during the current cycle
func (v View) CycleClaims(workItem shared.EntityID) int {
	if v.shadow == nil {
		return 0
	}
	return v.shadow.Claims(workItem)
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
