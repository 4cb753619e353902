package task

import (
	"github.com/andrescamacho/hauler-go/internal/domain/ledger"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// AssignedTask is the closed set of things a worker can be doing. A nil
// AssignedTask means the worker is idle. Implementations live in this
// package only.
type AssignedTask interface {
	Kind() work.Kind
	WorkItem() shared.EntityID
	Supervisor() shared.EntityID
	// Target is the entity whose disappearance ends the task
	Target() shared.EntityID
	Phase() Phase
	Advance(to Phase) error
	Progress() float64
	AddProgress(delta float64) bool
	ResetProgress()
	Nav() *Navigation
	Hold(reqs ...ledger.ReservationRequest)
	Held() []ledger.ReservationRequest
	Settle(match func(ledger.ReservationRequest) bool) []ledger.ReservationRequest
	ReleaseAll() []ledger.ReservationRequest

	sealed()
}

// Navigation is the cached route of a travel phase
type Navigation struct {
	Path []shared.Cell
	// Goal is the cell the path was computed towards
	Goal shared.Cell
	// GoalSet is false until the first path is computed
	GoalSet bool
}

// Reset discards the cached route
func (n *Navigation) Reset() {
	n.Path = nil
	n.GoalSet = false
}

// IsStale reports whether the route must be recomputed to reach goal
func (n *Navigation) IsStale(goal shared.Cell, driftTolerance float64) bool {
	if !n.GoalSet || len(n.Path) == 0 {
		return true
	}
	return float64(n.Goal.DistanceSquared(goal)) > driftTolerance*driftTolerance
}

// Base carries the state every variant shares
type Base struct {
	kind       work.Kind
	workItem   shared.EntityID
	supervisor shared.EntityID
	target     shared.EntityID
	phase      Phase
	progress   float64
	nav        Navigation
	held       []ledger.ReservationRequest
}

func newBase(kind work.Kind, workItem, supervisor, target shared.EntityID) Base {
	return Base{
		kind:       kind,
		workItem:   workItem,
		supervisor: supervisor,
		target:     target,
		phase:      phaseOrders[kind][0],
	}
}

func (b *Base) Kind() work.Kind             { return b.kind }
func (b *Base) WorkItem() shared.EntityID   { return b.workItem }
func (b *Base) Supervisor() shared.EntityID { return b.supervisor }
func (b *Base) Target() shared.EntityID     { return b.target }
func (b *Base) Phase() Phase                { return b.phase }
func (b *Base) Progress() float64           { return b.progress }
func (b *Base) Nav() *Navigation            { return &b.nav }

// Advance moves to a later phase of this variant. Moving backwards, staying
// put or naming a phase the variant does not have is an error.
func (b *Base) Advance(to Phase) error {
	order := phaseOrders[b.kind]
	from, target := -1, -1
	for i, p := range order {
		if p == b.phase {
			from = i
		}
		if p == to {
			target = i
		}
	}
	if target < 0 {
		return &ErrInvalidPhaseTransition{WorkItem: b.workItem, Kind: b.kind, From: b.phase, To: to,
			Description: "phase does not belong to this task"}
	}
	if target <= from {
		return &ErrInvalidPhaseTransition{WorkItem: b.workItem, Kind: b.kind, From: b.phase, To: to,
			Description: "phases only move forward"}
	}
	b.phase = to
	b.progress = 0
	b.nav.Reset()
	return nil
}

// AddProgress accumulates action progress and reports whether it reached 1.0
func (b *Base) AddProgress(delta float64) bool {
	b.progress += delta
	if b.progress >= 1.0 {
		b.progress = 1.0
		return true
	}
	return false
}

// ResetProgress restarts the current action, e.g. after a repeated harvest
func (b *Base) ResetProgress() {
	b.progress = 0
}

// Hold records reservations this task is responsible for
func (b *Base) Hold(reqs ...ledger.ReservationRequest) {
	b.held = append(b.held, reqs...)
}

// Held returns the outstanding reservations
func (b *Base) Held() []ledger.ReservationRequest {
	out := make([]ledger.ReservationRequest, len(b.held))
	copy(out, b.held)
	return out
}

// Settle removes held reservations matching match and returns the requests
// that retire them in the ledger
func (b *Base) Settle(match func(ledger.ReservationRequest) bool) []ledger.ReservationRequest {
	var settled []ledger.ReservationRequest
	kept := b.held[:0]
	for _, r := range b.held {
		if match(r) {
			if s, ok := r.Settle(); ok {
				settled = append(settled, s)
			}
			continue
		}
		kept = append(kept, r)
	}
	b.held = kept
	return settled
}

// ReleaseAll removes every held reservation and returns their inverses
func (b *Base) ReleaseAll() []ledger.ReservationRequest {
	var released []ledger.ReservationRequest
	for _, r := range b.held {
		if inv, ok := r.Inverse(); ok {
			released = append(released, inv)
		}
	}
	b.held = nil
	return released
}

func (b *Base) sealed() {}

// SourceIs matches a held source claim on object
func SourceIs(object shared.EntityID) func(ledger.ReservationRequest) bool {
	return func(r ledger.ReservationRequest) bool {
		return r.Op == ledger.OpReserveSource && r.Object == object
	}
}

// DestinationIs matches a held destination or mixer booking on object
func DestinationIs(object shared.EntityID) func(ledger.ReservationRequest) bool {
	return func(r ledger.ReservationRequest) bool {
		return (r.Op == ledger.OpReserveDestination || r.Op == ledger.OpReserveMixerDestination) && r.Object == object
	}
}
