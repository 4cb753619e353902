package work

import (
	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// DefaultSlotCapacity is the number of workers that may share a work item
const DefaultSlotCapacity = 1

// Designation carries everything needed to put a work item on the board
type Designation struct {
	Kind         Kind
	Cell         shared.Cell
	Target       shared.EntityID
	Owner        shared.EntityID
	Issuer       shared.EntityID
	SlotCapacity int
	Priority     int
	Resource     shared.ResourceKind
	Request      uuid.UUID
}

// WorkItem is a designation on the map that a worker can be assigned to.
//
// Invariants:
// - 0 <= claims <= slotCapacity
// - Once owned, only the owning supervisor may add claims
type WorkItem struct {
	id           shared.EntityID
	kind         Kind
	cell         shared.Cell
	target       shared.EntityID
	owner        shared.EntityID
	issuer       shared.EntityID
	slotCapacity int
	claims       int
	priority     int
	resource     shared.ResourceKind
	request      uuid.UUID
	ownerFixed   bool
}

// NewWorkItem validates a designation and builds the item
func NewWorkItem(id shared.EntityID, d Designation) (*WorkItem, error) {
	if id.IsNone() {
		return nil, &ErrInvalidDesignation{Reason: "work item ID cannot be zero"}
	}
	if !d.Kind.IsValid() {
		return nil, &ErrUnknownKind{Kind: string(d.Kind)}
	}
	if d.Target.IsNone() {
		return nil, &ErrInvalidDesignation{Reason: "target cannot be empty"}
	}
	if d.SlotCapacity < 0 {
		return nil, &ErrInvalidDesignation{Reason: "slot capacity cannot be negative"}
	}

	capacity := d.SlotCapacity
	if capacity == 0 && !d.Kind.IsRequestBacked() {
		capacity = DefaultSlotCapacity
	}

	return &WorkItem{
		id:           id,
		kind:         d.Kind,
		cell:         d.Cell,
		target:       d.Target,
		owner:        d.Owner,
		issuer:       d.Issuer,
		slotCapacity: capacity,
		priority:     d.Priority,
		resource:     d.Resource,
		request:      d.Request,
		ownerFixed:   !d.Owner.IsNone(),
	}, nil
}

// Getters

func (w *WorkItem) ID() shared.EntityID           { return w.id }
func (w *WorkItem) Kind() Kind                    { return w.kind }
func (w *WorkItem) Cell() shared.Cell             { return w.cell }
func (w *WorkItem) Target() shared.EntityID       { return w.target }
func (w *WorkItem) Owner() shared.EntityID        { return w.owner }
func (w *WorkItem) Issuer() shared.EntityID       { return w.issuer }
func (w *WorkItem) SlotCapacity() int             { return w.slotCapacity }
func (w *WorkItem) Claims() int                   { return w.claims }
func (w *WorkItem) Priority() int                 { return w.priority }
func (w *WorkItem) Resource() shared.ResourceKind { return w.resource }
func (w *WorkItem) Request() uuid.UUID            { return w.request }

// HasRequest reports whether a transport request drives this item
func (w *WorkItem) HasRequest() bool {
	return w.request != uuid.Nil
}

// OpenSlots returns the number of unclaimed slots, never negative
func (w *WorkItem) OpenSlots() int {
	if w.claims >= w.slotCapacity {
		return 0
	}
	return w.slotCapacity - w.claims
}

// IsOwnedBy reports whether supervisor may claim the item
func (w *WorkItem) IsOwnedBy(supervisor shared.EntityID) bool {
	return w.owner == supervisor
}

// IsClaimableBy reports whether supervisor passes the ownership rule
func (w *WorkItem) IsClaimableBy(supervisor shared.EntityID) bool {
	return w.owner.IsNone() || w.owner == supervisor
}

// Claim takes one slot for supervisor. It is the check-then-increment step
// of assignment and fails without side effects when the item is full.
func (w *WorkItem) Claim(supervisor shared.EntityID) error {
	if !w.IsClaimableBy(supervisor) {
		return &ErrOwnedByOtherSupervisor{ID: w.id, Owner: w.owner, Supervisor: supervisor}
	}
	if w.claims >= w.slotCapacity {
		return &ErrSlotCapacityExceeded{ID: w.id, Capacity: w.slotCapacity}
	}
	w.claims++
	w.owner = supervisor
	return nil
}

// Unclaim releases one slot. Ownership returns to none when the last claim
// leaves, unless the designation fixed the owner.
func (w *WorkItem) Unclaim() {
	if w.claims > 0 {
		w.claims--
	}
	if w.claims == 0 && !w.ownerFixed {
		w.owner = shared.NoEntity
	}
}

// SetSlotCapacity resizes the item. Shrinking below current claims keeps the
// existing claims but leaves no open slot.
func (w *WorkItem) SetSlotCapacity(n int) {
	if n < 0 {
		n = 0
	}
	w.slotCapacity = n
}

// SetPriority updates the base priority
func (w *WorkItem) SetPriority(p int) {
	w.priority = p
}

// AttachRequest links the item to a transport request
func (w *WorkItem) AttachRequest(id uuid.UUID) {
	w.request = id
}

// StripRequest detaches the item from its transport request
func (w *WorkItem) StripRequest() {
	w.request = uuid.Nil
}
