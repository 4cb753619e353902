package work

import (
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// ErrUnknownKind is returned when parsing a kind outside the closed set
type ErrUnknownKind struct {
	Kind string
}

func (e *ErrUnknownKind) Error() string {
	return fmt.Sprintf("unknown work kind: %q", e.Kind)
}

// ErrWorkItemNotFound indicates the board has no item with that ID
type ErrWorkItemNotFound struct {
	ID shared.EntityID
}

func (e *ErrWorkItemNotFound) Error() string {
	return fmt.Sprintf("work item not found: %s", e.ID)
}

// ErrSlotCapacityExceeded indicates a claim on a full work item
type ErrSlotCapacityExceeded struct {
	ID       shared.EntityID
	Capacity int
}

func (e *ErrSlotCapacityExceeded) Error() string {
	return fmt.Sprintf("work item %s has no open slot (capacity %d)", e.ID, e.Capacity)
}

// ErrOwnedByOtherSupervisor indicates a claim by a supervisor that does not own the item
type ErrOwnedByOtherSupervisor struct {
	ID         shared.EntityID
	Owner      shared.EntityID
	Supervisor shared.EntityID
}

func (e *ErrOwnedByOtherSupervisor) Error() string {
	return fmt.Sprintf("work item %s is owned by supervisor %s, not %s", e.ID, e.Owner, e.Supervisor)
}

// ErrInvalidDesignation indicates a designation missing mandatory fields
type ErrInvalidDesignation struct {
	Reason string
}

func (e *ErrInvalidDesignation) Error() string {
	return fmt.Sprintf("invalid designation: %s", e.Reason)
}
