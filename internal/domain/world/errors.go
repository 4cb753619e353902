package world

import (
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
)

// ErrEntityNotFound indicates an ID that is not (or no longer) in the world
type ErrEntityNotFound struct {
	Kind string
	ID   shared.EntityID
}

func (e *ErrEntityNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrHandsFull indicates a worker already carries something
type ErrHandsFull struct {
	WorkerID shared.EntityID
}

func (e *ErrHandsFull) Error() string {
	return fmt.Sprintf("worker %s is already carrying a load", e.WorkerID)
}

// ErrCapacity indicates a container that cannot take more
type ErrCapacity struct {
	ContainerID shared.EntityID
	Resource    shared.ResourceKind
	Requested   int
	Available   int
}

func (e *ErrCapacity) Error() string {
	return fmt.Sprintf("%s cannot take %d %s (room for %d)", e.ContainerID, e.Requested, e.Resource, e.Available)
}

// ErrRejectedResource indicates a container that does not accept a resource
type ErrRejectedResource struct {
	ContainerID shared.EntityID
	Resource    shared.ResourceKind
}

func (e *ErrRejectedResource) Error() string {
	return fmt.Sprintf("%s does not accept %s", e.ContainerID, e.Resource)
}

// ErrInvalidSitePhaseTransition indicates an attempt to move a construction
// site backwards or skip a phase
type ErrInvalidSitePhaseTransition struct {
	SiteID shared.EntityID
	From   SitePhase
	To     SitePhase
}

func (e *ErrInvalidSitePhaseTransition) Error() string {
	return fmt.Sprintf("construction site %s cannot move from %s to %s", e.SiteID, e.From, e.To)
}
