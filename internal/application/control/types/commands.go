package types

import (
	"github.com/google/uuid"

	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// DesignateCommand places a work item on Target. The cell and resource are
// read from the target entity.
type DesignateCommand struct {
	Kind     work.Kind       `validate:"required"`
	Target   shared.EntityID `validate:"required"`
	Owner    shared.EntityID
	Issuer   shared.EntityID
	Slots    int `validate:"min=0"`
	Priority int
}

// DesignateResponse reports the work item that now represents the designation
type DesignateResponse struct {
	WorkItem shared.EntityID
	Capacity int
}

// CancelWorkerCommand aborts a worker's current task
type CancelWorkerCommand struct {
	Worker shared.EntityID `validate:"required"`
}

// CancelWorkerResponse is false when the worker was idle
type CancelWorkerResponse struct {
	Cancelled bool
}

// CancelWorkItemCommand removes a work item and aborts its workers
type CancelWorkItemCommand struct {
	WorkItem shared.EntityID `validate:"required"`
}

// CancelWorkItemResponse is empty; success is the absence of an error
type CancelWorkItemResponse struct{}

// RequestTransportCommand opens a pinned request to move Source to Anchor
type RequestTransportCommand struct {
	Source   shared.EntityID `validate:"required"`
	Anchor   shared.EntityID `validate:"required"`
	Issuer   shared.EntityID `validate:"required"`
	Priority int
}

// RequestTransportResponse carries the opened request's ID
type RequestTransportResponse struct {
	Request uuid.UUID
}

// SnapshotQuery asks for the scheduler's current state
type SnapshotQuery struct{}

// SnapshotResponse wraps a scheduler snapshot
type SnapshotResponse struct {
	Snapshot scheduling.Snapshot
}
