package task

import (
	"time"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// SignalType distinguishes the outcome of a task
type SignalType string

const (
	SignalAssigned  SignalType = "ASSIGNED"
	SignalCompleted SignalType = "COMPLETED"
	SignalAbandoned SignalType = "ABANDONED"
)

// AbortReason explains why a task was abandoned
type AbortReason string

const (
	AbortTargetVanished   AbortReason = "TARGET_VANISHED"
	AbortUnreachable      AbortReason = "UNREACHABLE"
	AbortHolderGone       AbortReason = "RESERVATION_HOLDER_GONE"
	AbortResourceInvalid  AbortReason = "RESOURCE_STATE_INVALIDATED"
	AbortCancelled        AbortReason = "CANCELLED"
	AbortPhaseTransitions AbortReason = "INVALID_PHASE_TRANSITION"
	AbortLeaseExpired     AbortReason = "LEASE_EXPIRED"
)

// Signal is emitted to UI and audit layers whenever a task starts or ends
type Signal struct {
	Type       SignalType
	Worker     shared.EntityID
	Supervisor shared.EntityID
	WorkItem   shared.EntityID
	Kind       work.Kind
	Target     shared.EntityID
	Phase      Phase
	Reason     AbortReason
	Tick       uint64
	At         time.Time
}
