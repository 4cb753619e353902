package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
)

// SnapshotHandler returns the scheduler's current state
type SnapshotHandler struct {
	sched *scheduling.Scheduler
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(sched *scheduling.Scheduler) *SnapshotHandler {
	return &SnapshotHandler{sched: sched}
}

func (h *SnapshotHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	if _, ok := request.(*types.SnapshotQuery); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return &types.SnapshotResponse{Snapshot: h.sched.Snapshot()}, nil
}
