package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
)

// CancelWorkerHandler aborts a single worker's task
type CancelWorkerHandler struct {
	sched *scheduling.Scheduler
}

// NewCancelWorkerHandler creates a new cancel worker handler
func NewCancelWorkerHandler(sched *scheduling.Scheduler) *CancelWorkerHandler {
	return &CancelWorkerHandler{sched: sched}
}

func (h *CancelWorkerHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.CancelWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return &types.CancelWorkerResponse{Cancelled: h.sched.Cancel(ctx, cmd.Worker)}, nil
}

// CancelWorkItemHandler removes a work item from the board
type CancelWorkItemHandler struct {
	sched *scheduling.Scheduler
}

// NewCancelWorkItemHandler creates a new cancel work item handler
func NewCancelWorkItemHandler(sched *scheduling.Scheduler) *CancelWorkItemHandler {
	return &CancelWorkItemHandler{sched: sched}
}

func (h *CancelWorkItemHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.CancelWorkItemCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if err := h.sched.CancelWorkItem(ctx, cmd.WorkItem); err != nil {
		return nil, err
	}
	return &types.CancelWorkItemResponse{}, nil
}
