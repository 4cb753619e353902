package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// DesignateHandler handles player designations
type DesignateHandler struct {
	sched *scheduling.Scheduler
}

// NewDesignateHandler creates a new designate handler
func NewDesignateHandler(sched *scheduling.Scheduler) *DesignateHandler {
	return &DesignateHandler{sched: sched}
}

// Handle resolves the target's cell and resource, then designates
func (h *DesignateHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.DesignateCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if _, err := work.ParseKind(string(cmd.Kind)); err != nil {
		return nil, shared.NewValidationError("kind", err.Error())
	}

	cell, resource, found := h.locate(cmd.Target)
	if !found {
		return nil, &world.ErrEntityNotFound{Kind: "target", ID: cmd.Target}
	}

	item, err := h.sched.Designate(ctx, work.Designation{
		Kind:         cmd.Kind,
		Cell:         cell,
		Target:       cmd.Target,
		Owner:        cmd.Owner,
		Issuer:       cmd.Issuer,
		SlotCapacity: cmd.Slots,
		Priority:     cmd.Priority,
		Resource:     resource,
	})
	if err != nil {
		return nil, err
	}
	return &types.DesignateResponse{WorkItem: item.ID(), Capacity: item.SlotCapacity()}, nil
}

func (h *DesignateHandler) locate(target shared.EntityID) (cell shared.Cell, resource shared.ResourceKind, found bool) {
	h.sched.Lock(func() {
		w := h.sched.World()
		cell, found = w.CellOf(target)
		if item, ok := w.Item(target); ok {
			resource = item.Resource
		} else if node, ok := w.Node(target); ok {
			resource = node.Resource()
		}
	})
	return cell, resource, found
}
