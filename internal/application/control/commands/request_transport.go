package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
)

// RequestTransportHandler opens pinned transport requests
type RequestTransportHandler struct {
	sched *scheduling.Scheduler
}

// NewRequestTransportHandler creates a new request transport handler
func NewRequestTransportHandler(sched *scheduling.Scheduler) *RequestTransportHandler {
	return &RequestTransportHandler{sched: sched}
}

func (h *RequestTransportHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd, ok := request.(*types.RequestTransportCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	id, err := h.sched.RequestTransport(ctx, cmd.Source, cmd.Anchor, cmd.Issuer, cmd.Priority)
	if err != nil {
		return nil, err
	}
	return &types.RequestTransportResponse{Request: id}, nil
}
