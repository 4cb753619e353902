package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/control/types"
	"github.com/andrescamacho/hauler-go/internal/application/mediator"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/domain/world"
)

// controlService bridges control RPCs to the control mediator
type controlService struct {
	bus mediator.Mediator
}

// NewControlService creates the control service implementation
func NewControlService(bus mediator.Mediator) ControlServer {
	return &controlService{bus: bus}
}

func (s *controlService) Designate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	kind, err := stringField(in, "kind", true)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	cmd := &types.DesignateCommand{Kind: work.Kind(kind)}
	for name, dst := range map[string]*shared.EntityID{"target": &cmd.Target, "owner": &cmd.Owner, "issuer": &cmd.Issuer} {
		if *dst, err = entityField(in, name, name == "target"); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	if cmd.Slots, err = intField(in, "slots"); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if cmd.Priority, err = intField(in, "priority"); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.bus.Send(ctx, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	out := resp.(*types.DesignateResponse)
	return structpb.NewStruct(map[string]interface{}{
		"work_item": uint64(out.WorkItem),
		"capacity":  out.Capacity,
	})
}

func (s *controlService) CancelWorkItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := entityField(in, "work_item", true)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, err := s.bus.Send(ctx, &types.CancelWorkItemCommand{WorkItem: id}); err != nil {
		return nil, toStatus(err)
	}
	return &structpb.Struct{}, nil
}

func (s *controlService) CancelWorker(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := entityField(in, "worker", true)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := s.bus.Send(ctx, &types.CancelWorkerCommand{Worker: id})
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"cancelled": resp.(*types.CancelWorkerResponse).Cancelled,
	})
}

func (s *controlService) RequestTransport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	cmd := &types.RequestTransportCommand{}
	var err error
	for name, dst := range map[string]*shared.EntityID{"source": &cmd.Source, "anchor": &cmd.Anchor, "issuer": &cmd.Issuer} {
		if *dst, err = entityField(in, name, true); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	if cmd.Priority, err = intField(in, "priority"); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := s.bus.Send(ctx, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(map[string]interface{}{
		"request": resp.(*types.RequestTransportResponse).Request.String(),
	})
}

func (s *controlService) Snapshot(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.bus.Send(ctx, &types.SnapshotQuery{})
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := SnapshotToStruct(resp.(*types.SnapshotResponse).Snapshot)
	if err != nil {
		common.LoggerFromContext(ctx).Log(common.LevelError, "Failed to encode snapshot", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, status.Error(codes.Internal, "failed to encode snapshot")
	}
	return out, nil
}

// toStatus maps domain errors to gRPC codes
func toStatus(err error) error {
	var (
		notFound     *world.ErrEntityNotFound
		missing      *shared.EntityNotFoundError
		itemNotFound *work.ErrWorkItemNotFound
		invalid      *work.ErrInvalidDesignation
		validation   *shared.ValidationError
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &missing), errors.As(err, &itemNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &invalid), errors.As(err, &validation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
