package grpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
)

// ControlClient calls a running daemon's control service
type ControlClient struct {
	conn *grpc.ClientConn
}

// DesignateRequest is a player designation sent to the daemon
type DesignateRequest struct {
	Kind     work.Kind
	Target   shared.EntityID
	Owner    shared.EntityID
	Issuer   shared.EntityID
	Slots    int
	Priority int
}

// NewControlClient connects to the daemon at address
func NewControlClient(address string, opts ...grpc.DialOption) (*ControlClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	return &ControlClient{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *ControlClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *ControlClient) call(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Designate places a work item and returns its ID
func (c *ControlClient) Designate(ctx context.Context, req DesignateRequest) (shared.EntityID, error) {
	in := map[string]interface{}{
		"kind":   string(req.Kind),
		"target": uint64(req.Target),
	}
	if !req.Owner.IsNone() {
		in["owner"] = uint64(req.Owner)
	}
	if !req.Issuer.IsNone() {
		in["issuer"] = uint64(req.Issuer)
	}
	if req.Slots > 0 {
		in["slots"] = req.Slots
	}
	if req.Priority != 0 {
		in["priority"] = req.Priority
	}
	out, err := c.call(ctx, MethodDesignate, in)
	if err != nil {
		return shared.NoEntity, fmt.Errorf("failed to designate: %w", err)
	}
	return entityField(out, "work_item", true)
}

// CancelWorkItem removes a work item, aborting its workers
func (c *ControlClient) CancelWorkItem(ctx context.Context, id shared.EntityID) error {
	if _, err := c.call(ctx, MethodCancelWorkItem, map[string]interface{}{"work_item": uint64(id)}); err != nil {
		return fmt.Errorf("failed to cancel work item: %w", err)
	}
	return nil
}

// CancelWorker aborts a worker's task; false means the worker was idle
func (c *ControlClient) CancelWorker(ctx context.Context, id shared.EntityID) (bool, error) {
	out, err := c.call(ctx, MethodCancelWorker, map[string]interface{}{"worker": uint64(id)})
	if err != nil {
		return false, fmt.Errorf("failed to cancel worker: %w", err)
	}
	return out.GetFields()["cancelled"].GetBoolValue(), nil
}

// RequestTransport opens a pinned transport request
func (c *ControlClient) RequestTransport(ctx context.Context, source, anchor, issuer shared.EntityID, priority int) (uuid.UUID, error) {
	out, err := c.call(ctx, MethodRequestTransport, map[string]interface{}{
		"source":   uint64(source),
		"anchor":   uint64(anchor),
		"issuer":   uint64(issuer),
		"priority": priority,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to request transport: %w", err)
	}
	return uuid.Parse(out.GetFields()["request"].GetStringValue())
}

// Snapshot returns the daemon's scheduler state in wire form
func (c *ControlClient) Snapshot(ctx context.Context) (*structpb.Struct, error) {
	out, err := c.call(ctx, MethodSnapshot, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return out, nil
}
