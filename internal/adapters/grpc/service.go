package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified control service name
const ServiceName = "hauler.v1.Control"

// Full method names, as seen by interceptors
const (
	MethodDesignate        = "/" + ServiceName + "/Designate"
	MethodCancelWorkItem   = "/" + ServiceName + "/CancelWorkItem"
	MethodCancelWorker     = "/" + ServiceName + "/CancelWorker"
	MethodRequestTransport = "/" + ServiceName + "/RequestTransport"
	MethodSnapshot         = "/" + ServiceName + "/Snapshot"
)

// ControlServer is the control service. Messages are structpb.Struct so the
// service needs no generated code; field names are documented per method.
type ControlServer interface {
	// Designate takes kind, target and optional owner, issuer, slots, priority
	// and returns work_item
	Designate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// CancelWorkItem takes work_item
	CancelWorkItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// CancelWorker takes worker and returns cancelled
	CancelWorker(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// RequestTransport takes source, anchor, issuer, priority and returns request
	RequestTransport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Snapshot returns the scheduler state
	Snapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterControlServer registers srv on s
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&ControlServiceDesc, srv)
}

func unaryHandler(method string, call func(ControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ControlServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ControlServiceDesc describes the control service for grpc.Server
var ControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Designate", Handler: unaryHandler(MethodDesignate, ControlServer.Designate)},
		{MethodName: "CancelWorkItem", Handler: unaryHandler(MethodCancelWorkItem, ControlServer.CancelWorkItem)},
		{MethodName: "CancelWorker", Handler: unaryHandler(MethodCancelWorker, ControlServer.CancelWorker)},
		{MethodName: "RequestTransport", Handler: unaryHandler(MethodRequestTransport, ControlServer.RequestTransport)},
		{MethodName: "Snapshot", Handler: unaryHandler(MethodSnapshot, ControlServer.Snapshot)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hauler/v1/control.proto",
}
