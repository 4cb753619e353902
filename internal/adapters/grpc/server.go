package grpc

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/application/mediator"
)

// ServerOptions tune the control server
type ServerOptions struct {
	// RequestsPerSecond and Burst feed the intake token bucket; zero disables it
	RequestsPerSecond int
	Burst             int
	// Interceptors run after rate limiting, in order
	Interceptors []grpc.UnaryServerInterceptor
}

// Server serves the control service for one scheduler
type Server struct {
	grpcServer *grpc.Server
}

// NewServer creates a control server dispatching through bus
func NewServer(bus mediator.Mediator, opts ServerOptions) *Server {
	var chain []grpc.UnaryServerInterceptor
	if opts.RequestsPerSecond > 0 {
		burst := max(opts.Burst, 1)
		chain = append(chain, RateLimitInterceptor(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)))
	}
	chain = append(chain, opts.Interceptors...)

	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	RegisterControlServer(grpcServer, NewControlService(bus))
	return &Server{grpcServer: grpcServer}
}

// RateLimitInterceptor rejects requests once the limiter's bucket is empty
func RateLimitInterceptor(limiter *rate.Limiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if !limiter.Allow() {
			return nil, status.Errorf(codes.ResourceExhausted, "control request rate exceeded for %s", info.FullMethod)
		}
		return handler(ctx, req)
	}
}

// Listen serves on a TCP address until ctx is cancelled
func (s *Server) Listen(ctx context.Context, address string) error {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis until ctx is cancelled, then stops gracefully
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "Control service listening", map[string]interface{}{
		"address": lis.Addr().String(),
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.grpcServer.Serve(lis)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.grpcServer.GracefulStop()
		<-errChan
		return nil
	}
}
