package metrics

import (
	"context"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ControlMetricsCollector handles control service request metrics
type ControlMetricsCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

// NewControlMetricsCollector creates a new control metrics collector
func NewControlMetricsCollector() *ControlMetricsCollector {
	return &ControlMetricsCollector{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "control",
				Name:      "request_duration_seconds",
				Help:      "Control request duration distribution",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
			[]string{"method", "code"},
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "control",
				Name:      "requests_total",
				Help:      "Total number of control requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}
}

// Register registers all control metrics with reg, or the global registry when nil
func (c *ControlMetricsCollector) Register(reg prometheus.Registerer) error {
	return registerAll(reg, c.requestDuration, c.requestsTotal)
}

// RecordRequest records one finished request
func (c *ControlMetricsCollector) RecordRequest(method, code string, duration time.Duration) {
	c.requestDuration.WithLabelValues(method, code).Observe(duration.Seconds())
	c.requestsTotal.WithLabelValues(method, code).Inc()
}

// UnaryServerInterceptor records every unary RPC. Method names are reduced to
// their last path element, e.g. "/hauler.v1.Control/Designate" becomes "Designate".
func (c *ControlMetricsCollector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if c == nil {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		c.RecordRequest(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
