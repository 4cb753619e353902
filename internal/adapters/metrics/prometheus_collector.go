package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all metrics
	namespace = "hauler"
	// Subsystem for scheduler metrics
	subsystem = "scheduler"
)

// Registry is the process Prometheus registry. Nil means metrics are disabled.
var Registry *prometheus.Registry

// InitRegistry initializes the Prometheus registry with Go runtime and
// process collectors. Call once at startup when metrics are enabled.
func InitRegistry() *prometheus.Registry {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return Registry
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// registerAll registers collectors with reg, or with the global registry
// when reg is nil. Nothing is registered while metrics are disabled.
func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		if Registry == nil {
			return nil
		}
		reg = Registry
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
