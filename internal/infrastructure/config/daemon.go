package config

import "time"

// DaemonConfig holds daemon service configuration
type DaemonConfig struct {
	// gRPC control service address (host:port)
	Address string `mapstructure:"address" yaml:"address" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file" yaml:"pid_file"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`

	// Control request intake limits
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`

	// Record task signals in the database journal
	Journal bool `mapstructure:"journal" yaml:"journal"`
}

// RateLimitConfig holds token bucket settings for control requests
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" yaml:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" yaml:"burst" validate:"min=1"`
}
