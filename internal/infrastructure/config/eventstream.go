package config

import "time"

// EventStreamConfig holds the websocket task signal stream configuration
type EventStreamConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Listen address (host:port)
	Address string `mapstructure:"address" yaml:"address" validate:"required_if=Enabled true"`

	// Path for the websocket endpoint
	Path string `mapstructure:"path" yaml:"path"`

	// Per-client send buffer; signals are dropped for clients that fall behind
	ClientBuffer int `mapstructure:"client_buffer" yaml:"client_buffer" validate:"min=1"`

	// Write deadline for a single frame
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}
