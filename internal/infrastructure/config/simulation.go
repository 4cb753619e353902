package config

import "time"

// SimulationConfig holds the daemon's tick loop settings
type SimulationConfig struct {
	// Wall-clock time between ticks
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval" validate:"required"`

	// Simulated time that passes per tick
	TickDuration time.Duration `mapstructure:"tick_duration" yaml:"tick_duration" validate:"required"`

	// Scenario file loaded at startup (optional)
	Scenario string `mapstructure:"scenario" yaml:"scenario" validate:"omitempty,endswith=.yaml|endswith=.yml"`

	// Stop after this many ticks; 0 runs until shutdown
	MaxTicks int `mapstructure:"max_ticks" yaml:"max_ticks" validate:"min=0"`
}
