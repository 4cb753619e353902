package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Scheduler defaults
	if cfg.Scheduler.PathCheckBudget == 0 {
		cfg.Scheduler.PathCheckBudget = 48
	}
	if cfg.Scheduler.ArrivalThreshold == 0 {
		cfg.Scheduler.ArrivalThreshold = 0.6
	}
	if cfg.Scheduler.PathDriftTolerance == 0 {
		cfg.Scheduler.PathDriftTolerance = 1.5
	}
	if cfg.Scheduler.Wheelbarrow.MinBatch == 0 {
		cfg.Scheduler.Wheelbarrow.MinBatch = 2
	}
	if cfg.Scheduler.Wheelbarrow.BatchRadius == 0 {
		cfg.Scheduler.Wheelbarrow.BatchRadius = 4
	}
	if cfg.Scheduler.LeaseDuration == 0 {
		cfg.Scheduler.LeaseDuration = 30 * time.Second
	}
	if cfg.Scheduler.WaterSearchRadius == 0 {
		cfg.Scheduler.WaterSearchRadius = 32
	}

	// Simulation defaults
	if cfg.Simulation.TickInterval == 0 {
		cfg.Simulation.TickInterval = 100 * time.Millisecond
	}
	if cfg.Simulation.TickDuration == 0 {
		cfg.Simulation.TickDuration = 100 * time.Millisecond
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" && cfg.Database.Type == "sqlite" {
		cfg.Database.Path = "hauler.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "hauler"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "hauler"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Daemon defaults
	if cfg.Daemon.Address == "" {
		cfg.Daemon.Address = "localhost:50061"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/haulerd.pid"
	}
	if cfg.Daemon.ShutdownTimeout == 0 {
		cfg.Daemon.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Daemon.RateLimit.Requests == 0 {
		cfg.Daemon.RateLimit.Requests = 20
	}
	if cfg.Daemon.RateLimit.Burst == 0 {
		cfg.Daemon.RateLimit.Burst = 40
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9464
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Event stream defaults
	if cfg.EventStream.Address == "" {
		cfg.EventStream.Address = "localhost:8765"
	}
	if cfg.EventStream.Path == "" {
		cfg.EventStream.Path = "/signals"
	}
	if cfg.EventStream.ClientBuffer == 0 {
		cfg.EventStream.ClientBuffer = 256
	}
	if cfg.EventStream.WriteTimeout == 0 {
		cfg.EventStream.WriteTimeout = 5 * time.Second
	}
}
