package config

import "time"

// SchedulerConfig holds the work scheduler's tuning knobs
type SchedulerConfig struct {
	// Maximum reachability probes per Decide cycle
	PathCheckBudget int `mapstructure:"path_check_budget" yaml:"path_check_budget" validate:"min=1"`

	// Distance in tiles at which a worker counts as arrived
	ArrivalThreshold float64 `mapstructure:"arrival_threshold" yaml:"arrival_threshold" validate:"gt=0"`

	// How far a goal may drift before the cached path is recomputed
	PathDriftTolerance float64 `mapstructure:"path_drift_tolerance" yaml:"path_drift_tolerance" validate:"gte=0"`

	// Per work kind progress per tick, keyed by kind name (e.g. BUILD)
	ProgressRates map[string]float64 `mapstructure:"progress_rates" yaml:"progress_rates" validate:"dive,keys,work_kind,endkeys,gt=0,lte=1"`

	// Per work kind score bonus, keyed by kind name
	KindBonus map[string]int `mapstructure:"kind_bonus" yaml:"kind_bonus" validate:"dive,keys,work_kind,endkeys,gte=-1000,lte=1000"`

	Wheelbarrow WheelbarrowConfig `mapstructure:"wheelbarrow" yaml:"wheelbarrow"`

	// Lifetime of a wheelbarrow lease before Maintain reclaims it
	LeaseDuration time.Duration `mapstructure:"lease_duration" yaml:"lease_duration" validate:"required"`

	// Search radius for a walkable water edge when filling buckets
	WaterSearchRadius int `mapstructure:"water_search_radius" yaml:"water_search_radius" validate:"min=1"`
}

// WheelbarrowConfig holds batching limits for wheelbarrow hauls
type WheelbarrowConfig struct {
	// Smallest batch worth a wheelbarrow trip
	MinBatch int `mapstructure:"min_batch" yaml:"min_batch" validate:"min=1"`

	// Maximum distance between batched items
	BatchRadius int `mapstructure:"batch_radius" yaml:"batch_radius" validate:"min=0"`
}
