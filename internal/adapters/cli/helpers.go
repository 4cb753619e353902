package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/andrescamacho/hauler-go/internal/adapters/logging"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

// loadConfig loads the config named by --config, applying --verbose
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging section
func newLogger(cfg *config.Config) (*logging.ZapLogger, error) {
	logger, err := logging.NewZapLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// tuningFromConfig overlays the scheduler section on the built-in tuning.
// Map keys arrive lowercased from viper and are matched case-insensitively.
func tuningFromConfig(cfg config.SchedulerConfig) (scheduling.Tuning, error) {
	t := scheduling.DefaultTuning()
	if cfg.PathCheckBudget > 0 {
		t.PathCheckBudget = cfg.PathCheckBudget
	}
	if cfg.ArrivalThreshold > 0 {
		t.ArrivalThreshold = cfg.ArrivalThreshold
	}
	if cfg.PathDriftTolerance > 0 {
		t.PathDriftTolerance = cfg.PathDriftTolerance
	}
	for name, rate := range cfg.ProgressRates {
		kind, err := work.ParseKind(strings.ToUpper(name))
		if err != nil {
			return t, fmt.Errorf("scheduler.progress_rates: %w", err)
		}
		t.ProgressRates[kind] = rate
	}
	for name, bonus := range cfg.KindBonus {
		kind, err := work.ParseKind(strings.ToUpper(name))
		if err != nil {
			return t, fmt.Errorf("scheduler.kind_bonus: %w", err)
		}
		t.KindBonus[kind] = bonus
	}
	if cfg.Wheelbarrow.MinBatch > 0 {
		t.WheelbarrowMinBatch = cfg.Wheelbarrow.MinBatch
	}
	if cfg.Wheelbarrow.BatchRadius > 0 {
		t.WheelbarrowBatchRadius = cfg.Wheelbarrow.BatchRadius
	}
	if cfg.LeaseDuration > 0 {
		t.LeaseDuration = cfg.LeaseDuration
	}
	if cfg.WaterSearchRadius > 0 {
		t.WaterSearchRadius = cfg.WaterSearchRadius
	}
	return t, nil
}

// parseEntity parses an entity ID argument, accepting an optional leading '#'
func parseEntity(raw string) (shared.EntityID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || n == 0 {
		return shared.NoEntity, fmt.Errorf("invalid entity id %q", raw)
	}
	return shared.EntityID(n), nil
}

// maskPassword hides the password in a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "****")
	return u.String()
}
