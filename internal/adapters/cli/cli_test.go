package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andrescamacho/hauler-go/internal/adapters/cli"
	"github.com/andrescamacho/hauler-go/internal/adapters/logging"
	"github.com/andrescamacho/hauler-go/internal/application/scheduling"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/domain/work"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

var quarryScenario = filepath.Join("..", "scenario", "testdata", "quarry.yaml")

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HAULER_LOGGING_LEVEL", "error")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTuningFromConfig_OverlaysDefaults(t *testing.T) {
	// Arrange
	cfg := config.SchedulerConfig{
		PathCheckBudget: 12,
		ProgressRates:   map[string]float64{"build": 0.5},
		KindBonus:       map[string]int{"haul": 7},
		LeaseDuration:   time.Minute,
	}

	// Act
	tuning, err := cli.TuningFromConfig(cfg)

	// Assert
	require.NoError(t, err)
	defaults := scheduling.DefaultTuning()
	assert.Equal(t, 12, tuning.PathCheckBudget)
	assert.Equal(t, 0.5, tuning.ProgressRates[work.KindBuild])
	assert.Equal(t, defaults.ProgressRates[work.KindGather], tuning.ProgressRates[work.KindGather])
	assert.Equal(t, 7, tuning.KindBonus[work.KindHaul])
	assert.Equal(t, time.Minute, tuning.LeaseDuration)
	assert.Equal(t, defaults.ArrivalThreshold, tuning.ArrivalThreshold)
	assert.Equal(t, defaults.WheelbarrowMinBatch, tuning.WheelbarrowMinBatch)
}

func TestTuningFromConfig_RejectsUnknownKind(t *testing.T) {
	// Act
	_, err := cli.TuningFromConfig(config.SchedulerConfig{KindBonus: map[string]int{"dig": 1}})

	// Assert
	assert.ErrorContains(t, err, "kind_bonus")
}

func TestMaskPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"no password", "postgres://hauler@db:5432/hauler", "postgres://hauler@db:5432/hauler"},
		{"password", "postgres://hauler:secret@db:5432/hauler", "postgres://hauler:****@db:5432/hauler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cli.MaskPassword(tt.in))
		})
	}
}

func TestParseEntity(t *testing.T) {
	id, err := cli.ParseEntity("#12")
	require.NoError(t, err)
	assert.Equal(t, shared.EntityID(12), id)

	id, err = cli.ParseEntity("7")
	require.NoError(t, err)
	assert.Equal(t, shared.EntityID(7), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := cli.ParseEntity(bad)
		assert.Error(t, err, bad)
	}
}

func TestSimulateCommand_SummarisesRun(t *testing.T) {
	// Arrange
	path, err := filepath.Abs(quarryScenario)
	require.NoError(t, err)
	quietEnv(t)

	// Act
	out, err := execute(t, "simulate", "--scenario", path, "--ticks", "400")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario quarry: 400 ticks")
	assert.Contains(t, out, "KIND")
	assert.Contains(t, out, string(work.KindGather))
	assert.Contains(t, out, string(work.KindHaul))
}

func TestSimulateCommand_RequiresScenario(t *testing.T) {
	quietEnv(t)

	_, err := execute(t, "simulate")

	assert.ErrorContains(t, err, "scenario")
}

func TestConfigShow_PrintsYAML(t *testing.T) {
	// Arrange
	quietEnv(t)
	t.Setenv("HAULER_SCHEDULER_PATH_CHECK_BUDGET", "9")

	// Act
	out, err := execute(t, "config", "show")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "path_check_budget: 9")
	assert.Contains(t, out, "tick_interval: 100ms")
	assert.Contains(t, out, "localhost:50061")
}

func TestDaemon_RunsToTickLimit(t *testing.T) {
	// Arrange
	scenarioPath := mustAbs(t, quarryScenario)
	quietEnv(t)
	cfg := config.LoadConfigOrDefault("")
	cfg.Simulation.Scenario = scenarioPath
	cfg.Simulation.TickInterval = time.Millisecond
	cfg.Simulation.MaxTicks = 5
	cfg.Daemon.Address = "127.0.0.1:0"
	cfg.Daemon.Journal = true
	cfg.Database.Type = "sqlite"
	cfg.Database.Path = ":memory:"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	d, err := cli.NewDaemon(ctx, cfg, logging.NewFromZap(zap.NewNop()))
	require.NoError(t, err)

	// Act
	err = d.Run(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint64(5), d.Scheduler().Clock().Tick())
	assert.NotEmpty(t, d.Scheduler().Snapshot().Workers)
}

func TestNewDaemon_EmptyColonyWithoutScenario(t *testing.T) {
	// Arrange
	quietEnv(t)
	cfg := config.LoadConfigOrDefault("")

	// Act
	d, err := cli.NewDaemon(context.Background(), cfg, logging.NewFromZap(zap.NewNop()))

	// Assert
	require.NoError(t, err)
	assert.Empty(t, d.Scheduler().Snapshot().Workers)
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return abs
}
