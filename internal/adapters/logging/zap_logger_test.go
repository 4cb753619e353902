package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/andrescamacho/hauler-go/internal/adapters/logging"
	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/domain/shared"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

func observed(level zapcore.Level) (*logging.ZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return logging.NewFromZap(zap.New(core)), logs
}

func TestZapLogger_MapsLevels(t *testing.T) {
	// Arrange
	logger, logs := observed(zapcore.DebugLevel)

	// Act
	logger.Log(common.LevelDebug, "probe", nil)
	logger.Log(common.LevelInfo, "assigned", nil)
	logger.Log(common.LevelWarn, "abandoned", nil)
	logger.Log(common.LevelError, "failed", nil)
	logger.Log("TRACE", "unknown", nil)

	// Assert
	entries := logs.AllUntimed()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[4].Level)
}

func TestZapLogger_WritesMetadataAsFields(t *testing.T) {
	// Arrange
	logger, logs := observed(zapcore.InfoLevel)

	// Act
	logger.Log(common.LevelWarn, "Task abandoned", map[string]interface{}{
		"worker": shared.EntityID(7),
		"reason": "TARGET_VANISHED",
		"error":  errors.New("gone"),
		"tick":   uint64(12),
	})

	// Assert
	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "#7", ctx["worker"])
	assert.Equal(t, "TARGET_VANISHED", ctx["reason"])
	assert.Equal(t, "gone", ctx["error"])
	assert.Equal(t, uint64(12), ctx["tick"])
}

func TestZapLogger_FiltersBelowLevel(t *testing.T) {
	// Arrange
	logger, logs := observed(zapcore.WarnLevel)

	// Act
	logger.Log(common.LevelInfo, "quiet", nil)
	logger.With(map[string]interface{}{"run": "r1"}).Log(common.LevelError, "loud", nil)

	// Assert
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "loud", logs.All()[0].Message)
	assert.Equal(t, "r1", logs.All()[0].ContextMap()["run"])
}

func TestZapLogger_TravelsThroughContext(t *testing.T) {
	// Arrange
	logger, logs := observed(zapcore.InfoLevel)
	ctx := common.WithLogger(context.Background(), logger)

	// Act
	common.LoggerFromContext(ctx).Log(common.LevelInfo, "from context", nil)

	// Assert
	assert.Equal(t, 1, logs.FilterMessage("from context").Len())
}

func TestNewZapLogger_RejectsBadLevel(t *testing.T) {
	// Arrange
	cfg := config.LoggingConfig{Level: "loud", Format: "json", Output: "stdout"}

	// Act
	_, err := logging.NewZapLogger(cfg)

	// Assert
	assert.Error(t, err)
}

func TestNewZapLogger_BuildsTextLogger(t *testing.T) {
	// Arrange
	cfg := config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}

	// Act
	logger, err := logging.NewZapLogger(cfg)

	// Assert
	require.NoError(t, err)
	assert.True(t, logger.Zap().Core().Enabled(zapcore.DebugLevel))
}
