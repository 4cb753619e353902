package logging

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/hauler-go/internal/application/common"
	"github.com/andrescamacho/hauler-go/internal/infrastructure/config"
)

// ZapLogger implements common.Logger on top of a zap logger
type ZapLogger struct {
	base *zap.Logger
}

var _ common.Logger = (*ZapLogger)(nil)

// NewZapLogger builds a logger from the logging section of the config
func NewZapLogger(cfg config.LoggingConfig) (*ZapLogger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableCaller = !cfg.IncludeCaller
	zc.DisableStacktrace = !cfg.IncludeStacktrace
	zc.EncoderConfig.TimeKey = "timestamp"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == "text" {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	switch cfg.Output {
	case "stderr":
		zc.OutputPaths = []string{"stderr"}
	case "file":
		zc.OutputPaths = []string{cfg.FilePath}
	default:
		zc.OutputPaths = []string{"stdout"}
	}
	zc.ErrorOutputPaths = []string{"stderr"}

	base, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return &ZapLogger{base: base}, nil
}

// NewFromZap wraps an existing zap logger
func NewFromZap(base *zap.Logger) *ZapLogger {
	return &ZapLogger{base: base}
}

// Zap returns the underlying logger
func (l *ZapLogger) Zap() *zap.Logger {
	return l.base
}

// With returns a logger that adds fields to every entry
func (l *ZapLogger) With(metadata map[string]interface{}) *ZapLogger {
	return &ZapLogger{base: l.base.With(fields(metadata)...)}
}

// Log writes one entry. Unknown levels log at info.
func (l *ZapLogger) Log(level, message string, metadata map[string]interface{}) {
	if ce := l.base.Check(toZapLevel(level), message); ce != nil {
		ce.Write(fields(metadata)...)
	}
}

// Sync flushes buffered entries
func (l *ZapLogger) Sync() error {
	return l.base.Sync()
}

func toZapLevel(level string) zapcore.Level {
	switch level {
	case common.LevelDebug:
		return zapcore.DebugLevel
	case common.LevelWarn:
		return zapcore.WarnLevel
	case common.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// fields converts metadata in key order so output is stable
func fields(metadata map[string]interface{}) []zap.Field {
	if len(metadata) == 0 {
		return nil
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		switch v := metadata[k].(type) {
		case error:
			out = append(out, zap.NamedError(k, v))
		case fmt.Stringer:
			out = append(out, zap.Stringer(k, v))
		default:
			out = append(out, zap.Any(k, v))
		}
	}
	return out
}
