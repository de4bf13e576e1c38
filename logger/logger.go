package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide sugared logger. It is a no-op logger until Init runs.
var Log = zap.NewNop().Sugar()

// Init builds the zap logger for the given level ("debug", "info", ...).
func Init(level string, development bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = l.Sugar()
	return nil
}

// Set replaces the global logger, mostly for tests that observe log output.
func Set(l *zap.Logger) {
	Log = l.Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
