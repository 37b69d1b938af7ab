package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. Init replaces it; GetLogger lazily builds a
// fallback so logging works before config is loaded (and in tests).
var Log *zap.Logger

// Init builds the global JSON logger at the given level. An empty level falls
// back to info, matching the LOG_LEVEL config default.
func Init(level string) error {
	if level == "" {
		level = "info"
	}
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %v", level, err)
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	// stack traces are carried by the request log, not per-entry
	cfg.EncoderConfig.StacktraceKey = ""

	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = built
	return nil
}

// GetLogger returns the global logger, building a default production logger
// when Init has not run yet.
func GetLogger() *zap.Logger {
	if Log == nil {
		l, err := zap.NewProduction(zap.WithCaller(false))
		if err != nil {
			panic(err)
		}
		Log = l
	}
	return Log
}

// Sync flushes any buffered log entries.
func Sync() error {
	if Log == nil {
		return nil
	}
	return Log.Sync()
}
