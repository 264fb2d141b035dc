// Package utils provides shared logging setup for the doctxt commands.
package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a zap logger on stderr, leaving stdout to command output. When
// debug is true, uses development config (human-readable, debug level); otherwise uses
// production config (JSON) at warn level so per-file progress is not repeated as logs.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// NewServiceLogger returns a logger for long-running modes (serve, watch), which log
// at info level so lifecycle events are visible.
func NewServiceLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
