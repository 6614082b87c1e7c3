package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given level and format ("json" or
// "console").
func New(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// Telemetry adapts a zap logger to the metrics telemetry contract so service
// events land in structured logs.
type Telemetry struct {
	log *zap.Logger
}

// NewTelemetry wraps a zap logger. A nil logger yields a no-op telemetry.
func NewTelemetry(log *zap.Logger) *Telemetry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telemetry{log: log}
}

// Record logs one telemetry event with its payload as structured fields.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	fields := make([]zap.Field, 0, len(payload))
	for key, value := range payload {
		fields = append(fields, zap.Any(key, value))
	}
	t.log.Info(event, fields...)
}
