package portal

import (
	"context"

	"go.uber.org/zap"
)

// Telemetry records portal events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes telemetry events as structured log entries.
type ZapTelemetry struct {
	Logger *zap.Logger
}

// NewZapTelemetry wraps logger; nil yields a no-op logger.
func NewZapTelemetry(logger *zap.Logger) ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return ZapTelemetry{Logger: logger}
}

// Record implements Telemetry.
func (t ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t.Logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(payload)+1)
	fields = append(fields, zap.String("event", event))
	for k, v := range payload {
		fields = append(fields, zap.Any(k, v))
	}
	t.Logger.Info("telemetry", fields...)
}
