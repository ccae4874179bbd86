package commands

import "github.com/goliatone/go-portal/components/portal"

// Telemetry is the event sink shared with the portal service.
type Telemetry = portal.Telemetry

// normalizeTelemetry falls back to a zap sink with a no-op logger.
func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return portal.NewZapTelemetry(nil)
	}
	return t
}
