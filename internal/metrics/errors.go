package metrics

import (
	"strconv"

	"github.com/flocklens/flocklens/internal/observability"
)

var (
	ErrorsTotal      = "errors_total"
	ErrorsByEndpoint = "errors_by_endpoint"
	PanicsTotal      = "panics_total"
)

// RecordError records an error response by code and HTTP status.
func RecordError(errorCode string, statusCode int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ErrorsTotal,
			1,
			map[string]string{
				"code":   errorCode,
				"status": strconv.Itoa(statusCode),
			},
		)
	}
}

// RecordErrorByEndpoint records which endpoint produced an error.
func RecordErrorByEndpoint(endpoint string, errorCode string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			ErrorsByEndpoint,
			1,
			map[string]string{
				"endpoint": endpoint,
				"code":     errorCode,
			},
		)
	}
}

// RecordPanic records a recovered panic.
func RecordPanic(endpoint string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			PanicsTotal,
			1,
			map[string]string{
				"endpoint": endpoint,
			},
		)
	}
}
