// Package metrics emits application metrics through the global telemetry
// system. All helpers are no-ops until observability.InitMetrics has run, so
// library code can call them unconditionally.
package metrics

import (
	"time"

	"github.com/flocklens/flocklens/internal/observability"
)

// Metric names, following Prometheus conventions.
var (
	OperationsTotal       = "app_operations_total"
	OperationsErrorsTotal = "app_operations_errors_total"

	CrawlNodesTotal    = "app_crawl_nodes_total"
	CrawlDuration      = "app_crawl_duration_ms"
	CredentialsActive  = "app_credentials_active"
	ServerStartTime    = "app_server_start_time_seconds"
	HealthCheckTotal   = "app_health_check_total"
	HealthCheckLatency = "app_health_check_duration_ms"
)

// RecordOperation records one scheduled call with its outcome.
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			OperationsTotal,
			1,
			map[string]string{
				"operation": operation,
				"status":    status,
			},
		)
	}
}

// RecordOperationError records a classified scheduler failure.
func RecordOperationError(operation string, errorType string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			OperationsErrorsTotal,
			1,
			map[string]string{
				"operation":  operation,
				"error_type": errorType,
			},
		)
	}
}

// RecordCrawl records the outcome of one industry-group crawl.
func RecordCrawl(nodes int, duration time.Duration) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			CrawlNodesTotal,
			float64(nodes),
			nil,
		)
		_ = observability.TelemetrySystem.Histogram(
			CrawlDuration,
			duration,
			nil,
		)
	}
}

// SetCredentialsActive reports how many credentials survived quota probing.
func SetCredentialsActive(count int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			CredentialsActive,
			float64(count),
			nil,
		)
	}
}

// RecordHealthCheck records a health check execution.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)
		_ = observability.TelemetrySystem.Histogram(
			HealthCheckLatency,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time as a unix timestamp.
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}
