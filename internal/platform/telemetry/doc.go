// Package telemetry configures OpenTelemetry tracing for the service. When
// tracing is enabled, finished spans are written to the structured log; when
// it is disabled, a no-op provider is used and instrumentation costs nothing.
package telemetry
