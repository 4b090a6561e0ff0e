// Package config provides configuration helpers for helimix commands.
package config

import "os"

// Default service configuration.
const (
	DefaultTelemetryPort = "8070"
	DefaultMetricsAddr   = ":9971"
	DefaultParamsPath    = "params.yaml"
)

// TelemetryPort returns the telemetry port from HELIMIX_PORT env var.
// Falls back to the default if not set.
func TelemetryPort() string {
	if port := os.Getenv("HELIMIX_PORT"); port != "" {
		return port
	}
	return DefaultTelemetryPort
}

// MetricsAddr returns the prometheus listen address from HELIMIX_METRICS_ADDR.
func MetricsAddr() string {
	if addr := os.Getenv("HELIMIX_METRICS_ADDR"); addr != "" {
		return addr
	}
	return DefaultMetricsAddr
}

// ParamsPath returns the parameter file path from HELIMIX_PARAMS env var.
// Falls back to the provided default if not set.
func ParamsPath(defaultPath string) string {
	if path := os.Getenv("HELIMIX_PARAMS"); path != "" {
		return path
	}
	if defaultPath != "" {
		return defaultPath
	}
	return DefaultParamsPath
}
