package metrics

import "errors"

// Sentinel errors for metrics operations. Check with errors.Is.
var (
	// ErrDisabled is returned by Connect when InfluxDB is disabled in config.
	ErrDisabled = errors.New("metrics: influxdb disabled in configuration")

	// ErrConnectionFailed is returned when the initial connection fails.
	ErrConnectionFailed = errors.New("metrics: connection failed")
)
