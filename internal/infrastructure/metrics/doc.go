// Package metrics records exposure summary measurements to InfluxDB.
//
// A point is written after each successful configuration save with the
// resolved outcome counts. Metrics are optional; when InfluxDB is
// disabled in config, Connect returns ErrDisabled and callers run
// without a client.
package metrics
