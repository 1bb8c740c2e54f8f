// Package logging provides structured logging for Exposure Core.
//
// It wraps log/slog with configuration-driven level, format, and output
// selection, plus default fields (service, version) on every record.
//
// Usage:
//
//	log := logging.New(cfg.Logging, version)
//	log.Info("configuration loaded", "path", configPath)
package logging
