// Package logging provides structured logging for wololo.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the CLI and the MQTT service.
//
// # Features
//
//   - JSON output for the long-running service (machine-parsable)
//   - Text output for interactive use (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "text"     # json, text
//	  output: "stderr"   # stdout, stderr, discard
//
// Command output goes to stdout, so the default destination is stderr.
//
// # Usage
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("device added", "name", d.Name)
//	logger.Error("write-back failed", "error", err)
//
// *Logger satisfies the small Logger interfaces declared by the device,
// mqtt and service packages.
//
// Attributes named password, token or secret are redacted by the handler.
package logging
