// Package logging provides structured logging using uber/zap.
//
// This package offers two modes:
//   - Production: JSON output on stderr for machine parsing
//   - Development: Colored console output for human readability
//
// sandfs is a library, so the default level is warn and nothing is written to
// stdout. Node operations log at debug on success and at warn on failure.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Warn("copy failed", zap.String("path", p), zap.Error(err))
package logging
