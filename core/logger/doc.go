// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production).
//
// # Run Correlation
//
// Sync runs are identified by a UUID persisted in the sync_runs audit table.
// The WithRunID helper attaches that identifier to the logger so that all
// logs emitted during a run can be correlated with its audit row.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
package logger
