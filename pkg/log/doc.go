// Package log provides structured event logging for the repeater.
//
// This package defines the Logger interface and Event type for capturing
// repeater lifecycle events (mirror started, stopped, skipped, failed). It is
// separate from operational logging - the event stream is a machine-readable
// trace of every state transition the engine makes.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	logger, _ := log.NewFileLogger("/var/log/bonjour-repeater/events.rlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # File Format
//
// Log files use CBOR encoding with integer-keyed events for compactness.
package log
