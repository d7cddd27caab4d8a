// Package logging provides structured logging for acectl.
//
// This package wraps a global zap logger with convenience functions used
// throughout the client. Logging is silent by default so that one-shot CLI
// commands and the TUI produce clean output; verbosity is enabled with
// --log-level, the log section of the config file, or ACECTL_LOG_LEVEL.
//
// # Log Levels
//
//   - Debug: raw WebSocket frames, merge details, poll ticks
//   - Info: connection events, dispatched commands, refreshes
//   - Warn: malformed messages, rejected payloads, poll failures
//   - Error: command failures and API errors
//
// # Outputs
//
// Console output goes to stderr in zap's development console format. When a
// log file is configured, JSON lines are also written through a rotating
// lumberjack writer (10 MB per file, 3 backups, 28 days).
//
//	if err := logging.InitializeWithOptions(logging.Options{
//	    Level:   "debug",
//	    File:    "/tmp/acectl.log",
//	    Console: true,
//	}); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Specialized Logging
//
//	logging.LogConnection(wsURL, "open")
//	logging.LogWebSocketMessage("received", payload)
//	logging.LogCommand(requestID, "ACE_FEED", params)
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialization has
// completed. Initialize before starting any goroutines.
package logging
