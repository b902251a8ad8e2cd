// Package logging provides structured logging for gifveil.
//
// This package wraps a global zap logger with convenience functions for the
// events the CLI and its collaborators emit. Logging is silent unless
// GIFVEIL_LOG_LEVEL is set, so normal CLI output is never interleaved with
// log lines.
//
// # Log Levels
//
//   - Debug: Spread stream dumps, capacity layouts, per-frame details
//   - Info: File reads and writes, key registration
//   - Warn: Overridden checksum mismatches
//   - Error: Failed operations
//
// # Structured Logging
//
//	logging.Info("Cover loaded",
//	    zap.String("path", "cover.gif"),
//	    zap.Int("frames", 12),
//	)
//
// # Specialized Logging
//
//	logging.LogLayout("Capacity planned", layout)
//	logging.LogFileEvent("read", path, len(data))
//	logging.LogRawBytes("Header region", frame0[:end])
//
// The codec itself takes a *zap.Logger in its options; pass GetLogger()
// to route its debug output through the same sink.
//
// # Output Format
//
// Logs are written to stderr in console format:
//
//	2026-01-12T10:30:45.123+0100  DEBUG  Capacity planned
//	  bit_depth=2 frame_size=65536 frames_needed=1
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
