// Package services defines shared utilities consumed by the library add flow
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp game record IDs, add-attempt IDs, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent (recoverable metadata misses vs terminal
//     validation and persistence errors).
//
// Use these helpers when wiring new components so operational behaviour (error
// handling, observability) stays uniform across the daemon and CLI.
package services
