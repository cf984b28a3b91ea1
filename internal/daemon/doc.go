// Package daemon coordinates the long-running Dust process.
//
// It wires configuration, the library store, and the application facade into
// a single lifecycle with flock-based locking to prevent multiple instances.
// The daemon owns the local HTTP API and the optional library watcher that
// triggers debounced rescans when game folders appear or disappear.
//
// Keep orchestration logic here: library semantics live in internal/api and
// below while the daemon focuses on startup, shutdown, and high level
// coordination.
package daemon
