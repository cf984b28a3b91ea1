// Package api is the service facade shared by the CLI, the IPC server, and
// the HTTP API. It owns the transport-friendly DTOs and the operations the
// daemon exposes, so every surface speaks about games in the same shape.
//
// # Key Types
//
// GameView: transport representation of a library record with camelCase JSON
// tags for desktop-shell consumers. Timestamps use RFC3339 with milliseconds.
//
// ScanSummary: outcome of a scan or import pass including per-directory
// failures.
//
// LaunchInfo: the prepared launch handoff. The daemon never spawns game
// processes; the desktop shell receives the executable path, working
// directory, and a session token to report back on exit.
//
// StatusInfo: daemon version, uptime, library counts, and filesystem usage.
//
// # Design Notes
//
// Write operations run the reconciliation engine rather than touching the
// store directly, so the HTTP API and the CLI share identical duplicate and
// merge semantics. Errors keep their services sentinel markers; transports
// map those to status codes.
package api
