// Package logs reads daemon log output for the CLI.
//
// Tail serves the socket API's offset-based file tailing; StreamClient
// fetches structured events from the daemon's HTTP log endpoint when the
// richer filtered view is wanted. Callers fall back from the stream to the
// file tail when the HTTP API is not reachable.
package logs
