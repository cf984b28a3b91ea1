// Package reconcile drives a single add-or-update attempt from raw user
// input to a committed library record.
//
// The engine walks a fixed set of states: identifier resolution from the
// executable path, optional metadata fetch, duplicate detection against the
// current library, an optional user decision when a duplicate is found, and
// one committing transaction. Fetch failures are recoverable and return the
// attempt to manual identifier entry; cancellation is terminal and leaves
// the library untouched. Engines are single use and not safe for concurrent
// callers. Concurrent attempts each construct their own engine and rely on
// the store to serialize their commits.
package reconcile
