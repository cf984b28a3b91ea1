// Package catalogid defines the DLSite catalog identifier grammar and the
// pure functions that normalize and extract identifiers.
//
// The canonical form is an uppercase RJ or RE prefix followed by six or more
// digits. Path extraction additionally recognizes the BJ, VJ, and RG prefixes
// that appear in downloaded folder names, but only RJ/RE identifiers are
// accepted for library records and metadata lookups.
//
// Keep new identifier heuristics here so the scanner, the reconcile engine,
// and manual entry all agree on what counts as a valid catalog ID.
package catalogid
