// Package scanner discovers games on disk and feeds them through the
// reconciliation flow without user interaction.
//
// A game is a first-level directory under the library root. Directories
// carrying a dustgrain.json sidecar are rehydrated from the document;
// bare directories go through executable discovery and catalog identifier
// extraction before being reconciled as fresh candidates. Scans and imports
// process one directory at a time and honour context cancellation between
// directories, so a partial result always reflects fully committed work.
//
// Executable discovery ranks candidates the same way regardless of how a
// directory was found, keeping scan, import, and manual add behaviour
// consistent.
package scanner
