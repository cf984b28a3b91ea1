// Package dlsite provides the minimal DLSite API client used during game
// identification.
//
// It queries the public product info endpoint for a canonical RJ/RE catalog
// identifier and exposes the subset of work metadata the add flow records:
// title, circle, genre tags, age rating, and cover image. Unknown identifiers
// surface as not-found errors and transport failures as recoverable metadata
// errors, so callers can fall back to manual entry instead of aborting.
// Options allow tests to supply custom HTTP clients or stub behaviour without
// modifying production code.
package dlsite
