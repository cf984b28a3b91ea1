// Package config loads, normalizes, and validates Dust configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DUST_API_TOKEN. The Config type centralizes every knob the daemon and CLI
// need, allowing the library root, data directories, and DLSite endpoint
// settings to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
