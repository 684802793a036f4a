// Package config loads, normalizes, and validates gtreg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GTREG_DATABASE_DSN. The Config type centralizes the store backend, the
// resolution thresholds, and logging options so the CLI and HTTP server
// discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
