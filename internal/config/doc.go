// Package config loads, normalizes, and validates pagewright configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the PAGEWRIGHT_INITIAL_KEY
// environment fallback. The Config type centralizes every knob the CLI and the
// reconstruction pipeline need so output, cache, and log directories are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
