// Package config loads, normalizes, and validates cutmark configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CUTMARK_BIND. The Config type centralizes every knob the server and CLI
// need: the CORS allow-list, cut detection defaults, decoder binaries, the
// history database, and figure output locations.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
