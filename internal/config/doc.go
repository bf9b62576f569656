// Package config loads, normalizes, and validates the TOML configuration
// that drives scribe runs.
package config
