// Package config loads and validates aircheck configuration.
//
// Configuration lives in a single TOML file resolved from an explicit path,
// ~/.config/aircheck/config.toml, or ./aircheck.toml in that order. Defaults
// cover every field so the daemon runs with an empty file; Load expands and
// normalizes all path fields before validation.
package config
