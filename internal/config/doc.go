// Package config loads, normalizes, and validates the TOML configuration
// for epimatch. Defaults are defined in defaults.go and every path field is
// expanded to an absolute path during Load.
package config
