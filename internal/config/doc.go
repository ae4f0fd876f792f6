// Package config loads and validates the options of a batch run.
//
// Options come from three layers, lowest precedence first:
//   - built-in defaults (Defaults)
//   - an optional config file in YAML (.yaml, .yml) or TOML (.toml)
//   - command-line flags, applied by the cli package on top of Load's result
//
// Unknown keys in a config file are rejected so typos surface early instead
// of silently falling back to defaults.
package config
