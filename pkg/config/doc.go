// Package config handles configuration management for instkit.
// It layers the embedded defaults, an optional user TOML file,
// INSTKIT_ environment variables and programmatic overrides.
package config
