// Package paths provides centralized path handling for instkit.
// It follows the XDG Base Directory specification for the configuration
// and log locations, with INSTKIT_* environment overrides.
package paths
