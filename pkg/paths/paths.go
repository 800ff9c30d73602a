package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for instkit
	EnvConfigDir = "INSTKIT_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for instkit
	EnvStateDir = "INSTKIT_STATE_DIR"

	// EnvXDGStateHome is read directly so tests can redirect it after xdg has initialized
	EnvXDGStateHome = "XDG_STATE_HOME"

	// EnvXDGConfigHome is read directly for the same reason
	EnvXDGConfigHome = "XDG_CONFIG_HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used below every XDG base directory
	AppDirName = "instkit"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "instkit.log"

	// ManifestSuffix is appended to a volume base path to name its manifest
	ManifestSuffix = ".manifest.yaml"
)

// ConfigDir returns the instkit configuration directory.
// Priority: INSTKIT_CONFIG_DIR, $XDG_CONFIG_HOME/instkit, xdg.ConfigHome/instkit.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	if dir := os.Getenv(EnvXDGConfigHome); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the instkit state directory, where the log file lives.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	if dir := os.Getenv(EnvXDGStateHome); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// ConfigFilePath returns the default user configuration file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// LogFilePath returns the path to the log file
func LogFilePath() string {
	return filepath.Join(StateDir(), LogFileName)
}

// ManifestPath returns the manifest path that belongs to a volume set
func ManifestPath(volumeBase string) string {
	return volumeBase + ManifestSuffix
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
