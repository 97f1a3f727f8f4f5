// Package paths resolves the configuration directory and the store file
// location for the pantry CLI.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// appName names the per-user configuration directory.
const appName = "pantry"

// DefaultDataFileName is the CWD-relative store file used when nothing else
// is configured.
const DefaultDataFileName = "pantry.json"

// Environment variable names for overrides.
const (
	EnvConfigDir = "PANTRY_CONFIG_DIR"
	EnvDataFile  = "PANTRY_DATA_FILE"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/pantry (fallback ~/.config/pantry)
// macOS:   ~/Library/Application Support/pantry
// Windows: %APPDATA%/pantry
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appName), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > PANTRY_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataFile returns the store file following the precedence chain:
// flag > configYAMLValue > PANTRY_DATA_FILE env > $(CWD)/pantry.json.
func ResolveDataFile(flag, configYAMLValue string) (string, error) {
	for _, candidate := range []string{flag, configYAMLValue, os.Getenv(EnvDataFile)} {
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataFileName), nil
}
