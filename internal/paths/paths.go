// Package paths resolves where rolodex keeps its config.yaml and where the
// reference server keeps its database.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "rolodex"

// File and directory names.
const (
	ConfigFileName     = "config.yaml"
	DatabaseFileName   = "contacts.db"
	DefaultDataDirName = ".rolodex-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "ROLODEX_CONFIG_DIR"
	EnvDataDir   = "ROLODEX_DATA_DIR"
)

// platformDir holds platform lookups that tests override.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
	getwd         func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
	getwd:         os.Getwd,
}

// DefaultConfigDir returns the platform default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/rolodex (fallback ~/.config/rolodex)
// Others:  os.UserConfigDir()/rolodex
func DefaultConfigDir() (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", fmt.Errorf("locating user config dir: %w", err)
		}
		return filepath.Join(dir, appName), nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", fmt.Errorf("locating home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ResolveConfigDir picks the configuration directory:
// flag > ROLODEX_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	return firstAbs(DefaultConfigDir, flag, os.Getenv(EnvConfigDir))
}

// ResolveDataDir picks the reference server's data directory:
// flag > config.yaml server.data_dir > ROLODEX_DATA_DIR > $(CWD)/.rolodex-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	return firstAbs(func() (string, error) {
		cwd, err := platformDir.getwd()
		if err != nil {
			return "", fmt.Errorf("locating working dir: %w", err)
		}
		return filepath.Join(cwd, DefaultDataDirName), nil
	}, flag, configValue, os.Getenv(EnvDataDir))
}

// firstAbs returns the first non-empty candidate made absolute, or the
// result of fallback when all are empty.
func firstAbs(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}

// ConfigFile returns the config.yaml path inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// DatabaseFile returns the SQLite file path inside dataDir.
func DatabaseFile(dataDir string) string {
	return filepath.Join(dataDir, DatabaseFileName)
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
