// Package paths resolves where basket keeps its config file and its data.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "basket"

// ConfigFileName is the file read from the config directory.
const ConfigFileName = "config.yaml"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// overrides it.
const DefaultDataDirName = ".basket-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "BASKET_CONFIG_DIR"
	EnvDataDir   = "BASKET_DATA_DIR"
)

// platformDir holds platform lookups so tests can replace them.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $xdgEnv/basket, or ~/fallback.../basket when the variable
// is unset.
func xdgDir(xdgEnv string, fallback ...string) (string, error) {
	if xdg := os.Getenv(xdgEnv); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/basket (fallback ~/.config/basket)
// macOS:   ~/Library/Application Support/basket
// Windows: %APPDATA%/basket
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the per-user data directory. On Linux it is
// $XDG_DATA_HOME/basket (fallback ~/.local/share/basket); elsewhere it is the
// config directory.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	return DefaultConfigDir()
}

// firstAbs returns the first non-empty candidate as an absolute path.
func firstAbs(candidates ...string) (string, bool, error) {
	for _, c := range candidates {
		if c != "" {
			p, err := filepath.Abs(c)
			return p, true, err
		}
	}
	return "", false, nil
}

// ResolveConfigDir applies flag > BASKET_CONFIG_DIR > DefaultConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if p, ok, err := firstAbs(flag, os.Getenv(EnvConfigDir)); ok {
		return p, err
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies flag > data_dir from config.yaml > BASKET_DATA_DIR
// > $(CWD)/.basket-db. The per-user DefaultDataDir is never chosen
// implicitly, so each working directory gets its own storefront state.
func ResolveDataDir(flag, configValue string) (string, error) {
	if p, ok, err := firstAbs(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return p, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile returns the config file path inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}
