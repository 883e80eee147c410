// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const appName = "shiftmeter"

// DataDirEnv overrides the data directory.
const DataDirEnv = "SHIFTMETER_DATA_DIR"

// LoadEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(".env")
}

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DataDir returns the directory holding persisted state.
func DataDir() string {
	if v := os.Getenv(DataDirEnv); v != "" {
		return v
	}
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultStatePath returns the default state file path for a file extension.
func DefaultStatePath(ext string) string {
	return filepath.Join(DataDir(), appName+ext)
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}
