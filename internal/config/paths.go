package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath overrides config file discovery entirely.
	EnvConfigPath = "KINTREE_CONFIG"

	// ConfigFileName is the per-project config file looked up in the
	// working directory.
	ConfigFileName = "kintree.toml"

	// ConfigDirName is the directory under the user config root.
	ConfigDirName = "kintree"
)

// FindConfigPath returns the first config file that exists, or empty string.
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	if fileExists(ConfigFileName) {
		return ConfigFileName
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		path := filepath.Join(xdg, ConfigDirName, "config.toml")
		if fileExists(path) {
			return path
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", ConfigDirName, "config.toml")
		if fileExists(path) {
			return path
		}
	}

	path := filepath.Join("/etc", ConfigDirName, "config.toml")
	if fileExists(path) {
		return path
	}

	return ""
}

// DefaultConfigPath returns where a new config file should be written.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, ConfigDirName, "config.toml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ConfigFileName)
	}

	return filepath.Join(home, ".config", ConfigDirName, "config.toml")
}

// EnsureConfigDir creates the parent directory of path if needed.
func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
