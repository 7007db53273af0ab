// Package util collects small cross-cutting helpers used by several
// core components: XDG-compliant path resolution, fingerprint display
// formatting, and environment/TTY detection.
package util

import (
	"os"
	"os/user"
	"path/filepath"
)

// XDGPaths holds the directories the core reads configuration and state
// from, honoring the XDG base directory environment variables when set.
type XDGPaths struct {
	ConfigHome string
	DataHome   string
}

// NewXDGPaths resolves XDG_CONFIG_HOME/XDG_DATA_HOME, falling back to
// ~/.config and ~/.local/share when unset.
func NewXDGPaths() (XDGPaths, error) {
	home, err := homeDir()
	if err != nil {
		return XDGPaths{}, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	return XDGPaths{ConfigHome: configHome, DataHome: dataHome}, nil
}

func homeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

// ConfigPath returns the path to the core's config file.
func (p XDGPaths) ConfigPath() string {
	return filepath.Join(p.ConfigHome, "prs", "config.yml")
}

// EnsureDirs creates the config directory with owner-only permissions.
func (p XDGPaths) EnsureDirs() error {
	return os.MkdirAll(filepath.Join(p.ConfigHome, "prs"), 0o700)
}

// DefaultStoreDir returns the default password store location,
// honoring PASSWORD_STORE_DIR, else ~/.password-store.
func DefaultStoreDir() (string, error) {
	if dir := os.Getenv("PASSWORD_STORE_DIR"); dir != "" {
		return ExpandPath(dir)
	}
	home, err := homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".password-store"), nil
}

// ExpandPath expands a leading "~" and environment variable references
// in path.
func ExpandPath(path string) (string, error) {
	if path == "~" || filepathHasPrefix(path, "~/") {
		home, err := homeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, path[2:]), nil
	}
	return os.ExpandEnv(path), nil
}

func filepathHasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
