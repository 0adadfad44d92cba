package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultConfigPath honours JIM_CONFIG, then $XDG_CONFIG_HOME/jim/config.toml.
func DefaultConfigPath() string {
	if p := os.Getenv("JIM_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultStoreRoot is the per-user data directory plus the app subdirectory.
func DefaultStoreRoot() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// ResolveStoreRoot returns the cleaned store root for cfg. It does not touch
// the filesystem; store.EnsureLayout creates and canonicalizes it.
func ResolveStoreRoot(cfg Config) (string, error) {
	if cfg.Storage.Root == "" {
		return DefaultStoreRoot(), nil
	}
	expanded, err := ExpandPath(cfg.Storage.Root)
	if err != nil {
		return "", err
	}
	return filepath.Clean(expanded), nil
}
