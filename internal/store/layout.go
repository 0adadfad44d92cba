package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureLayout creates the store root if it is missing and returns its
// absolute, symlink-resolved form.
func EnsureLayout(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("STORE_ROOT_EMPTY: store root is not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("STORE_ROOT_RESOLVE: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("STORE_ROOT_CREATE: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("STORE_ROOT_RESOLVE: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("STORE_ROOT_RESOLVE: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("STORE_ROOT_NOT_DIR: %s is not a directory", resolved)
	}
	return resolved, nil
}
