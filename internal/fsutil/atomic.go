package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWrite writes data to a uniquely named sibling of path, syncs it and
// renames it into place. The temp file is removed on any failure.
func AtomicWrite(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create tmp: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync tmp: %w", err)
	}
	if err = tmp.Chmod(perm); err != nil {
		return fmt.Errorf("chmod tmp: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close tmp: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}
