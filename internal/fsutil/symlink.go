package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
)

// ErrLinkLost marks a failed swap after which link no longer exists.
var ErrLinkLost = errors.New("previous link removed")

// ReplaceSymlink points link at target by creating tmp first and renaming
// it over link, so readers see either the old or the new target. tmp must
// be in the same directory as link and must not exist.
//
// Windows cannot rename over an existing directory link; there the old link
// is removed first and a failure of the final rename leaves link absent.
func ReplaceSymlink(target, link, tmp string) error {
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create temp link: %w", err)
	}
	err := os.Rename(tmp, link)
	if err != nil && runtime.GOOS == "windows" {
		if ok, _ := IsSymlink(link); ok {
			if rmErr := os.Remove(link); rmErr != nil {
				err = rmErr
			} else if err = os.Rename(tmp, link); err != nil {
				err = fmt.Errorf("%w: %w", ErrLinkLost, err)
			}
		}
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("swap link: %w", err)
	}
	return nil
}

// IsSymlink reports whether path itself is a symbolic link.
func IsSymlink(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}
