package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"jim/internal/fsutil"
	"jim/internal/store"
)

// Get returns the selected instance. ok is false when no selection exists.
// A selection that is not a symlink, has no usable target, or points at a
// missing instance is reported as ErrCorruptSelection.
func (r *Registry) Get() (name string, ok bool, err error) {
	link := store.CurrentPath(r.Root)
	info, err := os.Lstat(link)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, corrupt(link, "cannot read selection", err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return "", false, corrupt(link, "selection is not a symlink", nil)
	}
	target, err := os.Readlink(link)
	if err != nil {
		return "", false, corrupt(link, "cannot read selection target", err)
	}
	name = filepath.Base(filepath.Clean(target))
	if target == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false, corrupt(link, fmt.Sprintf("selection target %q has no instance name", target), nil)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(r.Root, target)
	}
	if st, err := os.Stat(target); err != nil || !st.IsDir() {
		return "", false, corrupt(link, fmt.Sprintf("selection points at missing instance %s", name), err)
	}
	return name, true, nil
}

// Set selects name. The swap is atomic on platforms where rename replaces
// a symlink; a missing instance leaves the previous selection in place.
// Concurrent Set calls on one root are not coordinated.
func (r *Registry) Set(name string) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	instance := store.InstancePath(r.Root, name)
	log := r.Log.WithFields(logrus.Fields{"instance": name})
	log.Debug("searching for instance")
	info, err := os.Lstat(instance)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return store.IOError("REG_SELECT_LOOKUP", instance, err)
	}
	if err != nil || !info.IsDir() {
		return store.NewError("REG_INSTANCE_NOT_FOUND", store.ErrInstanceNotFound, "", fmt.Sprintf("instance %s does not exist", name), nil)
	}

	link := store.CurrentPath(r.Root)
	if isLink, err := fsutil.IsSymlink(link); err == nil && !isLink {
		return store.NewError("REG_SELECT_SWAP", store.ErrIO, link, "current exists and is not a symlink; refusing to replace it", nil)
	}
	tmp := filepath.Join(r.Root, store.TempLinkName(uuid.NewString()))
	if err := fsutil.ReplaceSymlink(instance, link, tmp); err != nil {
		msg := "failed to update current symlink"
		if errors.Is(err, fsutil.ErrLinkLost) {
			msg += "; no instance is selected now"
		}
		return store.NewError("REG_SELECT_SWAP", store.ErrIO, link, msg, err)
	}
	log.Info("set current instance")
	return nil
}

func corrupt(link, msg string, err error) error {
	return store.NewError("REG_CORRUPT_SELECTION", store.ErrCorruptSelection, link, msg, err)
}
