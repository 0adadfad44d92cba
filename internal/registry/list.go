package registry

import (
	"io/fs"
	"os"

	"jim/internal/store"
)

// List returns the installed instance names in lexical order. Symlinks,
// including the current selection, and plain files are not instances.
func (r *Registry) List() ([]string, error) {
	entries, err := os.ReadDir(r.Root)
	if err != nil {
		return nil, store.IOError("REG_LIST", r.Root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 || !e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
