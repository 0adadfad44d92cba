// Package registry implements the instance store: one directory per
// installed instance under a root, plus a "current" symlink naming the
// selected one. The directory listing is the only state; nothing is cached.
package registry

import (
	"github.com/sirupsen/logrus"

	"jim/internal/installer"
	"jim/internal/logging"
	"jim/internal/store"
)

type Registry struct {
	Root      string
	Deriver   *store.Deriver
	Installer *installer.Service
	Log       logrus.FieldLogger
}

// New returns a registry rooted at root. root must already exist; see
// store.EnsureLayout.
func New(root string, deriver *store.Deriver, jobs int, log logrus.FieldLogger) *Registry {
	if log == nil {
		log = logging.Discard()
	}
	if deriver == nil {
		deriver = store.NewDeriver(store.DefaultArchiveSuffixes)
	}
	return &Registry{
		Root:      root,
		Deriver:   deriver,
		Installer: &installer.Service{Root: root, Jobs: jobs, Log: log},
		Log:       log,
	}
}
