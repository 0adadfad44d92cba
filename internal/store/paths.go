package store

import (
	"path/filepath"
	"strings"
)

// CurrentName is the selection link inside the store root.
const CurrentName = "current"

const tempLinkPrefix = "." + CurrentName + "-"

func InstancePath(root, name string) string {
	return filepath.Join(root, name)
}

func CurrentPath(root string) string {
	return filepath.Join(root, CurrentName)
}

// IsTempLink reports whether an entry name belongs to an in-flight selection swap.
func IsTempLink(name string) bool {
	return strings.HasPrefix(name, tempLinkPrefix) && strings.HasSuffix(name, ".tmp")
}

func TempLinkName(token string) string {
	return tempLinkPrefix + token + ".tmp"
}
