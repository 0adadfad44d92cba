package app

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

const (
	SortByName    = "name"
	SortByVersion = "version"
)

var embeddedVersion = regexp.MustCompile(`\d+(?:\.\d+){0,2}`)

// SortInstances orders names in place. "version" compares the first dotted
// number embedded in each name (jdk-17.0.2 < jdk-21) and falls back to
// lexical order for ties and names without one, which sort first.
func SortInstances(names []string, by string) ([]string, error) {
	switch by {
	case "", SortByName:
		sort.Strings(names)
	case SortByVersion:
		sort.SliceStable(names, func(i, j int) bool {
			if c := semver.Compare(versionOf(names[i]), versionOf(names[j])); c != 0 {
				return c < 0
			}
			return names[i] < names[j]
		})
	default:
		return nil, fmt.Errorf("APP_SORT: unknown sort key %q (want name or version)", by)
	}
	return names, nil
}

// versionOf returns the canonical semver form of the version embedded in
// name, or "" when there is none.
func versionOf(name string) string {
	raw := embeddedVersion.FindString(name)
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ".")
	for i, p := range parts {
		if trimmed := strings.TrimLeft(p, "0"); trimmed != "" {
			parts[i] = trimmed
		} else {
			parts[i] = "0"
		}
	}
	return semver.Canonical("v" + strings.Join(parts, "."))
}
