package store

import (
	"os"
	"sort"
	"strings"
)

// DefaultArchiveSuffixes are recognized when deriving a name from an archive file.
var DefaultArchiveSuffixes = []string{
	".tar.gz", ".tar.xz", ".tar.bz2", ".tar.zst",
	".tgz", ".txz", ".tbz2",
	".tar", ".zip", ".7z", ".gz", ".xz",
}

// Deriver maps input paths to instance names without touching the filesystem.
type Deriver struct {
	suffixes []string
}

// NewDeriver normalizes suffixes (lower-case, leading dot, no duplicates) and
// orders them longest first so ".tar.gz" wins over ".gz".
func NewDeriver(suffixes []string) *Deriver {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == "." {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return &Deriver{suffixes: out}
}

func (d *Deriver) Suffixes() []string {
	return append([]string(nil), d.suffixes...)
}

// Derive returns the instance name for path: the final component with a
// recognized archive suffix stripped, or the final component verbatim.
func (d *Deriver) Derive(path string) (string, error) {
	base := finalComponent(path)
	if base == "" {
		return "", NewError("REG_INVALID_NAME", ErrInvalidName, path, "path has no final component", nil)
	}
	name := base
	if suffix := d.matchSuffix(base); suffix != "" {
		name = base[:len(base)-len(suffix)]
	}
	if problem := nameProblem(name); problem != "" {
		return "", NewError("REG_INVALID_NAME", ErrInvalidName, path, problem, nil)
	}
	return name, nil
}

func (d *Deriver) matchSuffix(base string) string {
	for _, suffix := range d.suffixes {
		if len(base) < len(suffix) {
			continue
		}
		if strings.EqualFold(base[len(base)-len(suffix):], suffix) {
			return suffix
		}
	}
	return ""
}

// ValidateName rejects names that cannot live directly under the store root.
func ValidateName(name string) error {
	if problem := nameProblem(name); problem != "" {
		return NewError("REG_INVALID_NAME", ErrInvalidName, "", problem, nil)
	}
	return nil
}

func nameProblem(name string) string {
	switch {
	case name == "":
		return "empty instance name"
	case name == "." || name == "..":
		return "instance name " + name + " is not allowed"
	case name == CurrentName || IsTempLink(name):
		return "instance name " + name + " is reserved"
	case strings.ContainsRune(name, 0) || strings.IndexFunc(name, isSeparator) >= 0:
		return "instance name " + name + " contains a path separator"
	}
	return ""
}

func finalComponent(path string) string {
	path = strings.TrimRightFunc(path, isSeparator)
	if i := strings.LastIndexFunc(path, isSeparator); i >= 0 {
		path = path[i+1:]
	}
	// drop a bare volume such as "C:"
	if len(path) == 2 && path[1] == ':' && os.PathSeparator == '\\' {
		return ""
	}
	return path
}

func isSeparator(r rune) bool {
	return r == '/' || (r < 0x80 && os.IsPathSeparator(uint8(r)))
}
