package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"jim/internal/installer"
	"jim/internal/store"
)

// Result is the outcome of one add input.
type Result struct {
	Input       string        `json:"input"`
	Name        string        `json:"name,omitempty"`
	Source      string        `json:"source,omitempty"`
	Dest        string        `json:"dest,omitempty"`
	DuplicateOf string        `json:"duplicateOf,omitempty"`
	Elapsed     time.Duration `json:"elapsedNs,omitempty"`
	Err         error         `json:"-"`
}

// Installed reports whether this input produced a new instance.
func (r Result) Installed() bool {
	return r.Err == nil && r.DuplicateOf == ""
}

type candidate struct {
	idx  int
	key  string
	item installer.Item
}

// Add installs each input directory under its derived name. Inputs that
// resolve to the same canonical directory are installed once; the others
// are reported as duplicates. Distinct directories deriving the same name
// all fail with ErrNameCollision and none of them is installed. Remaining
// items are copied concurrently and fail independently.
//
// Results are in input order. The returned error joins every per-item
// error and is nil only if nothing failed.
func (r *Registry) Add(ctx context.Context, inputs []string) ([]Result, error) {
	results := make([]Result, len(inputs))
	cands := make([]candidate, 0, len(inputs))
	for i, input := range inputs {
		item, key, err := r.resolve(input)
		results[i] = Result{Input: input, Name: item.Name, Source: item.Source, Err: err}
		if err != nil {
			continue
		}
		cands = append(cands, candidate{idx: i, key: key, item: item})
	}

	keysByName := map[string]map[string]struct{}{}
	for _, c := range cands {
		if keysByName[c.item.Name] == nil {
			keysByName[c.item.Name] = map[string]struct{}{}
		}
		keysByName[c.item.Name][c.key] = struct{}{}
	}

	firstByKey := map[string]int{}
	todo := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if len(keysByName[c.item.Name]) > 1 {
			results[c.idx].Err = collisionError(c, cands)
			continue
		}
		if first, ok := firstByKey[c.key]; ok {
			results[c.idx].DuplicateOf = inputs[first]
			continue
		}
		firstByKey[c.key] = c.idx
		todo = append(todo, c)
	}

	items := make([]installer.Item, len(todo))
	for i, c := range todo {
		items[i] = c.item
	}
	r.Log.WithFields(logrus.Fields{"inputs": len(inputs), "installing": len(items)}).Debug("adding instances")
	for i, out := range r.Installer.Install(ctx, items) {
		res := &results[todo[i].idx]
		res.Dest = out.Dest
		res.Elapsed = out.Elapsed
		res.Err = out.Err
		if out.Err == nil {
			r.Log.WithFields(logrus.Fields{"instance": out.Name, "elapsed_ms": out.Elapsed.Milliseconds()}).Info("installed instance")
		}
	}

	var errs []error
	for _, res := range results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Input, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

// resolve derives the name from the lexically absolute input, so a
// symlinked input keeps its own name, and canonicalizes the source for
// duplicate detection.
func (r *Registry) resolve(input string) (installer.Item, string, error) {
	item := installer.Item{Input: input}
	abs, err := filepath.Abs(input)
	if err != nil {
		return item, "", store.IOError("REG_SOURCE_RESOLVE", input, err)
	}
	name, err := r.Deriver.Derive(abs)
	if err != nil {
		return item, "", err
	}
	item.Name = name

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return item, "", store.NewError("REG_SOURCE_MISSING", store.ErrIO, input, "input path does not exist", err)
		}
		return item, "", store.IOError("REG_SOURCE_RESOLVE", input, err)
	}
	item.Source = canonical
	info, err := os.Stat(canonical)
	if err != nil {
		return item, "", store.IOError("REG_SOURCE_RESOLVE", input, err)
	}
	if !info.IsDir() {
		return item, "", store.NewError("REG_UNSUPPORTED_SOURCE", store.ErrUnsupportedSource, input, "input is not a directory; archive extraction is not supported", nil)
	}
	if rel, err := filepath.Rel(canonical, r.Root); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return item, "", store.NewError("REG_UNSUPPORTED_SOURCE", store.ErrUnsupportedSource, input, "input contains the store root", nil)
	}
	return item, canonicalKey(canonical), nil
}

func collisionError(c candidate, cands []candidate) error {
	var others []string
	for _, o := range cands {
		if o.item.Name == c.item.Name && o.key != c.key {
			others = append(others, o.item.Input)
		}
	}
	msg := fmt.Sprintf("instance name %s is also derived from %s", c.item.Name, strings.Join(others, ", "))
	return store.NewError("REG_NAME_COLLISION", store.ErrNameCollision, "", msg, nil)
}

func canonicalKey(path string) string {
	switch runtime.GOOS {
	case "windows", "darwin":
		return strings.ToLower(path)
	}
	return path
}
