package doctor

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"jim/internal/config"
	"jim/internal/store"
)

const (
	LevelError = "error"
	LevelWarn  = "warn"
	LevelInfo  = "info"
)

type Finding struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type Report struct {
	Healthy   bool      `json:"healthy"`
	StoreRoot string    `json:"storeRoot"`
	Selected  string    `json:"selected,omitempty"`
	Instances int       `json:"instances"`
	Findings  []Finding `json:"findings"`
}

// Service checks a store root and its config file without modifying either.
type Service struct {
	ConfigPath string
	StoreRoot  string
}

func (s *Service) Run(ctx context.Context) Report {
	report := Report{StoreRoot: s.StoreRoot, Findings: []Finding{}}
	add := func(code, level, msg string) {
		report.Findings = append(report.Findings, Finding{Code: code, Level: level, Message: msg})
	}

	if s.ConfigPath != "" {
		if _, err := os.Stat(s.ConfigPath); err == nil {
			if _, err := config.Load(s.ConfigPath); err != nil {
				add("DOC_CONFIG_INVALID", LevelError, err.Error())
			}
		}
	}

	s.checkStore(ctx, &report, add)

	report.Healthy = true
	for _, f := range report.Findings {
		if f.Level == LevelError {
			report.Healthy = false
			break
		}
	}
	return report
}

func (s *Service) checkStore(ctx context.Context, report *Report, add func(code, level, msg string)) {
	info, err := os.Stat(s.StoreRoot)
	if errors.Is(err, fs.ErrNotExist) {
		add("DOC_STORE_MISSING", LevelError, "store root "+s.StoreRoot+" does not exist")
		return
	}
	if err != nil {
		add("DOC_STORE_MISSING", LevelError, err.Error())
		return
	}
	if !info.IsDir() {
		add("DOC_STORE_NOT_DIR", LevelError, "store root "+s.StoreRoot+" is not a directory")
		return
	}

	entries, err := os.ReadDir(s.StoreRoot)
	if err != nil {
		add("DOC_STORE_MISSING", LevelError, err.Error())
		return
	}
	for _, e := range entries {
		if ctx.Err() != nil {
			return
		}
		name := e.Name()
		switch {
		case name == store.CurrentName:
			s.checkSelection(report, add)
		case store.IsTempLink(name):
			add("DOC_STRAY_ENTRY", LevelWarn, "leftover selection temp link "+name)
		case e.IsDir():
			report.Instances++
		default:
			add("DOC_STRAY_ENTRY", LevelWarn, name+" is not an instance directory")
		}
	}
	if report.Selected == "" && !hasFinding(report, "DOC_SELECTION_") {
		add("DOC_SELECTION_UNSET", LevelInfo, "no instance is selected")
	}
}

func (s *Service) checkSelection(report *Report, add func(code, level, msg string)) {
	link := store.CurrentPath(s.StoreRoot)
	info, err := os.Lstat(link)
	if err != nil {
		add("DOC_SELECTION_NOT_LINK", LevelError, err.Error())
		return
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		add("DOC_SELECTION_NOT_LINK", LevelError, link+" is not a symlink")
		return
	}
	target, err := os.Readlink(link)
	if err != nil {
		add("DOC_SELECTION_NOT_LINK", LevelError, err.Error())
		return
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.StoreRoot, target)
	}
	target = filepath.Clean(target)
	if filepath.Dir(target) != filepath.Clean(s.StoreRoot) {
		add("DOC_SELECTION_OUTSIDE_STORE", LevelError, "selection points at "+target+", outside the store root")
		return
	}
	if st, err := os.Stat(target); err != nil || !st.IsDir() {
		add("DOC_SELECTION_DANGLING", LevelError, "selection points at missing instance "+filepath.Base(target))
		return
	}
	report.Selected = filepath.Base(target)
}

func hasFinding(report *Report, prefix string) bool {
	for _, f := range report.Findings {
		if strings.HasPrefix(f.Code, prefix) {
			return true
		}
	}
	return false
}
