package config

import (
	"fmt"
	"strings"
)

var allowedLogLevels = map[string]struct{}{
	"off":     {},
	"panic":   {},
	"fatal":   {},
	"error":   {},
	"warn":    {},
	"warning": {},
	"info":    {},
	"debug":   {},
	"trace":   {},
}

var allowedLogFormats = map[string]struct{}{
	"text": {},
	"json": {},
}

func Validate(cfg Config) error {
	if cfg.Version != SchemaVersion {
		return fmt.Errorf("CFG_VERSION: unsupported version %d", cfg.Version)
	}
	if _, ok := allowedLogLevels[cfg.Logging.Level]; !ok {
		return fmt.Errorf("CFG_LOGGING: unknown log level %q", cfg.Logging.Level)
	}
	if _, ok := allowedLogFormats[cfg.Logging.Format]; !ok {
		return fmt.Errorf("CFG_LOGGING: unknown log format %q", cfg.Logging.Format)
	}
	if cfg.Install.Jobs < 0 {
		return fmt.Errorf("CFG_INSTALL: jobs must not be negative, got %d", cfg.Install.Jobs)
	}
	for _, s := range cfg.Install.ArchiveSuffixes {
		if strings.Trim(strings.TrimSpace(s), ".") == "" {
			return fmt.Errorf("CFG_INSTALL: empty archive suffix")
		}
	}
	return nil
}
