package config

import "strings"

func Normalize(cfg Config) Config {
	if cfg.Version == 0 {
		cfg.Version = SchemaVersion
	}
	cfg.Storage.Root = strings.TrimSpace(cfg.Storage.Root)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "off"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Install.ArchiveSuffixes == nil {
		cfg.Install.ArchiveSuffixes = DefaultConfig().Install.ArchiveSuffixes
	}
	return cfg
}
