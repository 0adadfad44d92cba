package config

// Config is the v1 schema of config.toml.
type Config struct {
	Version int           `toml:"version" mapstructure:"version" json:"version"`
	Storage StorageConfig `toml:"storage" mapstructure:"storage" json:"storage"`
	Logging LoggingConfig `toml:"logging" mapstructure:"logging" json:"logging"`
	Install InstallConfig `toml:"install" mapstructure:"install" json:"install"`
}

type StorageConfig struct {
	// Root is the store root. Empty means the platform data directory.
	Root string `toml:"root" mapstructure:"root" json:"root"`
}

type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level" json:"level"`
	Format string `toml:"format" mapstructure:"format" json:"format"`
}

type InstallConfig struct {
	// Jobs bounds concurrent copies during add. Zero means GOMAXPROCS.
	Jobs            int      `toml:"jobs" mapstructure:"jobs" json:"jobs"`
	ArchiveSuffixes []string `toml:"archive_suffixes" mapstructure:"archive_suffixes" json:"archiveSuffixes"`
}
