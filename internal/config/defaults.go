package config

import "jim/internal/store"

const (
	SchemaVersion = 1

	// AppName names the per-user data and config subdirectories.
	AppName = "jim"
)

// DefaultConfig returns a fully-populated v1 config document.
func DefaultConfig() Config {
	return Config{
		Version: SchemaVersion,
		Logging: LoggingConfig{
			Level:  "off",
			Format: "text",
		},
		Install: InstallConfig{
			ArchiveSuffixes: append([]string(nil), store.DefaultArchiveSuffixes...),
		},
	}
}
