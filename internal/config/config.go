package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"jim/internal/fsutil"
)

// Load reads path (a missing file yields defaults) and applies environment
// overrides: JIM_DIR, LOG_LEVEL and JIM_<SECTION>_<KEY> for every key.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("CFG_PARSE: %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("CFG_DECODE: %w", err)
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	def := DefaultConfig()
	v := viper.New()
	v.SetDefault("version", def.Version)
	v.SetDefault("storage.root", def.Storage.Root)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("install.jobs", def.Install.Jobs)
	v.SetDefault("install.archive_suffixes", def.Install.ArchiveSuffixes)

	v.SetEnvPrefix("JIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("storage.root", "JIM_DIR", "JIM_STORAGE_ROOT")
	_ = v.BindEnv("logging.level", "LOG_LEVEL", "JIM_LOGGING_LEVEL")
	return v
}

func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return err
	}

	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	blob, err := Encode(cfg)
	if err != nil {
		return err
	}
	return fsutil.AtomicWrite(path, blob, 0o644)
}

// Init writes the default config to path unless a file is already there.
func Init(path string, force bool) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil && !force {
		return Config{}, fmt.Errorf("CFG_EXISTS: %s already exists (use --force to overwrite)", path)
	}
	cfg := DefaultConfig()
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Encode(cfg Config) ([]byte, error) {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("CFG_ENCODE: %w", err)
	}
	return blob, nil
}
