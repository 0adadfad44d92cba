package app

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"jim/internal/config"
	"jim/internal/doctor"
	"jim/internal/logging"
	"jim/internal/registry"
	"jim/internal/store"
)

type Options struct {
	ConfigPath string
	// StoreRoot overrides storage.root from the config and environment.
	StoreRoot string
	// LogOutput receives log entries; defaults to os.Stderr.
	LogOutput io.Writer
}

type Service struct {
	ConfigPath string
	Config     config.Config
	StoreRoot  string
	Log        *logrus.Logger
	Doctor     *doctor.Service

	registry *registry.Registry
	deriver  *store.Deriver
}

// New loads configuration and wires the services. The store root is not
// touched until an operation needs it, so doctor can inspect a missing one.
func New(opts Options) (*Service, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if opts.StoreRoot != "" {
		cfg.Storage.Root = opts.StoreRoot
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger, err := logging.New(cfg.Logging, out)
	if err != nil {
		return nil, err
	}

	root, err := config.ResolveStoreRoot(cfg)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	logger.WithFields(logrus.Fields{"config": configPath, "root": root}).Debug("loaded configuration")

	return &Service{
		ConfigPath: configPath,
		Config:     cfg,
		StoreRoot:  root,
		Log:        logger,
		Doctor:     &doctor.Service{ConfigPath: configPath, StoreRoot: root},
		deriver:    store.NewDeriver(cfg.Install.ArchiveSuffixes),
	}, nil
}

// Registry creates the store root if needed and returns the registry on it.
func (s *Service) Registry() (*registry.Registry, error) {
	if s.registry != nil {
		return s.registry, nil
	}
	root, err := store.EnsureLayout(s.StoreRoot)
	if err != nil {
		return nil, err
	}
	s.StoreRoot = root
	s.Doctor.StoreRoot = root
	s.registry = registry.New(root, s.deriver, s.Config.Install.Jobs, s.Log)
	return s.registry, nil
}

func (s *Service) List(sortBy string) ([]string, error) {
	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}
	names, err := reg.List()
	if err != nil {
		return nil, err
	}
	return SortInstances(names, sortBy)
}

func (s *Service) Add(ctx context.Context, inputs []string) ([]registry.Result, error) {
	reg, err := s.Registry()
	if err != nil {
		return nil, err
	}
	return reg.Add(ctx, inputs)
}

func (s *Service) Get() (string, bool, error) {
	reg, err := s.Registry()
	if err != nil {
		return "", false, err
	}
	return reg.Get()
}

func (s *Service) Set(name string) error {
	reg, err := s.Registry()
	if err != nil {
		return err
	}
	return reg.Set(name)
}

func (s *Service) DoctorRun(ctx context.Context) doctor.Report {
	return s.Doctor.Run(ctx)
}

// ConfigShow renders the effective configuration, environment overrides
// included.
func (s *Service) ConfigShow() ([]byte, error) {
	return config.Encode(s.Config)
}

// ConfigInit writes the default config file to ConfigPath.
func (s *Service) ConfigInit(force bool) (config.Config, error) {
	cfg, err := config.Init(s.ConfigPath, force)
	if err != nil {
		return config.Config{}, err
	}
	s.Log.WithField("path", s.ConfigPath).Info("wrote default config")
	return cfg, nil
}
