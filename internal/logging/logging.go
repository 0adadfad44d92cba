// Package logging builds the logrus logger shared by every jim component.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"jim/internal/config"
)

// New returns a logger writing to out. Level "off" discards everything.
func New(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return nil, fmt.Errorf("CFG_LOGGING: unknown log format %q", cfg.Format)
	}
	if cfg.Level == "" || cfg.Level == "off" {
		logger.SetOutput(io.Discard)
		logger.SetLevel(logrus.PanicLevel)
		return logger, nil
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("CFG_LOGGING: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}

// Discard is a logger that drops all entries.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
