package porter

import (
	"sync"

	"github.com/conneroisu/porter/internal/config"
	"github.com/conneroisu/porter/internal/file"
	"github.com/conneroisu/porter/internal/logging"
)

var (
	defaultOnce   sync.Once
	defaultPorter *Porter
	defaultErr    error
)

// Default returns the process-wide porter, built from config.Load on first
// use. It lives until the process exits.
func Default() (*Porter, error) {
	defaultOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			defaultErr = err
			return
		}

		logger, err := NewLogger(cfg)
		if err != nil {
			defaultErr = err
			return
		}

		defaultPorter, defaultErr = FromConfig(cfg, logger)
	})
	return defaultPorter, defaultErr
}

// FromConfig builds a porter and its file layer from cfg
func FromConfig(cfg *config.Config, logger logging.Logger) (*Porter, error) {
	files, err := file.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(files.Root(), files, WithLogger(logger)), nil
}

// NewLogger builds the logger described by cfg.Log. With a log directory
// configured, records go to a dated file there instead of stderr.
func NewLogger(cfg *config.Config) (logging.Logger, error) {
	if cfg.Log.Dir == "" {
		return logging.NewLogger(cfg.Log.LoggerConfig()), nil
	}
	logger, err := logging.NewFileLogger(cfg.Log.LoggerConfig(), cfg.Log.Dir)
	if err != nil {
		return nil, err
	}
	return logger, nil
}
