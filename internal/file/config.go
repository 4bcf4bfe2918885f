package file

import (
	"github.com/spf13/afero"

	"github.com/conneroisu/porter/internal/config"
	"github.com/conneroisu/porter/internal/logging"
)

// FromConfig builds a Porter reading templates from the OS filesystem with
// the engine named in cfg.
func FromConfig(cfg *config.Config, logger logging.Logger) (*Porter, error) {
	fs := afero.NewOsFs()

	engine, err := NewEngine(cfg.Templates.Engine, fs, cfg.Templates.Dir)
	if err != nil {
		return nil, err
	}

	return NewPorter(cfg.Templates.Dir,
		WithFs(fs),
		WithEngine(engine),
		WithLogger(logger),
	), nil
}
