// Package config provides configuration management for porter using Viper
// for loading from files, environment variables, and command-line flags.
//
// Values come from a .porter.yml file, PORTER_ prefixed environment
// variables (PORTER_TEMPLATES_DIR, PORTER_LOG_LEVEL, ...) and flags bound by
// the CLI. When no template directory is configured it defaults to
// resource/template next to the parent of $DOCUMENT_ROOT.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/porter/internal/logging"
)

// Keys used with viper.
const (
	KeyTemplatesDir    = "templates.dir"
	KeyTemplatesEngine = "templates.engine"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyLogDir          = "log.dir"
	KeyWatchDebounce   = "watch.debounce"
)

const (
	defaultEngine   = "pongo2"
	defaultDebounce = 300 * time.Millisecond
)

type Config struct {
	Templates TemplatesConfig `yaml:"templates" mapstructure:"templates"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
}

type TemplatesConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Engine string `yaml:"engine" mapstructure:"engine"`
}

type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// Load reads the configuration currently held by viper, applies defaults
// and validates it.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Templates.Dir == "" {
		config.Templates.Dir = DefaultTemplateDir()
	}
	if abs, err := filepath.Abs(config.Templates.Dir); err == nil {
		config.Templates.Dir = abs
	}
	if config.Templates.Engine == "" {
		config.Templates.Engine = defaultEngine
	}
	config.Templates.Engine = strings.ToLower(config.Templates.Engine)

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = defaultDebounce
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultTemplateDir returns resource/template beside the parent directory
// of $DOCUMENT_ROOT, or ./resource/template when it is unset.
func DefaultTemplateDir() string {
	if root := os.Getenv("DOCUMENT_ROOT"); root != "" {
		return filepath.Join(filepath.Dir(filepath.Clean(root)), "resource", "template")
	}
	return filepath.Join(".", "resource", "template")
}

// LoggerConfig converts the log section into a logger configuration
func (c LogConfig) LoggerConfig() *logging.LoggerConfig {
	return c.loggerConfig(os.Stderr)
}

func (c LogConfig) loggerConfig(output io.Writer) *logging.LoggerConfig {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	return &logging.LoggerConfig{
		Level:  level,
		Format: c.Format,
		Output: output,
	}
}
