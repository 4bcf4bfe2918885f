package config

import (
	"fmt"
	"strings"

	"github.com/conneroisu/porter/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

var (
	knownEngines    = []string{"pongo2", "gotemplate"}
	knownLogFormats = []string{"text", "json"}
)

// validateConfig validates configuration values
func validateConfig(config *Config) error {
	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	if config.Watch.Debounce < 0 {
		return &ValidationError{
			Field:   "watch.debounce",
			Value:   config.Watch.Debounce,
			Message: "debounce must not be negative",
		}
	}

	return nil
}

func validateTemplatesConfig(config *TemplatesConfig) error {
	if !contains(knownEngines, config.Engine) {
		return &ValidationError{
			Field:       "templates.engine",
			Value:       config.Engine,
			Message:     fmt.Sprintf("unknown engine %q", config.Engine),
			Suggestions: []string{"Use one of: " + strings.Join(knownEngines, ", ")},
		}
	}

	if strings.ContainsRune(config.Dir, 0) {
		return &ValidationError{
			Field:   "templates.dir",
			Value:   config.Dir,
			Message: "path contains a NUL byte",
		}
	}

	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return &ValidationError{
			Field:       "log.level",
			Value:       config.Level,
			Message:     err.Error(),
			Suggestions: []string{"Use one of: debug, info, warn, error"},
		}
	}

	if !contains(knownLogFormats, config.Format) {
		return &ValidationError{
			Field:       "log.format",
			Value:       config.Format,
			Message:     fmt.Sprintf("unknown log format %q", config.Format),
			Suggestions: []string{"Use one of: " + strings.Join(knownLogFormats, ", ")},
		}
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
