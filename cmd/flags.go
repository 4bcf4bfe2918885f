package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// varsValue collects repeated --var key=value flags. Values are decoded as
// YAML scalars, so 123 becomes an int and true a bool; anything else stays
// a string.
type varsValue struct {
	values map[string]any
	order  []string
}

var _ pflag.Value = (*varsValue)(nil)

func newVarsValue() *varsValue {
	return &varsValue{values: make(map[string]any)}
}

func (v *varsValue) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", raw)
	}

	if _, exists := v.values[key]; !exists {
		v.order = append(v.order, key)
	}
	v.values[key] = parseScalar(value)
	return nil
}

func (v *varsValue) String() string {
	parts := make([]string, 0, len(v.order))
	for _, key := range v.order {
		parts = append(parts, fmt.Sprintf("%s=%v", key, v.values[key]))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v *varsValue) Type() string {
	return "key=value"
}

func (v *varsValue) Map() map[string]any {
	result := make(map[string]any, len(v.values))
	for key, value := range v.values {
		result[key] = value
	}
	return result
}

func parseScalar(raw string) any {
	if raw == "" {
		return ""
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil || len(node.Content) != 1 {
		return raw
	}
	scalar := node.Content[0]
	if scalar.Kind != yaml.ScalarNode {
		return raw
	}

	var value any
	if err := scalar.Decode(&value); err != nil || value == nil {
		return raw
	}
	return value
}

// loadVarsFile reads a YAML or JSON mapping of template variables
func loadVarsFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vars file %s: %w", path, err)
	}

	vars := make(map[string]any)
	if err := yaml.Unmarshal(data, &vars); err != nil {
		return nil, fmt.Errorf("invalid vars file %s: %w", path, err)
	}
	return vars, nil
}
