package config

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader for YAML files. Keys are long flag
// names; dashes and underscores are interchangeable.
func YAML(r io.Reader) (kong.Resolver, error) {
	var values map[string]any
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	normalized := make(map[string]any, len(values))
	for k, v := range values {
		normalized[normalizeKey(k)] = v
	}
	return &yamlResolver{values: normalized}, nil
}

type yamlResolver struct {
	values map[string]any
}

// Validate rejects keys that do not name a flag
func (r *yamlResolver) Validate(app *kong.Application) error {
	known := make(map[string]bool)
	for _, flag := range app.Flags {
		known[normalizeKey(flag.Name)] = true
	}

	var unknown []string
	for k := range r.values {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("config: unknown keys %s", strings.Join(unknown, ", "))
	}
	return nil
}

func (r *yamlResolver) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := r.values[normalizeKey(flag.Name)]
	if !ok || v == nil {
		return nil, nil
	}

	// Hand kong strings so its own mappers do the conversion
	switch v := v.(type) {
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(item)
		}
		return strings.Join(items, ","), nil
	case map[string]any:
		return nil, fmt.Errorf("config: %s must not be a mapping", flag.Name)
	default:
		return fmt.Sprint(v), nil
	}
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "_", "-")
}
