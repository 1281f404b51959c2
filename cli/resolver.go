package cli

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xcomp/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads a YAML
// configuration file.
//
// It is used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// The document is flattened into flag names:
//   - Nested mappings join their keys with hyphens, so log: {level: debug}
//     sets --log-level
//   - Flag names with hyphens (e.g., "log-level") may use underscores
//     in the config file (e.g., "log_level")
//   - Sequences set repeated flags such as --manifest
//   - Numbers are passed to kong as strings
//
// Example config file:
//
//	log:
//	  level: debug
//	  pretty: false
//	manifest:
//	  - ~/.config/xcomp/site.yaml
//
// Command-line flags override config file values. A file that is not valid
// YAML is logged and ignored.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		var doc map[string]any

		if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
			log.WarnContext(ctx, "ignoring invalid configuration file",
				slog.Any("error", err),
			)

			return config{}, nil
		}

		cfg := make(config, len(doc))
		flatten(cfg, "", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for flattened YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	name := flag.Name

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// flatten copies m into cfg, joining nested mapping keys onto prefix.
func flatten(cfg config, prefix string, m map[string]any) {
	for key, value := range m {
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			flatten(cfg, key, sub)

			continue
		}

		cfg[key] = scalar(value)
	}
}

// scalar converts numbers to the strings kong parses, recursing into
// sequences.
func scalar(value any) any {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = scalar(item)
		}

		return out
	default:
		return v
	}
}
