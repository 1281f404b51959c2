package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xcomp/log"
	"github.com/ardnew/xcomp/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalContext(ctx, i.values(ktx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// values returns the current value of every configurable flag, keyed by
// flag name.
func (i *Init) values(ktx *kong.Context) yaml.MapSlice {
	prefixIgnore := []string{"help", profile.Tag}

	flags := slices.Clone(ktx.Model.Flags)
	slices.SortFunc(flags, func(a, b *kong.Flag) int { return strings.Compare(a.Name, b.Name) })

	var out yaml.MapSlice

	for _, flag := range flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if val := flagValue(ktx, flag); val != nil {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	return out
}

// flagValue returns the configuration value of a CLI flag, or nil if unset.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)

	switch v := val.(type) {
	case nil:
		return nil

	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case map[string]string:
		if len(v) == 0 {
			return nil
		}

		return v

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}
