package cli

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xcomp/log"
)

// logFormat and logLevel reconfigure the default logger as kong decodes
// them, so that errors reported during parsing already use the requested
// format and level.
type (
	logFormat string
	logLevel  string
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(text))))

	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(text))))

	return nil
}

type logConfig struct {
	Level      logLevel  `default:"info"    enum:"${logLevelEnum}"  help:"Set log level."`
	Format     logFormat `default:"text"    enum:"${logFormatEnum}" help:"Set log format."`
	TimeLayout string    `default:"RFC3339"                         help:"Set timestamp format."`
	Caller     bool      `default:"false"                           help:"Include caller information."       negatable:""`
	Pretty     bool      `default:"true"                            help:"Enable colorized pretty printing." negatable:""`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	)

	log.DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty),
	)
}

// scan applies logger flags found in args before kong parses them, so the
// logger is configured regardless of flag position. Level and format also
// configure themselves through UnmarshalText during parsing; the boolean
// flags only take effect here until start runs.
func (f *logConfig) scan(args []string) {
	toggles := map[string]func(bool){
		"pretty": func(v bool) { f.Pretty = v; log.Config(log.WithPretty(v)) },
		"caller": func(v bool) { f.Caller = v; log.Config(log.WithCaller(v)) },
	}

	for i := 0; i < len(args); i++ {
		name, negated := strings.CutPrefix(args[i], "--no-log-")
		if !negated {
			var ok bool
			if name, ok = strings.CutPrefix(args[i], "--log-"); !ok {
				continue
			}
		}

		name, value, assigned := strings.Cut(name, "=")

		if toggle, ok := toggles[name]; ok {
			v := true
			if assigned {
				var err error
				if v, err = strconv.ParseBool(value); err != nil {
					continue
				}
			}

			toggle(v != negated)

			continue
		}

		if negated {
			continue
		}

		// Valued flags consume the next argument unless given with "=".
		if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			value = args[i]
		}

		switch name {
		case "level":
			_ = f.Level.UnmarshalText([]byte(value))
		case "format":
			_ = f.Format.UnmarshalText([]byte(value))
		}
	}
}
