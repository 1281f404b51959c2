package catalog

import (
	"maps"

	"github.com/ardnew/xcomp/lang"
	"github.com/ardnew/xcomp/log"
)

// DefaultMaxDepth is the default bound on nested template renders.
const DefaultMaxDepth = 64

// Option configures a [Catalog].
type Option func(config) config

type config struct {
	logger    log.Logger
	maxDepth  int
	builtins  bool
	functions map[string]Function
	globals   map[string]lang.Value
}

func makeConfig(opts ...Option) config {
	cfg := config{maxDepth: DefaultMaxDepth, builtins: true}

	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithLogger sets the logger used for trace output.
// The zero [log.Logger], used by default, discards all messages.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithMaxDepth bounds how deeply template renders may nest.
// A non-positive depth restores [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c config) config {
		if depth <= 0 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth

		return c
	}
}

// WithBuiltins enables or disables the default host functions.
func WithBuiltins(enabled bool) Option {
	return func(c config) config {
		c.builtins = enabled

		return c
	}
}

// WithFunctions registers additional host functions.
func WithFunctions(fns map[string]Function) Option {
	return func(c config) config {
		c.functions = maps.Clone(c.functions)
		if c.functions == nil {
			c.functions = make(map[string]Function, len(fns))
		}

		maps.Copy(c.functions, fns)

		return c
	}
}

// WithGlobals installs values visible to every render as entries of the
// globals dictionary.
func WithGlobals(globals map[string]lang.Value) Option {
	return func(c config) config {
		c.globals = maps.Clone(c.globals)
		if c.globals == nil {
			c.globals = make(map[string]lang.Value, len(globals))
		}

		maps.Copy(c.globals, globals)

		return c
	}
}
