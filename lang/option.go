package lang

import (
	"github.com/ardnew/xcomp/log"
)

// Option configures compilation.
type Option func(*options)

type options struct {
	logger log.Logger
	cache  bool
}

func makeOptions(opts ...Option) options {
	o := options{cache: true}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// WithLogger sets the logger used for trace output.
// The zero [log.Logger], used by default, discards all messages.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCache enables or disables the compile cache. It is enabled by default.
func WithCache(enabled bool) Option {
	return func(o *options) { o.cache = enabled }
}
