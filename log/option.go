package log

// Option applies a configuration option to config.
type Option func(config) config

// apply applies multiple options to a config in order, skipping nil options.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}
