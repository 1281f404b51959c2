// Package cmd implements the xcomp subcommands: render, eval, fmt, extract,
// init, and repl.
//
// Commands receive their [kong.Context], manifest files, and output writer
// through the [context.Context] passed to Run.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
