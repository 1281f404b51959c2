package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xcomp/cli/cmd"
	"github.com/ardnew/xcomp/pkg"
)

// CLI is the top-level command-line interface for xcomp.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Manifest []string `help:"Manifest file(s) of templates, functions, and globals, or '-' for stdin" name:"manifest" short:"m" type:"existingfile"`

	Render  cmd.Render  `cmd:""              help:"Render a template"`
	Eval    cmd.Eval    `cmd:""              help:"Evaluate an expression"`
	Fmt     cmd.Fmt     `cmd:""              help:"Format templates and expressions"`
	Extract cmd.Extract `cmd:""              help:"Extract translatable strings"`
	Init    cmd.Init    `cmd:""              help:"Initialize configuration file"`
	Repl    cmd.Repl    `cmd:"" default:"1" help:"Start an interactive session"`
}

// Run executes the xcomp CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	// Logger flags apply before parsing so that parse errors honor them.
	cli.Log.scan(args)

	parser, err := kong.New(&cli, cli.options(ctx, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithManifests(ctx, cli.Manifest)

	// TimeLayout and Caller are only applied here.
	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// options returns the kong parser options, including the variables
// interpolated into struct tags and the YAML configuration file.
func (c *CLI) options(ctx context.Context, exit func(code int)) []kong.Option {
	configFile := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(resolve(ctx), configFile),
		vars,
	}
}
