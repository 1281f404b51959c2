package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/xcomp/lang"
	"github.com/ardnew/xcomp/log"
)

// Fmt parses a template or expression and prints it in the chosen format.
type Fmt struct {
	Markup Markup `cmd:"" default:"withargs" help:"Format a template as normalized markup (default)."`
	YAML   YAML   `cmd:""                    help:"Format a template tree as YAML."`
	AST    AST    `cmd:""                    help:"Format an expression as an abstract syntax tree."`
}

// Markup formats a template as normalized markup.
type Markup struct {
	Indent int `default:"0" help:"Indent width; 0 prints the template on one line" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the markup command.
func (f *Markup) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	node, err := parseTemplate(ctx, f.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "markup"))
	}

	return lang.FormatMarkup(ctx, outputFrom(ctx), node, f.Indent)
}

// YAML formats a template tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 uses flow style" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	node, err := parseTemplate(ctx, y.Source)
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "yaml"))
	}

	err = lang.FormatYAML(ctx, outputFrom(ctx), node, y.Indent)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST formats an expression as an abstract syntax tree.
type AST struct {
	Indent int `default:"2" help:"Indent width for nested nodes" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) {
		cancel(*err)
	}(&err)

	src, err := readSource(a.Source)
	if err != nil {
		return err
	}

	root, err := lang.Compile(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return lang.WrapError(err).
			With(slog.String("format", "ast"))
	}

	return lang.FormatAST(ctx, outputFrom(ctx), root, a.Indent)
}

// parseTemplate parses the markup template in the named file, or stdin
// for "-".
func parseTemplate(ctx context.Context, name string) (lang.Node, error) {
	var r io.Reader = os.Stdin

	if name != stdinSource {
		f, err := os.Open(name)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", name)).Wrap(err)
		}
		defer f.Close()

		r = f
	}

	return lang.ParseMarkupReader(ctx, r, lang.WithLogger(log.Default()))
}
