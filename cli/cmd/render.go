package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/xcomp/lang"
)

// Render renders a template registered by a manifest.
type Render struct {
	Name   string `arg:""  help:"Template name (alias.Name for imported templates)" name:"name"`
	Params Params `        help:"Template parameter as key=value; values are YAML"               short:"p"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	params, err := r.Params.decode(ctx)
	if err != nil {
		return err
	}

	out, err := c.Render(ctx, r.Name, params)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "render"))
	}

	_, err = fmt.Fprintln(outputFrom(ctx), out)

	return err
}
