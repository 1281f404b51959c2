package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/xcomp/lang"
)

// Eval evaluates an expression and prints its HTML rendering.
type Eval struct {
	Expr   string `arg:"" help:"Expression to evaluate"                       name:"expr"`
	Params Params `       help:"Variable binding as key=value; values are YAML"              short:"p"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	params, err := e.Params.decode(ctx)
	if err != nil {
		return err
	}

	out, err := c.RenderExpression(ctx, e.Expr, params)
	if err != nil {
		return lang.WrapError(err).
			With(
				slog.String("command", "eval"),
				slog.String("expr", e.Expr),
			)
	}

	_, err = fmt.Fprintln(outputFrom(ctx), out)

	return err
}
