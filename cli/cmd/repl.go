package cmd

import (
	"context"

	"github.com/ardnew/xcomp/cli/cmd/repl"
	"github.com/ardnew/xcomp/log"
)

// Repl starts an interactive session over the loaded catalog.
type Repl struct{}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, c, cacheDir, log.Default())
}
