package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// compileCache stores compiled expressions and templates keyed by
// (kind:source_hash). Entries are immutable and shared by all callers.
var compileCache sync.Map

// state tracks the one-time compilation of a source.
type state struct {
	once sync.Once
	ast  AST
	node Node
	err  error
}

// Compile parses expression source into an AST, reusing the result of any
// earlier compilation of identical source.
func Compile(ctx context.Context, src string, opts ...Option) (AST, error) {
	o := makeOptions(opts...)

	if !o.cache {
		return ParseExpression(src)
	}

	s := lookup(ctx, o, "expr", src)

	s.once.Do(func() { s.ast, s.err = ParseExpression(src) })

	return s.ast, s.err
}

// CompileMarkup parses a markup template, reusing the result of any earlier
// compilation of identical source.
func CompileMarkup(ctx context.Context, src string, opts ...Option) (Node, error) {
	o := makeOptions(opts...)

	if !o.cache {
		return ParseMarkup(src)
	}

	s := lookup(ctx, o, "markup", src)

	s.once.Do(func() { s.node, s.err = ParseMarkup(src) })

	return s.node, s.err
}

func lookup(ctx context.Context, o options, kind, src string) *state {
	hash := xxh3.HashString(src)
	key := kind + ":" + strconv.FormatUint(hash, 36)

	value, hit := compileCache.LoadOrStore(key, new(state))

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("kind", kind),
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
		sourceAttr(src),
	)

	return value.(*state)
}

// ClearCache removes all cached compilations.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	compileCache.Clear()
}
