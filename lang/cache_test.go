package lang

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/xcomp/log"
)

func TestCompile_Reuses(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	a, err := Compile(t.Context(), "x + 1")
	require.NoError(t, err)

	b, err := Compile(t.Context(), "x + 1")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := Compile(t.Context(), "x + 1", WithCache(false))
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, a.String(), c.String())

	ClearCache()

	d, err := Compile(t.Context(), "x + 1")
	require.NoError(t, err)
	assert.NotSame(t, a, d)
}

func TestCompile_CachesErrors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		_, err := Compile(t.Context(), "1 +")
		require.ErrorIs(t, err, ErrSyntax)
	}
}

func TestCompileMarkup_SeparateFromExpressions(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	root, err := Compile(t.Context(), "x")
	require.NoError(t, err)
	assert.IsType(t, &Variable{}, root)

	node, err := CompileMarkup(t.Context(), "x")
	require.NoError(t, err)
	assert.IsType(t, &Fragment{}, node)
}

func TestCompile_Concurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	const n = 16

	results := make([]AST, n)

	var wg sync.WaitGroup

	for i := range n {
		wg.Go(func() {
			root, err := Compile(t.Context(), "a.b(c, d=1)")
			assert.NoError(t, err)

			results[i] = root
		})
	}

	wg.Wait()

	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestCompile_TraceLogging(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
	)

	_, err := Compile(t.Context(), "x", WithLogger(logger))
	require.NoError(t, err)

	_, err = Compile(t.Context(), "x", WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "cache lookup"))
	assert.Contains(t, out, "cache_hit=false")
	assert.Contains(t, out, "cache_hit=true")
}

func TestParseMarkupReader(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	node, err := ParseMarkupReader(t.Context(), strings.NewReader(`<p>{x}</p>`))
	require.NoError(t, err)
	assert.Equal(t, `<p>{x}</p>`, node.String())
}
