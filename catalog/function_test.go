package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/xcomp/lang"
)

type ctxKey struct{}

func TestFunc(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name    string
		fn      any
		args    []any
		kwargs  map[string]any
		want    any
		wantErr error
	}{
		{
			name: "plain",
			fn:   func(a, b int) int { return a + b },
			args: []any{1, 2},
			want: 3,
		},
		{
			name: "converted",
			fn:   strings.Repeat,
			args: []any{"ab", int64(2)},
			want: "abab",
		},
		{
			name: "variadic",
			fn:   func(sep string, parts ...string) string { return strings.Join(parts, sep) },
			args: []any{"-", "a", "b", "c"},
			want: "a-b-c",
		},
		{
			name: "slice",
			fn:   func(xs []int) int { return len(xs) },
			args: []any{[]any{1, 2}},
			want: 2,
		},
		{
			name: "context",
			fn: func(ctx context.Context, s string) string {
				v, _ := ctx.Value(ctxKey{}).(string)

				return v + s
			},
			args: []any{"!"},
			want: "ctx!",
		},
		{
			name: "no result",
			fn:   func() {},
			want: "",
		},
		{
			name:    "error result",
			fn:      func() (string, error) { return "", errBoom },
			wantErr: errBoom,
		},
		{
			name: "nil error",
			fn:   func() (int, error) { return 7, nil },
			want: 7,
		},
		{
			name:    "arity",
			fn:      func(a int) int { return a },
			args:    []any{1, 2},
			wantErr: lang.ErrType,
		},
		{
			name:    "argument type",
			fn:      func(a int) int { return a },
			args:    []any{"x"},
			wantErr: lang.ErrType,
		},
		{
			name:    "kwargs",
			fn:      func() int { return 0 },
			kwargs:  map[string]any{"k": 1},
			wantErr: lang.ErrType,
		},
		{
			name:    "panic",
			fn:      func() int { panic("bad") },
			wantErr: lang.ErrType,
		},
		{
			name:    "not a function",
			fn:      42,
			wantErr: lang.ErrType,
		},
	}

	ctx := context.WithValue(t.Context(), ctxKey{}, "ctx")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Func(tt.fn)(ctx, tt.args, tt.kwargs)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExprFunction(t *testing.T) {
	double, err := ExprFunction(`args[0] * 2`)
	require.NoError(t, err)

	got, err := double(t.Context(), []any{21}, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	greet, err := ExprFunction(`"Hello, " + kwargs.name`)
	require.NoError(t, err)

	got, err = greet(t.Context(), nil, map[string]any{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ann", got)

	_, err = ExprFunction(`args[`)
	require.ErrorIs(t, err, lang.ErrSyntax)
}

func TestBuiltinFunctions(t *testing.T) {
	fns := builtinFunctions()

	for _, name := range []string{"max", "min", "abs", "upper", "lower", "len", "join"} {
		assert.Contains(t, fns, name)
	}

	assert.NotContains(t, fns, "filter")

	got, err := fns["join"](t.Context(), []any{[]any{"a", "b"}, ","}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b", got)

	_, err = fns["len"](t.Context(), []any{1}, nil)
	require.ErrorIs(t, err, lang.ErrType)
}

func TestLastSegment(t *testing.T) {
	got, ok := lastSegment("a.b.upper")
	assert.True(t, ok)
	assert.Equal(t, "upper", got)

	_, ok = lastSegment("upper")
	assert.False(t, ok)
}
