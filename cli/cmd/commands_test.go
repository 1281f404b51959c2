package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/xcomp/lang"
)

const testManifest = `
templates:
  Card:
    params: {title: untitled}
    source: '<div class="card">{title}</div>'
  Page:
    source: '<main><Card title={globals.site} />{double(n)}</main>'
  Count:
    source: '<p>{ngettext("one item", "many items", n)}</p>'
functions:
  double: args[0] * 2
globals:
  site: Example
`

// runContext returns a context with manifests loaded from the given YAML
// documents and an output buffer.
func runContext(t *testing.T, manifests ...string) (context.Context, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, len(manifests))

	for i, m := range manifests {
		paths[i] = writeFile(t, dir, "manifest"+string(rune('a'+i))+".yaml", m)
	}

	var out bytes.Buffer

	ctx := WithManifests(context.Background(), paths)
	ctx = WithOutput(ctx, &out)

	return ctx, &out
}

func TestRenderRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     Render
		want    string
		wantErr error
	}{
		{
			name: "defaults",
			cmd:  Render{Name: "Card"},
			want: `<div class="card">untitled</div>` + "\n",
		},
		{
			name: "param",
			cmd:  Render{Name: "Card", Params: Params{"title": "Hi"}},
			want: `<div class="card">Hi</div>` + "\n",
		},
		{
			name: "component",
			cmd:  Render{Name: "Page", Params: Params{"n": "21"}},
			want: `<main><div class="card">Example</div>42</main>` + "\n",
		},
		{
			name:    "unknown template",
			cmd:     Render{Name: "Crd"},
			wantErr: lang.ErrUnknownTemplate,
		},
		{
			name:    "missing variable",
			cmd:     Render{Name: "Page"},
			wantErr: lang.ErrUndefinedVariable,
		},
		{
			name:    "bad param",
			cmd:     Render{Name: "Card", Params: Params{"title": "[1,"}},
			wantErr: ErrParam,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out := runContext(t, testManifest)

			err := tt.cmd.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Render.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Render.Run() unexpected error = %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("Render.Run() output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestEvalRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cmd     Eval
		want    string
		wantErr error
	}{
		{"arithmetic", Eval{Expr: "1 + 2 * 3"}, "7\n", nil},
		{"param", Eval{Expr: "n * 2", Params: Params{"n": "3"}}, "6\n", nil},
		{"string param", Eval{Expr: `name + "!"`, Params: Params{"name": "Ada"}}, "Ada!\n", nil},
		{"verbatim string", Eval{Expr: `"<b>"`}, "<b>\n", nil},
		{"markup", Eval{Expr: `<b>{1}</b>`}, "<b>1</b>\n", nil},
		{"function", Eval{Expr: "double(4)"}, "8\n", nil},
		{"global", Eval{Expr: "globals.site"}, "Example\n", nil},
		{"list", Eval{Expr: "xs[1]", Params: Params{"xs": "[1, 2]"}}, "2\n", nil},
		{"syntax error", Eval{Expr: "1 +"}, "", lang.ErrSyntax},
		{"undefined", Eval{Expr: "missing"}, "", lang.ErrUndefinedVariable},
		{"division by zero", Eval{Expr: "1 / 0"}, "", lang.ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, out := runContext(t, testManifest)

			err := tt.cmd.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Eval.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Eval.Run() unexpected error = %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("Eval.Run() output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestEvalRunWithoutManifest(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	ctx := WithOutput(context.Background(), &out)

	if err := (&Eval{Expr: `upper("x")`}).Run(ctx); err != nil {
		t.Fatalf("Eval.Run() unexpected error = %v", err)
	}

	if out.String() != "X\n" {
		t.Errorf("Eval.Run() output = %q, want %q", out.String(), "X\n")
	}
}

func TestFmtRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	markup := writeFile(t, dir, "card.html", `<ul class="x"><li>a</li><li>{b}</li></ul>`)
	expr := writeFile(t, dir, "expr.txt", "a + 1")
	broken := writeFile(t, dir, "broken.html", "<p>{1 +}</p>")

	tests := []struct {
		name    string
		run     func(context.Context) error
		want    string
		wantErr error
	}{
		{
			name: "markup_compact",
			run:  (&Markup{Source: markup}).Run,
			want: `<ul class="x"><li>a</li><li>{b}</li></ul>` + "\n",
		},
		{
			name: "markup_indented",
			run:  (&Markup{Source: markup, Indent: 2}).Run,
			want: "<ul class=\"x\">\n  <li>\n    a\n  </li>\n  <li>\n    {b}\n  </li>\n</ul>\n",
		},
		{
			name: "ast",
			run:  (&AST{Source: expr, Indent: 2}).Run,
			want: "binary +\n  variable a\n  literal int 1\n",
		},
		{
			name:    "markup_syntax_error",
			run:     (&Markup{Source: broken}).Run,
			wantErr: lang.ErrSyntax,
		},
		{
			name:    "missing_source",
			run:     (&YAML{Source: dir + "/missing.html", Indent: 2}).Run,
			wantErr: ErrReadSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			err := tt.run(WithOutput(context.Background(), &out))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() unexpected error = %v", err)
			}

			if out.String() != tt.want {
				t.Errorf("Run() output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestFmtYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "p.html", `<p class="x">{n + 1}</p>`)

	var out bytes.Buffer

	if err := (&YAML{Source: path, Indent: 2}).Run(WithOutput(context.Background(), &out)); err != nil {
		t.Fatalf("YAML.Run() unexpected error = %v", err)
	}

	for _, want := range []string{"element: p", "name: class", "variable: n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("YAML.Run() output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExtractRun(t *testing.T) {
	t.Parallel()

	ctx, out := runContext(t, testManifest)

	dir := t.TempDir()
	file := writeFile(t, dir, "page.html",
		"<div>\n  <h1>{gettext(\"Hello\")}</h1>\n  <p>{gettext(\"Hello\")}</p>\n</div>")

	if err := (&Extract{Files: []string{file}}).Run(ctx); err != nil {
		t.Fatalf("Extract.Run() unexpected error = %v", err)
	}

	got := out.String()

	for _, want := range []string{
		"#Count:1\nmsgid \"one item\"\nmsgid_plural \"many items\"\nmsgstr[0] \"\"\nmsgstr[1] \"\"\n",
		"#: " + file + ":2 " + file + ":3\nmsgid \"Hello\"\nmsgstr \"\"\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Extract.Run() output missing %q:\n%s", want, got)
		}
	}

	if strings.Count(got, "msgid \"Hello\"") != 1 {
		t.Errorf("Extract.Run() duplicated msgid:\n%s", got)
	}
}

func TestWritePOT(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	err := writePOT(&out, []*poEntry{
		{msg: lang.Message{Singular: `say "hi"`}, refs: []string{"a:1"}},
		{msg: lang.Message{Singular: "cat", Plural: "cats"}, refs: []string{"b:2", "c:3"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `#: a:1
msgid "say \"hi\""
msgstr ""

#: b:2 c:3
msgid "cat"
msgid_plural "cats"
msgstr[0] ""
msgstr[1] ""
`
	if out.String() != want {
		t.Errorf("writePOT() = %q, want %q", out.String(), want)
	}
}
