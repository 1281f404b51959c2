package lang

import (
	"testing"
)

func FuzzTokenize(f *testing.F) {
	for _, seed := range []string{
		"1 + 2 * 3",
		`"a" * 3`,
		"a.b.c()[0]",
		"if a { 1 } else if b { 2 } else { 3 }",
		"for x in [1, 2] { x }",
		`f(x, k="v")`,
		"<b class={c}>{x}</b>",
		"'''\ntriple'''",
		"(a or b) and -1",
		"",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		tok, err := Tokenize(src)
		if err != nil {
			return
		}

		root, err := Build(tok)
		if err != nil {
			t.Fatalf("build of tokenized %q failed: %v", src, err)
		}

		if _, err := ParseExpression(root.String()); err != nil {
			t.Fatalf("reparse of %q (from %q) failed: %v", root.String(), src, err)
		}
	})
}

func FuzzParseMarkup(f *testing.F) {
	for _, seed := range []string{
		`<div class="a" hidden>{x}</div>`,
		`<>{<A b={c}/>}</>`,
		"<ul>\n<li>a</li>\n</ul>",
		`<p><!-- c -->a < b</p>`,
	} {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, src string) {
		_, _ = ParseMarkup(src)
	})
}
