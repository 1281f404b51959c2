package lang

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAST(t *testing.T) {
	root, err := ParseExpression(`if a + 1 { f(x, k="v") }`)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, FormatAST(t.Context(), &buf, root, 2))
	assert.Equal(t, `if
  binary +
    variable a
    literal int 1
  then call
    variable f
    variable x
    k=literal str "v"
`, buf.String())
}

func TestFormatMarkup(t *testing.T) {
	node, err := ParseMarkup(`<ul class="x"><li>a</li><li>{b}</li><br/></ul>`)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, FormatMarkup(t.Context(), &buf, node, 2))
	assert.Equal(t, `<ul class="x">
  <li>
    a
  </li>
  <li>
    {b}
  </li>
  <br />
</ul>
`, buf.String())

	buf.Reset()

	require.NoError(t, FormatMarkup(t.Context(), &buf, node, 0))
	assert.Equal(t, `<ul class="x"><li>a</li><li>{b}</li><br /></ul>`+"\n", buf.String())
}

func TestFormatYAML(t *testing.T) {
	node, err := ParseMarkup(`<p class="x">{n + 1}</p>`)
	require.NoError(t, err)

	var buf bytes.Buffer

	require.NoError(t, FormatYAML(t.Context(), &buf, node, 2))

	out := buf.String()
	assert.Contains(t, out, "element: p")
	assert.Contains(t, out, "name: class")
	assert.Contains(t, out, "variable: n")
}
