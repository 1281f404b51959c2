package catalog

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/xcomp/lang"
)

const testManifest = `
templates:
  Card:
    params: {title: untitled}
    source: '<div class="card">{title}</div>'
  Page:
    source: '<main><Card title={globals.site} />{double(21)}</main>'
functions:
  double: args[0] * 2
globals:
  site: Example
`

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest(t.Context(), strings.NewReader(testManifest))
	require.NoError(t, err)

	require.Len(t, m.Templates, 2)
	assert.Equal(t, `<div class="card">{title}</div>`, m.Templates["Card"].Source)
	assert.Equal(t, "args[0] * 2", m.Functions["double"])

	c := New()
	require.NoError(t, c.Load(t.Context(), m))

	assert.Equal(t, []string{"Card", "Page"}, c.Names())
	assert.Contains(t, c.Functions(), "double")

	out, err := c.Render(t.Context(), "Card", nil)
	require.NoError(t, err)
	assert.Equal(t, `<div class="card">untitled</div>`, out)

	out, err = c.Render(t.Context(), "Page", nil)
	require.NoError(t, err)
	assert.Equal(t, `<main><div class="card">Example</div>42</main>`, out)
}

func TestLoad_Concurrent(t *testing.T) {
	m, err := LoadManifest(t.Context(), strings.NewReader(testManifest))
	require.NoError(t, err)

	c := New()

	var (
		wg   sync.WaitGroup
		seen = make(chan int, 1000)
	)

	wg.Go(func() {
		for range cap(seen) {
			seen <- len(c.Names())
		}
	})

	require.NoError(t, c.Load(t.Context(), m))
	wg.Wait()
	close(seen)

	for n := range seen {
		assert.Contains(t, []int{0, 2}, n)
	}
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  error
	}{
		{"yaml", "templates: [", lang.ErrSyntax},
		{"unknown field", "widgets: {}", lang.ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadManifest(t.Context(), strings.NewReader(tt.manifest))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCatalog_LoadAtomic(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
		wantErr  error
	}{
		{
			name: "template",
			manifest: Manifest{
				Templates: map[string]TemplateSpec{
					"Good": {Source: `<p>ok</p>`},
					"Bad":  {Source: `<p>{1 +}</p>`},
				},
			},
			wantErr: lang.ErrSyntax,
		},
		{
			name: "function",
			manifest: Manifest{
				Templates: map[string]TemplateSpec{"Good": {Source: `<p>ok</p>`}},
				Functions: map[string]string{"f": `args[`},
			},
			wantErr: lang.ErrSyntax,
		},
		{
			name: "global",
			manifest: Manifest{
				Templates: map[string]TemplateSpec{"Good": {Source: `<p>ok</p>`}},
				Globals:   map[string]any{"pi": 3.14},
			},
			wantErr: lang.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()

			err := c.Load(t.Context(), tt.manifest)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, c.Names())
		})
	}
}
