package catalog

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/xcomp/lang"
)

// Manifest describes the templates, functions, and globals of a catalog.
//
//	templates:
//	  Card:
//	    params: {title: "untitled"}
//	    source: <div class="card">{title}</div>
//	functions:
//	  double: args[0] * 2
//	globals:
//	  site: Example
type Manifest struct {
	Templates map[string]TemplateSpec `yaml:"templates,omitempty"`
	Functions map[string]string       `yaml:"functions,omitempty"`
	Globals   map[string]any          `yaml:"globals,omitempty"`
}

// TemplateSpec is the manifest form of a [Template].
type TemplateSpec struct {
	Source string         `yaml:"source"`
	Params map[string]any `yaml:"params,omitempty"`
}

// LoadManifest decodes a YAML manifest from r.
func LoadManifest(ctx context.Context, r io.Reader) (Manifest, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return Manifest{}, lang.ErrReadInput.Wrap(err)
	}

	var m Manifest
	if err := yaml.UnmarshalContext(ctx, data, &m, yaml.Strict()); err != nil {
		return Manifest{}, lang.ErrSyntax.Wrap(err).With(slog.String("format", "yaml"))
	}

	return m, nil
}

// Load registers everything declared by m. Nothing is registered unless
// every entry compiles, and the entries are installed under one lock so a
// concurrent render sees either none or all of them.
func (c *Catalog) Load(ctx context.Context, m Manifest) error {
	fns := make(map[string]Function, len(m.Functions))

	for _, name := range slices.Sorted(maps.Keys(m.Functions)) {
		fn, err := ExprFunction(m.Functions[name])
		if err != nil {
			return lang.WrapError(err).With(slog.String("function", name))
		}

		fns[name] = fn
	}

	templates := make([]Template, 0, len(m.Templates))

	for _, name := range slices.Sorted(maps.Keys(m.Templates)) {
		spec := m.Templates[name]

		root, err := lang.CompileMarkup(ctx, spec.Source, lang.WithLogger(c.logger))
		if err != nil {
			return lang.WrapError(err).With(slog.String("template", name))
		}

		params, err := lang.Params(spec.Params)
		if err != nil {
			return lang.WrapError(err).With(slog.String("template", name))
		}

		templates = append(templates, Template{Name: name, Root: root, Params: params})
	}

	globals, err := lang.Params(m.Globals)
	if err != nil {
		return err
	}

	c.mu.Lock()
	maps.Copy(c.globals, globals)
	maps.Copy(c.functions, fns)

	for _, t := range templates {
		c.templates[t.Name] = &t
	}
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "load manifest",
		slog.Int("templates", len(templates)),
		slog.Int("functions", len(fns)),
		slog.Int("globals", len(m.Globals)),
	)

	return nil
}
