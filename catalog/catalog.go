package catalog

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/xcomp/lang"
	"github.com/ardnew/xcomp/log"
)

// Template is a registered markup template.
type Template struct {
	Name   string
	Root   lang.Node
	Params map[string]lang.Value // declared parameter defaults
}

// Catalog is a registry of named templates and host functions.
//
// A Catalog is safe for concurrent use. Registration takes a write lock;
// renders and calls take a read lock only to look up entries.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*Template
	functions map[string]Function
	imports   map[string]*Catalog
	globals   map[string]lang.Value

	logger   log.Logger
	maxDepth int
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	cfg := makeConfig(opts...)

	c := &Catalog{
		templates: make(map[string]*Template),
		functions: make(map[string]Function),
		imports:   make(map[string]*Catalog),
		globals:   maps.Clone(cfg.globals),
		logger:    cfg.logger,
		maxDepth:  cfg.maxDepth,
	}

	if cfg.builtins {
		maps.Copy(c.functions, defaultFunctions())
	}

	maps.Copy(c.functions, cfg.functions)

	if c.globals == nil {
		c.globals = make(map[string]lang.Value)
	}

	return c
}

// Register parses source and stores it as the template name, replacing any
// template previously registered under that name. Params declares default
// parameter values.
func (c *Catalog) Register(name, source string, params map[string]any) error {
	return c.RegisterContext(context.Background(), name, source, params)
}

// RegisterContext is [Catalog.Register] with a context for compilation.
func (c *Catalog) RegisterContext(
	ctx context.Context,
	name, source string,
	params map[string]any,
) error {
	root, err := lang.CompileMarkup(ctx, source, lang.WithLogger(c.logger))
	if err != nil {
		return lang.WrapError(err).With(slog.String("template", name))
	}

	defaults, err := lang.Params(params)
	if err != nil {
		return lang.WrapError(err).With(slog.String("template", name))
	}

	c.RegisterTemplate(Template{Name: name, Root: root, Params: defaults})

	return nil
}

// RegisterTemplate stores a parsed template under t.Name.
func (c *Catalog) RegisterTemplate(t Template) {
	t.Params = maps.Clone(t.Params)

	c.mu.Lock()
	_, replaced := c.templates[t.Name]
	c.templates[t.Name] = &t
	c.mu.Unlock()

	c.logger.Trace("register template",
		slog.String("name", t.Name),
		slog.Bool("replaced", replaced),
		slog.Int("params", len(t.Params)),
	)
}

// Get returns the template registered under name.
func (c *Catalog) Get(name string) (Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[name]
	if !ok {
		return Template{}, false
	}

	return *t, true
}

// Names returns the sorted names of all registered templates, followed by
// the templates of imported catalogs qualified with their alias.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := slices.Sorted(maps.Keys(c.templates))
	imports := maps.Clone(c.imports)
	c.mu.RUnlock()

	for _, alias := range slices.Sorted(maps.Keys(imports)) {
		if imports[alias] == c {
			continue
		}

		for _, name := range imports[alias].localNames() {
			names = append(names, alias+"."+name)
		}
	}

	return names
}

func (c *Catalog) localNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.templates))
}

// Functions returns the sorted names of all registered host functions.
func (c *Catalog) Functions() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return functionNames(c.functions)
}

// RegisterFunction adds or replaces the host function name.
// Names may be dotted, as in "text.upper".
func (c *Catalog) RegisterFunction(name string, fn Function) {
	c.mu.Lock()
	c.functions[name] = fn
	c.mu.Unlock()

	c.logger.Trace("register function", slog.String("name", name))
}

// Use imports the templates and functions of other under alias, so that
// <alias.Name> renders other's template Name and alias.fn(...) calls
// other's function fn.
func (c *Catalog) Use(alias string, other *Catalog) {
	c.mu.Lock()
	c.imports[alias] = other
	c.mu.Unlock()

	c.logger.Trace("use catalog", slog.String("alias", alias))
}

// Globals returns the sorted names of all globals.
func (c *Catalog) Globals() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Sorted(maps.Keys(c.globals))
}

// SetGlobal converts v and installs it as globals.name.
func (c *Catalog) SetGlobal(name string, v any) error {
	val, err := lang.FromNative(v)
	if err != nil {
		return lang.ErrInvalidParameter.Wrap(err).With(slog.String("global", name))
	}

	c.mu.Lock()
	c.globals[name] = val
	c.mu.Unlock()

	return nil
}

// Render renders the template name. Params overlay the template's declared
// defaults.
func (c *Catalog) Render(ctx context.Context, name string, params map[string]any) (string, error) {
	t, owner, ok := c.resolve(name)
	if !ok {
		return "", c.unknownTemplate(name)
	}

	vars, err := lang.Params(params)
	if err != nil {
		return "", lang.WrapError(err).With(slog.String("template", name))
	}

	env := owner.baseEnv().With(t.Params).With(vars)

	out, err := owner.renderer().RenderNode(ctx, t.Root, env)
	if err != nil {
		return "", lang.WrapError(err).With(slog.String("template", name))
	}

	return out, nil
}

// RenderNode renders a parsed markup tree with params.
func (c *Catalog) RenderNode(ctx context.Context, node lang.Node, params map[string]any) (string, error) {
	vars, err := lang.Params(params)
	if err != nil {
		return "", err
	}

	return c.renderer().RenderNode(ctx, node, c.baseEnv().With(vars))
}

// RenderSource parses source as a template and renders it with params.
func (c *Catalog) RenderSource(ctx context.Context, source string, params map[string]any) (string, error) {
	node, err := lang.CompileMarkup(ctx, source, lang.WithLogger(c.logger))
	if err != nil {
		return "", err
	}

	return c.RenderNode(ctx, node, params)
}

// Evaluate computes the value of expression source with params.
func (c *Catalog) Evaluate(ctx context.Context, source string, params map[string]any) (lang.Value, error) {
	root, env, err := c.prepare(ctx, source, params)
	if err != nil {
		return lang.Value{}, err
	}

	return lang.Evaluate(ctx, root, env, c.renderer())
}

// RenderExpression evaluates expression source with params and serializes
// the result to HTML.
func (c *Catalog) RenderExpression(ctx context.Context, source string, params map[string]any) (string, error) {
	root, env, err := c.prepare(ctx, source, params)
	if err != nil {
		return "", err
	}

	return lang.Render(ctx, root, env, c.renderer())
}

// RenderValue serializes v to HTML, rendering embedded markup with only the
// catalog globals in scope.
func (c *Catalog) RenderValue(ctx context.Context, v lang.Value) (string, error) {
	return lang.RenderValue(ctx, v, c.baseEnv(), c.renderer())
}

// Manifest returns a manifest declaring every local template and global.
// Host functions cannot be expressed in a manifest and are omitted.
func (c *Catalog) Manifest() Manifest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := Manifest{
		Templates: make(map[string]TemplateSpec, len(c.templates)),
		Globals:   make(map[string]any, len(c.globals)),
	}

	for name, t := range c.templates {
		spec := TemplateSpec{Source: t.Root.String()}

		if len(t.Params) > 0 {
			spec.Params = make(map[string]any, len(t.Params))

			for k, v := range t.Params {
				spec.Params[k] = lang.ToNative(v)
			}
		}

		m.Templates[name] = spec
	}

	for name, v := range c.globals {
		m.Globals[name] = lang.ToNative(v)
	}

	return m
}

func (c *Catalog) prepare(ctx context.Context, source string, params map[string]any) (lang.AST, *lang.Env, error) {
	root, err := lang.Compile(ctx, source, lang.WithLogger(c.logger))
	if err != nil {
		return nil, nil, err
	}

	vars, err := lang.Params(params)
	if err != nil {
		return nil, nil, err
	}

	return root, c.baseEnv().With(vars), nil
}

// Call invokes the host function name and converts its result into a value.
func (c *Catalog) Call(ctx context.Context, name string, args []any, kwargs map[string]any) (lang.Value, error) {
	out, err := c.call(ctx, name, args, kwargs)
	if err != nil {
		return lang.Value{}, err
	}

	v, err := lang.FromNative(out)
	if err != nil {
		return lang.Value{}, lang.WrapError(err).With(slog.String("function", name))
	}

	return v, nil
}

func (c *Catalog) call(ctx context.Context, name string, args []any, kwargs map[string]any) (any, error) {
	fn, ok := c.lookupFunction(name)
	if !ok {
		return nil, lang.ErrUnknownFunction.
			With(slog.String("name", name)).
			With(suggest(name, c.Functions())...)
	}

	c.logger.TraceContext(ctx, "call function",
		slog.String("name", name),
		slog.Int("args", len(args)),
		slog.Int("kwargs", len(kwargs)),
	)

	out, err := fn(ctx, args, kwargs)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("function", name))
	}

	return out, nil
}

// lookupFunction resolves a dotted function name: first the full name, then
// an alias-qualified name in an imported catalog, then the last segment.
func (c *Catalog) lookupFunction(name string) (Function, bool) {
	c.mu.RLock()
	fn, ok := c.functions[name]

	var imported *Catalog

	alias, rest, qualified := strings.Cut(name, ".")
	if qualified {
		imported = c.imports[alias]
	}

	c.mu.RUnlock()

	if ok {
		return fn, true
	}

	if imported != nil {
		if fn, ok := imported.lookupFunction(rest); ok {
			return fn, true
		}
	}

	if last, ok := lastSegment(name); ok {
		c.mu.RLock()
		fn, ok = c.functions[last]
		c.mu.RUnlock()

		return fn, ok
	}

	return nil, false
}

// resolve finds the template name, either registered locally or as
// alias.Name in an imported catalog, along with the catalog owning it.
func (c *Catalog) resolve(name string) (*Template, *Catalog, bool) {
	c.mu.RLock()
	t, ok := c.templates[name]

	var imported *Catalog

	alias, rest, qualified := strings.Cut(name, ".")
	if qualified {
		imported = c.imports[alias]
	}

	c.mu.RUnlock()

	if ok {
		return t, c, true
	}

	if imported != nil {
		return imported.resolve(rest)
	}

	return nil, nil, false
}

func (c *Catalog) unknownTemplate(name string) error {
	return lang.ErrUnknownTemplate.
		With(slog.String("name", name)).
		With(suggest(name, c.Names())...)
}

// baseEnv returns the root scope of every render: the globals dictionary.
func (c *Catalog) baseEnv() *lang.Env {
	return lang.NewEnv(c.globalsVar())
}

func (c *Catalog) globalsVar() map[string]lang.Value {
	c.mu.RLock()
	globals := make(map[lang.Key]lang.Value, len(c.globals))

	for k, v := range c.globals {
		globals[lang.StrKey(k)] = v
	}

	c.mu.RUnlock()

	return map[string]lang.Value{"globals": lang.DictValue(globals)}
}

func suggest(word string, candidates []string) []slog.Attr {
	if s := lang.Suggest(word, candidates); s != "" && s != word {
		return []slog.Attr{slog.String("suggest", s)}
	}

	return nil
}
