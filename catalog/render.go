package catalog

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"strings"

	g "maragu.dev/gomponents"

	"github.com/ardnew/xcomp/lang"
)

// renderer is the [lang.Host] a catalog hands to the evaluator.
type renderer struct {
	c *Catalog
}

func (c *Catalog) renderer() renderer { return renderer{c: c} }

type depthKey struct{}

func depthFrom(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)

	return d
}

// RenderNode renders node in scope env. A nil env holds only the catalog
// globals.
func (r renderer) RenderNode(ctx context.Context, node lang.Node, env *lang.Env) (string, error) {
	if env == nil {
		env = r.c.baseEnv()
	}

	n, err := r.lower(ctx, node, env)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := n.Render(&sb); err != nil {
		return "", lang.ErrType.Wrap(err)
	}

	return sb.String(), nil
}

func (r renderer) Call(ctx context.Context, name string, args []any, kwargs map[string]any) (any, error) {
	return r.c.call(ctx, name, args, kwargs)
}

// lower converts a markup tree into a gomponents tree, evaluating every
// expression and expanding every component along the way.
func (r renderer) lower(ctx context.Context, node lang.Node, env *lang.Env) (g.Node, error) {
	switch n := node.(type) {
	case nil:
		return g.Group(nil), nil

	case *lang.Text:
		return g.Raw(n.Value), nil

	case *lang.Expression:
		out, err := lang.Render(ctx, n.Root, env, r)
		if err != nil {
			return nil, err
		}

		return g.Raw(out), nil

	case *lang.Fragment:
		children, err := r.lowerAll(ctx, n.Children, env)
		if err != nil {
			return nil, err
		}

		return g.Group(children), nil

	case *lang.Element:
		if t, owner, ok := r.c.resolve(n.Tag); ok {
			return r.component(ctx, t, owner, n, env)
		}

		return r.element(ctx, n, env)
	}

	return nil, lang.ErrType.Wrapf("cannot render %T", node)
}

func (r renderer) lowerAll(ctx context.Context, nodes []lang.Node, env *lang.Env) ([]g.Node, error) {
	out := make([]g.Node, 0, len(nodes))

	for _, child := range nodes {
		n, err := r.lower(ctx, child, env)
		if err != nil {
			return nil, err
		}

		out = append(out, n)
	}

	return out, nil
}

func (r renderer) element(ctx context.Context, el *lang.Element, env *lang.Env) (g.Node, error) {
	nodes := make([]g.Node, 0, len(el.Attrs)+len(el.Children))

	for _, attr := range el.Attrs {
		n, err := r.attribute(ctx, attr, env)
		if err != nil {
			return nil, err
		}

		if n != nil {
			nodes = append(nodes, n)
		}
	}

	children, err := r.lowerAll(ctx, el.Children, env)
	if err != nil {
		return nil, err
	}

	return g.El(el.Tag, append(nodes, children...)...), nil
}

// attribute lowers a single HTML attribute. It returns nil when the
// attribute is omitted from the output.
func (r renderer) attribute(ctx context.Context, attr lang.Attr, env *lang.Env) (g.Node, error) {
	switch v := attr.Value.(type) {
	case nil:
		return g.Attr(attr.Name), nil

	case *lang.Text:
		return rawAttr{name: attr.Name, value: v.Value}, nil

	case *lang.Expression:
		val, err := lang.Evaluate(ctx, v.Root, env, r)
		if err != nil {
			return nil, err
		}

		if b, ok := val.AsBool(); ok {
			if b {
				return g.Attr(attr.Name), nil
			}

			return nil, nil
		}

		s, err := lang.RenderValue(ctx, val, env, r)
		if err != nil {
			return nil, err
		}

		return g.Attr(attr.Name, s), nil
	}

	return nil, lang.ErrType.Wrapf("cannot render attribute %s", attr.Name)
}

// component renders the template t for the element el. The template scope is
// the caller's environment, then defaults for unbound parameters, then the
// element's attributes and children.
func (r renderer) component(
	ctx context.Context,
	t *Template,
	owner *Catalog,
	el *lang.Element,
	env *lang.Env,
) (g.Node, error) {
	depth := depthFrom(ctx) + 1
	if depth > r.c.maxDepth {
		return nil, lang.ErrMaxDepthExceeded.With(
			slog.String("template", t.Name),
			slog.Int("max_depth", r.c.maxDepth),
		)
	}

	// Defaults apply only to names the caller leaves unbound. A component
	// from an imported catalog sees that catalog's globals.
	defaults := make(map[string]lang.Value, len(t.Params)+1)

	for name, v := range t.Params {
		if _, ok := env.Lookup(name); !ok {
			defaults[name] = v
		}
	}

	if owner != r.c {
		maps.Copy(defaults, owner.globalsVar())
	}

	vars := make(map[string]lang.Value, len(el.Attrs)+1)

	for _, attr := range el.Attrs {
		val, err := r.parameter(ctx, attr, env)
		if err != nil {
			return nil, err
		}

		vars[attr.Name] = val
	}

	children, err := r.RenderNode(ctx, &lang.Fragment{Children: el.Children, At: el.At}, env)
	if err != nil {
		return nil, err
	}

	vars["children"] = lang.StrValue(children)

	r.c.logger.TraceContext(ctx, "render component",
		slog.String("name", el.Tag),
		slog.Int("depth", depth),
	)

	out, err := owner.renderer().RenderNode(
		context.WithValue(ctx, depthKey{}, depth),
		t.Root,
		env.With(defaults).With(vars),
	)
	if err != nil {
		return nil, err
	}

	return g.Raw(out), nil
}

// parameter converts a component attribute into a parameter value.
func (r renderer) parameter(ctx context.Context, attr lang.Attr, env *lang.Env) (lang.Value, error) {
	switch v := attr.Value.(type) {
	case nil:
		return lang.BoolValue(true), nil

	case *lang.Text:
		return lang.StrValue(v.Value), nil

	case *lang.Expression:
		return lang.Evaluate(ctx, v.Root, env, r)
	}

	return lang.Value{}, lang.ErrType.Wrapf("cannot evaluate attribute %s", attr.Name)
}

// rawAttr is an attribute whose literal value is written without escaping.
type rawAttr struct {
	name  string
	value string
}

func (a rawAttr) Render(w io.Writer) error {
	quote := `"`
	if strings.Contains(a.value, `"`) {
		quote = `'`
	}

	_, err := io.WriteString(w, " "+a.name+"="+quote+a.value+quote)

	return err
}

func (rawAttr) Type() g.NodeType { return g.AttributeType }
