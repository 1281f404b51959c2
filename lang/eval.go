package lang

import (
	"context"
	"log/slog"
	"strings"
)

// Host supplies the capabilities the evaluator needs from its embedding
// environment.
type Host interface {
	// RenderNode renders a markup tree to HTML in scope env.
	// A nil env denotes an empty parameter set.
	RenderNode(ctx context.Context, node Node, env *Env) (string, error)

	// Call invokes the host function with the given dotted name.
	// Arguments and results use the native representations of [ToNative]
	// and [FromNative].
	Call(ctx context.Context, name string, args []any, kwargs map[string]any) (any, error)
}

// nullHost is used when no host is given. It has no functions and cannot
// render markup.
type nullHost struct{}

func (nullHost) RenderNode(context.Context, Node, *Env) (string, error) {
	return "", ErrUnknownTemplate.Wrapf("no catalog to render markup")
}

func (nullHost) Call(_ context.Context, name string, _ []any, _ map[string]any) (any, error) {
	return nil, ErrUnknownFunction.With(slog.String("name", name))
}

func hostOrDefault(h Host) Host {
	if h == nil {
		return nullHost{}
	}

	return h
}

// Evaluate computes the value of root in scope env.
//
// Evaluation is strict: both operands of every binary operator are
// evaluated, left before right, and the first failure aborts the whole
// evaluation.
func Evaluate(ctx context.Context, root AST, env *Env, host Host) (Value, error) {
	return evaluator{host: hostOrDefault(host)}.eval(ctx, root, env)
}

// Render evaluates root in scope env and serializes the result to HTML.
func Render(ctx context.Context, root AST, env *Env, host Host) (string, error) {
	host = hostOrDefault(host)

	v, err := Evaluate(ctx, root, env, host)
	if err != nil {
		return "", err
	}

	return RenderValue(ctx, v, env, host)
}

type evaluator struct {
	host Host
}

func (e evaluator) eval(ctx context.Context, n AST, env *Env) (Value, error) {
	v, err := e.evalNode(ctx, n, env)
	if err != nil {
		return Value{}, errorAt(err, n.Pos())
	}

	return v, nil
}

func (e evaluator) evalNode(ctx context.Context, n AST, env *Env) (Value, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Variable:
		return e.evalVariable(ctx, n, env)

	case *Binary:
		left, err := e.eval(ctx, n.Left, env)
		if err != nil {
			return Value{}, err
		}

		right, err := e.eval(ctx, n.Right, env)
		if err != nil {
			return Value{}, err
		}

		return Apply(n.Op, left, right)

	case *FieldAccess:
		base, err := e.eval(ctx, n.Base, env)
		if err != nil {
			return Value{}, err
		}

		return field(base, n.Field)

	case *IndexAccess:
		return e.evalIndex(ctx, n, env)

	case *Call:
		return e.evalCall(ctx, n, env)

	case *If:
		cond, err := e.eval(ctx, n.Cond, env)
		if err != nil {
			return Value{}, err
		}

		switch {
		case cond.Truthy():
			return e.eval(ctx, n.Then, env)
		case n.Else != nil:
			return e.eval(ctx, n.Else, env)
		default:
			return StrValue(""), nil
		}

	case *For:
		return e.evalFor(ctx, n, env)

	case *List:
		items := make([]Value, len(n.Items))

		for i, item := range n.Items {
			v, err := e.eval(ctx, item, env)
			if err != nil {
				return Value{}, err
			}

			items[i] = v
		}

		return Value{kind: KindList, list: items}, nil

	default:
		return Value{}, ErrType.Wrapf("cannot evaluate %T", n)
	}
}

// evalVariable resolves a name. Markup bound to a variable is rendered on
// reference, with an empty parameter set.
func (e evaluator) evalVariable(ctx context.Context, n *Variable, env *Env) (Value, error) {
	v, ok := env.Lookup(n.Name)
	if !ok {
		return Value{}, ErrUndefinedVariable.
			With(slog.String("name", n.Name)).
			With(suggestAttrs(n.Name, env.Names())...)
	}

	if node, ok := v.AsMarkup(); ok && node != nil {
		s, err := e.host.RenderNode(ctx, node, nil)
		if err != nil {
			return Value{}, err
		}

		return StrValue(s), nil
	}

	return v, nil
}

// field looks up name in a dictionary, first as a string key and then as a
// unique-identifier key.
func field(base Value, name string) (Value, error) {
	if base.kind != KindDict {
		return Value{}, ErrType.Wrapf("field access on %s", base.kind).
			With(slog.String("field", name))
	}

	if v, ok := base.dict[StrKey(name)]; ok {
		return v, nil
	}

	if v, ok := base.dict[IDKey(name)]; ok {
		return v, nil
	}

	keys := base.Keys()
	names := make([]string, len(keys))

	for i, k := range keys {
		names[i] = k.Name
	}

	return Value{}, ErrUnboundField.
		With(slog.String("field", name)).
		With(suggestAttrs(name, names)...)
}

func (e evaluator) evalIndex(ctx context.Context, n *IndexAccess, env *Env) (Value, error) {
	base, err := e.eval(ctx, n.Base, env)
	if err != nil {
		return Value{}, err
	}

	index, err := e.eval(ctx, n.Index, env)
	if err != nil {
		return Value{}, err
	}

	switch {
	case base.kind == KindList && index.kind == KindInt:
		i := index.i
		if i < 0 {
			i += len(base.list)
		}

		if i < 0 || i >= len(base.list) {
			return Value{}, ErrIndexOutOfRange.With(
				slog.Int("index", index.i),
				slog.Int("length", len(base.list)),
			)
		}

		return base.list[i], nil

	case base.kind == KindDict && index.kind == KindStr:
		return field(base, index.s)

	case base.kind == KindDict && index.kind == KindUniqueID:
		if v, ok := base.dict[IDKey(index.s)]; ok {
			return v, nil
		}

		return Value{}, ErrUnboundField.With(slog.String("field", index.s))

	default:
		return Value{}, ErrType.Wrapf("cannot index %s with %s", base.kind, index.kind)
	}
}

func (e evaluator) evalCall(ctx context.Context, n *Call, env *Env) (Value, error) {
	name, ok := calleeName(n.Callee)
	if !ok {
		return Value{}, ErrType.Wrapf("callee %s is not a name", n.Callee)
	}

	args := make([]any, len(n.Args))

	for i, a := range n.Args {
		v, err := e.eval(ctx, a, env)
		if err != nil {
			return Value{}, err
		}

		args[i] = ToNative(v)
	}

	var kwargs map[string]any

	if len(n.Kwargs) > 0 {
		kwargs = make(map[string]any, len(n.Kwargs))

		for _, kw := range n.Kwargs {
			v, err := e.eval(ctx, kw.Value, env)
			if err != nil {
				return Value{}, err
			}

			kwargs[kw.Name] = ToNative(v)
		}
	}

	result, err := e.host.Call(ctx, name, args, kwargs)
	if err != nil {
		return Value{}, err
	}

	v, err := FromNative(result)
	if err != nil {
		return Value{}, WrapError(err).With(slog.String("function", name))
	}

	return v, nil
}

// calleeName returns the dotted name of a callee built from variables and
// field accesses.
func calleeName(n AST) (string, bool) {
	switch n := n.(type) {
	case *Variable:
		return n.Name, true
	case *FieldAccess:
		base, ok := calleeName(n.Base)
		if !ok {
			return "", false
		}

		return base + "." + n.Field, true
	default:
		return "", false
	}
}

// evalFor renders the body once per list item, each in a child scope
// binding the loop variable, and concatenates the renderings.
func (e evaluator) evalFor(ctx context.Context, n *For, env *Env) (Value, error) {
	iterable, err := e.eval(ctx, n.Iterable, env)
	if err != nil {
		return Value{}, err
	}

	if iterable.kind != KindList {
		return Value{}, ErrNotIterable.With(slog.String("kind", iterable.kind.String()))
	}

	var sb strings.Builder

	for _, item := range iterable.list {
		scope := env.Child(n.Binding, item)

		v, err := e.eval(ctx, n.Body, scope)
		if err != nil {
			return Value{}, err
		}

		if err := renderValue(ctx, &sb, v, scope, e.host); err != nil {
			return Value{}, err
		}
	}

	return StrValue(sb.String()), nil
}
