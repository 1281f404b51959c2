package catalog

import (
	"context"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/builtin"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"github.com/ardnew/xcomp/lang"
)

// Function is a host function callable from template expressions.
//
// Arguments arrive in the native representations of [lang.ToNative]; the
// result is converted back with [lang.FromNative].
type Function func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// Func adapts an ordinary Go function into a [Function] using reflection.
//
// The function may take a [context.Context] as its first parameter, may be
// variadic, and may return one value, one value and an error, or only an
// error. Keyword arguments are rejected. Each argument must be assignable to
// its parameter type, or a number or string convertible to it.
func Func(fn any) Function {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return func(context.Context, []any, map[string]any) (any, error) {
			return nil, lang.ErrType.Wrapf("%T is not a function", fn)
		}
	}

	ft := fv.Type()

	return func(ctx context.Context, args []any, kwargs map[string]any) (result any, err error) {
		if len(kwargs) > 0 {
			return nil, lang.ErrType.Wrapf("keyword arguments are not supported").
				With(slog.Any("kwargs", slices.Sorted(maps.Keys(kwargs))))
		}

		in, err := funcArgs(ctx, ft, args)
		if err != nil {
			return nil, err
		}

		defer func() {
			if r := recover(); r != nil {
				result, err = nil, lang.ErrType.Wrapf("%v", r)
			}
		}()

		return funcResult(fv.Call(in))
	}
}

func funcArgs(ctx context.Context, ft reflect.Type, args []any) ([]reflect.Value, error) {
	var in []reflect.Value

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == contextType {
		in = append(in, reflect.ValueOf(ctx))
		first = 1
	}

	fixed := ft.NumIn() - first
	if ft.IsVariadic() {
		fixed--
	}

	if len(args) < fixed || (!ft.IsVariadic() && len(args) > fixed) {
		return nil, lang.ErrType.Wrapf("expected %d arguments, got %d", fixed, len(args))
	}

	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = ft.In(first + i)
		} else {
			pt = ft.In(ft.NumIn() - 1).Elem()
		}

		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.Int("argument", i))
		}

		in = append(in, v)
	}

	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(pt), nil
	}

	v := reflect.ValueOf(arg)

	switch {
	case v.Type().AssignableTo(pt):
		return v, nil
	case isNumber(v.Kind()) && isNumber(pt.Kind()),
		v.Kind() == reflect.String && pt.Kind() == reflect.String:
		return v.Convert(pt), nil
	case v.Kind() == reflect.Slice && pt.Kind() == reflect.Slice:
		out := reflect.MakeSlice(pt, v.Len(), v.Len())

		for i := range v.Len() {
			e, err := convertArg(v.Index(i).Interface(), pt.Elem())
			if err != nil {
				return reflect.Value{}, err
			}

			out.Index(i).Set(e)
		}

		return out, nil
	default:
		return reflect.Value{}, lang.ErrType.Wrapf("cannot use %T as %s", arg, pt)
	}
}

func isNumber(k reflect.Kind) bool {
	return reflect.Int <= k && k <= reflect.Float64
}

func funcResult(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}

		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return "", nil
	case 1:
		return out[0].Interface(), nil
	default:
		return nil, lang.ErrType.Wrapf("functions may return at most one value")
	}
}

// builtinFunction adapts an expr-lang builtin.
func builtinFunction(fn *builtin.Function) Function {
	return func(_ context.Context, args []any, kwargs map[string]any) (result any, err error) {
		if len(kwargs) > 0 {
			return nil, lang.ErrType.Wrapf("%s takes no keyword arguments", fn.Name)
		}

		defer func() {
			if r := recover(); r != nil {
				result, err = nil, lang.ErrType.Wrapf("%s: %v", fn.Name, r)
			}
		}()

		switch {
		case fn.Func != nil:
			return fn.Func(args...)
		case fn.Fast != nil && len(args) == 1:
			return fn.Fast(args[0]), nil
		case fn.Safe != nil:
			v, _, err := fn.Safe(args...)

			return v, err
		default:
			return nil, lang.ErrType.Wrapf("%s: unsupported arguments", fn.Name)
		}
	}
}

// builtinFunctions returns the expr-lang builtins usable outside a
// predicate context.
func builtinFunctions() map[string]Function {
	fns := make(map[string]Function, len(builtin.Builtins))

	for _, fn := range builtin.Builtins {
		if fn.Predicate {
			continue
		}

		fns[fn.Name] = builtinFunction(fn)
	}

	return fns
}

// defaultFunctions returns the functions every catalog provides unless
// disabled with [WithBuiltins].
func defaultFunctions() map[string]Function {
	fns := builtinFunctions()

	fns["uuid"] = Func(uuid.New)
	fns["gettext"] = Func(gettext)
	fns["ngettext"] = Func(ngettext)
	fns["classes.prefix"] = Func(classesPrefix)

	return fns
}

func gettext(msg string) string { return msg }

func ngettext(singular, plural string, n int) string {
	if n == 1 {
		return singular
	}

	return plural
}

// classesPrefix prepends class names to a space-separated class list.
func classesPrefix(list string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(" "),
		mung.WithPrefixItems(prefix...),
	).String()
}

// ExprFunction compiles an expr-lang program into a [Function]. The program
// sees its positional arguments as args and its keyword arguments as kwargs.
func ExprFunction(source string) (Function, error) {
	program, err := expr.Compile(source, expr.Env(exprEnv(nil, nil)))
	if err != nil {
		return nil, lang.ErrSyntax.Wrap(err).With(slog.String("source", source))
	}

	return exprFunction(program), nil
}

func exprFunction(program *vm.Program) Function {
	return func(_ context.Context, args []any, kwargs map[string]any) (any, error) {
		out, err := expr.Run(program, exprEnv(args, kwargs))
		if err != nil {
			return nil, lang.ErrType.Wrap(err)
		}

		return out, nil
	}
}

func exprEnv(args []any, kwargs map[string]any) map[string]any {
	if args == nil {
		args = []any{}
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}

	return map[string]any{"args": args, "kwargs": kwargs}
}

// functionNames returns the sorted names of fns.
func functionNames(fns map[string]Function) []string {
	return slices.Sorted(maps.Keys(fns))
}

// lastSegment returns the part of a dotted name after its final dot.
func lastSegment(name string) (string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", false
	}

	return name[i+1:], true
}
