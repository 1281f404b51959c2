package lang

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// FormatAST writes root as an indented tree, one node per line.
func FormatAST(_ context.Context, w io.Writer, root AST, indent int) error {
	return formatAST(w, root, "", "", strings.Repeat(" ", max(indent, 1)))
}

func formatAST(w io.Writer, n AST, prefix, label, step string) error {
	var (
		line     string
		children []AST
		labels   []string
	)

	switch n := n.(type) {
	case *Variable:
		line = "variable " + n.Name
	case *Literal:
		line = "literal " + n.Value.Kind().String() + " " + n.String()
	case *Binary:
		line = "binary " + n.Op.String()
		children = []AST{n.Left, n.Right}
	case *FieldAccess:
		line = "field " + n.Field
		children = []AST{n.Base}
	case *IndexAccess:
		line = "index"
		children = []AST{n.Base, n.Index}
	case *Call:
		line = "call"
		children = append([]AST{n.Callee}, n.Args...)

		labels = make([]string, len(children), len(children)+len(n.Kwargs))

		for _, kw := range n.Kwargs {
			children = append(children, kw.Value)
			labels = append(labels, kw.Name+"=")
		}
	case *If:
		line = "if"
		children = []AST{n.Cond, n.Then}
		labels = []string{"", "then ", "else "}

		if n.Else != nil {
			children = append(children, n.Else)
		}
	case *For:
		line = "for " + n.Binding
		children = []AST{n.Iterable, n.Body}
		labels = []string{"in ", "do "}
	case *List:
		line = "list"
		children = n.Items
	default:
		line = fmt.Sprintf("%T", n)
	}

	if _, err := fmt.Fprintln(w, prefix+label+line); err != nil {
		return err
	}

	for i, c := range children {
		var l string
		if i < len(labels) {
			l = labels[i]
		}

		if err := formatAST(w, c, prefix+step, l, step); err != nil {
			return err
		}
	}

	return nil
}

// FormatMarkup writes node as normalized markup. With a positive indent,
// each element and fragment child goes on its own indented line.
func FormatMarkup(_ context.Context, w io.Writer, node Node, indent int) error {
	if indent <= 0 {
		_, err := fmt.Fprintln(w, node.String())

		return err
	}

	var sb strings.Builder

	formatMarkup(&sb, node, 0, strings.Repeat(" ", indent))

	_, err := io.WriteString(w, sb.String())

	return err
}

func formatMarkup(sb *strings.Builder, n Node, depth int, step string) {
	pad := strings.Repeat(step, depth)

	var (
		open, closing string
		children      []Node
	)

	switch n := n.(type) {
	case *Element:
		if len(n.Children) == 0 {
			sb.WriteString(pad + n.String() + "\n")

			return
		}

		var attrs strings.Builder
		for _, a := range n.Attrs {
			attrs.WriteString(" " + a.String())
		}

		open = "<" + n.Tag + attrs.String() + ">"
		closing = "</" + n.Tag + ">"
		children = n.Children
	case *Fragment:
		open, closing, children = "<>", "</>", n.Children
	case *Text:
		if s := strings.TrimSpace(n.Value); s != "" {
			sb.WriteString(pad + s + "\n")
		}

		return
	default:
		sb.WriteString(pad + n.String() + "\n")

		return
	}

	sb.WriteString(pad + open + "\n")

	for _, c := range children {
		formatMarkup(sb, c, depth+1, step)
	}

	sb.WriteString(pad + closing + "\n")
}

// FormatYAML writes node as a YAML document.
func FormatYAML(ctx context.Context, w io.Writer, node Node, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, NodeMap(node), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// NodeMap converts a markup tree into maps and slices suitable for
// serialization.
func NodeMap(n Node) map[string]any {
	switch n := n.(type) {
	case *Element:
		m := map[string]any{"element": n.Tag, "line": n.At.Line}

		if len(n.Attrs) > 0 {
			attrs := make([]any, len(n.Attrs))

			for i, a := range n.Attrs {
				am := map[string]any{"name": a.Name}

				switch v := a.Value.(type) {
				case *Text:
					am["text"] = v.Value
				case *Expression:
					am["expression"] = ASTMap(v.Root)
				}

				attrs[i] = am
			}

			m["attrs"] = attrs
		}

		if len(n.Children) > 0 {
			m["children"] = nodeMaps(n.Children)
		}

		return m
	case *Fragment:
		return map[string]any{"fragment": nodeMaps(n.Children), "line": n.At.Line}
	case *Text:
		return map[string]any{"text": n.Value, "line": n.At.Line}
	case *Expression:
		return map[string]any{"expression": ASTMap(n.Root), "line": n.At.Line}
	default:
		return nil
	}
}

func nodeMaps(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, c := range nodes {
		out[i] = NodeMap(c)
	}

	return out
}

// ASTMap converts an expression tree into maps and slices suitable for
// serialization.
func ASTMap(n AST) map[string]any {
	switch n := n.(type) {
	case *Variable:
		return map[string]any{"variable": n.Name}
	case *Literal:
		if node, ok := n.Value.AsMarkup(); ok {
			return map[string]any{"markup": NodeMap(node)}
		}

		return map[string]any{n.Value.Kind().String(): ToNative(n.Value)}
	case *Binary:
		return map[string]any{
			"binary": n.Op.String(),
			"left":   ASTMap(n.Left),
			"right":  ASTMap(n.Right),
		}
	case *FieldAccess:
		return map[string]any{"field": n.Field, "base": ASTMap(n.Base)}
	case *IndexAccess:
		return map[string]any{"index": ASTMap(n.Index), "base": ASTMap(n.Base)}
	case *Call:
		m := map[string]any{"call": ASTMap(n.Callee)}

		if len(n.Args) > 0 {
			args := make([]any, len(n.Args))
			for i, a := range n.Args {
				args[i] = ASTMap(a)
			}

			m["args"] = args
		}

		if len(n.Kwargs) > 0 {
			kwargs := make(map[string]any, len(n.Kwargs))
			for _, kw := range n.Kwargs {
				kwargs[kw.Name] = ASTMap(kw.Value)
			}

			m["kwargs"] = kwargs
		}

		return m
	case *If:
		m := map[string]any{"if": ASTMap(n.Cond), "then": ASTMap(n.Then)}
		if n.Else != nil {
			m["else"] = ASTMap(n.Else)
		}

		return m
	case *For:
		return map[string]any{
			"for":  n.Binding,
			"in":   ASTMap(n.Iterable),
			"body": ASTMap(n.Body),
		}
	case *List:
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			items[i] = ASTMap(item)
		}

		return map[string]any{"list": items}
	default:
		return nil
	}
}
