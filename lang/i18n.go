package lang

import (
	"strings"
)

// Message is a translatable string found in source.
type Message struct {
	Line     int
	Function string // gettext or ngettext
	Singular string
	Plural   string // empty for gettext
}

// ExtractMessages returns the translatable strings of every gettext and
// ngettext call in root, in source order. The callee may be qualified, as
// in globals.gettext("..."); only literal string arguments are extracted.
func ExtractMessages(root AST) []Message {
	var msgs []Message

	walkAST(root, func(n AST) {
		call, ok := n.(*Call)
		if !ok {
			return
		}

		if msg, ok := messageOf(call); ok {
			msgs = append(msgs, msg)
		}
	}, func(node Node) {
		msgs = append(msgs, ExtractMarkupMessages(node)...)
	})

	return msgs
}

// ExtractMarkupMessages returns the translatable strings of every expression
// in a markup tree, including attribute values.
func ExtractMarkupMessages(node Node) []Message {
	var msgs []Message

	walkNode(node, func(expr *Expression) {
		if expr.Root != nil {
			msgs = append(msgs, ExtractMessages(expr.Root)...)
		}
	})

	return msgs
}

func messageOf(call *Call) (Message, bool) {
	name, ok := calleeName(call.Callee)
	if !ok {
		return Message{}, false
	}

	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	msg := Message{Line: call.At.Line, Function: name}

	switch name {
	case "gettext":
		if len(call.Args) < 1 {
			return Message{}, false
		}

		msg.Singular, ok = stringLiteral(call.Args[0])

	case "ngettext":
		if len(call.Args) < 2 {
			return Message{}, false
		}

		var pok bool

		msg.Singular, ok = stringLiteral(call.Args[0])
		msg.Plural, pok = stringLiteral(call.Args[1])
		ok = ok && pok

	default:
		return Message{}, false
	}

	return msg, ok
}

func stringLiteral(n AST) (string, bool) {
	lit, ok := n.(*Literal)
	if !ok {
		return "", false
	}

	return lit.Value.AsStr()
}

// walkAST calls visit for n and each of its descendants in source order,
// and markup for each embedded markup literal.
func walkAST(n AST, visit func(AST), markup func(Node)) {
	if n == nil {
		return
	}

	visit(n)

	switch n := n.(type) {
	case *Literal:
		if node, ok := n.Value.AsMarkup(); ok && node != nil {
			markup(node)
		}
	case *Binary:
		walkAST(n.Left, visit, markup)
		walkAST(n.Right, visit, markup)
	case *FieldAccess:
		walkAST(n.Base, visit, markup)
	case *IndexAccess:
		walkAST(n.Base, visit, markup)
		walkAST(n.Index, visit, markup)
	case *Call:
		walkAST(n.Callee, visit, markup)

		for _, a := range n.Args {
			walkAST(a, visit, markup)
		}

		for _, kw := range n.Kwargs {
			walkAST(kw.Value, visit, markup)
		}
	case *If:
		walkAST(n.Cond, visit, markup)
		walkAST(n.Then, visit, markup)
		walkAST(n.Else, visit, markup)
	case *For:
		walkAST(n.Iterable, visit, markup)
		walkAST(n.Body, visit, markup)
	case *List:
		for _, item := range n.Items {
			walkAST(item, visit, markup)
		}
	}
}

// walkNode calls visit for each expression in a markup tree, attributes
// before children.
func walkNode(n Node, visit func(*Expression)) {
	switch n := n.(type) {
	case *Expression:
		visit(n)
	case *Element:
		for _, a := range n.Attrs {
			if expr, ok := a.Value.(*Expression); ok {
				visit(expr)
			}
		}

		for _, c := range n.Children {
			walkNode(c, visit)
		}
	case *Fragment:
		for _, c := range n.Children {
			walkNode(c, visit)
		}
	}
}
