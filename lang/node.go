package lang

import (
	"strings"
)

// Node is a node of a parsed markup tree.
//
// Nodes are immutable after parsing. The implementations are [*Element],
// [*Text], [*Fragment] and [*Expression].
type Node interface {
	Pos() Position
	String() string
	node()
}

type (
	// Element is a tag with ordered attributes and children.
	// An element whose tag names a registered template is a component.
	Element struct {
		Tag      string
		Attrs    []Attr
		Children []Node
		At       Position
	}

	// Attr is an element attribute. Value is a [*Text] for quoted values,
	// an [*Expression] for braced values, or nil for bare attributes.
	Attr struct {
		Name  string
		Value Node
		At    Position
	}

	// Text is literal markup text. It is emitted verbatim.
	Text struct {
		Value string
		At    Position
	}

	// Fragment groups sibling nodes without a wrapping element.
	Fragment struct {
		Children []Node
		At       Position
	}

	// Expression is an embedded {expression} with its compiled tree.
	Expression struct {
		Source string
		Root   AST
		At     Position
	}
)

func (n *Element) Pos() Position    { return n.At }
func (n *Text) Pos() Position       { return n.At }
func (n *Fragment) Pos() Position   { return n.At }
func (n *Expression) Pos() Position { return n.At }

func (*Element) node()    {}
func (*Text) node()       {}
func (*Fragment) node()   {}
func (*Expression) node() {}

// Attr returns the attribute with the given name.
func (n *Element) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}

	return Attr{}, false
}

func (n *Element) String() string {
	var sb strings.Builder

	sb.WriteByte('<')
	sb.WriteString(n.Tag)

	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.String())
	}

	if len(n.Children) == 0 {
		sb.WriteString(" />")

		return sb.String()
	}

	sb.WriteByte('>')
	writeNodes(&sb, n.Children)
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')

	return sb.String()
}

func (a Attr) String() string {
	switch v := a.Value.(type) {
	case nil:
		return a.Name
	case *Text:
		q := `"`
		if strings.Contains(v.Value, `"`) {
			q = `'`
		}

		return a.Name + "=" + q + v.Value + q
	default:
		return a.Name + "=" + v.String()
	}
}

func (n *Text) String() string { return n.Value }

func (n *Fragment) String() string {
	var sb strings.Builder

	sb.WriteString("<>")
	writeNodes(&sb, n.Children)
	sb.WriteString("</>")

	return sb.String()
}

func (n *Expression) String() string {
	if n.Root == nil {
		return "{" + n.Source + "}"
	}

	return "{" + n.Root.String() + "}"
}

func writeNodes(sb *strings.Builder, nodes []Node) {
	for _, c := range nodes {
		sb.WriteString(c.String())
	}
}

// voidElements are HTML elements that never have children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// IsVoidElement reports whether tag is an HTML void element.
func IsVoidElement(tag string) bool { return voidElements[strings.ToLower(tag)] }
