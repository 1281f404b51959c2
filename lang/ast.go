package lang

import (
	"strings"
)

//go:generate go tool stringer --linecomment --type Operator,Kind,TokenKind --output lang_string.go

// Operator is a binary operator of the expression language.
type Operator int

// Operators, in increasing order of precedence groups.
const (
	OpInvalid Operator = iota // invalid
	OpOr                      // or
	OpAnd                     // and
	OpEq                      // ==
	OpNe                      // !=
	OpGe                      // >=
	OpLe                      // <=
	OpGt                      // >
	OpLt                      // <
	OpAdd                     // +
	OpSub                     // -
	OpMul                     // *
	OpDiv                     // /
)

// precedenceLevels lists the binary operators from lowest to highest
// binding strength. Within a level, longer symbols come first so that
// ">=" is matched before ">".
var precedenceLevels = [...][]Operator{
	{OpOr},
	{OpAnd},
	{OpEq, OpNe},
	{OpGe, OpLe, OpGt, OpLt},
	{OpAdd, OpSub},
	{OpMul, OpDiv},
}

// Precedence returns the binding strength of op, or -1 if op is invalid.
func (op Operator) Precedence() int {
	for i, level := range precedenceLevels {
		for _, o := range level {
			if o == op {
				return i
			}
		}
	}

	return -1
}

// ParseOperator returns the operator spelled sym.
func ParseOperator(sym string) (Operator, bool) {
	for op := OpOr; op <= OpDiv; op++ {
		if op.String() == sym {
			return op, true
		}
	}

	return OpInvalid, false
}

// AST is a node of an expression syntax tree.
// Trees are immutable once built; evaluation never modifies them.
type AST interface {
	Pos() Position
	String() string
	ast()
}

type (
	// Variable references a name bound in the environment.
	Variable struct {
		Name string
		At   Position
	}

	// Literal is a constant value.
	Literal struct {
		Value Value
		At    Position
	}

	// Binary applies Op to Left and Right.
	Binary struct {
		Left  AST
		Op    Operator
		Right AST
		At    Position
	}

	// FieldAccess selects a named entry of a dictionary.
	FieldAccess struct {
		Base  AST
		Field string
		At    Position
	}

	// IndexAccess selects a list item or dictionary entry by value.
	IndexAccess struct {
		Base  AST
		Index AST
		At    Position
	}

	// Call invokes a host function.
	Call struct {
		Callee AST
		Args   []AST
		Kwargs []Kwarg
		At     Position
	}

	// Kwarg is a named call argument.
	Kwarg struct {
		Name  string
		Value AST
	}

	// If selects Then or Else by the truthiness of Cond.
	// Else is nil when the conditional has no else branch.
	If struct {
		Cond AST
		Then AST
		Else AST
		At   Position
	}

	// For renders Body once per item of Iterable with Binding bound to it.
	For struct {
		Binding  string
		Iterable AST
		Body     AST
		At       Position
	}

	// List constructs a list from its item expressions.
	List struct {
		Items []AST
		At    Position
	}
)

func (n *Variable) Pos() Position    { return n.At }
func (n *Literal) Pos() Position     { return n.At }
func (n *Binary) Pos() Position      { return n.At }
func (n *FieldAccess) Pos() Position { return n.At }
func (n *IndexAccess) Pos() Position { return n.At }
func (n *Call) Pos() Position        { return n.At }
func (n *If) Pos() Position          { return n.At }
func (n *For) Pos() Position         { return n.At }
func (n *List) Pos() Position        { return n.At }

func (*Variable) ast()    {}
func (*Literal) ast()     {}
func (*Binary) ast()      {}
func (*FieldAccess) ast() {}
func (*IndexAccess) ast() {}
func (*Call) ast()        {}
func (*If) ast()          {}
func (*For) ast()         {}
func (*List) ast()        {}

func (n *Variable) String() string { return n.Name }

func (n *Literal) String() string {
	switch n.Value.Kind() {
	case KindStr:
		s, _ := n.Value.AsStr()

		return quote(s)
	case KindMarkup:
		node, _ := n.Value.AsMarkup()
		if node == nil {
			return "<></>"
		}

		return node.String()
	default:
		return n.Value.String()
	}
}

func (n *Binary) String() string {
	prec := n.Op.Precedence()

	return operand(n.Left, prec) + " " + n.Op.String() + " " + operand(n.Right, prec+1)
}

func (n *FieldAccess) String() string { return postfix(n.Base) + "." + n.Field }

func (n *IndexAccess) String() string {
	return postfix(n.Base) + "[" + n.Index.String() + "]"
}

func (n *Call) String() string {
	args := make([]string, 0, len(n.Args)+len(n.Kwargs))
	for _, a := range n.Args {
		args = append(args, a.String())
	}

	for _, kw := range n.Kwargs {
		args = append(args, kw.Name+"="+kw.Value.String())
	}

	return postfix(n.Callee) + "(" + strings.Join(args, ", ") + ")"
}

func (n *If) String() string {
	s := "if " + n.Cond.String() + " { " + n.Then.String() + " }"

	switch e := n.Else.(type) {
	case nil:
	case *If:
		s += " else " + e.String()
	default:
		s += " else { " + e.String() + " }"
	}

	return s
}

func (n *For) String() string {
	return "for " + n.Binding + " in " + n.Iterable.String() + " { " + n.Body.String() + " }"
}

func (n *List) String() string {
	items := make([]string, len(n.Items))
	for i, item := range n.Items {
		items[i] = item.String()
	}

	return "[" + strings.Join(items, ", ") + "]"
}

// operand formats a binary operand, adding parentheses when its own
// precedence is lower than minPrec.
func operand(n AST, minPrec int) string {
	switch b := n.(type) {
	case *Binary:
		if b.Op.Precedence() < minPrec {
			return "(" + b.String() + ")"
		}
	case *If, *For:
		return "(" + n.String() + ")"
	}

	return n.String()
}

// postfix formats the base of a postfix operation.
func postfix(n AST) string {
	switch n.(type) {
	case *Binary, *If, *For:
		return "(" + n.String() + ")"
	}

	return n.String()
}

// quote formats s as a double-quoted string literal using only the escapes
// the tokenizer understands.
func quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
