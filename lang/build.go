package lang

import (
	"log/slog"
)

// ParseExpression tokenizes and builds expression source into an AST.
func ParseExpression(src string) (AST, error) {
	tok, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	root, err := Build(tok)
	if err != nil {
		return nil, withSource(err, src)
	}

	return root, nil
}

// Build translates a token tree into an AST.
//
// Operator chains fold left-associatively. Build performs no type checking.
// A token tree that [Tokenize] could not have produced fails with
// [ErrMalformedTokens].
func Build(tok SyntaxToken) (AST, error) {
	switch tok.Kind {
	case TokenString:
		return &Literal{Value: StrValue(tok.Text), At: tok.At}, nil

	case TokenInt:
		return &Literal{Value: IntValue(tok.Int), At: tok.At}, nil

	case TokenBool:
		return &Literal{Value: BoolValue(tok.Bool), At: tok.At}, nil

	case TokenIdent:
		return &Variable{Name: tok.Text, At: tok.At}, nil

	case TokenMarkup:
		if tok.Node == nil {
			return nil, malformed(tok, "markup without node")
		}

		return &Literal{Value: MarkupValue(tok.Node), At: tok.At}, nil

	case TokenExpression:
		return buildBinary(tok)

	case TokenField:
		base, err := buildRef(tok, tok.Target)
		if err != nil {
			return nil, err
		}

		return &FieldAccess{Base: base, Field: tok.Text, At: tok.At}, nil

	case TokenIndex:
		base, err := buildRef(tok, tok.Target)
		if err != nil {
			return nil, err
		}

		index, err := buildRef(tok, tok.Index)
		if err != nil {
			return nil, err
		}

		return &IndexAccess{Base: base, Index: index, At: tok.At}, nil

	case TokenCall:
		return buildCall(tok)

	case TokenIf:
		cond, err := buildRef(tok, tok.Cond)
		if err != nil {
			return nil, err
		}

		then, err := buildRef(tok, tok.Then)
		if err != nil {
			return nil, err
		}

		n := &If{Cond: cond, Then: then, At: tok.At}

		if tok.Else != nil {
			if n.Else, err = Build(*tok.Else); err != nil {
				return nil, err
			}
		}

		return n, nil

	case TokenFor:
		iterable, err := buildRef(tok, tok.Target)
		if err != nil {
			return nil, err
		}

		body, err := buildRef(tok, tok.Then)
		if err != nil {
			return nil, err
		}

		return &For{Binding: tok.Text, Iterable: iterable, Body: body, At: tok.At}, nil

	case TokenList:
		items := make([]AST, len(tok.Items))

		for i, item := range tok.Items {
			n, err := Build(item)
			if err != nil {
				return nil, err
			}

			items[i] = n
		}

		return &List{Items: items, At: tok.At}, nil

	default:
		return nil, malformed(tok, "unexpected token")
	}
}

// buildBinary folds "operand (operator operand)*" from left to right.
func buildBinary(tok SyntaxToken) (AST, error) {
	if len(tok.Items)%2 == 0 {
		return nil, malformed(tok, "operator chain of even length").
			With(slog.Int("length", len(tok.Items)))
	}

	acc, err := Build(tok.Items[0])
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(tok.Items); i += 2 {
		op := tok.Items[i]
		if op.Kind != TokenOperator || op.Op == OpInvalid {
			return nil, malformed(op, "expected operator")
		}

		rhs, err := Build(tok.Items[i+1])
		if err != nil {
			return nil, err
		}

		acc = &Binary{Left: acc, Op: op.Op, Right: rhs, At: op.At}
	}

	return acc, nil
}

func buildCall(tok SyntaxToken) (AST, error) {
	callee, err := buildRef(tok, tok.Target)
	if err != nil {
		return nil, err
	}

	n := &Call{Callee: callee, At: tok.At}

	for _, arg := range tok.Items {
		if arg.Kind != TokenKeyword {
			if len(n.Kwargs) > 0 {
				return nil, malformed(arg, "positional argument after keyword")
			}

			a, err := Build(arg)
			if err != nil {
				return nil, err
			}

			n.Args = append(n.Args, a)

			continue
		}

		value, err := buildRef(arg, arg.Target)
		if err != nil {
			return nil, err
		}

		n.Kwargs = append(n.Kwargs, Kwarg{Name: arg.Text, Value: value})
	}

	return n, nil
}

// buildRef builds a child token of parent, which must be present.
func buildRef(parent SyntaxToken, child *SyntaxToken) (AST, error) {
	if child == nil {
		return nil, malformed(parent, "missing operand")
	}

	return Build(*child)
}

func malformed(tok SyntaxToken, msg string) *Error {
	return ErrMalformedTokens.Wrapf("%s", msg).
		With(slog.String("token", tok.Kind.String())).
		WithPosition(tok.At)
}
