package lang

import (
	"strconv"
	"strings"
)

// TokenKind identifies the shape of a [SyntaxToken].
type TokenKind int

const (
	TokenInvalid    TokenKind = iota // invalid
	TokenString                      // string
	TokenInt                         // int
	TokenBool                        // bool
	TokenIdent                       // ident
	TokenOperator                    // operator
	TokenCall                        // call
	TokenField                       // field
	TokenIndex                       // index
	TokenIf                          // if
	TokenFor                         // for
	TokenMarkup                      // markup
	TokenList                        // list
	TokenKeyword                     // keyword
	TokenExpression                  // expression
)

// SyntaxToken is a node of the grammar-level token tree produced by
// [Tokenize] and consumed by [Build].
//
// The fields used depend on Kind:
//
//	TokenString      Text
//	TokenInt         Int
//	TokenBool        Bool
//	TokenIdent       Text (name)
//	TokenOperator    Op
//	TokenCall        Target (callee), Items (arguments)
//	TokenField       Target (base), Text (field name)
//	TokenIndex       Target (base), Index
//	TokenIf          Cond, Then, Else (optional)
//	TokenFor         Text (binding), Target (iterable), Then (body)
//	TokenMarkup      Node
//	TokenList        Items
//	TokenKeyword     Text (name), Target (value)
//	TokenExpression  Items: operand (operator operand)*
type SyntaxToken struct {
	Kind   TokenKind
	At     Position
	Text   string
	Int    int
	Bool   bool
	Op     Operator
	Node   Node
	Items  []SyntaxToken
	Target *SyntaxToken
	Index  *SyntaxToken
	Cond   *SyntaxToken
	Then   *SyntaxToken
	Else   *SyntaxToken
}

// Tokenize converts expression source into a token tree.
//
// Empty input fails with an error matching both [ErrSyntax] and
// [ErrEmptyExpression]; any other input that does not match the grammar
// fails with [ErrSyntax].
func Tokenize(src string) (SyntaxToken, error) {
	p := newParser(src)

	p.skipWhitespace()

	if p.eof() {
		return SyntaxToken{}, withSource(
			ErrSyntax.Wrap(ErrEmptyExpression).WithPosition(p.position()), src)
	}

	tok, err := p.parseExpr()
	if err != nil {
		return SyntaxToken{}, withSource(err, src)
	}

	p.skipWhitespace()

	if !p.eof() {
		return SyntaxToken{}, withSource(
			p.errorf(p.position(), "unexpected %q", p.peek()), src)
	}

	return tok, nil
}

// parseExpr parses a complete expression, always wrapped in a
// [TokenExpression] token.
func (p *parser) parseExpr() (SyntaxToken, error) {
	p.skipWhitespace()

	at := p.position()

	tok, err := p.parseLevel(0)
	if err != nil {
		return SyntaxToken{}, err
	}

	if tok.Kind == TokenExpression {
		return tok, nil
	}

	return SyntaxToken{Kind: TokenExpression, At: at, Items: []SyntaxToken{tok}}, nil
}

// parseLevel parses a chain of binary operators of the given precedence
// level. A chain of one operand yields the operand itself.
func (p *parser) parseLevel(level int) (SyntaxToken, error) {
	if level == len(precedenceLevels) {
		return p.parsePostfix()
	}

	first, err := p.parseLevel(level + 1)
	if err != nil {
		return SyntaxToken{}, err
	}

	items := []SyntaxToken{first}

	for {
		s := p.save()

		p.skipWhitespace()

		at := p.position()

		op, ok := p.matchOperator(precedenceLevels[level])
		if !ok {
			p.restore(s)

			break
		}

		p.skipWhitespace()

		if p.eof() {
			return SyntaxToken{}, p.errorf(
				p.position(), "expected operand after %q", op.String())
		}

		rhs, err := p.parseLevel(level + 1)
		if err != nil {
			return SyntaxToken{}, err
		}

		items = append(items, SyntaxToken{Kind: TokenOperator, At: at, Op: op}, rhs)
	}

	if len(items) == 1 {
		return first, nil
	}

	return SyntaxToken{Kind: TokenExpression, At: first.At, Items: items}, nil
}

// matchOperator consumes one of ops if the input begins with it.
func (p *parser) matchOperator(ops []Operator) (Operator, bool) {
	for _, op := range ops {
		sym := op.String()

		if isIdentifierStart(rune(sym[0])) {
			if p.matchWord(sym) {
				return op, true
			}

			continue
		}

		if strings.HasPrefix(p.input[p.pos:], sym) {
			for range sym {
				p.advance()
			}

			return op, true
		}
	}

	return OpInvalid, false
}

// matchWord consumes the keyword w if the input begins with it as a whole
// word.
func (p *parser) matchWord(w string) bool {
	rest := p.input[p.pos:]
	if !strings.HasPrefix(rest, w) {
		return false
	}

	if len(rest) > len(w) {
		s := p.save()

		p.pos += len(w)
		next := p.peek()
		p.restore(s)

		if isIdentifierContinue(next) {
			return false
		}
	}

	for range w {
		p.advance()
	}

	return true
}

// parsePostfix parses a primary followed by any number of field, index and
// call suffixes. Suffixes must immediately follow their base.
func (p *parser) parsePostfix() (SyntaxToken, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return SyntaxToken{}, err
	}

	for {
		at := p.position()

		switch p.peek() {
		case '.':
			p.advance()

			name := p.parseIdent()
			if name == "" {
				return SyntaxToken{}, p.errorf(at, "expected field name after '.'")
			}

			target := base
			base = SyntaxToken{Kind: TokenField, At: at, Target: &target, Text: name}

		case '[':
			p.advance()

			index, err := p.parseExpr()
			if err != nil {
				return SyntaxToken{}, err
			}

			p.skipWhitespace()

			if !p.expect(']') {
				return SyntaxToken{}, p.errorf(p.position(), "expected ']'")
			}

			target := base
			base = SyntaxToken{Kind: TokenIndex, At: at, Target: &target, Index: &index}

		case '(':
			p.advance()

			args, err := p.parseArgs()
			if err != nil {
				return SyntaxToken{}, err
			}

			target := base
			base = SyntaxToken{Kind: TokenCall, At: at, Target: &target, Items: args}

		default:
			return base, nil
		}
	}
}

// parseArgs parses call arguments up to and including ')'.
func (p *parser) parseArgs() ([]SyntaxToken, error) {
	var args []SyntaxToken

	keywords := false

	for {
		p.skipWhitespace()

		if p.expect(')') {
			return args, nil
		}

		if p.eof() {
			return nil, p.errorf(p.position(), "expected ')'")
		}

		if len(args) > 0 {
			if !p.expect(',') {
				return nil, p.errorf(p.position(), "expected ',' or ')'")
			}

			p.skipWhitespace()

			if p.expect(')') {
				return args, nil
			}
		}

		at := p.position()

		if name, ok := p.parseKeywordName(); ok {
			value, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			keywords = true
			args = append(args, SyntaxToken{
				Kind: TokenKeyword, At: at, Text: name, Target: &value,
			})

			continue
		}

		if keywords {
			return nil, p.errorf(at, "positional argument follows keyword argument")
		}

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)
	}
}

// parseKeywordName consumes "name =" if present.
func (p *parser) parseKeywordName() (string, bool) {
	s := p.save()

	name := p.parseIdent()
	if name == "" {
		p.restore(s)

		return "", false
	}

	p.skipWhitespace()

	if p.peek() != '=' || p.peekN(2) == "==" {
		p.restore(s)

		return "", false
	}

	p.advance()

	return name, true
}

// parsePrimary parses a literal, identifier, parenthesized expression,
// list, embedded markup, conditional or loop.
func (p *parser) parsePrimary() (SyntaxToken, error) {
	p.skipWhitespace()

	at := p.position()

	if p.eof() {
		return SyntaxToken{}, p.errorf(at, "unexpected end of expression")
	}

	switch r := p.peek(); {
	case r == '(':
		p.advance()

		tok, err := p.parseExpr()
		if err != nil {
			return SyntaxToken{}, err
		}

		p.skipWhitespace()

		if !p.expect(')') {
			return SyntaxToken{}, p.errorf(p.position(), "expected ')'")
		}

		return tok, nil

	case r == '"' || r == '\'':
		return p.parseString()

	case isDigit(r) || (r == '-' && len(p.peekN(2)) == 2 && isDigit(rune(p.peekN(2)[1]))):
		return p.parseInt()

	case r == '[':
		return p.parseList()

	case p.isTagStart():
		node, err := p.parseElement()
		if err != nil {
			return SyntaxToken{}, err
		}

		return SyntaxToken{Kind: TokenMarkup, At: at, Node: node}, nil

	case isIdentifierStart(r):
		name := p.parseIdent()

		switch name {
		case "true", "false":
			return SyntaxToken{Kind: TokenBool, At: at, Bool: name == "true"}, nil
		case "if":
			return p.parseIf(at)
		case "for":
			return p.parseFor(at)
		case "else", "in", "and", "or":
			return SyntaxToken{}, p.errorf(at, "unexpected keyword %q", name)
		}

		return SyntaxToken{Kind: TokenIdent, At: at, Text: name}, nil

	default:
		return SyntaxToken{}, p.errorf(at, "unexpected %q", r)
	}
}

func (p *parser) parseInt() (SyntaxToken, error) {
	at := p.position()
	start := p.pos

	p.expect('-')

	for isDigit(p.peek()) {
		p.advance()
	}

	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil {
		return SyntaxToken{}, p.errorf(at, "invalid integer %q", p.input[start:p.pos])
	}

	return SyntaxToken{Kind: TokenInt, At: at, Int: n}, nil
}

// parseString parses a quoted string literal. Triple-quoted strings are
// taken verbatim, without their first line break.
func (p *parser) parseString() (SyntaxToken, error) {
	at := p.position()
	q := p.peek()

	if triple := strings.Repeat(string(q), 3); p.peekN(3) == triple {
		for range 3 {
			p.advance()
		}

		end := strings.Index(p.input[p.pos:], triple)
		if end < 0 {
			return SyntaxToken{}, p.errorf(at, "unterminated string")
		}

		text := p.input[p.pos : p.pos+end]

		for n := p.pos + end + 3; p.pos < n; {
			p.advance()
		}

		text = strings.TrimPrefix(strings.TrimPrefix(text, "\r"), "\n")

		return SyntaxToken{Kind: TokenString, At: at, Text: text}, nil
	}

	p.advance() // skip opening quote

	var sb strings.Builder

	for {
		if p.eof() {
			return SyntaxToken{}, p.errorf(at, "unterminated string")
		}

		ch := p.peek()
		p.advance()

		switch ch {
		case q:
			return SyntaxToken{Kind: TokenString, At: at, Text: sb.String()}, nil

		case '\\':
			if p.eof() {
				return SyntaxToken{}, p.errorf(at, "unterminated string")
			}

			esc := p.peek()
			p.advance()

			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteRune(esc)
			}

		default:
			sb.WriteRune(ch)
		}
	}
}

func (p *parser) parseList() (SyntaxToken, error) {
	at := p.position()

	p.advance() // skip '['

	var items []SyntaxToken

	for {
		p.skipWhitespace()

		if p.expect(']') {
			return SyntaxToken{Kind: TokenList, At: at, Items: items}, nil
		}

		if len(items) > 0 {
			if !p.expect(',') {
				return SyntaxToken{}, p.errorf(p.position(), "expected ',' or ']'")
			}

			p.skipWhitespace()

			if p.expect(']') {
				return SyntaxToken{Kind: TokenList, At: at, Items: items}, nil
			}
		}

		item, err := p.parseExpr()
		if err != nil {
			return SyntaxToken{}, err
		}

		items = append(items, item)
	}
}

// parseIf parses the remainder of "if cond { then } [else ...]".
func (p *parser) parseIf(at Position) (SyntaxToken, error) {
	cond, err := p.parseExpr()
	if err != nil {
		return SyntaxToken{}, err
	}

	then, err := p.parseBlock()
	if err != nil {
		return SyntaxToken{}, err
	}

	tok := SyntaxToken{Kind: TokenIf, At: at, Cond: &cond, Then: &then}

	s := p.save()

	p.skipWhitespace()

	if !p.matchWord("else") {
		p.restore(s)

		return tok, nil
	}

	p.skipWhitespace()

	var alt SyntaxToken

	if elseAt := p.position(); p.matchWord("if") {
		alt, err = p.parseIf(elseAt)
	} else {
		alt, err = p.parseBlock()
	}

	if err != nil {
		return SyntaxToken{}, err
	}

	tok.Else = &alt

	return tok, nil
}

// parseFor parses the remainder of "for name in iterable { body }".
func (p *parser) parseFor(at Position) (SyntaxToken, error) {
	p.skipWhitespace()

	bindAt := p.position()

	name := p.parseIdent()
	if name == "" || isKeyword(name) {
		return SyntaxToken{}, p.errorf(bindAt, "expected loop variable")
	}

	p.skipWhitespace()

	if !p.matchWord("in") {
		return SyntaxToken{}, p.errorf(p.position(), "expected 'in'")
	}

	iterable, err := p.parseExpr()
	if err != nil {
		return SyntaxToken{}, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return SyntaxToken{}, err
	}

	return SyntaxToken{
		Kind: TokenFor, At: at, Text: name, Target: &iterable, Then: &body,
	}, nil
}

// parseBlock parses "{ expression }".
func (p *parser) parseBlock() (SyntaxToken, error) {
	p.skipWhitespace()

	at := p.position()

	if !p.expect('{') {
		return SyntaxToken{}, p.errorf(at, "expected '{'")
	}

	p.skipWhitespace()

	if p.peek() == '}' {
		return SyntaxToken{}, ErrSyntax.Wrap(ErrEmptyExpression).WithPosition(at)
	}

	tok, err := p.parseExpr()
	if err != nil {
		return SyntaxToken{}, err
	}

	p.skipWhitespace()

	if !p.expect('}') {
		return SyntaxToken{}, p.errorf(p.position(), "expected '}'")
	}

	return tok, nil
}

// parseIdent consumes an identifier, returning "" if there is none.
func (p *parser) parseIdent() string {
	if !isIdentifierStart(p.peek()) {
		return ""
	}

	return p.parseName(isIdentifierContinue)
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func isKeyword(s string) bool {
	switch s {
	case "if", "else", "for", "in", "and", "or", "true", "false":
		return true
	}

	return false
}
