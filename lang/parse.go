package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// ParseMarkupReader parses a markup template from r.
func ParseMarkupReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (Node, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return CompileMarkup(ctx, string(data), opts...)
}

// ParseMarkup parses a markup template.
//
// The template is a sequence of elements, text and {expression} blocks.
// A template consisting of exactly one element or fragment yields that node;
// any other template yields a [*Fragment] of its top-level nodes.
// Every embedded expression is tokenized and built eagerly, so syntax errors
// anywhere in the template are reported here.
func ParseMarkup(src string) (Node, error) {
	p := newParser(src)

	root, err := p.parseDocument()
	if err != nil {
		return nil, withSource(err, src)
	}

	return root, nil
}

// parserState is a restorable parser location.
type parserState struct {
	pos  int
	line int
	col  int
}

// parser holds the parser state shared by the markup grammar and the
// expression grammar, which nest within one another.
type parser struct {
	input string
	parserState
}

func newParser(src string) *parser {
	return &parser{input: src, parserState: parserState{line: 1, col: 1}}
}

func (p *parser) save() parserState { return p.parserState }

func (p *parser) restore(s parserState) { p.parserState = s }

func (p *parser) errorf(at Position, format string, args ...any) *Error {
	return ErrSyntax.Wrapf(format, args...).WithPosition(at)
}

// parseDocument parses an entire template.
func (p *parser) parseDocument() (Node, error) {
	at := p.position()

	children, err := p.parseChildren()
	if err != nil {
		return nil, err
	}

	if !p.eof() {
		// parseChildren only stops early at a closing tag.
		return nil, p.errorf(p.position(), "unexpected closing tag %q", p.peekTag())
	}

	if len(children) == 1 {
		switch children[0].(type) {
		case *Element, *Fragment:
			return children[0], nil
		}
	}

	return &Fragment{Children: children, At: at}, nil
}

// parseChildren parses nodes up to a closing tag or the end of input.
func (p *parser) parseChildren() ([]Node, error) {
	var children []Node

	for !p.eof() {
		switch {
		case p.peekN(4) == "<!--":
			if err := p.skipComment(); err != nil {
				return nil, err
			}

		case p.peekN(2) == "</":
			return children, nil

		case p.isTagStart():
			elem, err := p.parseElement()
			if err != nil {
				return nil, err
			}

			children = append(children, elem)

		case p.peek() == '{':
			expr, err := p.parseExpressionBlock()
			if err != nil {
				return nil, err
			}

			children = append(children, expr)

		default:
			if text := p.parseText(); text != nil {
				children = append(children, text)
			}
		}
	}

	return children, nil
}

// isTagStart reports whether the input begins an element or fragment.
func (p *parser) isTagStart() bool {
	if p.peek() != '<' {
		return false
	}

	s := p.peekN(2)
	if len(s) < 2 {
		return false
	}

	r, _ := utf8.DecodeRuneInString(s[1:])

	return r == '>' || isIdentifierStart(r)
}

// parseText consumes literal text. Whitespace-only text spanning a line
// break is layout, not content, and yields nil.
func (p *parser) parseText() Node {
	at := p.position()
	start := p.pos

	for !p.eof() {
		if p.peek() == '{' || p.isTagStart() || p.peekN(2) == "</" ||
			p.peekN(4) == "<!--" {
			break
		}

		p.advance()
	}

	value := p.input[start:p.pos]
	if strings.TrimSpace(value) == "" && strings.Contains(value, "\n") {
		return nil
	}

	return &Text{Value: value, At: at}
}

func (p *parser) skipComment() error {
	at := p.position()

	end := strings.Index(p.input[p.pos+4:], "-->")
	if end < 0 {
		return p.errorf(at, "unterminated comment")
	}

	for n := p.pos + 4 + end + 3; p.pos < n; {
		p.advance()
	}

	return nil
}

// parseElement parses an element or fragment starting at '<'.
func (p *parser) parseElement() (Node, error) {
	at := p.position()

	p.advance() // skip '<'

	if p.expect('>') {
		children, err := p.parseChildren()
		if err != nil {
			return nil, err
		}

		if err := p.parseClosingTag(at, ""); err != nil {
			return nil, err
		}

		return &Fragment{Children: children, At: at}, nil
	}

	elem := &Element{Tag: p.parseName(isTagNameContinue), At: at}

	for {
		p.skipWhitespace()

		switch {
		case p.eof():
			return nil, p.errorf(at, "unclosed tag <%s>", elem.Tag)

		case p.peekN(2) == "/>":
			p.advance()
			p.advance()

			return elem, nil

		case p.expect('>'):
			if IsVoidElement(elem.Tag) {
				return elem, nil
			}

			children, err := p.parseChildren()
			if err != nil {
				return nil, err
			}

			elem.Children = children

			if err := p.parseClosingTag(at, elem.Tag); err != nil {
				return nil, err
			}

			return elem, nil

		default:
			attr, err := p.parseAttr()
			if err != nil {
				return nil, err
			}

			elem.Attrs = append(elem.Attrs, attr)
		}
	}
}

// parseClosingTag consumes "</tag>" matching the element opened at open.
// Tag names match case-insensitively; an empty tag closes a fragment.
func (p *parser) parseClosingTag(open Position, tag string) error {
	if p.eof() {
		if tag == "" {
			return p.errorf(open, "unclosed fragment <>")
		}

		return p.errorf(open, "unclosed tag <%s>", tag)
	}

	at := p.position()

	p.advance() // skip '<'
	p.advance() // skip '/'
	p.skipWhitespace()

	name := p.parseName(isTagNameContinue)

	p.skipWhitespace()

	if !p.expect('>') {
		return p.errorf(p.position(), "expected '>' in closing tag")
	}

	if !strings.EqualFold(name, tag) {
		if tag == "" {
			return p.errorf(at, "mismatched closing tag </%s>, expected </>", name)
		}

		return p.errorf(at, "mismatched closing tag </%s>, expected </%s>", name, tag)
	}

	return nil
}

// peekTag returns the name of the closing tag at the current position.
func (p *parser) peekTag() string {
	s := p.save()
	defer p.restore(s)

	p.advance()
	p.advance()

	return "</" + p.parseName(isTagNameContinue) + ">"
}

func (p *parser) parseAttr() (Attr, error) {
	at := p.position()

	name := p.parseAttrName()
	if name == "" {
		return Attr{}, p.errorf(at, "unexpected %q in tag", p.peek())
	}

	attr := Attr{Name: name, At: at}

	s := p.save()

	p.skipWhitespace()

	if !p.expect('=') {
		p.restore(s)

		return attr, nil
	}

	p.skipWhitespace()

	switch q := p.peek(); q {
	case '"', '\'':
		vat := p.position()

		p.advance()

		start := p.pos
		for !p.eof() && p.peek() != q {
			p.advance()
		}

		if p.eof() {
			return Attr{}, p.errorf(vat, "unterminated attribute value")
		}

		attr.Value = &Text{Value: p.input[start:p.pos], At: vat}

		p.advance() // skip closing quote

	case '{':
		expr, err := p.parseExpressionBlock()
		if err != nil {
			return Attr{}, err
		}

		attr.Value = expr

	default:
		return Attr{}, p.errorf(p.position(), "expected attribute value for %q", name)
	}

	return attr, nil
}

func (p *parser) parseAttrName() string {
	if r := p.peek(); !isIdentifierStart(r) && r != '@' && r != ':' {
		return ""
	}

	return p.parseName(isAttrNameContinue)
}

// parseExpressionBlock parses "{expression}" into an [*Expression].
func (p *parser) parseExpressionBlock() (*Expression, error) {
	at := p.position()

	p.advance() // skip '{'
	p.skipWhitespace()

	start := p.pos

	if p.peek() == '}' || p.eof() {
		return nil, ErrSyntax.Wrap(ErrEmptyExpression).WithPosition(at)
	}

	tok, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	end := p.pos

	p.skipWhitespace()

	if !p.expect('}') {
		if p.eof() {
			return nil, p.errorf(at, "unterminated expression")
		}

		return nil, p.errorf(p.position(), "unexpected %q in expression", p.peek())
	}

	root, err := Build(tok)
	if err != nil {
		return nil, err
	}

	return &Expression{
		Source: strings.TrimSpace(p.input[start:end]),
		Root:   root,
		At:     at,
	}, nil
}

// parseName consumes an identifier-start rune followed by runes accepted by
// cont.
func (p *parser) parseName(cont func(rune) bool) string {
	start := p.pos

	if !isIdentifierStart(p.peek()) && p.peek() != '@' && p.peek() != ':' {
		return ""
	}

	p.advance()

	for !p.eof() && cont(p.peek()) {
		p.advance()
	}

	return p.input[start:p.pos]
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return p.input[p.pos:]
	}

	return p.input[p.pos : p.pos+n]
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) expect(ch rune) bool {
	if !p.eof() && p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// Character classification

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isTagNameContinue(r rune) bool {
	return isIdentifierContinue(r) || r == '-' || r == '.' || r == ':'
}

func isAttrNameContinue(r rune) bool {
	return isTagNameContinue(r) || r == '@'
}

// withSource attaches src to a syntax error so it renders a caret snippet.
func withSource(err error, src string) error {
	if ee, ok := err.(*Error); ok {
		return ee.WithSource(src)
	}

	return err
}

// sourceAttr returns a log attribute holding an abbreviated source text.
func sourceAttr(src string) slog.Attr {
	const limit = 40

	if len(src) > limit {
		src = src[:limit] + "…"
	}

	return slog.String("source", src)
}
