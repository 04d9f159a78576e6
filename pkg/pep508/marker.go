package pep508

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matzehuels/chextra/pkg/errors"
)

// extraVar is the marker variable that gates a requirement on an extra.
const extraVar = "extra"

// Marker is a parsed environment marker.
type Marker struct {
	root node
}

// node is an element of the marker expression tree.
type node interface {
	walk(fn func(*comparison))
	String() string
}

// boolOp combines two sub-expressions with "and" or "or".
type boolOp struct {
	op          string
	left, right node
}

func (b *boolOp) walk(fn func(*comparison)) {
	b.left.walk(fn)
	b.right.walk(fn)
}

func (b *boolOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.left, b.op, b.right)
}

// operand is either a marker variable or a quoted string literal.
type operand struct {
	value    string
	variable bool
}

func (o operand) String() string {
	if o.variable {
		return o.value
	}
	return fmt.Sprintf("%q", o.value)
}

// comparison is a single "lhs op rhs" marker expression.
type comparison struct {
	left  operand
	op    string
	right operand
}

func (c *comparison) walk(fn func(*comparison)) { fn(c) }

func (c *comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.left, c.op, c.right)
}

// extraValue returns the literal compared against the extra variable, if this
// comparison gates on an extra being requested.
func (c *comparison) extraValue() (string, bool) {
	if c.op != "==" && c.op != "===" {
		return "", false
	}
	switch {
	case c.left.variable && c.left.value == extraVar && !c.right.variable:
		return c.right.value, true
	case c.right.variable && c.right.value == extraVar && !c.left.variable:
		return c.left.value, true
	}
	return "", false
}

// references reports whether either side is the named variable.
func (c *comparison) references(name string) bool {
	return (c.left.variable && c.left.value == name) || (c.right.variable && c.right.value == name)
}

// ParseMarker parses a PEP 508 environment marker expression.
// Returns an [errors.ErrCodeInvalidMarker] error on malformed input.
func ParseMarker(s string) (*Marker, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMarker, err, "marker %q", s)
	}
	p := &parser{toks: toks}
	root, err := p.parseOr()
	if err == nil && !p.done() {
		err = fmt.Errorf("unexpected %q at offset %d", p.peek().text, p.peek().pos)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidMarker, err, "marker %q", s)
	}
	return &Marker{root: root}, nil
}

// Extras returns every extra the marker compares the extra variable against,
// normalized and deduplicated, in order of first appearance. Comparisons are
// collected from the whole expression tree. Only "==" and "===" select an
// extra: `extra != "slim"` holds without any extra requested, so it gates
// nothing.
func (m *Marker) Extras() []string {
	var out []string
	seen := make(map[string]bool)
	m.root.walk(func(c *comparison) {
		v, ok := c.extraValue()
		if !ok {
			return
		}
		v = NormalizeExtra(v)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	})
	return out
}

// References reports whether the marker mentions the named variable anywhere.
func (m *Marker) References(variable string) bool {
	found := false
	m.root.walk(func(c *comparison) {
		if c.references(variable) {
			found = true
		}
	})
	return found
}

// String returns the marker in a normalized, fully parenthesized form.
func (m *Marker) String() string {
	return m.root.String()
}

// =============================================================================
// Lexer
// =============================================================================

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokString
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// versionOps lists comparison operators, longest first.
var versionOps = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

func lex(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end], i})
			i += end + 2
		case isIdentStart(rune(c)):
			j := i + 1
			for j < len(s) && isIdentPart(rune(s[j])) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j], i})
			i = j
		default:
			op := ""
			for _, candidate := range versionOps {
				if strings.HasPrefix(s[i:], candidate) {
					op = candidate
					break
				}
			}
			if op == "" {
				return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
			}
			toks = append(toks, token{tokOp, op, i})
			i += len(op)
		}
	}
	return toks, nil
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

// isIdentPart allows dots for legacy names such as "os.name".
func isIdentPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// =============================================================================
// Parser
// =============================================================================

// parser is a recursive descent parser over the grammar:
//
//	or   := and ("or" and)*
//	and  := expr ("and" expr)*
//	expr := "(" or ")" | value op value
//	op   := version_cmp | "in" | "not" "in"
type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{}
	}
	return p.toks[p.pos]
}

func (p *parser) isKeyword(word string) bool {
	t := p.peek()
	return !p.done() && t.kind == tokIdent && t.text == word
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &boolOp{op: "or", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		p.pos++
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		left = &boolOp{op: "and", left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseExpr() (node, error) {
	if p.done() {
		return nil, fmt.Errorf("unexpected end of marker")
	}
	if p.peek().kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	}

	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOp()
	if err != nil {
		return nil, err
	}
	right, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return &comparison{left: left, op: op, right: right}, nil
}

func (p *parser) parseValue() (operand, error) {
	if p.done() {
		return operand{}, fmt.Errorf("unexpected end of marker")
	}
	t := p.peek()
	switch {
	case t.kind == tokString:
		p.pos++
		return operand{value: t.text}, nil
	case t.kind == tokIdent && !isReserved(t.text):
		p.pos++
		return operand{value: t.text, variable: true}, nil
	}
	return operand{}, fmt.Errorf("expected variable or string at offset %d, got %q", t.pos, t.text)
}

func (p *parser) parseOp() (string, error) {
	if p.done() {
		return "", fmt.Errorf("unexpected end of marker")
	}
	t := p.peek()
	switch {
	case t.kind == tokOp:
		p.pos++
		return t.text, nil
	case p.isKeyword("in"):
		p.pos++
		return "in", nil
	case p.isKeyword("not"):
		p.pos++
		if !p.isKeyword("in") {
			return "", fmt.Errorf("expected \"in\" after \"not\" at offset %d", t.pos)
		}
		p.pos++
		return "not in", nil
	}
	return "", fmt.Errorf("expected comparison operator at offset %d, got %q", t.pos, t.text)
}

func isReserved(word string) bool {
	switch word {
	case "and", "or", "not", "in":
		return true
	}
	return false
}
