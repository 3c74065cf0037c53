package query

import (
	"fmt"
	"strconv"
	"strings"
)

type parser struct {
	src string
	pos int
}

func parse(src string) (*Query, error) {
	p := &parser{src: strings.TrimSpace(src)}

	if !p.consume('$') {
		return nil, p.errf("expression must start with '$'")
	}
	if !p.consume('[') {
		return nil, p.errf("expected '[' after '$'")
	}
	sel, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	if !p.consume(']') {
		return nil, p.errf("expected ']'")
	}

	var path []string
	for p.consume('.') {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, name)
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errf("unexpected trailing input")
	}
	return &Query{sel: sel, path: path}, nil
}

func (p *parser) parseSelector() (selector, error) {
	if p.consume('*') {
		return selector{kind: selWildcard}, nil
	}
	if p.consume('?') {
		e, err := p.parseOr()
		if err != nil {
			return selector{}, err
		}
		return selector{kind: selFilter, filter: e}, nil
	}

	p.skipSpace()
	if p.peek() == ':' {
		p.pos++
		end, err := p.parseOptionalInt()
		if err != nil {
			return selector{}, err
		}
		return selector{kind: selSlice, end: end}, nil
	}

	first, err := p.parseSignedInt()
	if err != nil {
		return selector{}, err
	}
	p.skipSpace()
	switch p.peek() {
	case ':':
		p.pos++
		end, err := p.parseOptionalInt()
		if err != nil {
			return selector{}, err
		}
		return selector{kind: selSlice, start: &first, end: end}, nil
	case ',':
		indices := []int{first}
		for p.consume(',') {
			v, err := p.parseSignedInt()
			if err != nil {
				return selector{}, err
			}
			indices = append(indices, v)
		}
		return selector{kind: selIndices, indices: indices}, nil
	default:
		return selector{kind: selIndices, indices: []int{first}}, nil
	}
}

func (p *parser) parseOr() (expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consumeStr("||") {
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &logicExpr{op: opOr, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.consumeStr("&&") {
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &logicExpr{op: opAnd, lhs: lhs, rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseUnary() (expr, error) {
	p.skipSpace()
	// Negation applies to a parenthesized group only.
	if strings.HasPrefix(p.src[p.pos:], "!") && !strings.HasPrefix(p.src[p.pos:], "!=") {
		p.pos++
		if !p.consume('(') {
			return nil, p.errf("expected '(' after '!'")
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(')') {
			return nil, p.errf("expected ')'")
		}
		return &notExpr{inner: inner}, nil
	}
	if p.consume('(') {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(')') {
			return nil, p.errf("expected ')'")
		}
		return inner, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (expr, error) {
	lhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := p.parseCmpOp()
	if !ok {
		return lhs, nil
	}
	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &cmpExpr{op: op, lhs: lhs, rhs: rhs}, nil
}

func (p *parser) parseCmpOp() (cmpOp, bool) {
	p.skipSpace()
	rest := p.src[p.pos:]
	switch {
	case strings.HasPrefix(rest, "=="):
		p.pos += 2
		return opEq, true
	case strings.HasPrefix(rest, "!="):
		p.pos += 2
		return opNe, true
	case strings.HasPrefix(rest, "<="):
		p.pos += 2
		return opLe, true
	case strings.HasPrefix(rest, ">="):
		p.pos += 2
		return opGe, true
	case strings.HasPrefix(rest, "<"):
		p.pos++
		return opLt, true
	case strings.HasPrefix(rest, ">"):
		p.pos++
		return opGt, true
	}
	return 0, false
}

func (p *parser) parseOperand() (expr, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '@':
		p.pos++
		if p.peek() != '.' {
			return nil, p.errf("expected '.' after '@'")
		}
		var attrs []string
		for p.peek() == '.' {
			p.pos++
			name, err := p.parseIdent()
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, name)
		}
		return &pathExpr{attrs: attrs}, nil

	case c == '\'' || c == '"':
		s, err := p.parseString(c)
		if err != nil {
			return nil, err
		}
		return &literalExpr{val: s}, nil

	case c == '-' || isDigit(c):
		f, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return &literalExpr{val: f}, nil

	case isIdentStart(c):
		word, _ := p.parseIdent()
		switch word {
		case "true":
			return &literalExpr{val: true}, nil
		case "false":
			return &literalExpr{val: false}, nil
		case "null":
			return &literalExpr{val: nil}, nil
		default:
			return nil, p.errf(fmt.Sprintf("unknown keyword %q", word))
		}
	}
	return nil, p.errf("expected operand")
}

func (p *parser) parseIdent() (string, error) {
	start := p.pos
	if !isIdentStart(p.peek()) {
		return "", p.errf("expected identifier")
	}
	p.pos++
	for isIdentStart(p.peek()) || isDigit(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseString(quote byte) (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.errf("unterminated string")
			}
			switch e := p.src[p.pos]; e {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(e)
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errf("unterminated string")
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	for isDigit(p.peek()) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, p.errf(fmt.Sprintf("malformed number %q", p.src[start:p.pos]))
	}
	return f, nil
}

func (p *parser) parseSignedInt() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	if !isDigit(p.peek()) {
		return 0, p.errf("expected integer")
	}
	for isDigit(p.peek()) {
		p.pos++
	}
	v, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errf(fmt.Sprintf("malformed integer %q", p.src[start:p.pos]))
	}
	return v, nil
}

// parseOptionalInt reads an integer if one follows, for open slice ends.
func (p *parser) parseOptionalInt() (*int, error) {
	p.skipSpace()
	if c := p.peek(); c != '-' && !isDigit(c) {
		return nil, nil
	}
	v, err := p.parseSignedInt()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) consume(ch byte) bool {
	p.skipSpace()
	if p.peek() != ch {
		return false
	}
	p.pos++
	return true
}

func (p *parser) consumeStr(s string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], s) {
		return false
	}
	p.pos += len(s)
	return true
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errf(msg string) error {
	return fmt.Errorf("query: %s at offset %d", msg, p.pos)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
