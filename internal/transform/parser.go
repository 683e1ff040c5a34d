package transform

import "fmt"

// AST node types. The grammar is deliberately small: literals, arithmetic,
// string concatenation, comparisons, boolean logic, ternary and a closed set
// of functions. There is no assignment, no loops and no way to name or reach
// anything outside the expression itself.
type node interface{}

type literalNode struct {
	value interface{} // float64, string, bool or nil (undefined)
}

type unaryNode struct {
	op      tokenKind // tokBang or tokMinus
	operand node
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

type ternaryNode struct {
	cond, then, els node
}

type callNode struct {
	name     string
	receiver node // nil for free functions like round(x)
	args     []node
}

type indexNode struct {
	target node
	index  node
}

type memberNode struct {
	target node
	name   string // only "length" is valid
}

// parser is a Pratt-style recursive descent parser over the token stream.
type parser struct {
	toks []token
	pos  int
}

func parse(input string) (node, error) {
	toks, err := newLexer(input).tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", p.peek().text, p.peek().pos)
	}
	return expr, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, fmt.Errorf("expected %s at position %d, got %q", what, tok.pos, tok.text)
	}
	return p.advance(), nil
}

// parseTernary handles cond ? then : else, right associative.
func (p *parser) parseTernary() (node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokQuestion {
		return cond, nil
	}
	p.advance()
	then, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokColon, "':'"); err != nil {
		return nil, err
	}
	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	return &ternaryNode{cond: cond, then: then, els: els}, nil
}

func (p *parser) parseOr() (node, error) {
	return p.parseBinaryLevel(p.parseAnd, tokOr)
}

func (p *parser) parseAnd() (node, error) {
	return p.parseBinaryLevel(p.parseEquality, tokAnd)
}

func (p *parser) parseEquality() (node, error) {
	return p.parseBinaryLevel(p.parseComparison, tokEq, tokNotEq)
}

func (p *parser) parseComparison() (node, error) {
	return p.parseBinaryLevel(p.parseAdditive, tokLt, tokLtEq, tokGt, tokGtEq)
}

func (p *parser) parseAdditive() (node, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, tokPlus, tokMinus)
}

func (p *parser) parseMultiplicative() (node, error) {
	return p.parseBinaryLevel(p.parseUnary, tokStar, tokSlash, tokPercent)
}

func (p *parser) parseBinaryLevel(next func() (node, error), ops ...tokenKind) (node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		kind := p.peek().kind
		matched := false
		for _, op := range ops {
			if kind == op {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: kind, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	switch p.peek().kind {
	case tokBang, tokMinus:
		op := p.advance().kind
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryNode{op: op, operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of method
// calls, member accesses and index operations.
func (p *parser) parsePostfix() (node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokDot:
			p.advance()
			name, err := p.expect(tokIdent, "method or property name")
			if err != nil {
				return nil, err
			}
			if p.peek().kind == tokLParen {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &callNode{name: name.text, receiver: expr, args: args}
			} else {
				expr = &memberNode{target: expr, name: name.text}
			}
		case tokLBracket:
			p.advance()
			idx, err := p.parseTernary()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket, "']'"); err != nil {
				return nil, err
			}
			expr = &indexNode{target: expr, index: idx}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArgs() ([]node, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	args := []node{}
	if p.peek().kind == tokRParen {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		switch p.peek().kind {
		case tokComma:
			p.advance()
		case tokRParen:
			p.advance()
			return args, nil
		default:
			return nil, fmt.Errorf("expected ',' or ')' at position %d, got %q", p.peek().pos, p.peek().text)
		}
	}
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokNumber:
		p.advance()
		return &literalNode{value: tok.num}, nil
	case tokString:
		p.advance()
		return &literalNode{value: tok.text}, nil
	case tokLParen:
		p.advance()
		expr, err := p.parseTernary()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	case tokIdent:
		p.advance()
		switch tok.text {
		case "true":
			return &literalNode{value: true}, nil
		case "false":
			return &literalNode{value: false}, nil
		case "undefined", "null":
			return &literalNode{value: nil}, nil
		}
		// The only bare identifiers allowed are free functions from the
		// closed set; anything else is rejected, which is what keeps stray
		// unresolved text from evaluating as code.
		if p.peek().kind == tokLParen {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &callNode{name: tok.text, args: args}, nil
		}
		return nil, fmt.Errorf("unknown identifier %q at position %d", tok.text, tok.pos)
	}
	return nil, fmt.Errorf("unexpected token %q at position %d", tok.text, tok.pos)
}
