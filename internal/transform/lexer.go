package transform

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// tokenKind identifies a lexical token in the expression language.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokDot
	tokQuestion
	tokColon
	tokBang
	tokEq    // ==
	tokNotEq // !=
	tokLt
	tokLtEq
	tokGt
	tokGtEq
	tokAnd // &&
	tokOr  // ||
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// lexer turns expression text into tokens. The text it sees is produced by
// placeholder resolution, so field names never appear here; only literals,
// operators and the closed function set do.
type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]

	switch {
	case c >= '0' && c <= '9' || c == '.' && l.pos+1 < len(l.input) && l.input[l.pos+1] >= '0' && l.input[l.pos+1] <= '9':
		return l.lexNumber(start)
	case c == '"' || c == '\'':
		return l.lexString(start, c)
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], pos: start}, nil
	}

	// JS-flavored strict equality degrades to ==/!=.
	if strings.HasPrefix(l.input[l.pos:], "===") {
		l.pos += 3
		return token{kind: tokEq, text: "===", pos: start}, nil
	}
	if strings.HasPrefix(l.input[l.pos:], "!==") {
		l.pos += 3
		return token{kind: tokNotEq, text: "!==", pos: start}, nil
	}

	two := ""
	if l.pos+1 < len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return token{kind: tokEq, text: two, pos: start}, nil
	case "!=":
		l.pos += 2
		return token{kind: tokNotEq, text: two, pos: start}, nil
	case "<=":
		l.pos += 2
		return token{kind: tokLtEq, text: two, pos: start}, nil
	case ">=":
		l.pos += 2
		return token{kind: tokGtEq, text: two, pos: start}, nil
	case "&&":
		l.pos += 2
		return token{kind: tokAnd, text: two, pos: start}, nil
	case "||":
		l.pos += 2
		return token{kind: tokOr, text: two, pos: start}, nil
	}

	l.pos++
	switch c {
	case '+':
		return token{kind: tokPlus, text: "+", pos: start}, nil
	case '-':
		return token{kind: tokMinus, text: "-", pos: start}, nil
	case '*':
		return token{kind: tokStar, text: "*", pos: start}, nil
	case '/':
		return token{kind: tokSlash, text: "/", pos: start}, nil
	case '%':
		return token{kind: tokPercent, text: "%", pos: start}, nil
	case '(':
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case ')':
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case '[':
		return token{kind: tokLBracket, text: "[", pos: start}, nil
	case ']':
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case ',':
		return token{kind: tokComma, text: ",", pos: start}, nil
	case '.':
		return token{kind: tokDot, text: ".", pos: start}, nil
	case '?':
		return token{kind: tokQuestion, text: "?", pos: start}, nil
	case ':':
		return token{kind: tokColon, text: ":", pos: start}, nil
	case '!':
		return token{kind: tokBang, text: "!", pos: start}, nil
	case '<':
		return token{kind: tokLt, text: "<", pos: start}, nil
	case '>':
		return token{kind: tokGt, text: ">", pos: start}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q at position %d", string(c), start)
}

func (l *lexer) lexNumber(start int) (token, error) {
	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
			l.pos++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		l.pos++
	}
	text := l.input[start:l.pos]
	num, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, fmt.Errorf("invalid number %q at position %d", text, start)
	}
	return token{kind: tokNumber, text: text, num: num, pos: start}, nil
}

func (l *lexer) lexString(start int, quote byte) (token, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\\' && l.pos+1 < len(l.input) {
			next := l.input[l.pos+1]
			switch next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(next)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, fmt.Errorf("unterminated string starting at position %d", start)
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}
