package decl

import (
	"fmt"
	"strings"
)

// ============================================================
// Type Expressions
// ============================================================
//
// Grammar:
//
//	union := term ('|' term)*
//	term  := '(' union ')' | name | name '<' union (',' union)* '>'
//
// seq<T> and list<T> take one parameter, tuple<...> any number; every
// other name is a primitive or a previously declared type.

// ExprKind identifies a node in a parsed type expression.
type ExprKind uint8

const (
	ExprName ExprKind = iota + 1
	ExprSeq
	ExprTuple
	ExprUnion
)

// Expr is a parsed type expression.
type Expr struct {
	Kind ExprKind
	Name string  // ExprName
	Args []*Expr // element, tuple members or union alternatives
	Pos  int     // byte offset in the source expression
}

// String renders the expression in canonical form.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ExprName:
		return e.Name
	case ExprSeq:
		return "seq<" + e.Args[0].String() + ">"
	case ExprTuple:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return "tuple<" + strings.Join(parts, ", ") + ">"
	case ExprUnion:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			if a.Kind == ExprUnion {
				parts[i] = "(" + a.String() + ")"
			} else {
				parts[i] = a.String()
			}
		}
		return strings.Join(parts, "|")
	default:
		return "?"
	}
}

// ParseExpr parses a type expression.
func ParseExpr(src string) (*Expr, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &exprParser{src: src, toks: toks}
	e, err := p.parseUnion()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok.pos, "unexpected %s", tok)
	}
	return e, nil
}

// ============================================================
// Lexer
// ============================================================

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokLT
	tokGT
	tokComma
	tokPipe
	tokLParen
	tokRParen
)

type token struct {
	kind  tokKind
	value string
	pos   int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokIdent:
		return fmt.Sprintf("name %q", t.value)
	default:
		return fmt.Sprintf("%q", t.value)
	}
}

var punct = map[byte]tokKind{
	'<': tokLT,
	'>': tokGT,
	',': tokComma,
	'|': tokPipe,
	'(': tokLParen,
	')': tokRParen,
}

func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentChar(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, value: src[start:i], pos: start})
		default:
			kind, ok := punct[c]
			if !ok {
				return nil, &ExprError{Expr: src, Pos: i, Reason: fmt.Sprintf("unexpected character %q", c)}
			}
			toks = append(toks, token{kind: kind, value: string(c), pos: i})
			i++
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// ============================================================
// Parser
// ============================================================

type exprParser struct {
	src  string
	toks []token
	pos  int
}

func (p *exprParser) peek() token {
	return p.toks[p.pos]
}

func (p *exprParser) advance() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) match(kind tokKind) bool {
	if p.peek().kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *exprParser) expect(kind tokKind, what string) error {
	if tok := p.peek(); tok.kind != kind {
		return p.errorf(tok.pos, "expected %s, got %s", what, tok)
	}
	p.advance()
	return nil
}

func (p *exprParser) errorf(pos int, format string, args ...any) error {
	return &ExprError{Expr: p.src, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parseUnion() (*Expr, error) {
	start := p.peek().pos
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPipe {
		return first, nil
	}

	alts := []*Expr{first}
	for p.match(tokPipe) {
		alt, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return &Expr{Kind: ExprUnion, Args: alts, Pos: start}, nil
}

func (p *exprParser) parseTerm() (*Expr, error) {
	tok := p.peek()

	if tok.kind == tokLParen {
		p.advance()
		inner, err := p.parseUnion()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if tok.kind != tokIdent {
		return nil, p.errorf(tok.pos, "expected type name, got %s", tok)
	}
	p.advance()

	// Parameterized types: seq<T>, list<T>, tuple<A, B>
	if p.match(tokLT) {
		switch tok.value {
		case "seq", "list":
			elem, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokGT, "'>' after "+tok.value+" element type"); err != nil {
				return nil, err
			}
			return &Expr{Kind: ExprSeq, Args: []*Expr{elem}, Pos: tok.pos}, nil

		case "tuple":
			var members []*Expr
			if !p.match(tokGT) {
				for {
					m, err := p.parseUnion()
					if err != nil {
						return nil, err
					}
					members = append(members, m)
					if p.match(tokComma) {
						continue
					}
					if err := p.expect(tokGT, "',' or '>' in tuple"); err != nil {
						return nil, err
					}
					break
				}
			}
			return &Expr{Kind: ExprTuple, Args: members, Pos: tok.pos}, nil

		default:
			return nil, p.errorf(tok.pos, "type %s takes no parameters", tok.value)
		}
	}

	switch tok.value {
	case "seq", "list":
		return nil, p.errorf(tok.pos, "expected %s<...>", tok.value)
	case "tuple":
		return nil, p.errorf(tok.pos, "expected tuple<...>")
	}
	return &Expr{Kind: ExprName, Name: tok.value, Pos: tok.pos}, nil
}
