package kripke

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// PropResolver maps an identifier in formula text to its predicate.
type PropResolver func(name string) (Predicate, bool)

// Labels resolves every identifier to HasProp(name).
func Labels() PropResolver {
	return func(name string) (Predicate, bool) { return HasProp(name), true }
}

// Props resolves identifiers from a fixed table and falls back to
// fallback (which may be nil) for names not in it.
func Props(table map[string]Predicate, fallback PropResolver) PropResolver {
	return func(name string) (Predicate, bool) {
		if p, ok := table[name]; ok {
			return p, true
		}
		if fallback != nil {
			return fallback(name)
		}
		return nil, false
	}
}

// Parse reads a CTL formula in the syntax produced by Formula.String:
//
//	¬p  !p  NOT p          negation
//	EX p  AX p  EF p  AF p  EG p  AG p
//	E[p U q]  A[p U q]     until
//	p ∧ q  p & q  p AND q  conjunction
//	p ∨ q  p | q  p OR q   disjunction
//	p → q  p -> q          implication, right associative
//	true ⊤  false ⊥  (p)
//	"is-goal"              a name that is not a plain identifier
//
// Unary operators bind tightest, then ∧, ∨ and →. A nil resolver
// resolves every identifier as a state label.
func Parse(src string, resolve PropResolver) (Formula, error) {
	if resolve == nil {
		resolve = Labels()
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, resolve: resolve}
	f, err := p.implies()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return f, nil
}

// MustParse is Parse for formulas known at compile time.
func MustParse(src string, resolve PropResolver) Formula {
	f, err := Parse(src, resolve)
	if err != nil {
		panic(err)
	}
	return f
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokQuoted
	tokNot
	tokAnd
	tokOr
	tokImplies
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokTrue
	tokFalse
)

type token struct {
	kind tokKind
	text string
	pos  int
}

var keywords = map[string]tokKind{
	"NOT":   tokNot,
	"AND":   tokAnd,
	"OR":    tokOr,
	"true":  tokTrue,
	"false": tokFalse,
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, w := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += w
			continue
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
		case r == '[':
			toks = append(toks, token{tokLBrack, "[", i})
		case r == ']':
			toks = append(toks, token{tokRBrack, "]", i})
		case r == '!' || r == '¬':
			toks = append(toks, token{tokNot, string(r), i})
		case r == '∧':
			toks = append(toks, token{tokAnd, string(r), i})
		case r == '∨':
			toks = append(toks, token{tokOr, string(r), i})
		case r == '→':
			toks = append(toks, token{tokImplies, string(r), i})
		case r == '⊤':
			toks = append(toks, token{tokTrue, string(r), i})
		case r == '⊥':
			toks = append(toks, token{tokFalse, string(r), i})
		case r == '&' || r == '|':
			text := string(r)
			if i+1 < len(src) && rune(src[i+1]) == r {
				text += string(r)
			}
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			toks = append(toks, token{kind, text, i})
			i += len(text)
			continue
		case r == '-':
			if i+1 >= len(src) || src[i+1] != '>' {
				return nil, &SyntaxError{Pos: i, Msg: "expected '->'"}
			}
			toks = append(toks, token{tokImplies, "->", i})
			i += 2
			continue
		case r == '"':
			end := closingQuote(src, i)
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated quoted name"}
			}
			name, err := strconv.Unquote(src[i : end+1])
			if err != nil {
				return nil, &SyntaxError{Pos: i, Msg: "invalid quoted name"}
			}
			toks = append(toks, token{tokQuoted, name, i})
			i = end + 1
			continue
		case isIdentStart(r):
			start := i
			for i < len(src) {
				r, w := utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += w
			}
			text := src[start:i]
			kind, ok := keywords[text]
			if !ok {
				kind = tokIdent
			}
			toks = append(toks, token{kind, text, start})
			continue
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
		i += w
	}
	toks = append(toks, token{tokEOF, "end of input", len(src)})
	return toks, nil
}

// closingQuote returns the index of the quote ending the quoted name
// that starts at open, or -1.
func closingQuote(src string, open int) int {
	for i := open + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '.' || isIdentStart(r) || unicode.IsDigit(r) }

// reserved words read as operators when they appear bare.
var reserved = map[string]bool{
	"NOT": true, "AND": true, "OR": true,
	"EX": true, "AX": true, "EF": true, "AF": true, "EG": true, "AG": true,
	"E": true, "A": true, "U": true,
}

// quoteName writes an atom name so that Parse reads it back as the same
// name. true and false stay bare and denote the constants.
func quoteName(name string) string {
	if name == "true" || name == "false" {
		return name
	}
	plain := name != "" && !reserved[name]
	for i, r := range name {
		if !plain {
			break
		}
		plain = isIdentPart(r) && (i > 0 || isIdentStart(r))
	}
	if plain {
		return name
	}
	return strconv.Quote(name)
}

type parser struct {
	toks    []token
	pos     int
	resolve PropResolver
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokKind, what string) error {
	t := p.next()
	if t.kind != kind {
		return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected %s, found %q", what, t.text)}
	}
	return nil
}

func (p *parser) implies() (Formula, error) {
	left, err := p.or()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokImplies {
		p.next()
		right, err := p.implies()
		if err != nil {
			return nil, err
		}
		return Implies(left, right), nil
	}
	return left, nil
}

func (p *parser) or() (Formula, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *parser) and() (Formula, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

var temporal = map[string]Op{
	"EX": OpEX, "AX": OpAX,
	"EF": OpEF, "AF": OpAF,
	"EG": OpEG, "AG": OpAG,
}

func (p *parser) unary() (Formula, error) {
	t := p.peek()
	switch t.kind {
	case tokNot:
		p.next()
		sub, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Not(sub), nil
	case tokIdent:
		if op, ok := temporal[t.text]; ok {
			p.next()
			sub, err := p.unary()
			if err != nil {
				return nil, err
			}
			return NewUnary(op, sub), nil
		}
	}
	return p.primary()
}

func (p *parser) primary() (Formula, error) {
	t := p.next()
	switch t.kind {
	case tokTrue:
		return True(), nil
	case tokFalse:
		return False(), nil
	case tokLParen:
		f, err := p.implies()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return f, nil
	case tokIdent:
		if (t.text == "E" || t.text == "A") && p.peek().kind == tokLBrack {
			return p.until(t.text)
		}
		pred, ok := p.resolve(t.text)
		if !ok || pred == nil {
			return nil, fmt.Errorf("%q at %d: %w", t.text, t.pos, ErrUnknownProp)
		}
		return Atom(t.text, pred), nil
	case tokQuoted:
		pred, ok := p.resolve(t.text)
		if !ok || pred == nil {
			return nil, fmt.Errorf("%q at %d: %w", t.text, t.pos, ErrUnknownProp)
		}
		return Atom(t.text, pred), nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

// until parses the bracketed part of E[φ U ψ] or A[φ U ψ].
func (p *parser) until(quant string) (Formula, error) {
	p.next() // [
	left, err := p.implies()
	if err != nil {
		return nil, err
	}
	t := p.next()
	if t.kind != tokIdent || t.text != "U" {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected 'U', found %q", t.text)}
	}
	right, err := p.implies()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokRBrack, "']'"); err != nil {
		return nil, err
	}
	if quant == "E" {
		return EU(left, right), nil
	}
	return AU(left, right), nil
}
