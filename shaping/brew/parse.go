package brew

import (
	"fmt"
	"strconv"
	"unicode"
)

// parser is a recursive-descent parser for recipes:
//
//	alternatives = sequence { "|" sequence }
//	sequence     = { term }
//	term         = atom [ quantifier ]
//	atom         = "(" alternatives ")" | class | word
type parser struct {
	input   []rune
	pos     int
	resolve func(name string) (n node, found bool, err error)
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.input)
}

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) skipSpace() {
	for !p.atEnd() && unicode.IsSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at position %d: %s", ErrRecipeSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) parseAlternatives() (node, error) {
	var alts alternatives
	for {
		seq, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		alts = append(alts, seq)
		p.skipSpace()
		if p.peek() != '|' {
			break
		}
		p.pos++
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return alts, nil
}

func (p *parser) parseSequence() (node, error) {
	var seq sequence
	for {
		p.skipSpace()
		if p.atEnd() || p.peek() == '|' || p.peek() == ')' {
			break
		}
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		seq = append(seq, t)
	}
	if len(seq) == 1 {
		return seq[0], nil
	}
	return seq, nil
}

func (p *parser) parseTerm() (node, error) {
	var atom node
	var err error
	switch p.peek() {
	case '(':
		p.pos++
		if atom, err = p.parseAlternatives(); err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("missing ')'")
		}
		p.pos++
	case '[':
		if atom, err = p.parseClass(); err != nil {
			return nil, err
		}
	case '?', '*', '+', '{':
		return nil, p.errorf("quantifier %q without a term", string(p.peek()))
	default:
		if atom, err = p.parseWord(); err != nil {
			return nil, err
		}
	}
	return p.parseQuantifier(atom)
}

func (p *parser) parseQuantifier(atom node) (node, error) {
	switch p.peek() {
	case '?':
		p.pos++
		return repeat{n: atom, min: 0, max: 1}, nil
	case '*':
		p.pos++
		return repeat{n: atom, min: 0, max: maxRepeat}, nil
	case '+':
		p.pos++
		return repeat{n: atom, min: 1, max: maxRepeat}, nil
	case '{':
		start := p.pos
		p.pos++
		m, ok := p.parseInt()
		if !ok {
			return nil, p.errorf("malformed repetition")
		}
		n := m
		if p.peek() == ',' {
			p.pos++
			if n, ok = p.parseInt(); !ok {
				return nil, p.errorf("malformed repetition")
			}
		}
		if p.peek() != '}' || n < m {
			p.pos = start
			return nil, p.errorf("malformed repetition")
		}
		p.pos++
		return repeat{n: atom, min: m, max: n}, nil
	}
	return atom, nil
}

func (p *parser) parseInt() (int, bool) {
	start := p.pos
	for !p.atEnd() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.input[start:p.pos]))
	return n, err == nil
}

// parseClass reads a bracket class. There is no negation; '^' is literal.
func (p *parser) parseClass() (node, error) {
	p.pos++ // '['
	var runes []rune
	seen := make(map[rune]bool)
	add := func(r rune) {
		if !seen[r] {
			seen[r] = true
			runes = append(runes, r)
		}
	}
	for {
		if p.atEnd() {
			return nil, p.errorf("missing ']'")
		}
		if p.peek() == ']' {
			p.pos++
			break
		}
		lo, err := p.classChar()
		if err != nil {
			return nil, err
		}
		if p.peek() == '-' && p.pos+1 < len(p.input) && p.input[p.pos+1] != ']' {
			p.pos++
			hi, err := p.classChar()
			if err != nil {
				return nil, err
			}
			if hi < lo {
				return nil, p.errorf("invalid range %q-%q", lo, hi)
			}
			for r := lo; r <= hi; r++ {
				add(r)
			}
			continue
		}
		add(lo)
	}
	if len(runes) == 0 {
		return nil, p.errorf("empty character class")
	}
	return class(runes), nil
}

func (p *parser) classChar() (rune, error) {
	r := p.peek()
	p.pos++
	if r != '\\' {
		return r, nil
	}
	return p.escape()
}

// escape reads the character after a backslash.
func (p *parser) escape() (rune, error) {
	if p.atEnd() {
		return 0, p.errorf("dangling escape")
	}
	r := p.peek()
	p.pos++
	if r != 'u' {
		return r, nil
	}
	if p.pos+4 > len(p.input) {
		return 0, p.errorf("short \\u escape")
	}
	cp, err := strconv.ParseUint(string(p.input[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, p.errorf("invalid \\u escape")
	}
	p.pos += 4
	return rune(cp), nil
}

func isDelimiter(r rune) bool {
	switch r {
	case '(', ')', '[', '|', '?', '*', '+', '{':
		return true
	}
	return unicode.IsSpace(r)
}

// parseWord reads an ingredient name or a literal.
func (p *parser) parseWord() (node, error) {
	var word []rune
	escaped := false
	for !p.atEnd() && !isDelimiter(p.peek()) {
		r := p.peek()
		p.pos++
		if r == '\\' {
			var err error
			if r, err = p.escape(); err != nil {
				return nil, err
			}
			escaped = true
		}
		word = append(word, r)
	}
	if len(word) == 0 {
		return nil, p.errorf("unexpected %q", string(p.peek()))
	}
	w := string(word)
	if escaped {
		return literal(w), nil
	}
	n, found, err := p.resolve(w)
	if err != nil {
		return nil, err
	}
	if found {
		return n, nil
	}
	if isIdentifier(w) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIngredient, w)
	}
	return literal(w), nil
}

// isIdentifier is true for ASCII words starting with a letter or underscore.
func isIdentifier(w string) bool {
	for i, r := range w {
		if r > unicode.MaxASCII {
			return false
		}
		if !(r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return w != ""
}
