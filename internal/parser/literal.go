package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseLiteral decodes a literal expression: numbers, quoted strings,
// True/False/None, lists, tuples, sets and dicts. JSON's true/false/null
// spellings are accepted as well. Lists, tuples and sets decode to []any,
// dicts to map[string]any with stringified keys, integers to int64 and
// other numbers to float64.
func ParseLiteral(s string) (any, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected %q after value", p.src[p.pos])
	}
	return v, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) errorf(format string, args ...any) error {
	return fmt.Errorf("offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '\\':
			// Line continuation.
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n' {
				p.pos += 2
				continue
			}
			return
		default:
			return
		}
	}
}

func (p *literalParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *literalParser) value() (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch ch := p.peek(); {
	case ch == '[':
		p.pos++
		return p.sequence(']')
	case ch == '(':
		p.pos++
		return p.sequence(')')
	case ch == '{':
		p.pos++
		return p.mapping()
	case ch == '"' || ch == '\'':
		return p.stringSeq()
	case ch == '-' || ch == '+' || ch == '.' || (ch >= '0' && ch <= '9'):
		return p.number()
	case isIdentStart(ch):
		return p.word()
	default:
		return nil, p.errorf("unexpected %q", ch)
	}
}

func (p *literalParser) sequence(closer byte) (any, error) {
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == closer {
			p.pos++
			return out, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", closer)
		}
	}
}

// mapping parses a dict, or a set when the first element has no colon.
func (p *literalParser) mapping() (any, error) {
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return map[string]any{}, nil
	}
	first, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != ':' {
		set := []any{first}
		for {
			p.skipSpace()
			switch p.peek() {
			case '}':
				p.pos++
				return set, nil
			case ',':
				p.pos++
				p.skipSpace()
				if p.peek() == '}' {
					continue
				}
				v, err := p.value()
				if err != nil {
					return nil, err
				}
				set = append(set, v)
			default:
				return nil, p.errorf("expected ',' or '}' in set")
			}
		}
	}

	out := map[string]any{}
	key := first
	for {
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' in dict")
		}
		p.pos++
		p.skipSpace()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out[keyString(key)] = v
		p.skipSpace()
		switch p.peek() {
		case '}':
			p.pos++
			return out, nil
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' {
				p.pos++
				return out, nil
			}
			if key, err = p.value(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("expected ',' or '}' in dict")
		}
	}
}

func keyString(k any) string {
	switch x := k.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// stringSeq parses one or more adjacent string literals and concatenates them.
func (p *literalParser) stringSeq() (any, error) {
	var b strings.Builder
	for {
		s, err := p.stringLiteral(false)
		if err != nil {
			return nil, err
		}
		b.WriteString(s)
		save := p.pos
		p.skipSpace()
		if c := p.peek(); c != '"' && c != '\'' {
			p.pos = save
			return b.String(), nil
		}
	}
}

func (p *literalParser) stringLiteral(raw bool) (string, error) {
	q := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case triple && strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(q), 3)):
			p.pos += 3
			return b.String(), nil
		case !triple && ch == q:
			p.pos++
			return b.String(), nil
		case !triple && ch == '\n':
			return "", p.errorf("newline in string literal")
		case ch == '\\' && p.pos+1 < len(p.src):
			if raw {
				b.WriteByte(ch)
				b.WriteByte(p.src[p.pos+1])
				p.pos += 2
				continue
			}
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string literal")
}

func (p *literalParser) escape(b *strings.Builder) error {
	c := p.src[p.pos+1]
	p.pos += 2
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case '\\', '\'', '"':
		b.WriteByte(c)
	case '\n':
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[c]
		if p.pos+width > len(p.src) {
			return p.errorf("truncated \\%c escape", c)
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
		if err != nil {
			return p.errorf("bad \\%c escape", c)
		}
		b.WriteRune(rune(n))
		p.pos += width
	default:
		b.WriteByte('\\')
		b.WriteByte(c)
	}
	return nil
}

func (p *literalParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for ; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if !isFloat {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errorf("invalid number %q", text)
	}
	return f, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *literalParser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || (p.src[p.pos] >= '0' && p.src[p.pos] <= '9')) {
		p.pos++
	}
	w := p.src[start:p.pos]

	// String prefixes such as r'..', u'..' and b'..'.
	if c := p.peek(); (c == '"' || c == '\'') && len(w) <= 2 {
		switch strings.ToLower(w) {
		case "r", "br", "rb":
			return p.stringLiteral(true)
		case "u", "b":
			return p.stringLiteral(false)
		}
	}

	switch w {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	case "None", "null":
		return nil, nil
	}
	p.pos = start
	return nil, p.errorf("unknown name %q", w)
}
