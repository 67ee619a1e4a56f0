package snippet

import "strings"

// Parse parses a snippet body into a node tree. The grammar is the LSP
// snippet syntax subset: $1, ${1}, ${1:placeholder}, ${1|a,b|},
// ${1/regex/format/flags}, and the variable forms $name, ${name},
// ${name:placeholder}, ${name/regex/format/flags}.
//
// Anything that does not start a valid construct is literal text: a
// lone "$", an unmatched "{" or "}", and any escaped character.
func Parse(body string) (NodeList, error) {
	p := &parser{src: body}
	list, err := p.parseList(false)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ParseLines parses a snippet body given as separate lines. The lines
// are joined with "\n" before parsing.
func ParseLines(lines []string) (NodeList, error) {
	return Parse(strings.Join(lines, "\n"))
}

type parser struct {
	src string
	pos int
	lit strings.Builder
}

// flush moves accumulated literal text into the list.
func (p *parser) flush(list NodeList) NodeList {
	if p.lit.Len() > 0 {
		list = append(list, &Text{Content: p.lit.String()})
		p.lit.Reset()
	}
	return list
}

// errHere builds a SyntaxError at the current position.
func (p *parser) errHere(msg string) *SyntaxError {
	found := ""
	if p.pos < len(p.src) {
		found = string(p.src[p.pos])
	}
	return &SyntaxError{Offset: p.pos, Found: found, Msg: msg}
}

// parseList parses nodes until end of input, or until an unescaped "}"
// when inside a placeholder. The terminating "}" is not consumed.
func (p *parser) parseList(inPlaceholder bool) (NodeList, error) {
	var list NodeList
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 < len(p.src) {
				n := p.src[p.pos+1]
				if n == '$' || n == '}' || n == '\\' {
					p.lit.WriteByte(n)
					p.pos += 2
					continue
				}
			}
			// A backslash not starting an escape is literal.
			p.lit.WriteByte('\\')
			p.pos++
		case c == '$':
			node, err := p.parseDollar()
			if err != nil {
				return nil, err
			}
			if node != nil {
				list = p.flush(list)
				list = append(list, node)
			}
		case c == '}' && inPlaceholder:
			return p.flush(list), nil
		default:
			p.lit.WriteByte(c)
			p.pos++
		}
	}
	if inPlaceholder {
		return nil, p.errHere("placeholder not closed with `}`")
	}
	return p.flush(list), nil
}

// parseDollar parses a construct starting at "$". It returns nil with
// no error when the "$" turns out to be literal text; the literal is
// written to the pending text run.
func (p *parser) parseDollar() (Node, error) {
	start := p.pos
	p.pos++ // consume '$'
	if p.pos >= len(p.src) {
		p.lit.WriteByte('$')
		return nil, nil
	}
	switch c := p.src[p.pos]; {
	case isDigit(c):
		return &Tabstop{ID: p.scanDigits()}, nil
	case isNameStart(c):
		return &Variable{Name: p.scanName()}, nil
	case c == '{':
		return p.parseBraced(start)
	default:
		p.lit.WriteByte('$')
		return nil, nil
	}
}

// parseBraced parses "${...}" forms. start is the offset of the "$".
func (p *parser) parseBraced(start int) (Node, error) {
	p.pos++ // consume '{'
	if p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case isDigit(c):
			return p.parseBracedTabstop()
		case isNameStart(c):
			return p.parseBracedVariable()
		}
	}
	// "${" that starts neither a tabstop nor a variable is literal.
	p.lit.WriteString("${")
	p.pos = start + 2
	return nil, nil
}

func (p *parser) parseBracedTabstop() (Node, error) {
	ts := &Tabstop{ID: p.scanDigits()}
	if p.pos >= len(p.src) {
		return nil, p.errHere("tabstop id must be followed by one of `}`,`:`,`|`,`/`")
	}
	switch p.src[p.pos] {
	case '}':
		p.pos++
		return ts, nil
	case ':':
		p.pos++
		ph, err := p.parsePlaceholder()
		if err != nil {
			return nil, err
		}
		ts.Placeholder = ph
		return ts, nil
	case '|':
		choices, err := p.parseChoices()
		if err != nil {
			return nil, err
		}
		ts.Choices = choices
		return ts, nil
	case '/':
		tr, err := p.parseTransform()
		if err != nil {
			return nil, err
		}
		ts.Transform = tr
		return ts, nil
	default:
		return nil, p.errHere("tabstop id must be followed by one of `}`,`:`,`|`,`/`")
	}
}

func (p *parser) parseBracedVariable() (Node, error) {
	v := &Variable{Name: p.scanName()}
	if p.pos >= len(p.src) {
		return nil, p.errHere("variable name must be followed by one of `}`,`:`,`/`")
	}
	switch p.src[p.pos] {
	case '}':
		p.pos++
		return v, nil
	case ':':
		p.pos++
		ph, err := p.parsePlaceholder()
		if err != nil {
			return nil, err
		}
		v.Placeholder = ph
		return v, nil
	case '/':
		tr, err := p.parseTransform()
		if err != nil {
			return nil, err
		}
		v.Transform = tr
		return v, nil
	default:
		return nil, p.errHere("variable name must be followed by one of `}`,`:`,`/`")
	}
}

// parsePlaceholder parses placeholder nodes up to and including the
// closing "}". Nested "${...}" forms recurse through parseList.
func (p *parser) parsePlaceholder() (NodeList, error) {
	// The caller's pending literal must not leak into the placeholder.
	outer := p.lit.String()
	p.lit.Reset()

	list, err := p.parseList(true)
	if err != nil {
		return nil, err
	}
	p.pos++ // consume '}'

	p.lit.Reset()
	p.lit.WriteString(outer)
	if list == nil {
		list = NodeList{}
	}
	return list, nil
}

// parseChoices parses "|c1,c2,...|}". Inside the list "\,", "\|" and
// "\\" are escapes.
func (p *parser) parseChoices() ([]string, error) {
	p.pos++ // consume '|'
	choices := []string{}
	var cur strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 < len(p.src) {
				n := p.src[p.pos+1]
				if n == ',' || n == '|' || n == '\\' {
					cur.WriteByte(n)
					p.pos += 2
					continue
				}
			}
			cur.WriteByte('\\')
			p.pos++
		case c == ',':
			choices = append(choices, cur.String())
			cur.Reset()
			p.pos++
		case c == '|':
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '}' {
				choices = append(choices, cur.String())
				p.pos += 2
				return choices, nil
			}
			return nil, p.errHere("choice list must close with `|}`")
		default:
			cur.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errHere("choice list must close with `|}`")
}

// parseTransform parses "/regex/format/flags}". The three separators
// must be unescaped and outside any nested "${...}"; inside regex and
// format only "\/" and "\\" are escapes.
func (p *parser) parseTransform() (*Transform, error) {
	const errMsg = "transform must contain exactly 3 unescaped `/` and be closed with `}`"

	p.pos++ // consume leading '/'
	slashes := 1
	depth := 0
	var parts []string
	var cur strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if p.pos+1 < len(p.src) {
				n := p.src[p.pos+1]
				if n == '/' || n == '\\' {
					cur.WriteByte(n)
					p.pos += 2
					continue
				}
			}
			cur.WriteByte('\\')
			p.pos++
		case c == '$' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '{':
			depth++
			cur.WriteString("${")
			p.pos += 2
		case c == '}' && depth > 0:
			depth--
			cur.WriteByte('}')
			p.pos++
		case c == '/' && depth == 0:
			slashes++
			if slashes > 3 {
				return nil, p.errHere(errMsg)
			}
			parts = append(parts, cur.String())
			cur.Reset()
			p.pos++
		case c == '}' && depth == 0:
			if slashes != 3 {
				return nil, p.errHere(errMsg)
			}
			parts = append(parts, cur.String())
			p.pos++
			return &Transform{Pattern: parts[0], Format: parts[1], Flags: parts[2]}, nil
		default:
			cur.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errHere(errMsg)
}

func (p *parser) scanDigits() string {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) scanName() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool { return isNameStart(c) || isDigit(c) }
