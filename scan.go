package xaml

// scanner walks a single source line, pos is the 0-based byte column.
type scanner struct {
	s   string
	pos int
}

func (z *scanner) peek(i int) byte {
	if z.pos+i < len(z.s) {
		return z.s[z.pos+i]
	}
	return 0
}

func (z *scanner) eol() bool {
	return len(z.s) <= z.pos
}

func (z *scanner) rest() string {
	if z.eol() {
		return ""
	}
	return z.s[z.pos:]
}

func (z *scanner) hasPrefix(prefix string) bool {
	return len(prefix) <= len(z.s)-z.pos && z.s[z.pos:z.pos+len(prefix)] == prefix
}

func (z *scanner) skipWhitespace() int {
	n := 0
	for c := z.peek(0); c == ' ' || c == '\t'; c = z.peek(0) {
		z.pos++
		n++
	}
	return n
}

// column returns the 1-based column of the current position.
func (z *scanner) column() int {
	return z.pos + 1
}

// atDataSep is true for a colon that separates data from an element, ie. followed by whitespace or the line end.
func (z *scanner) atDataSep() bool {
	if z.peek(0) != ':' {
		return false
	}
	c := z.peek(1)
	return c == 0 || c == ' ' || c == '\t'
}

// quoted reads a single or double quoted string without escape processing.
// It returns false when the closing quote is missing.
func (z *scanner) quoted() (string, bool) {
	q := z.peek(0)
	start := z.pos + 1
	for i := start; i < len(z.s); i++ {
		if z.s[i] == q {
			z.pos = i + 1
			return z.s[start:i], true
		}
	}
	return "", false
}

// word reads up to whitespace or a data separator.
func (z *scanner) word() string {
	start := z.pos
	for !z.eol() {
		if c := z.peek(0); c == ' ' || c == '\t' || z.atDataSep() {
			break
		}
		z.pos++
	}
	return z.s[start:z.pos]
}

// expr reads a code expression. Brackets nest and quoted strings are skipped, the expression ends at
// whitespace, a data separator or an unbalanced closing bracket.
func (z *scanner) expr() string {
	start := z.pos
	depth := 0
	for !z.eol() {
		c := z.peek(0)
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return z.s[start:z.pos]
			}
			depth--
		case '\'', '"':
			z.skipString(c)
			continue
		case ' ', '\t':
			if depth == 0 {
				return z.s[start:z.pos]
			}
		case ':':
			if depth == 0 && z.atDataSep() {
				return z.s[start:z.pos]
			}
		}
		z.pos++
	}
	return z.s[start:z.pos]
}

// skipString skips a string literal inside code, backslashes escape.
func (z *scanner) skipString(q byte) {
	z.pos++
	for !z.eol() {
		c := z.peek(0)
		z.pos++
		if c == '\\' {
			z.pos++
		} else if c == q {
			return
		}
	}
	if len(z.s) < z.pos {
		z.pos = len(z.s)
	}
}

// name reads an attribute name. A backslash escapes the next character and a colon belongs to the name
// when followed by a name character or an equal sign.
func (z *scanner) name() string {
	var buf []byte
	for !z.eol() {
		c := z.peek(0)
		if c == '\\' && z.pos+1 < len(z.s) {
			buf = append(buf, z.peek(1))
			z.pos += 2
		} else if isNameChar(c) {
			buf = append(buf, c)
			z.pos++
		} else if c == ':' && (isNameChar(z.peek(1)) || z.peek(1) == '=') {
			buf = append(buf, c)
			z.pos++
		} else {
			break
		}
	}
	return string(buf)
}

// tag reads an element name, a colon belongs to it when followed by a letter.
func (z *scanner) tag() string {
	start := z.pos
	for !z.eol() {
		c := z.peek(0)
		if isNameChar(c) || c == ':' && isNameStart(z.peek(1)) {
			z.pos++
			continue
		}
		break
	}
	return z.s[start:z.pos]
}
