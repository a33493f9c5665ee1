// Package xaml tokenizes and parses Xaml, an indentation based markup language that compiles to XML and HTML.
package xaml

import (
	"fmt"
	"io"
	"strings"
)

// Option configures tokenizing and parsing.
type Option func(*config)

type config struct {
	docType    string
	dialect    *Dialect
	defaultTag string
}

func newConfig(opts []Option) config {
	cfg := config{
		docType: "xml",
		dialect: DefaultDialect(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithDocType sets the doc type of pages that lack a !!! declaration, the default is xml.
func WithDocType(docType string) Option {
	return func(cfg *config) {
		cfg.docType = docType
	}
}

// WithDialect replaces the default dialect.
func WithDialect(d *Dialect) Option {
	return func(cfg *config) {
		cfg.dialect = d
	}
}

// WithDefaultTag sets the tag of lines starting with a shortcut for every doc type.
func WithDefaultTag(tag string) Option {
	return func(cfg *config) {
		cfg.defaultTag = tag
	}
}

////////////////////////////////////////////////////////////////

// mode is the state a line is lexed in.
type mode interface {
	isMode()
}

type normalMode struct{}

// rawMode captures lines indented deeper than indent verbatim.
type rawMode struct {
	indent int
	filter string // empty for the content of raw elements
	lines  []string
}

// commentMode collects a comment with its deeper lines and the // lines that follow at the same indentation.
type commentMode struct {
	indent  int
	lines   []string
	pending []string // deeper lines not yet dedented
	blanks  int
}

// continuationMode extends the attributes of the last element line, on | lines or up to a closing parenthesis.
type continuationMode struct {
	indent int
	paren  bool
	raw    bool // the element captures its deeper lines
}

func (normalMode) isMode()        {}
func (*rawMode) isMode()          {}
func (*commentMode) isMode()      {}
func (*continuationMode) isMode() {}

////////////////////////////////////////////////////////////////

// Tokenizer is the state for the tokenizer.
type Tokenizer struct {
	r          *LineStream
	dialect    *Dialect
	defaultTag string
	docType    string
	err        error

	line int    // number of the current line
	text string // current line

	indents []string // leading whitespace of the open levels
	mode    mode
	queue   []Token
	head    int
	blanks  int

	opener   bool   // the last content line can take indented children
	paren    bool   // inside parenthesised attributes
	lineData bool   // the last element of the line has data
	lastTag  string // tag of the last element on the line
	content  bool   // a token other than a blank line was emitted
	declared bool   // a declaration was emitted and no element followed yet

	attrs map[string]bool // attribute names of the last element, true for code values
}

// NewTokenizer returns a new Tokenizer for the given lines.
func NewTokenizer(lines []string, opts ...Option) *Tokenizer {
	return newTokenizer(NewLineStream(lines), newConfig(opts))
}

func newTokenizer(r *LineStream, cfg config) *Tokenizer {
	return &Tokenizer{
		r:          r,
		dialect:    cfg.dialect,
		defaultTag: cfg.defaultTag,
		docType:    cfg.docType,
		indents:    []string{""},
		mode:       normalMode{},
	}
}

// Err returns the error encountered during tokenizing, this is io.EOF at the end of input.
func (t *Tokenizer) Err() error {
	return t.err
}

// Line returns the number of the line that was read last.
func (t *Tokenizer) Line() int {
	return t.line
}

// Next returns the next Token. It returns ErrorToken when the input is exhausted or an error was encountered,
// using Err() one can retrieve the error. After an error the tokens of the offending line are discarded.
func (t *Tokenizer) Next() Token {
	for t.head == len(t.queue) {
		t.queue, t.head = t.queue[:0], 0
		if t.err != nil {
			return Token{TokenType: ErrorToken}
		}
		if err := t.step(); err != nil {
			if err != io.EOF {
				t.queue = t.queue[:0]
			}
			t.err = err
		}
	}
	tok := t.queue[t.head]
	t.head++
	return tok
}

// Tokens returns all remaining tokens.
func (t *Tokenizer) Tokens() ([]Token, error) {
	var tokens []Token
	for {
		tok := t.Next()
		if tok.TokenType == ErrorToken {
			break
		}
		tokens = append(tokens, tok)
	}
	if t.err != io.EOF {
		return tokens, t.err
	}
	return tokens, nil
}

func (t *Tokenizer) emit(tok Token) {
	switch tok.TokenType {
	case BlankLineToken:
	case ElementToken:
		t.declared = false
		t.content = true
	case MetaToken:
		t.declared = true
		t.content = true
	default:
		t.content = true
	}
	t.queue = append(t.queue, tok)
}

func (t *Tokenizer) flushBlanks() {
	for ; 0 < t.blanks; t.blanks-- {
		t.emit(Token{TokenType: BlankLineToken})
	}
}

func (t *Tokenizer) errorf(col int, format string, args ...interface{}) error {
	return NewError(ParseError, fmt.Sprintf(format, args...), t.line, t.text, col)
}

func (t *Tokenizer) declErrorf(col int, format string, args ...interface{}) error {
	return NewError(DeclarationError, fmt.Sprintf(format, args...), t.line, t.text, col)
}

func (t *Tokenizer) readLine() (string, bool) {
	line, ok := t.r.GetLine()
	if !ok {
		return "", false
	}
	t.line++
	t.text = trimNewline(line)
	return t.text, true
}

func (t *Tokenizer) unreadLine(line string) {
	t.r.PushLine(line)
	t.line--
}

// step lexes one line, dispatching on the current mode.
func (t *Tokenizer) step() error {
	line, ok := t.readLine()
	if !ok {
		return t.finish()
	}
	switch m := t.mode.(type) {
	case *rawMode:
		return t.lexRaw(m, line)
	case *commentMode:
		return t.lexComment(m, line)
	case *continuationMode:
		return t.lexContinuation(m, line)
	}
	return t.lexLine(line)
}

// finish closes the open block and all indentation levels.
func (t *Tokenizer) finish() error {
	switch m := t.mode.(type) {
	case *rawMode:
		t.flushRaw(m)
	case *commentMode:
		t.flushComment(m)
	case *continuationMode:
		if m.paren {
			return t.errorf(len(t.text)+1, "missing closing parenthesis")
		}
	}
	t.mode = normalMode{}
	for 1 < len(t.indents) {
		t.indents = t.indents[:len(t.indents)-1]
		t.emit(Token{TokenType: DedentToken})
	}
	t.flushBlanks()
	return io.EOF
}

////////////////////////////////////////////////////////////////

func (t *Tokenizer) lexLine(line string) error {
	if IsAllWhitespace(line) {
		t.blanks++
		return nil
	}
	w := Indentation(line)
	if err := t.indent(line[:w]); err != nil {
		return err
	}
	t.flushBlanks()
	return t.lexContent(&scanner{s: line, pos: w})
}

// indent compares the leading whitespace to the stack and emits the structural tokens. A deeper level must
// extend the whitespace of the level above it, so tabs and spaces are never compared by width.
func (t *Tokenizer) indent(prefix string) error {
	top := t.indents[len(t.indents)-1]
	w := len(prefix)
	switch {
	case prefix == top:
	case strings.HasPrefix(prefix, top):
		if !t.opener {
			return t.errorf(w+1, "unexpected indentation")
		}
		t.indents = append(t.indents, prefix)
		t.emit(Token{TokenType: IndentToken})
	case strings.HasPrefix(top, prefix):
		for w < len(t.indents[len(t.indents)-1]) {
			t.indents = t.indents[:len(t.indents)-1]
			t.emit(Token{TokenType: DedentToken})
		}
		if t.indents[len(t.indents)-1] != prefix {
			return t.errorf(w+1, "unindent does not match any outer indentation level")
		}
	default:
		return t.errorf(w+1, "inconsistent use of tabs and spaces in indentation")
	}
	t.opener = false
	return nil
}

// lexContent classifies a line by its first characters.
func (t *Tokenizer) lexContent(z *scanner) error {
	w := z.pos
	c := z.peek(0)
	switch {
	case c == '~' || c == '@':
		return t.lexElementLine(z, w)
	case z.hasPrefix("!!!"):
		if w != 0 {
			return t.errorf(w+1, "declaration must not be indented")
		}
		z.pos += 3
		return t.lexMeta(z)
	case z.hasPrefix("//"):
		t.mode = &commentMode{
			indent: w,
			lines:  []string{TrimWhitespace(z.s[w+2:])},
		}
	case c == '-':
		z.pos++
		code := TrimWhitespace(z.rest())
		if code == "" {
			return t.errorf(z.column(), "missing code after '-'")
		}
		t.emit(Token{TokenType: PythonToken, Value: code, MakeSafe: true})
		t.opener = true
	case c == '=':
		z.pos++
		expr := TrimWhitespace(z.rest())
		if expr == "" {
			return t.errorf(z.column(), "missing expression after '='")
		}
		t.emit(Token{TokenType: CodeDataToken, Value: expr, MakeSafe: true})
	case c == ':' && isNameStart(z.peek(1)):
		z.pos++
		p := z.pos
		name := z.word()
		if _, ok := t.dialect.Filter(name); !ok {
			return t.errorf(p+1, "unknown filter %q", name)
		}
		z.skipWhitespace()
		if !z.eol() {
			return t.errorf(z.column(), "unexpected content after filter")
		}
		t.mode = &rawMode{indent: w, filter: name}
	case c == '|':
		return t.errorf(w+1, "continuation line without element")
	case (c == '.' || c == '#' && z.peek(1) != '{') && t.elementDefault() != "":
		return t.lexElementLine(z, w)
	case c == '\\':
		z.pos++
		return t.lexTextLine(z, w)
	default:
		return t.lexTextLine(z, w)
	}
	return nil
}

func (t *Tokenizer) elementDefault() string {
	if t.defaultTag != "" {
		return t.defaultTag
	}
	return t.dialect.DefaultTags[t.docType]
}

func (t *Tokenizer) lexElementLine(z *scanner, w int) error {
	if err := t.lexElement(z, false); err != nil {
		return err
	}
	raw := !t.lineData && t.dialect.RawElements[t.lastTag]
	if t.paren {
		t.mode = &continuationMode{indent: w, paren: true, raw: raw}
	} else if !t.lineData {
		t.mode = &continuationMode{indent: w, raw: raw}
	}
	return nil
}

// lexElement lexes an element with its attributes and data. The scanner is at ~, @ or a shortcut sigil.
func (t *Tokenizer) lexElement(z *scanner, inline bool) error {
	var tag string
	switch z.peek(0) {
	case '~':
		z.pos++
		if !isNameStart(z.peek(0)) {
			return t.errorf(z.column(), "bad tag name")
		}
		tag = z.tag()
	case '@':
		tag = t.dialect.FieldTag // the sigil itself is lexed as the name shortcut
	default:
		tag = t.elementDefault()
	}
	t.emit(Token{TokenType: ElementToken, Name: tag, Inline: inline})
	t.opener = true
	t.lineData = false
	t.lastTag = tag
	t.attrs = map[string]bool{}
	return t.lexAttrs(z)
}

// lexAttrs lexes attributes up to the end of the line or up to data.
func (t *Tokenizer) lexAttrs(z *scanner) error {
	for {
		z.skipWhitespace()
		if z.eol() {
			return nil
		}
		c := z.peek(0)
		switch {
		case z.atDataSep():
			if t.paren {
				return t.errorf(z.column(), "data inside parentheses")
			}
			z.pos++
			return t.lexData(z)
		case c == '(':
			if t.paren {
				return t.errorf(z.column(), "nested parenthesis")
			}
			t.paren = true
			z.pos++
		case c == ')':
			if !t.paren {
				return t.errorf(z.column(), "unexpected closing parenthesis")
			}
			t.paren = false
			z.pos++
		case c == '\'' || c == '"':
			return t.errorf(z.column(), "unexpected string")
		default:
			if sc, ok := t.dialect.Shortcut(c); ok {
				p := z.pos
				z.pos++
				v := z.word()
				if t.paren {
					v = strings.TrimRight(v, ")")
					z.pos = p + 1 + len(v)
				}
				if v == "" {
					return t.errorf(p+1, "missing value after %q", c)
				}
				if sc.Spaces {
					v = strings.ReplaceAll(v, "_", " ")
				}
				if err := t.emitAttr(p+1, Token{TokenType: StrAttrToken, Name: sc.Attr, Value: v, MakeSafe: true}); err != nil {
					return err
				}
				continue
			}
			if err := t.lexAttr(z); err != nil {
				return err
			}
		}
	}
}

// lexAttr lexes name='value', name=expr or a bare name.
func (t *Tokenizer) lexAttr(z *scanner) error {
	p := z.pos
	name := z.name()
	if name == "" {
		return t.errorf(p+1, "unexpected character %q", z.peek(0))
	}
	if z.peek(0) != '=' {
		return t.emitAttr(p+1, Token{TokenType: StrAttrToken, Name: name, Value: name, MakeSafe: true})
	}
	z.pos++
	if c := z.peek(0); c == '\'' || c == '"' {
		v, ok := z.quoted()
		if !ok {
			return t.errorf(z.column(), "unterminated string")
		}
		return t.emitAttr(p+1, Token{TokenType: StrAttrToken, Name: name, Value: v, MakeSafe: true})
	}
	v := z.expr()
	if v == "" {
		return t.errorf(z.column(), "missing value of attribute %q", name)
	}
	return t.emitAttr(p+1, Token{TokenType: CodeAttrToken, Name: name, Value: v, MakeSafe: true})
}

// emitAttr emits an attribute of the last element. Repeated names are an error, except for string
// class values which accumulate.
func (t *Tokenizer) emitAttr(col int, tok Token) error {
	code := tok.TokenType == CodeAttrToken
	if prev, ok := t.attrs[tok.Name]; ok && (tok.Name != "class" || prev || code) {
		return t.errorf(col, "duplicate attribute %q on element %s", tok.Name, t.lastTag)
	}
	if t.attrs == nil {
		t.attrs = map[string]bool{}
	}
	t.attrs[tok.Name] = code
	t.emit(tok)
	return nil
}

// lexData lexes what follows the colon of an element line: an inline element, code or text.
func (t *Tokenizer) lexData(z *scanner) error {
	rest := z.rest()
	if IsAllWhitespace(rest) {
		return t.errorf(z.column(), "missing data after ':'")
	}
	z.skipWhitespace()
	switch z.peek(0) {
	case '~', '@':
		return t.lexElement(z, true)
	case '=':
		z.pos++
		expr := TrimWhitespace(z.rest())
		if expr == "" {
			return t.errorf(z.column(), "missing expression after '='")
		}
		t.emit(Token{TokenType: CodeDataToken, Value: expr, MakeSafe: true, Inline: true})
	default:
		if r := strings.TrimRight(rest, " \t"); strings.HasSuffix(r, "/") {
			// whitespace before a trailing slash is kept
			body := r[:len(r)-1]
			if !IsAllWhitespace(body) {
				body = strings.TrimLeft(body, " \t")
			}
			t.emit(Token{TokenType: StrDataToken, Value: body, MakeSafe: true, Inline: true})
		} else if err := t.lexText(TrimWhitespace(rest), z.column(), true); err != nil {
			return err
		}
	}
	t.lineData = true
	return nil
}

// lexTextLine lexes a line of text. Deeper lines that follow belong to the text and keep their relative indentation.
func (t *Tokenizer) lexTextLine(z *scanner, w int) error {
	col := z.column()
	lines := []string{strings.TrimRight(z.rest(), " \t")}
	var blanks []string
	for {
		line, ok := t.readLine()
		if !ok {
			break
		}
		if IsAllWhitespace(line) {
			blanks = append(blanks, line)
			continue
		}
		if Indentation(line) <= w {
			t.unreadLine(line)
			break
		}
		for range blanks {
			lines = append(lines, "")
		}
		blanks = blanks[:0]
		lines = append(lines, strings.TrimRight(line[w:], " \t"))
	}
	for i := len(blanks) - 1; 0 <= i; i-- {
		t.unreadLine(blanks[i])
	}
	return t.lexText(strings.Join(lines, "\n"), col, false)
}

// lexText emits text, split into data and code around #{expr} interpolations. A backslash escapes the marker.
// Pieces after the first continue the line of the first.
func (t *Tokenizer) lexText(s string, col int, inline bool) error {
	sb := strings.Builder{}
	n := 0
	for {
		i := strings.Index(s, "#{")
		if i < 0 {
			sb.WriteString(s)
			break
		}
		if 0 < i && s[i-1] == '\\' {
			sb.WriteString(s[:i-1])
			sb.WriteString("#{")
			s = s[i+2:]
			continue
		}
		j := strings.IndexByte(s[i+2:], '}')
		if j < 0 {
			return t.errorf(col, "unterminated interpolation")
		}
		expr := TrimWhitespace(s[i+2 : i+2+j])
		if expr == "" {
			return t.errorf(col, "empty interpolation")
		}
		sb.WriteString(s[:i])
		if 0 < sb.Len() {
			t.emit(Token{TokenType: StrDataToken, Value: sb.String(), MakeSafe: true, Inline: inline || 0 < n})
			sb.Reset()
			n++
		}
		t.emit(Token{TokenType: CodeDataToken, Value: expr, MakeSafe: true, Inline: inline || 0 < n})
		n++
		s = s[i+3+j:]
	}
	if 0 < sb.Len() || n == 0 {
		t.emit(Token{TokenType: StrDataToken, Value: sb.String(), MakeSafe: true, Inline: inline || 0 < n})
	}
	return nil
}

////////////////////////////////////////////////////////////////

func (t *Tokenizer) lexContinuation(m *continuationMode, line string) error {
	if m.paren {
		if IsAllWhitespace(line) {
			return nil
		}
		if err := t.lexAttrs(&scanner{s: line, pos: Indentation(line)}); err != nil {
			return err
		}
		if !t.paren {
			m.paren = false
			if t.lineData {
				t.mode = normalMode{}
			}
		}
		return nil
	}

	w := Indentation(line)
	if !IsAllWhitespace(line) && m.indent <= w && line[w] == '|' {
		if err := t.lexAttrs(&scanner{s: line, pos: w + 1}); err != nil {
			return err
		}
		if t.paren {
			m.paren = true
		} else if t.lineData {
			t.mode = normalMode{}
		}
		return nil
	}

	t.mode = normalMode{}
	if m.raw && (IsAllWhitespace(line) || m.indent < w) {
		t.mode = &rawMode{indent: m.indent}
	}
	t.unreadLine(line)
	return nil
}

func (t *Tokenizer) lexRaw(m *rawMode, line string) error {
	if IsAllWhitespace(line) || m.indent < Indentation(line) {
		m.lines = append(m.lines, line)
		return nil
	}
	t.mode = normalMode{}
	t.flushRaw(m)
	t.unreadLine(line)
	return nil
}

// flushRaw emits a captured block. Leading and trailing blank lines are dropped.
func (t *Tokenizer) flushRaw(m *rawMode) {
	lines := dedent(m.lines)
	for 0 < len(lines) && lines[0] == "" {
		lines = lines[1:]
	}
	for 0 < len(lines) && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	value := strings.Join(lines, "\n")
	if m.filter != "" {
		t.emit(Token{TokenType: StrDataToken, Name: m.filter, Value: value})
	} else if 0 < len(lines) {
		t.emit(Token{TokenType: IndentToken})
		t.emit(Token{TokenType: StrDataToken, Value: value})
		t.emit(Token{TokenType: DedentToken})
	} else {
		t.blanks += len(m.lines)
	}
}

func (t *Tokenizer) lexComment(m *commentMode, line string) error {
	if IsAllWhitespace(line) {
		m.blanks++
		return nil
	}
	w := Indentation(line)
	if m.indent < w {
		for ; 0 < m.blanks; m.blanks-- {
			m.pending = append(m.pending, "")
		}
		m.pending = append(m.pending, line)
		return nil
	}
	if w == m.indent && m.blanks == 0 && strings.HasPrefix(line[w:], "//") {
		m.lines = append(m.lines, dedent(m.pending)...)
		m.lines = append(m.lines, TrimWhitespace(line[w+2:]))
		m.pending = m.pending[:0]
		return nil
	}
	t.mode = normalMode{}
	t.flushComment(m)
	t.unreadLine(line)
	return nil
}

// flushComment emits the comment, blank lines that trail it are given back.
func (t *Tokenizer) flushComment(m *commentMode) {
	lines := append(m.lines, dedent(m.pending)...)
	t.emit(Token{TokenType: CommentToken, Value: strings.Join(lines, "\n")})
	t.blanks += m.blanks
}
