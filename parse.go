package xaml

import (
	"io"
	"strings"
)

// Document is a parsed input, one page per independent tree.
type Document struct {
	Pages []*Page
}

// Page is a tree with its declaration.
type Page struct {
	Meta *NodeMeta
	Root *NodeRoot
}

// DocType returns the doc type of the page, eg. xml or html.
func (p *Page) DocType() string {
	return p.Meta.DocType
}

// Version returns the doc type version of the page.
func (p *Page) Version() string {
	return p.Meta.Version
}

// session numbers the nodes of a single parse.
type session struct {
	ids int
}

func (s *session) nextID() int {
	s.ids++
	return s.ids
}

////////////////////////////////////////////////////////////////

type parser struct {
	z       *TokenBuffer
	cfg     config
	session *session

	page       *Page
	stack      []container
	hasElement bool
	declared   bool

	target interface{}  // *NodeElement or *NodeMeta that receives attributes
	opener container    // last element or code node of the current line
	lineEl *NodeElement // last element of the current line
}

// Parse parses the lines of a Xaml document into pages.
func Parse(lines []string, opts ...Option) (*Document, error) {
	cfg := newConfig(opts)
	p := &parser{
		z:       NewTokenBuffer(newTokenizer(NewLineStream(lines), cfg)),
		cfg:     cfg,
		session: &session{},
	}
	return p.parse()
}

// ParseString parses a Xaml document.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(SplitLines(s), opts...)
}

// ParseBytes decodes and parses a Xaml document, see Decode.
func ParseBytes(b []byte, opts ...Option) (*Document, error) {
	s, err := Decode(b)
	if err != nil {
		return nil, err
	}
	return ParseString(s, opts...)
}

// SplitLines splits text into lines, a final newline does not start an extra line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (p *parser) newPage() {
	version, _ := ResolveVersion(p.cfg.docType, "")
	meta := NewMeta(p.cfg.docType, version)
	meta.Implicit = true
	p.page = &Page{
		Meta: meta,
		Root: NewRoot(),
	}
	p.stack = []container{p.page.Root}
	p.hasElement = false
	p.declared = false
	p.resetLine()
}

func (p *parser) resetLine() {
	p.target, p.opener, p.lineEl = nil, nil, nil
}

func (p *parser) top() container {
	return p.stack[len(p.stack)-1]
}

func (p *parser) parse() (*Document, error) {
	doc := &Document{}
	p.newPage()
	for {
		tok := *p.z.Shift()
		switch tok.TokenType {
		case ErrorToken:
			if err := p.z.Err(); err != io.EOF {
				return nil, err
			}
			doc.Pages = append(doc.Pages, p.page)
			return doc, nil
		case MetaToken:
			if 1 < len(p.stack) {
				return nil, &InternalError{"declaration inside an element", tok}
			} else if p.declared && !p.hasElement {
				return nil, &InternalError{"declaration without content", tok}
			}
			if p.hasElement {
				if p.trailing() {
					p.skipOptions()
					continue
				}
				doc.Pages = append(doc.Pages, p.page)
				p.newPage()
			}
			p.page.Meta = NewMeta(tok.Name, tok.Value)
			p.declared = true
			p.resetLine()
			p.target = p.page.Meta
		case ElementToken:
			el := NewElement(p.session.nextID(), tok.Name)
			el.Inline = tok.Inline
			if tok.Inline {
				if p.lineEl == nil {
					return nil, &InternalError{"inline element without parent", tok}
				}
				p.lineEl.appendChild(el)
			} else {
				p.top().appendChild(el)
			}
			p.target, p.opener, p.lineEl = el, el, el
			p.hasElement = true
		case PythonToken:
			code := NewCode(p.session.nextID(), tok.Value)
			p.top().appendChild(code)
			p.resetLine()
			p.opener = code
		case IndentToken:
			if p.opener == nil {
				return nil, &InternalError{"indentation without parent", tok}
			}
			p.stack = append(p.stack, p.opener)
			p.resetLine()
		case DedentToken:
			if len(p.stack) == 1 {
				return nil, &InternalError{"dedent at root", tok}
			}
			p.stack = p.stack[:len(p.stack)-1]
			p.resetLine()
		case StrAttrToken, CodeAttrToken:
			attr := Attr{
				Name:     tok.Name,
				Value:    tok.Value,
				Code:     tok.TokenType == CodeAttrToken,
				MakeSafe: tok.MakeSafe,
			}
			switch target := p.target.(type) {
			case *NodeElement:
				if !addAttr(target, attr) {
					return nil, &InternalError{"duplicate attribute", tok}
				}
			case *NodeMeta:
				target.Options = append(target.Options, attr)
			default:
				return nil, &InternalError{"attribute without element", tok}
			}
		case StrDataToken, CodeDataToken:
			text := NewText(tok.Value, tok.MakeSafe)
			text.Code = tok.TokenType == CodeDataToken
			text.Filter = tok.Name
			text.Inline = tok.Inline
			if tok.Inline && p.lineEl != nil {
				p.lineEl.appendChild(text)
			} else {
				// interpolated pieces of a text line continue at the stack top
				p.top().appendChild(text)
				if !tok.Inline {
					p.resetLine()
				}
			}
		case CommentToken:
			p.top().appendChild(NewComment(strings.Split(tok.Value, "\n")))
			p.resetLine()
		case BlankLineToken:
			p.top().appendChild(NewBlank())
		default:
			return nil, &InternalError{"unknown token", tok}
		}
	}
}

// trailing is true when only the options of the current declaration and blank lines remain.
func (p *parser) trailing() bool {
	for i := 0; ; i++ {
		switch p.z.Peek(i).TokenType {
		case StrAttrToken, BlankLineToken:
		case ErrorToken:
			return p.z.Err() == io.EOF
		default:
			return false
		}
	}
}

func (p *parser) skipOptions() {
	for p.z.Peek(0).TokenType == StrAttrToken {
		p.z.Shift()
	}
}

// addAttr appends an attribute, class values accumulate. It returns false for other repeated names.
func addAttr(el *NodeElement, attr Attr) bool {
	for i, a := range el.Attrs {
		if a.Name != attr.Name {
			continue
		}
		if attr.Name == "class" && !a.Code && !attr.Code {
			el.Attrs[i].Value += " " + attr.Value
			return true
		}
		return false
	}
	el.Attrs = append(el.Attrs, attr)
	return true
}
