// Package xml renders Xaml pages as XML.
package xml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xaml-go/xaml"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrVoidContent is returned when an element without end tag has content.
var ErrVoidContent = errors.New("void element has content")

// Options are the rendering options. By default attributes are reordered: name, id and class come first
// and the others follow sorted by name. SourceOrder writes them in the order of the source instead, so that
// re-serializing reproduces the attribute order.
type Options struct {
	Encoding    string                 // declared in the prolog, the output is encoded to it
	Vars        map[string]interface{} // values of args.name and free names in code
	SourceOrder bool                   // keep attributes in source order, see above
	Indent      string                 // four spaces when empty
}

// Renderer writes pages as markup. Markup languages other than XML change its hooks.
type Renderer struct {
	Options
	Dialect *xaml.Dialect

	// Prolog returns the line before the tree, eg. the XML declaration or a doctype, or an empty string.
	Prolog func(meta *xaml.NodeMeta, o Options) (string, error)
	// Rewrite returns the top level nodes to render. It must not modify the page.
	Rewrite func(page *xaml.Page, o Options) []xaml.Node
	// Void reports whether an element has no end tag.
	Void func(tag string) bool
	// SelfClosing writes empty elements as <a/> instead of <a></a>.
	SelfClosing bool
}

// NewRenderer returns a new XML Renderer.
func NewRenderer(o Options) *Renderer {
	return &Renderer{
		Options:     o,
		Dialect:     xaml.DefaultDialect(),
		Prolog:      Declaration,
		Rewrite:     RewriteStylesheet,
		SelfClosing: true,
	}
}

// Render writes a page as XML to w.
func Render(w io.Writer, page *xaml.Page, o Options) error {
	return NewRenderer(o).Render(w, page)
}

// String returns a page as XML.
func String(page *xaml.Page, o Options) (string, error) {
	return NewRenderer(o).String(page)
}

// String returns the rendered page, the encoding is only declared.
func (r *Renderer) String(page *xaml.Page) (string, error) {
	prolog := ""
	if r.Prolog != nil {
		var err error
		if prolog, err = r.Prolog(page.Meta, r.Options); err != nil {
			return "", err
		}
	}
	nodes := page.Root.Children
	if r.Rewrite != nil {
		nodes = r.Rewrite(page, r.Options)
	}

	p := &printer{
		r:      r,
		scope:  newScope(r.Vars),
		indent: r.Indent,
	}
	if p.indent == "" {
		p.indent = "    "
	}
	if err := p.nodes(trimBlanks(nodes), 0); err != nil {
		return "", err
	}

	out := strings.Join(p.lines, "\n")
	if prolog != "" {
		out = prolog + "\n" + out
	}
	return out, nil
}

// Render writes the page to w, encoded to Options.Encoding if set. Characters that the encoding lacks are
// written as character references.
func (r *Renderer) Render(w io.Writer, page *xaml.Page) error {
	out, err := r.String(page)
	if err != nil {
		return err
	}
	if r.Encoding == "" {
		_, err = io.WriteString(w, out)
		return err
	}
	enc, err := xaml.LookupEncoding(r.Encoding)
	if err != nil {
		return err
	}
	b, _, err := transform.Bytes(encoding.HTMLEscapeUnsupported(enc.NewEncoder()), []byte(out))
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Declaration returns the XML declaration of an xml or xsl page with a !!! line.
func Declaration(meta *xaml.NodeMeta, o Options) (string, error) {
	if meta.Implicit || meta.DocType != "xml" && meta.DocType != "xsl" {
		return "", nil
	}
	s := `<?xml version="` + meta.Version + `"`
	if o.Encoding != "" {
		s += ` encoding="` + strings.ToLower(o.Encoding) + `"`
	}
	return s + "?>", nil
}

// RewriteStylesheet turns the top level xsl element of an xsl page into an xsl:stylesheet with the XSL
// namespaces.
func RewriteStylesheet(page *xaml.Page, o Options) []xaml.Node {
	nodes := page.Root.Children
	if page.DocType() != "xsl" {
		return nodes
	}
	rewritten := make([]xaml.Node, len(nodes))
	copy(rewritten, nodes)
	for i, n := range rewritten {
		el, ok := n.(*xaml.NodeElement)
		if !ok || el.Tag != "xsl" {
			continue
		}
		sheet := *el
		sheet.Tag = "xsl:stylesheet"
		sheet.Attrs = append([]xaml.Attr{}, el.Attrs...)
		for _, a := range []xaml.Attr{
			{Name: "version", Value: page.Version()},
			{Name: "xmlns:fo", Value: "http://www.w3.org/1999/XSL/Format"},
			{Name: "xmlns:xsl", Value: "http://www.w3.org/1999/XSL/Transform"},
		} {
			if _, ok := el.Attr(a.Name); !ok {
				a.MakeSafe = true
				sheet.Attrs = append(sheet.Attrs, a)
			}
		}
		rewritten[i] = &sheet
		break
	}
	return rewritten
}

func trimBlanks(nodes []xaml.Node) []xaml.Node {
	for 0 < len(nodes) && isBlank(nodes[0]) {
		nodes = nodes[1:]
	}
	for 0 < len(nodes) && isBlank(nodes[len(nodes)-1]) {
		nodes = nodes[:len(nodes)-1]
	}
	return nodes
}

func isBlank(n xaml.Node) bool {
	return n.Type() == xaml.BlankNode
}

func isInlineText(n xaml.Node) bool {
	text, ok := n.(*xaml.NodeText)
	return ok && text.Inline && text.Filter == ""
}

////////////////////////////////////////////////////////////////

type printer struct {
	r      *Renderer
	scope  *scope
	indent string

	lines []string
	open  bool // the last line is text that inline text continues
}

func (p *printer) line(depth int, s string) {
	p.lines = append(p.lines, strings.Repeat(p.indent, depth)+s)
	p.open = false
}

func (p *printer) blank() {
	p.lines = append(p.lines, "")
	p.open = false
}

func (p *printer) appendLast(s string) {
	p.lines[len(p.lines)-1] += s
}

func (p *printer) nodes(nodes []xaml.Node, depth int) error {
	for i := 0; i < len(nodes); i++ {
		var err error
		switch n := nodes[i].(type) {
		case *xaml.NodeElement:
			err = p.element(n, depth)
		case *xaml.NodeText:
			err = p.text(n, depth)
		case *xaml.NodeComment:
			p.comment(n, depth)
		case *xaml.NodeBlank:
			p.blank()
		case *xaml.NodeCode:
			var k int
			k, err = p.code(nodes[i:], depth)
			i += k - 1
		default:
			err = fmt.Errorf("xml: cannot render %s node", n.Type())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) element(el *xaml.NodeElement, depth int) error {
	attrs, err := p.attrs(el)
	if err != nil {
		return err
	}
	start := "<" + el.Tag + attrs
	end := "</" + el.Tag + ">"
	children := el.Children

	if p.r.Void != nil && p.r.Void(el.Tag) {
		for _, child := range children {
			if !isBlank(child) {
				return fmt.Errorf("%w: <%s>", ErrVoidContent, el.Tag)
			}
		}
		p.line(depth, start+">")
		return p.nodes(children, depth+1)
	} else if len(children) == 0 {
		if p.r.SelfClosing {
			p.line(depth, start+"/>")
		} else {
			p.line(depth, start+">"+end)
		}
		return nil
	}

	p.line(depth, start+">")
	k := 0
	for ; k < len(children) && isInlineText(children[k]); k++ {
		s, err := p.textValue(children[k].(*xaml.NodeText))
		if err != nil {
			return err
		}
		p.appendLast(s)
	}
	if k == len(children) {
		p.appendLast(end)
		return nil
	}
	p.open = 0 < k
	if err := p.nodes(children[k:], depth+1); err != nil {
		return err
	}
	if isBlank(children[0]) && !isBlank(children[len(children)-1]) {
		p.blank()
	}
	p.line(depth, end)
	return nil
}

func (p *printer) textValue(text *xaml.NodeText) (string, error) {
	s := text.Content
	if text.Code {
		var err error
		if s, err = p.scope.text(s); err != nil {
			return "", err
		}
	}
	if text.MakeSafe {
		s = EscapeText(s)
	}
	return s, nil
}

func (p *printer) text(text *xaml.NodeText, depth int) error {
	if text.Filter != "" {
		return p.filter(text, depth)
	}
	s, err := p.textValue(text)
	if err != nil {
		return err
	}
	if text.Inline && p.open {
		p.appendLast(s)
		return nil
	}
	for _, l := range strings.Split(s, "\n") {
		if l == "" {
			p.blank()
		} else {
			p.line(depth, l)
		}
	}
	p.open = true
	return nil
}

func (p *printer) filter(text *xaml.NodeText, depth int) error {
	f, ok := p.r.Dialect.Filter(text.Filter)
	if !ok {
		return fmt.Errorf("xml: unknown filter %q", text.Filter)
	}
	start, end := "<![CDATA[", "]]>"
	if !f.CDATA {
		start = "<" + f.Tag + ` type="` + f.Type + `">`
		end = "</" + f.Tag + ">"
	}
	p.line(depth, start)
	if text.Content != "" {
		for _, l := range strings.Split(text.Content, "\n") {
			if l == "" {
				p.blank()
			} else {
				p.line(depth+1, l)
			}
		}
	}
	p.line(depth, end)
	return nil
}

func (p *printer) comment(c *xaml.NodeComment, depth int) {
	p.line(depth, "<!--")
	for _, l := range c.Lines {
		p.line(depth, strings.TrimRight(" |  "+strings.ReplaceAll(l, "--", "- -"), " "))
	}
	p.line(depth, "-->")
}

// code renders a code line and, for if statements, the elif and else lines that follow. It returns the
// number of nodes consumed.
func (p *printer) code(nodes []xaml.Node, depth int) (int, error) {
	n := nodes[0].(*xaml.NodeCode)
	c, err := parseClause(n.Source)
	if err != nil {
		return 0, err
	}
	switch c.kind {
	case assignClause:
		if 0 < len(n.Children) {
			return 0, fmt.Errorf("%w: indented content below -%s", ErrUnsupported, n.Source)
		}
		v, err := p.scope.eval(c.expr)
		if err != nil {
			return 0, err
		}
		return 1, p.scope.bind(c.targets, v)
	case forClause:
		v, err := p.scope.eval(c.expr)
		if err != nil {
			return 0, err
		}
		items, ok := sequence(v)
		if !ok {
			return 0, fmt.Errorf("%w: cannot iterate over %T", ErrUnsupported, v)
		}
		for _, item := range items {
			if err := p.scope.bind(c.targets, item); err != nil {
				return 0, err
			}
			if err := p.nodes(n.Children, depth); err != nil {
				return 0, err
			}
		}
		return 1, nil
	case ifClause:
		return p.conditional(nodes, depth)
	}
	return 0, fmt.Errorf("%w: -%s without if", ErrUnsupported, xaml.TrimWhitespace(n.Source))
}

func (p *printer) conditional(nodes []xaml.Node, depth int) (int, error) {
	var chosen *xaml.NodeCode
	k := 0
	for ; k < len(nodes); k++ {
		n, ok := nodes[k].(*xaml.NodeCode)
		if !ok {
			break
		}
		c, err := parseClause(n.Source)
		if err != nil {
			return 0, err
		}
		if 0 < k && c.kind != elifClause && c.kind != elseClause {
			break
		} else if chosen != nil {
			continue
		}
		if c.kind == elseClause {
			chosen = n
			continue
		}
		v, err := p.scope.eval(c.expr)
		if err != nil {
			return 0, err
		} else if truthy(v) {
			chosen = n
		}
	}
	if chosen != nil {
		if err := p.nodes(chosen.Children, depth); err != nil {
			return 0, err
		}
	}
	return k, nil
}

func (p *printer) attrs(el *xaml.NodeElement) (string, error) {
	attrs := el.Attrs
	if !p.r.SourceOrder {
		attrs = append([]xaml.Attr{}, el.Attrs...)
		sort.SliceStable(attrs, func(i, j int) bool {
			ri, rj := attrRank(attrs[i].Name), attrRank(attrs[j].Name)
			if ri != rj {
				return ri < rj
			}
			return ri == len(leadingAttrs) && attrs[i].Name < attrs[j].Name
		})
	}

	buf := &bytes.Buffer{}
	for _, a := range attrs {
		v := a.Value
		if a.Code {
			var err error
			if v, err = p.scope.text(v); err != nil {
				return "", err
			}
		}
		buf.WriteString(" " + a.Name + "=")
		if a.MakeSafe {
			buf.WriteString(EscapeAttrVal(v))
		} else {
			buf.WriteString(`"` + v + `"`)
		}
	}
	return buf.String(), nil
}

var leadingAttrs = []string{"name", "id", "class"}

func attrRank(name string) int {
	for i, leading := range leadingAttrs {
		if name == leading {
			return i
		}
	}
	return len(leadingAttrs)
}
