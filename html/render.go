// Package html renders Xaml pages as HTML.
package html

import (
	"fmt"
	"io"

	"github.com/xaml-go/xaml"
	"github.com/xaml-go/xaml/xml"
)

// Options are the rendering options, Encoding is written as the charset of the head.
type Options = xml.Options

var doctypes = map[string]string{
	"5":              `<!DOCTYPE html>`,
	"4-strict":       `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`,
	"4-transitional": `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN" "http://www.w3.org/TR/html4/loose.dtd">`,
}

var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"keygen": true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoid returns true for elements without end tag, eg. br.
func IsVoid(tag string) bool {
	return voidTags[tag]
}

// NewRenderer returns a new HTML Renderer.
func NewRenderer(o Options) *xml.Renderer {
	r := xml.NewRenderer(o)
	r.Prolog = Doctype
	r.Rewrite = InjectCharset
	r.Void = IsVoid
	r.SelfClosing = false
	return r
}

// Render writes a page as HTML to w.
func Render(w io.Writer, page *xaml.Page, o Options) error {
	return NewRenderer(o).Render(w, page)
}

// String returns a page as HTML.
func String(page *xaml.Page, o Options) (string, error) {
	return NewRenderer(o).String(page)
}

// Doctype returns the doctype of an html page with a !!! line.
func Doctype(meta *xaml.NodeMeta, o Options) (string, error) {
	if meta.Implicit || meta.DocType != "html" {
		return "", nil
	}
	doctype, ok := doctypes[meta.Version]
	if !ok {
		return "", fmt.Errorf("html: no doctype for version %q", meta.Version)
	}
	return doctype, nil
}

// InjectCharset adds <meta charset> as the first element of the head of a top level html element, a head
// is added when missing.
func InjectCharset(page *xaml.Page, o Options) []xaml.Node {
	charset := o.Encoding
	if charset == "" {
		charset = "utf-8"
	}
	meta := xaml.NewElement(0, "meta")
	meta.Attrs = []xaml.Attr{{Name: "charset", Value: charset, MakeSafe: true}}

	nodes := append([]xaml.Node{}, page.Root.Children...)
	for i, n := range nodes {
		el, ok := n.(*xaml.NodeElement)
		if !ok || el.Tag != "html" {
			continue
		}
		root := *el
		root.Children = nil
		injected := false
		for _, child := range el.Children {
			if head, ok := child.(*xaml.NodeElement); ok && head.Tag == "head" && !injected {
				withMeta := *head
				withMeta.Children = append([]xaml.Node{meta}, head.Children...)
				child = &withMeta
				injected = true
			}
			root.Children = append(root.Children, child)
		}
		if !injected {
			head := xaml.NewElement(0, "head")
			head.Children = []xaml.Node{meta}
			root.Children = append([]xaml.Node{head}, root.Children...)
		}
		nodes[i] = &root
		break
	}
	return nodes
}
