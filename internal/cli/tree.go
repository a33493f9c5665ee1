package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/xaml-go/xaml"
	"gopkg.in/yaml.v3"
)

type pageDump struct {
	DocType  string      `yaml:"doc_type"`
	Version  string      `yaml:"version"`
	Implicit bool        `yaml:"implicit,omitempty"`
	Options  []string    `yaml:"options,omitempty"`
	Nodes    []*nodeDump `yaml:"nodes,omitempty"`
}

type nodeDump struct {
	Type     string      `yaml:"type"`
	ID       int         `yaml:"id,omitempty"`
	Tag      string      `yaml:"tag,omitempty"`
	Attrs    []string    `yaml:"attrs,omitempty"`
	Content  string      `yaml:"content,omitempty"`
	Code     bool        `yaml:"code,omitempty"`
	Filter   string      `yaml:"filter,omitempty"`
	Inline   bool        `yaml:"inline,omitempty"`
	Children []*nodeDump `yaml:"children,omitempty"`
}

// treeBuilder appends the dump of every entered node to the children of its parent.
type treeBuilder struct {
	parent *nodeDump
}

func (b treeBuilder) Enter(n xaml.Node) xaml.Visitor {
	d := &nodeDump{Type: n.Type().String()}
	switch n := n.(type) {
	case *xaml.NodeRoot:
		// the root's children become the page nodes
		return b
	case *xaml.NodeElement:
		d.ID, d.Tag, d.Inline = n.ID, n.Tag, n.Inline
		for _, attr := range n.Attrs {
			d.Attrs = append(d.Attrs, attr.String())
		}
	case *xaml.NodeText:
		d.Content, d.Code, d.Filter, d.Inline = n.Content, n.Code, n.Filter, n.Inline
	case *xaml.NodeCode:
		d.ID, d.Content = n.ID, n.Source
	case *xaml.NodeComment:
		d.Content = strings.Join(n.Lines, "\n")
	}
	b.parent.Children = append(b.parent.Children, d)
	return treeBuilder{d}
}

func dumpPage(page *xaml.Page) pageDump {
	top := &nodeDump{}
	xaml.Walk(treeBuilder{top}, page.Root)
	d := pageDump{
		DocType:  page.DocType(),
		Version:  page.Version(),
		Implicit: page.Meta.Implicit,
		Nodes:    top.Children,
	}
	for _, opt := range page.Meta.Options {
		d.Options = append(d.Options, opt.String())
	}
	return d
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the parsed pages of a Xaml document as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.parseFile(cmd, args[0])
			if err != nil {
				return err
			}
			pages := make([]pageDump, 0, len(doc.Pages))
			for _, page := range doc.Pages {
				pages = append(pages, dumpPage(page))
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(pages); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
