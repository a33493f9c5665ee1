package xaml

import (
	"strconv"
	"strings"
)

// NodeType determines the type of node, eg. an element or a comment.
type NodeType uint32

// NodeType values, it is safe to cast a node to the referred node type.
const (
	ErrorNode NodeType = iota // extra node when errors occur
	RootNode
	ElementNode
	TextNode
	CommentNode
	MetaNode
	CodeNode
	BlankNode
)

// Type returns the node type, it implements the function in interface Node for all nodes.
func (nt NodeType) Type() NodeType {
	return nt
}

// String returns the string representation of a NodeType.
func (nt NodeType) String() string {
	switch nt {
	case ErrorNode:
		return "Error"
	case RootNode:
		return "Root"
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case MetaNode:
		return "Meta"
	case CodeNode:
		return "Code"
	case BlankNode:
		return "Blank"
	}
	return "Invalid(" + strconv.Itoa(int(nt)) + ")"
}

////////////////////////////////////////////////////////////////

// Node is an interface that all nodes implement.
type Node interface {
	Type() NodeType
	String() string
}

// container is a node that holds children.
type container interface {
	Node
	appendChild(Node)
}

// Attr is an attribute of an element or an option of a declaration.
type Attr struct {
	Name     string
	Value    string
	Code     bool // Value is an expression
	MakeSafe bool
}

// String returns the string representation of the attribute.
func (a Attr) String() string {
	if a.Code {
		return a.Name + "=" + a.Value
	}
	return a.Name + "=" + strconv.Quote(a.Value)
}

// NodesString returns the string representations of the nodes separated by sep.
func NodesString(nodes []Node, sep string) string {
	ss := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ss = append(ss, n.String())
	}
	return strings.Join(ss, sep)
}

////////////////////////////////////////////////////////////////

// NodeRoot is the root of a page, holding its top level nodes.
type NodeRoot struct {
	NodeType
	Children []Node
}

// NewRoot returns a new NodeRoot.
func NewRoot() *NodeRoot {
	return &NodeRoot{
		NodeType: RootNode,
	}
}

func (n *NodeRoot) appendChild(child Node) {
	n.Children = append(n.Children, child)
}

// String returns the string representation of the node.
func (n NodeRoot) String() string {
	return "[" + NodesString(n.Children, " ") + "]"
}

////////////////////////////////////////////////////////////////

// NodeElement is an element with its attributes in source order.
type NodeElement struct {
	NodeType
	ID       int
	Tag      string
	Attrs    []Attr
	Children []Node
	Inline   bool // declared on the line of its parent
}

// NewElement returns a new NodeElement.
func NewElement(id int, tag string) *NodeElement {
	return &NodeElement{
		NodeType: ElementNode,
		ID:       id,
		Tag:      tag,
	}
}

func (n *NodeElement) appendChild(child Node) {
	n.Children = append(n.Children, child)
}

// Attr returns the attribute with the given name.
func (n *NodeElement) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// String returns the string representation of the node.
func (n NodeElement) String() string {
	sb := strings.Builder{}
	sb.WriteString("~" + n.Tag)
	for _, a := range n.Attrs {
		sb.WriteString(" " + a.String())
	}
	if 0 < len(n.Children) {
		sb.WriteString("[" + NodesString(n.Children, " ") + "]")
	}
	return sb.String()
}

////////////////////////////////////////////////////////////////

// NodeText is text or, when Code is set, an expression whose value is text.
// Filter is set for the content of a :filter block.
type NodeText struct {
	NodeType
	Content  string
	Code     bool
	MakeSafe bool
	Filter   string
	Inline   bool
}

// NewText returns a new NodeText.
func NewText(content string, makeSafe bool) *NodeText {
	return &NodeText{
		NodeType: TextNode,
		Content:  content,
		MakeSafe: makeSafe,
	}
}

// String returns the string representation of the node.
func (n NodeText) String() string {
	if n.Code {
		return "=" + n.Content
	} else if n.Filter != "" {
		return ":" + n.Filter + "(" + strconv.Quote(n.Content) + ")"
	}
	return strconv.Quote(n.Content)
}

////////////////////////////////////////////////////////////////

// NodeComment is a comment block.
type NodeComment struct {
	NodeType
	Lines []string
}

// NewComment returns a new NodeComment.
func NewComment(lines []string) *NodeComment {
	return &NodeComment{
		NodeType: CommentNode,
		Lines:    lines,
	}
}

// String returns the string representation of the node.
func (n NodeComment) String() string {
	return "//" + strconv.Quote(strings.Join(n.Lines, "\n"))
}

////////////////////////////////////////////////////////////////

// NodeMeta is the declaration of a page.
type NodeMeta struct {
	NodeType
	DocType  string
	Version  string
	Options  []Attr
	Implicit bool // the page has no !!! line
}

// NewMeta returns a new NodeMeta.
func NewMeta(docType, version string) *NodeMeta {
	return &NodeMeta{
		NodeType: MetaNode,
		DocType:  docType,
		Version:  version,
	}
}

// Option returns the value of the declaration option with the given name.
func (n *NodeMeta) Option(name string) (string, bool) {
	for _, a := range n.Options {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// String returns the string representation of the node.
func (n NodeMeta) String() string {
	sb := strings.Builder{}
	sb.WriteString("!!! " + n.DocType + n.Version)
	for _, a := range n.Options {
		sb.WriteString(" " + a.String())
	}
	return sb.String()
}

////////////////////////////////////////////////////////////////

// NodeCode is a code line, the nodes indented below it are its children.
type NodeCode struct {
	NodeType
	ID       int
	Source   string
	Children []Node
}

// NewCode returns a new NodeCode.
func NewCode(id int, source string) *NodeCode {
	return &NodeCode{
		NodeType: CodeNode,
		ID:       id,
		Source:   source,
	}
}

func (n *NodeCode) appendChild(child Node) {
	n.Children = append(n.Children, child)
}

// String returns the string representation of the node.
func (n NodeCode) String() string {
	s := "-" + n.Source
	if 0 < len(n.Children) {
		s += "[" + NodesString(n.Children, " ") + "]"
	}
	return s
}

////////////////////////////////////////////////////////////////

// NodeBlank is a preserved blank line.
type NodeBlank struct {
	NodeType
}

// NewBlank returns a new NodeBlank.
func NewBlank() *NodeBlank {
	return &NodeBlank{
		NodeType: BlankNode,
	}
}

// String returns the string representation of the node.
func (n NodeBlank) String() string {
	return "_"
}
