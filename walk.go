package xaml

// Visitor represents the tree visitor.
// Each Node encountered by Walk is passed to Enter, children nodes will be ignored if the returned Visitor is nil.
type Visitor interface {
	Enter(n Node) Visitor
}

// Walk traverses a tree in depth-first order.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Enter(n); v == nil {
		return
	}
	for _, child := range Children(n) {
		Walk(v, child)
	}
}

// Children returns the child nodes of n.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *NodeRoot:
		return n.Children
	case *NodeElement:
		return n.Children
	case *NodeCode:
		return n.Children
	}
	return nil
}

// VisitorFunc is an adapter to use a function as a Visitor that always descends.
type VisitorFunc func(n Node)

// Enter calls f(n).
func (f VisitorFunc) Enter(n Node) Visitor {
	f(n)
	return f
}
