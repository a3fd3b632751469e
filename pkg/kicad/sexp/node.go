package sexp

import "strconv"

// Node is one S-expression tree node: either an atom or a list. The first
// atom of a list is its tag; everything after it are the children.
type Node struct {
	atom  string
	items []*Node
	leaf  bool
}

// Atom constructs a leaf node.
func Atom(v string) *Node {
	return &Node{atom: v, leaf: true}
}

// List constructs a list node.
func List(items ...*Node) *Node {
	return &Node{items: items}
}

// IsAtom reports whether the node is a leaf.
func (n *Node) IsAtom() bool {
	return n.leaf
}

// Atom returns the atom text, or "" for lists.
func (n *Node) Atom() string {
	if !n.leaf {
		return ""
	}
	return n.atom
}

// Tag returns the first atom of a list (the node type), or "" when the node
// is an atom or starts with a sub-list.
func (n *Node) Tag() string {
	if n.leaf || len(n.items) == 0 {
		return ""
	}
	return n.items[0].Atom()
}

// Children returns the list items after the tag.
func (n *Node) Children() []*Node {
	if n.leaf || len(n.items) == 0 {
		return nil
	}
	return n.items[1:]
}

// Items returns all list items including the tag.
func (n *Node) Items() []*Node {
	if n.leaf {
		return nil
	}
	return n.items
}

// Find returns the first child list whose tag matches, or nil.
func (n *Node) Find(tag string) *Node {
	for _, c := range n.Children() {
		if !c.leaf && c.Tag() == tag {
			return c
		}
	}
	return nil
}

// FindAll returns every child list whose tag matches, in file order.
func (n *Node) FindAll(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children() {
		if !c.leaf && c.Tag() == tag {
			out = append(out, c)
		}
	}
	return out
}

// AtomAt returns the nth child atom after the tag, or "".
func (n *Node) AtomAt(index int) string {
	children := n.Children()
	if index < 0 || index >= len(children) {
		return ""
	}
	return children[index].Atom()
}

// FloatAt parses the nth child atom as a float.
func (n *Node) FloatAt(index int) (float64, bool) {
	v, err := strconv.ParseFloat(n.AtomAt(index), 64)
	return v, err == nil
}

// IntAt parses the nth child atom as an int.
func (n *Node) IntAt(index int) (int, bool) {
	v, err := strconv.Atoi(n.AtomAt(index))
	return v, err == nil
}

// ValueOf returns the first atom of the child list (tag value), e.g.
// ValueOf("width") on (stroke (width 0.12)) siblings returns "0.12".
func (n *Node) ValueOf(tag string) string {
	child := n.Find(tag)
	if child == nil {
		return ""
	}
	return child.AtomAt(0)
}

// FloatOf parses the value of a simple (tag value) child as a float.
func (n *Node) FloatOf(tag string) (float64, bool) {
	child := n.Find(tag)
	if child == nil {
		return 0, false
	}
	return child.FloatAt(0)
}

// HasSymbol reports whether the list contains the given bare atom, e.g.
// (justify left mirror).
func (n *Node) HasSymbol(sym string) bool {
	for _, c := range n.Children() {
		if c.leaf && c.atom == sym {
			return true
		}
	}
	return false
}

// String renders the node back to S-expression text; used by tests only.
func (n *Node) String() string {
	if n.leaf {
		return n.atom
	}
	out := "("
	for i, item := range n.items {
		if i > 0 {
			out += " "
		}
		out += item.String()
	}
	return out + ")"
}
