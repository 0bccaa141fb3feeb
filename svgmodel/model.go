// Package svgmodel converts between SVG documents and the nested model
// used by laser cutting design tools: named groups holding cut paths.
//
// A document such as
//
//	<svg>
//	  <g id="Face1">
//	    <g id="Perimeter"><path d="M0 0 L10 0 L10 10 L0 10 Z"/></g>
//	    <g id="Cuts"><line x1="1" y1="1" x2="9" y2="1"/></g>
//	  </g>
//	</svg>
//
// is parsed to the model
//
//	{"tree": {"Face1": {"Perimeter": {"paths": ["M0 0 L10 0 L10 10 L0 10 Z"]},
//	                    "Cuts": {"paths": ["M1 1 L9 1"]}}},
//	 "attrib": {...}}
//
// Groups are kept in insertion order, which is the document order after Parse,
// and the key order after DecodeText. Serialize and EncodeText follow this order.
package svgmodel

// Model is a laser cutting design: a tree of named groups,
// and the attributes of the document root (dimensions, units).
type Model struct {
	Tree   *Node             `json:"tree"`
	Attrib map[string]string `json:"attrib"`
}

// Leaf stores the paths drawn directly inside a group.
// A nil Paths means the leaf only carries a style: its JSON form then
// has no "paths" entry. Parse always produces a non nil Paths.
type Leaf struct {
	Paths []string
	// Style is applied to every path. An empty style is not written.
	Style string
}

type namedNode struct {
	name string
	node *Node
}

// Node is a group of the design. It holds named sub-groups, in insertion order,
// and an optional leaf. When a node has both, the leaf remembers how many groups
// preceded it, so that it is written back at the same position.
// The zero value is an empty node, ready to use.
type Node struct {
	groups  []namedNode
	leaf    *Leaf
	leafPos int // number of groups before the leaf
}

// NewNode returns an empty node.
func NewNode() *Node { return new(Node) }

// Len returns the number of sub-groups.
func (n *Node) Len() int { return len(n.groups) }

// Names returns the names of the sub-groups, in order.
func (n *Node) Names() []string {
	out := make([]string, len(n.groups))
	for i, g := range n.groups {
		out[i] = g.name
	}
	return out
}

func (n *Node) index(name string) int {
	for i, g := range n.groups {
		if g.name == name {
			return i
		}
	}
	return -1
}

// Group returns the sub-group `name`, or nil if there is none.
func (n *Node) Group(name string) *Node {
	if i := n.index(name); i != -1 {
		return n.groups[i].node
	}
	return nil
}

// SetGroup stores `child` under `name`. An existing group with the same
// name is replaced in place; otherwise the group is added last.
func (n *Node) SetGroup(name string, child *Node) {
	if i := n.index(name); i != -1 {
		n.groups[i].node = child
		return
	}
	n.groups = append(n.groups, namedNode{name: name, node: child})
}

// RemoveGroup deletes the sub-group `name`, returning false if it does not exist.
func (n *Node) RemoveGroup(name string) bool {
	i := n.index(name)
	if i == -1 {
		return false
	}
	n.groups = append(n.groups[:i], n.groups[i+1:]...)
	if i < n.leafPos {
		n.leafPos--
	}
	return true
}

// Leaf returns the paths of the node, or nil if the node has no leaf.
func (n *Node) Leaf() *Leaf { return n.leaf }

// ensureLeaf creates the leaf if needed, after the current groups.
func (n *Node) ensureLeaf() *Leaf {
	if n.leaf == nil {
		n.leaf = new(Leaf)
		n.leafPos = len(n.groups)
	}
	return n.leaf
}

// AddPaths appends paths to the leaf, creating it if needed.
func (n *Node) AddPaths(paths ...string) {
	leaf := n.ensureLeaf()
	if leaf.Paths == nil {
		leaf.Paths = []string{}
	}
	leaf.Paths = append(leaf.Paths, paths...)
}

// SetStyle sets the style of the leaf, creating it if needed.
func (n *Node) SetStyle(style string) { n.ensureLeaf().Style = style }

// RemoveLeaf deletes the leaf of the node.
func (n *Node) RemoveLeaf() {
	n.leaf = nil
	n.leafPos = 0
}

// LeafPosition returns the number of groups written before the leaf.
func (n *Node) LeafPosition() int {
	if n.leafPos > len(n.groups) {
		return len(n.groups)
	}
	return n.leafPos
}

// Equal returns true if both trees have the same groups, in the same order,
// and the same leaves at the same positions.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if len(n.groups) != len(other.groups) {
		return false
	}
	if (n.leaf == nil) != (other.leaf == nil) {
		return false
	}
	if n.leaf != nil {
		if n.LeafPosition() != other.LeafPosition() || n.leaf.Style != other.leaf.Style {
			return false
		}
		if len(n.leaf.Paths) != len(other.leaf.Paths) {
			return false
		}
		for i, p := range n.leaf.Paths {
			if other.leaf.Paths[i] != p {
				return false
			}
		}
	}
	for i, g := range n.groups {
		if other.groups[i].name != g.name || !g.node.Equal(other.groups[i].node) {
			return false
		}
	}
	return true
}

// Walk calls fn for the node and each of its descendants, depth first,
// with the names leading to it. It stops at the first error.
func (n *Node) Walk(fn func(path []string, node *Node) error) error {
	return n.walk(nil, fn)
}

func (n *Node) walk(path []string, fn func([]string, *Node) error) error {
	if err := fn(path, n); err != nil {
		return err
	}
	for _, g := range n.groups {
		if g.node == nil {
			continue
		}
		if err := g.node.walk(append(path[:len(path):len(path)], g.name), fn); err != nil {
			return err
		}
	}
	return nil
}
