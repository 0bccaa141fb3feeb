package svgmodel

import (
	"github.com/benoitkugler/lasersvg/svgdoc"
)

// validate checks the top level structure of the model.
func (m *Model) validate() error {
	switch {
	case m == nil:
		return &ModelShapeError{Reason: "nil model"}
	case m.Tree == nil:
		return &ModelShapeError{Reason: "missing tree"}
	case m.Attrib == nil:
		return &ModelShapeError{Reason: "missing attrib"}
	}
	return nil
}

// Serialize builds the SVG document of `m`: the root carries the attributes
// of the model, each node becomes a <g> element whose id and data-name are
// the node name, and the paths of each leaf, combined by the Geometry,
// become <path> elements using the leaf style.
//
// Groups and leaves are written in the order of the model.
// The returned error is a *ModelShapeError; no document is returned on failure.
func Serialize(m *Model, opts ...Option) (*svgdoc.Document, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	doc := svgdoc.New(m.Attrib)
	if err := o.emitNode(m.Tree, doc.Root, nil); err != nil {
		return nil, err
	}
	return doc, nil
}

func (o options) emitLeaf(leaf *Leaf, target *svgdoc.Element, path []string) error {
	paths := leaf.Paths
	if o.combine {
		var err error
		paths, err = o.geometry.Combine(paths)
		if err != nil {
			return &ModelShapeError{Path: path, Reason: "invalid paths", Err: err}
		}
	}
	for _, d := range paths {
		target.Append(svgdoc.NewPathElement(d, leaf.Style))
	}
	return nil
}

func (o options) emitNode(node *Node, target *svgdoc.Element, path []string) error {
	leafPos := node.LeafPosition()
	for i, g := range node.groups {
		if node.leaf != nil && i == leafPos {
			if err := o.emitLeaf(node.leaf, target, path); err != nil {
				return err
			}
		}
		childPath := append(path[:len(path):len(path)], g.name)
		if g.node == nil {
			return &ModelShapeError{Path: childPath, Reason: "nil group"}
		}
		el := svgdoc.NewGroup(g.name)
		target.Append(el)
		if err := o.emitNode(g.node, el, childPath); err != nil {
			return err
		}
	}
	if node.leaf != nil && leafPos == len(node.groups) {
		return o.emitLeaf(node.leaf, target, path)
	}
	return nil
}
