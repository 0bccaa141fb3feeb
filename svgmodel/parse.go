package svgmodel

import (
	"io"
	"os"

	"github.com/benoitkugler/lasersvg/svgdoc"
	"github.com/benoitkugler/lasersvg/svgpath"
)

// Geometry converts drawable elements to paths, and merges paths
// before they are written back. It is implemented by svgpath.Converter.
type Geometry interface {
	// ElementPaths returns the paths drawn by `el`, in document order.
	// `attrib` holds the document attributes and `ctm` the transform
	// of the enclosing groups.
	ElementPaths(el *svgdoc.Element, attrib map[string]string, ctm svgpath.Matrix2D) ([]string, error)
	// Combine returns a sequence tracing the same geometry as `paths`,
	// with at most as many items.
	Combine(paths []string) ([]string, error)
}

type options struct {
	geometry Geometry
	backfill bool
	combine  bool
}

// Option customizes Parse and Serialize.
type Option func(*options)

// WithGeometry replaces the default svgpath.Converter.
func WithGeometry(g Geometry) Option {
	return func(o *options) { o.geometry = g }
}

// WithErrorMode sets how the default converter handles
// unsupported elements, such as <text>. It is ignored
// when a custom Geometry is used.
func WithErrorMode(mode svgpath.ErrorMode) Option {
	return func(o *options) {
		if cv, ok := o.geometry.(svgpath.Converter); ok {
			cv.ErrorMode = mode
			o.geometry = cv
		}
	}
}

// WithNameBackfill makes Parse write data-name = id
// on the groups which only have an id, so that the input document
// then agrees with the model. By default, the document is not modified.
func WithNameBackfill(backfill bool) Option {
	return func(o *options) { o.backfill = backfill }
}

// WithCombine enables (the default) or disables the merging of
// the paths of each leaf by Serialize.
func WithCombine(combine bool) Option {
	return func(o *options) { o.combine = combine }
}

func newOptions(opts []Option) options {
	o := options{
		geometry: svgpath.Converter{ErrorMode: svgpath.WarnErrorMode},
		combine:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// elements which never draw anything
var nonRendering = map[string]bool{
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"defs":           true,
	"style":          true,
	"script":         true,
	"clipPath":       true,
	"mask":           true,
	"marker":         true,
	"pattern":        true,
	"symbol":         true,
	"linearGradient": true,
	"radialGradient": true,
}

type parser struct {
	options
	attrib map[string]string
}

// Parse builds the model of `doc`: each <g> element becomes a named node,
// whose name is its data-name attribute, or else its id attribute.
// The other drawable elements are converted to paths, stored in the leaf
// of their parent, and the last style attribute met is kept as the leaf style.
// Metadata and elements outside the SVG namespace are skipped.
//
// The returned error is either a *DocumentParseError or a *NamingError;
// no model is returned on failure.
func Parse(doc *svgdoc.Document, opts ...Option) (*Model, error) {
	if doc == nil || doc.Root == nil {
		return nil, &DocumentParseError{Err: svgdoc.ErrNoRoot}
	}
	p := parser{options: newOptions(opts), attrib: doc.Attributes()}
	tree, err := p.parseNode(doc.Root, nil, svgpath.Identity)
	if err != nil {
		return nil, err
	}
	return &Model{Tree: tree, Attrib: p.attrib}, nil
}

// groupName resolves the name of the group, the child #index of the
// node at `path`.
func (p *parser) groupName(el *svgdoc.Element, path []string, index int) (string, error) {
	if name, ok := el.Get("data-name"); ok {
		return name, nil
	}
	id, ok := el.Get("id")
	if !ok {
		return "", &NamingError{Path: path, Index: index}
	}
	if p.backfill {
		el.Set("data-name", id)
	}
	return id, nil
}

func (p *parser) parseNode(el *svgdoc.Element, path []string, ctm svgpath.Matrix2D) (*Node, error) {
	node := NewNode()
	for i, child := range el.Children {
		switch {
		case child.Is("g"):
			name, err := p.groupName(child, path, i)
			if err != nil {
				return nil, err
			}
			childPath := append(path[:len(path):len(path)], name)
			m := ctm
			if tr, ok := child.Get("transform"); ok {
				own, err := svgpath.ParseTransform(tr)
				if err != nil {
					return nil, &DocumentParseError{Path: childPath, Err: err}
				}
				m = ctm.Mult(own)
			}
			sub, err := p.parseNode(child, childPath, m)
			if err != nil {
				return nil, err
			}
			node.SetGroup(name, sub)
		case !child.IsSVG() || nonRendering[child.Name.Local]:
			continue
		default:
			paths, err := p.geometry.ElementPaths(child, p.attrib, ctm)
			if err != nil {
				return nil, &DocumentParseError{Path: path, Err: err}
			}
			node.AddPaths(paths...)
			if style, ok := child.Get("style"); ok {
				node.SetStyle(style)
			}
		}
	}
	return node, nil
}

// readRecorder keeps the first error of the underlying reader,
// to tell I/O failures apart from malformed content.
type readRecorder struct {
	r   io.Reader
	err error
}

func (rr *readRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && err != io.EOF && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// ParseFile reads and parses the SVG file `filename`.
// See Parse for the options and errors; I/O failures, while opening
// or reading the file, are reported as *StorageError.
func ParseFile(filename string, opts ...Option) (*Model, error) {
	fin, err := os.Open(filename)
	if err != nil {
		return nil, &StorageError{Op: "read", File: filename, Err: err}
	}
	defer fin.Close()

	stream := &readRecorder{r: fin}
	doc, err := svgdoc.Read(stream)
	if stream.err != nil {
		return nil, &StorageError{Op: "read", File: filename, Err: stream.err}
	}
	if err != nil {
		return nil, &DocumentParseError{Err: err}
	}
	return Parse(doc, opts...)
}
