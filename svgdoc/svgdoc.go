// Provides an in-memory representation of SVG documents:
// an element tree which may be read from a stream, edited
// and written back. Geometry is not interpreted here,
// see lasersvg/svgpath for that.
package svgdoc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/lasersvg/internal/fsutil"
)

// SVGNamespace is the namespace of SVG elements.
const SVGNamespace = "http://www.w3.org/2000/svg"

var (
	// ErrNoRoot is returned when the stream holds no element at all.
	ErrNoRoot = errors.New("invalid svg document: no root element")
	// ErrNotSVG is returned when the root element is not an <svg> element.
	ErrNotSVG = errors.New("invalid svg document: root is not an svg element")
)

// Element is a node of the document tree.
// Name holds the raw (prefixed) name, as written in the source,
// while Namespace is the resolved namespace URL (empty if none was declared).
type Element struct {
	Name      xml.Name
	Namespace string
	Attr      []xml.Attr
	Children  []*Element
	Text      string // concatenated character data, if any
}

// Document is a parsed or constructed SVG document.
type Document struct {
	Root *Element
}

// NewElement returns an element without namespace prefix,
// with the given attributes, in the given order.
func NewElement(local string, attrs ...xml.Attr) *Element {
	return &Element{Name: xml.Name{Local: local}, Namespace: SVGNamespace, Attr: attrs}
}

// Get returns the value of the un-prefixed attribute `local`.
func (e *Element) Get(local string) (string, bool) {
	for _, attr := range e.Attr {
		if attr.Name.Space == "" && attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// Set adds or replaces the un-prefixed attribute `local`.
func (e *Element) Set(local, value string) {
	for i, attr := range e.Attr {
		if attr.Name.Space == "" && attr.Name.Local == local {
			e.Attr[i].Value = value
			return
		}
	}
	e.Attr = append(e.Attr, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// Append adds child as the last child of e.
func (e *Element) Append(child *Element) { e.Children = append(e.Children, child) }

// IsSVG returns true if the element belongs to the SVG namespace,
// or is un-prefixed in a document without namespace declaration.
func (e *Element) IsSVG() bool {
	return e.Namespace == SVGNamespace || (e.Namespace == "" && e.Name.Space == "")
}

// Is returns true for SVG elements with the given local name.
func (e *Element) Is(local string) bool {
	return e.IsSVG() && e.Name.Local == local
}

func (e *Element) String() string {
	if e.Name.Space != "" {
		return "<" + e.Name.Space + ":" + e.Name.Local + ">"
	}
	return "<" + e.Name.Local + ">"
}

// New returns a document made of an empty <svg> root,
// carrying `attrib` (sorted by key).
func New(attrib map[string]string) *Document {
	root := NewElement("svg", xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: SVGNamespace})
	keys := make([]string, 0, len(attrib))
	for k := range attrib {
		if k == "xmlns" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		root.Set(k, attrib[k])
	}
	return &Document{Root: root}
}

// NewGroup returns a <g> element whose id and data-name are `name`.
func NewGroup(name string) *Element {
	return NewElement("g",
		xml.Attr{Name: xml.Name{Local: "id"}, Value: name},
		xml.Attr{Name: xml.Name{Local: "data-name"}, Value: name},
	)
}

// NewPathElement returns a <path> element drawing `d`.
// An empty style is omitted.
func NewPathElement(d, style string) *Element {
	el := NewElement("path", xml.Attr{Name: xml.Name{Local: "d"}, Value: d})
	if style != "" {
		el.Set("style", style)
	}
	return el
}

// Attributes returns the document level metadata: the un-prefixed
// attributes of the root (width, height, viewBox, ...), namespace
// declarations excluded.
func (d *Document) Attributes() map[string]string {
	out := make(map[string]string)
	if d == nil || d.Root == nil {
		return out
	}
	for _, attr := range d.Root.Attr {
		if attr.Name.Space != "" || attr.Name.Local == "xmlns" {
			continue
		}
		out[attr.Name.Local] = attr.Value
	}
	return out
}

// entityDecl matches the general entities of an internal DTD subset,
// such as <!ENTITY ns_svg "http://www.w3.org/2000/svg">.
var entityDecl = regexp.MustCompile(`<!ENTITY\s+([^\s%"']+)\s+(?:"([^"]*)"|'([^']*)')\s*>`)

// addEntities registers the entities declared in a DOCTYPE directive.
func addEntities(entities map[string]string, directive []byte) {
	for _, m := range entityDecl.FindAllSubmatch(directive, -1) {
		value := m[2]
		if value == nil {
			value = m[3]
		}
		entities[string(m[1])] = string(value)
	}
}

// Read parses an SVG document from `stream`.
// Non UTF-8 encodings declared in the XML header are supported,
// as well as HTML entities and the entities declared in the DOCTYPE,
// as found in Illustrator exports.
func Read(stream io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	decoder.Entity = make(map[string]string, len(xml.HTMLEntity))
	for k, v := range xml.HTMLEntity {
		decoder.Entity[k] = v
	}

	var (
		stack  []*Element
		scopes = []map[string]string{{"xml": "http://www.w3.org/XML/1998/namespace"}}
		root   *Element
	)
	for {
		t, err := decoder.RawToken()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch se := t.(type) {
		case xml.StartElement:
			scope := pushScope(scopes[len(scopes)-1], se.Attr)
			scopes = append(scopes, scope)
			el := &Element{
				Name:      se.Name,
				Namespace: scope[se.Name.Space],
				Attr:      append([]xml.Attr(nil), se.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("invalid svg document: multiple root elements")
				}
				root = el
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1].Name != se.Name {
				return nil, fmt.Errorf("invalid svg document: unexpected end element </%s>", se.Name.Local)
			}
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		case xml.Directive:
			if bytes.HasPrefix(se, []byte("DOCTYPE")) {
				addEntities(decoder.Entity, se)
			}
		case xml.CharData:
			if len(stack) != 0 {
				stack[len(stack)-1].Text += string(se)
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("invalid svg document: unclosed element %s", stack[len(stack)-1])
	}
	if root == nil {
		return nil, ErrNoRoot
	}
	if !root.Is("svg") {
		return nil, fmt.Errorf("%w (found %s)", ErrNotSVG, root)
	}
	return &Document{Root: root}, nil
}

// pushScope returns the namespace bindings in effect for an element
// declaring `attrs`. The empty key holds the default namespace.
func pushScope(parent map[string]string, attrs []xml.Attr) map[string]string {
	var scope map[string]string
	for _, attr := range attrs {
		var prefix string
		switch {
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			prefix = ""
		case attr.Name.Space == "xmlns":
			prefix = attr.Name.Local
		default:
			continue
		}
		if scope == nil {
			scope = make(map[string]string, len(parent)+1)
			for k, v := range parent {
				scope[k] = v
			}
		}
		scope[prefix] = attr.Value
	}
	if scope == nil {
		return parent
	}
	return scope
}

// ReadFile reads the SVG document stored in `filename`.
func ReadFile(filename string) (*Document, error) {
	fin, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return Read(fin)
}

// WriteTo writes the document as indented XML, with an XML header.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d == nil || d.Root == nil {
		return 0, ErrNoRoot
	}
	cw := &countingWriter{w: w}
	cw.WriteString(xml.Header)
	writeElement(cw, d.Root, 0)
	cw.WriteString("\n")
	return cw.n, cw.err
}

// WriteFile writes the document to `filename`. The file is
// either completely written or not modified.
func (d *Document) WriteFile(filename string) error {
	return fsutil.WriteFileAtomic(filename, func(w io.Writer) error {
		_, err := d.WriteTo(w)
		return err
	})
}

// String returns the XML form of the document.
func (d *Document) String() string {
	var sb strings.Builder
	d.WriteTo(&sb)
	return sb.String()
}

func qualified(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func writeElement(w *countingWriter, el *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent + "<" + qualified(el.Name))
	for _, attr := range el.Attr {
		w.WriteString(" " + qualified(attr.Name) + `="`)
		xml.EscapeText(w, []byte(attr.Value))
		w.WriteString(`"`)
	}
	text := strings.TrimSpace(el.Text)
	if len(el.Children) == 0 && text == "" {
		w.WriteString("/>")
		return
	}
	w.WriteString(">")
	if text != "" {
		xml.EscapeText(w, []byte(text))
	}
	for _, child := range el.Children {
		w.WriteString("\n")
		writeElement(w, child, depth+1)
	}
	if len(el.Children) != 0 {
		w.WriteString("\n" + indent)
	}
	w.WriteString("</" + qualified(el.Name) + ">")
}

// countingWriter records the first error, so that
// writeElement does not have to check every call.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(b []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(b)
	c.n += int64(n)
	c.err = err
	return n, err
}

func (c *countingWriter) WriteString(s string) { c.Write([]byte(s)) }
