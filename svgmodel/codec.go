package svgmodel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/lasersvg/internal/fsutil"
)

// the names of the leaf entries in the JSON form
const (
	pathsKey = "paths"
	styleKey = "style"
)

// writeString writes the JSON string `s`, without escaping HTML characters.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // a string is always valid
	buf.Truncate(buf.Len() - 1)
}

// hasPathsEntry is false for a leaf holding only a style.
// A leaf without paths nor style still needs the entry to be read back.
func (l *Leaf) hasPathsEntry() bool { return l.Paths != nil || l.Style == "" }

// MarshalJSON writes the node as a JSON object, with the groups in order.
// The leaf is written as the "paths" and "style" entries, at its position.
// A node with both a leaf and a group named "paths" (or a style and a group
// named "style") can't be written, and a *ModelShapeError is returned.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer, path []string) error {
	if n.leaf != nil && n.leaf.hasPathsEntry() && n.index(pathsKey) != -1 {
		return &ModelShapeError{Path: path, Reason: `group "paths" conflicts with the leaf paths`}
	}
	if n.leaf != nil && n.leaf.Style != "" && n.index(styleKey) != -1 {
		return &ModelShapeError{Path: path, Reason: `group "style" conflicts with the leaf style`}
	}

	first := true
	sep := func() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
	}
	writeLeaf := func() {
		if n.leaf.hasPathsEntry() {
			sep()
			writeString(buf, pathsKey)
			buf.WriteString(":[")
			for i, p := range n.leaf.Paths {
				if i != 0 {
					buf.WriteByte(',')
				}
				writeString(buf, p)
			}
			buf.WriteByte(']')
		}
		if n.leaf.Style != "" {
			sep()
			writeString(buf, styleKey)
			buf.WriteByte(':')
			writeString(buf, n.leaf.Style)
		}
	}

	buf.WriteByte('{')
	leafPos := n.LeafPosition()
	for i, g := range n.groups {
		if n.leaf != nil && i == leafPos {
			writeLeaf()
		}
		childPath := append(path[:len(path):len(path)], g.name)
		if g.node == nil {
			return &ModelShapeError{Path: childPath, Reason: "nil group"}
		}
		sep()
		writeString(buf, g.name)
		buf.WriteByte(':')
		if err := g.node.writeJSON(buf, childPath); err != nil {
			return err
		}
	}
	if n.leaf != nil && leafPos == len(n.groups) {
		writeLeaf()
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON reads a JSON object, keeping the order of its keys.
// Object values are groups; "paths" must be an array of strings
// and "style" a string. Other values are rejected with a *ModelShapeError.
func (n *Node) UnmarshalJSON(data []byte) error {
	return n.readJSON(data, nil)
}

func (n *Node) readJSON(data []byte, path []string) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return &ModelShapeError{Path: path, Reason: "invalid node", Err: err}
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return &ModelShapeError{Path: path, Reason: fmt.Sprintf("node must be an object, got %s", data)}
	}

	*n = Node{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return &ModelShapeError{Path: path, Reason: "invalid node", Err: err}
		}
		key, _ := tok.(string) // keys are always strings
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return &ModelShapeError{Path: path, Reason: "invalid node", Err: err}
		}
		raw = bytes.TrimLeft(raw, " \t\r\n")
		if len(raw) == 0 {
			return &ModelShapeError{Path: path, Reason: fmt.Sprintf("missing value for %q", key)}
		}

		switch {
		case raw[0] == '{':
			childPath := append(path[:len(path):len(path)], key)
			child := NewNode()
			if err := child.readJSON(raw, childPath); err != nil {
				return err
			}
			n.SetGroup(key, child)
		case key == pathsKey && raw[0] == '[':
			var paths []string
			if err := json.Unmarshal(raw, &paths); err != nil {
				return &ModelShapeError{Path: path, Reason: "paths must be an array of strings", Err: err}
			}
			n.ensureLeaf().Paths = paths
		case key == styleKey && raw[0] == '"':
			var style string
			if err := json.Unmarshal(raw, &style); err != nil {
				return &ModelShapeError{Path: path, Reason: "invalid style", Err: err}
			}
			n.SetStyle(style)
		default:
			return &ModelShapeError{Path: path, Reason: fmt.Sprintf("invalid value for %q: %s", key, raw)}
		}
	}
	return nil
}

// EncodeText returns the JSON form of the model. With indent <= 0 the output
// is compact, otherwise each level is indented by `indent` spaces.
// The output only depends on the model: groups are written in order
// and the attributes are sorted by key.
func EncodeText(m *Model, indent int) ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(m); err != nil {
		var shape *ModelShapeError
		if errors.As(err, &shape) {
			return nil, shape
		}
		return nil, &ModelShapeError{Reason: "can't encode model", Err: err}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// WriteTextFile writes the JSON form of the model to `filename`.
// The file is either completely written or left unchanged.
func WriteTextFile(m *Model, filename string, indent int) error {
	data, err := EncodeText(m, indent)
	if err != nil {
		return err
	}
	err = fsutil.WriteFileAtomic(filename, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
	if err != nil {
		return &StorageError{Op: "write", File: filename, Err: err}
	}
	return nil
}

// WriteDocumentFile serializes the model and writes the SVG document to `filename`.
func WriteDocumentFile(m *Model, filename string, opts ...Option) error {
	doc, err := Serialize(m, opts...)
	if err != nil {
		return err
	}
	if err := doc.WriteFile(filename); err != nil {
		return &StorageError{Op: "write", File: filename, Err: err}
	}
	return nil
}

// DecodeText reads a model from its JSON form, keeping the order of the groups.
// Invalid JSON is reported as a *DocumentParseError, and a wrong structure
// as a *ModelShapeError.
func DecodeText(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		var (
			shape  *ModelShapeError
			syntax *json.SyntaxError
		)
		switch {
		case errors.As(err, &shape):
			return nil, shape
		case errors.As(err, &syntax):
			return nil, &DocumentParseError{Err: err}
		default:
			return nil, &ModelShapeError{Reason: "invalid model", Err: err}
		}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadTextFile reads a model from the JSON file `filename`.
func ReadTextFile(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &StorageError{Op: "read", File: filename, Err: err}
	}
	return DecodeText(data)
}
