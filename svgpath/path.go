// Implements an abstract representation of
// svg paths, the conversion of svg shapes to paths
// and the merging of paths sharing end points.
// Paths are exchanged as strings in their canonical
// form, see Path.ToSVGPath.
package svgpath

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/math/fixed"
)

// Point is a point in user space.
type Point struct{ X, Y float64 }

// Fixed converts the point to 26.6 fixed point coordinates.
func (p Point) Fixed() fixed.Point26_6 { return toFixedP(p.X, p.Y) }

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
}

type MoveTo Point

type LineTo Point

type QuadTo [2]Point

type CubicTo [3]Point

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

// formatFloat prints `f` with at most 6 decimals, and without
// negative zero.
func formatFloat(f float64) string {
	f = math.Round(f*1e6) / 1e6
	if f == 0 {
		f = 0 // -0 -> 0
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func appendPoints(chunk []byte, pts ...Point) []byte {
	for i, p := range pts {
		if i != 0 {
			chunk = append(chunk, ' ')
		}
		chunk = append(chunk, formatFloat(p.X)...)
		chunk = append(chunk, ' ')
		chunk = append(chunk, formatFloat(p.Y)...)
	}
	return chunk
}

// ToSVGPath returns the canonical string representation of the path:
// absolute upper case commands, separated by spaces, as in
// "M0 0 L10 0 L10 10 Z".
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = string(appendPoints([]byte{'M'}, Point(op)))
		case LineTo:
			chunks[i] = string(appendPoints([]byte{'L'}, Point(op)))
		case QuadTo:
			chunks[i] = string(appendPoints([]byte{'Q'}, op[0], op[1]))
		case CubicTo:
			chunks[i] = string(appendPoints([]byte{'C'}, op[0], op[1], op[2]))
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a Point) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b Point) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c Point) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d Point) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Subpaths splits the path before each MoveTo.
// Operations appearing before the first MoveTo are dropped.
func (p Path) Subpaths() []Path {
	var (
		out     []Path
		current Path
	)
	for _, op := range p {
		if _, isMove := op.(MoveTo); isMove {
			if len(current) != 0 {
				out = append(out, current)
			}
			current = Path{op}
			continue
		}
		if current != nil {
			current = append(current, op)
		}
	}
	if len(current) != 0 {
		out = append(out, current)
	}
	return out
}

// Transform returns a copy of the path with every point mapped by m.
func (p Path) Transform(m Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(m.TransformPoint(Point(op)))
		case LineTo:
			out[i] = LineTo(m.TransformPoint(Point(op)))
		case QuadTo:
			out[i] = QuadTo{m.TransformPoint(op[0]), m.TransformPoint(op[1])}
		case CubicTo:
			out[i] = CubicTo{m.TransformPoint(op[0]), m.TransformPoint(op[1]), m.TransformPoint(op[2])}
		case Close:
			out[i] = op
		}
	}
	return out
}

// endPoint returns the point reached after op, or false for Close.
func endPoint(op Operation) (Point, bool) {
	switch op := op.(type) {
	case MoveTo:
		return Point(op), true
	case LineTo:
		return Point(op), true
	case QuadTo:
		return op[1], true
	case CubicTo:
		return op[2], true
	}
	return Point{}, false
}

// StartPoint returns the first point of a single subpath.
func (p Path) StartPoint() Point {
	if len(p) == 0 {
		return Point{}
	}
	pt, _ := endPoint(p[0])
	return pt
}

// EndPoint returns the current point after the last drawing operation.
// For a closed path, this is the start point.
func (p Path) EndPoint() Point {
	for i := len(p) - 1; i >= 0; i-- {
		if _, isClose := p[i].(Close); isClose {
			return p.StartPoint()
		}
		if pt, ok := endPoint(p[i]); ok {
			return pt
		}
	}
	return Point{}
}

// IsClosed returns true if the path ends with a Close operation.
func (p Path) IsClosed() bool {
	if len(p) == 0 {
		return false
	}
	_, ok := p[len(p)-1].(Close)
	return ok
}

// Reverse returns a single open subpath drawn in the opposite direction.
func (p Path) Reverse() Path {
	if len(p) == 0 {
		return nil
	}
	out := Path{MoveTo(p.EndPoint())}
	for i := len(p) - 1; i >= 1; i-- {
		prev, _ := endPoint(p[i-1])
		switch op := p[i].(type) {
		case LineTo:
			out = append(out, LineTo(prev))
		case QuadTo:
			out = append(out, QuadTo{op[0], prev})
		case CubicTo:
			out = append(out, CubicTo{op[1], op[0], prev})
		}
	}
	return out
}

// Bounds returns the bounding box of the control polygon
// of the path, which contains the path.
func (p Path) Bounds() fixed.Rectangle26_6 {
	var (
		box   fixed.Rectangle26_6
		first = true
	)
	add := func(pts ...Point) {
		for _, pt := range pts {
			fp := pt.Fixed()
			if first {
				box.Min, box.Max, first = fp, fp, false
				continue
			}
			if fp.X < box.Min.X {
				box.Min.X = fp.X
			}
			if fp.Y < box.Min.Y {
				box.Min.Y = fp.Y
			}
			if fp.X > box.Max.X {
				box.Max.X = fp.X
			}
			if fp.Y > box.Max.Y {
				box.Max.Y = fp.Y
			}
		}
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			add(Point(op))
		case LineTo:
			add(Point(op))
		case QuadTo:
			add(op[:]...)
		case CubicTo:
			add(op[:]...)
		}
	}
	return box
}

// Drawer accumulates path commands, in fixed coordinates.
// It is implemented by rasterizers.
type Drawer interface {
	// Start starts a new curve at the given point.
	Start(a fixed.Point26_6)
	// Line adds a line segment to the path
	Line(b fixed.Point26_6)
	// QuadBezier adds a quadratic bezier curve to the path
	QuadBezier(b, c fixed.Point26_6)
	// CubeBezier adds a cubic bezier curve to the path
	CubeBezier(b, c, d fixed.Point26_6)
	// Closes the path to the start point if closeLoop is true
	Stop(closeLoop bool)
}

// AddTo draws the path onto q, after applying m.
func (p Path) AddTo(q Drawer, m Matrix2D) {
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			q.Stop(false) // implicit close if currently in path.
			q.Start(m.TransformPoint(Point(op)).Fixed())
		case LineTo:
			q.Line(m.TransformPoint(Point(op)).Fixed())
		case QuadTo:
			q.QuadBezier(m.TransformPoint(op[0]).Fixed(), m.TransformPoint(op[1]).Fixed())
		case CubicTo:
			q.CubeBezier(m.TransformPoint(op[0]).Fixed(), m.TransformPoint(op[1]).Fixed(),
				m.TransformPoint(op[2]).Fixed())
		case Close:
			q.Stop(true)
		}
	}
	q.Stop(false)
}
