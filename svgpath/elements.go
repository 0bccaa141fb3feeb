package svgpath

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/benoitkugler/lasersvg/svgdoc"
)

// ErrorMode selects how a Converter reacts to unsupported elements.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unsupported elements silently
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs a warning and skips unsupported elements
	WarnErrorMode
	// StrictErrorMode returns an error for unsupported elements
	StrictErrorMode
)

// ErrUnsupportedElement is returned in StrictErrorMode for elements
// which can't be converted to paths (text, image, ...).
var ErrUnsupportedElement = errors.New("svgpath: unsupported element")

// ParseErrorMode returns the mode named "ignore", "warn" or "strict".
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(s) {
	case "ignore":
		return IgnoreErrorMode, nil
	case "warn", "":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	}
	return 0, fmt.Errorf("invalid error mode %q: must be 'ignore', 'warn' or 'strict'", s)
}

// Converter turns drawable SVG elements into paths, and
// merges paths sharing end points.
type Converter struct {
	ErrorMode ErrorMode
}

// percentage base used by length attributes
type percentage uint8

const (
	widthPercentage percentage = iota
	heightPercentage
	diagPercentage
)

// elementCursor is used while converting one element
type elementCursor struct {
	path   Path
	width  float64 // viewport, for percentages
	height float64
}

func (c *elementCursor) parseUnit(v string, asPerc percentage) (float64, error) {
	var base float64
	switch asPerc {
	case widthPercentage:
		base = c.width
	case heightPercentage:
		base = c.height
	case diagPercentage:
		base = math.Sqrt(c.width*c.width+c.height*c.height) / math.Sqrt2
	}
	return parseUnit(v, base)
}

type svgFunc func(c *elementCursor, el *svgdoc.Element) error

var drawFuncs = map[string]svgFunc{
	"line":     lineF,
	"rect":     rectF,
	"circle":   circleF,
	"ellipse":  circleF, //circleF handles ellipse also
	"polyline": polylineF,
	"polygon":  polygonF,
	"path":     pathF,
}

// ViewBox returns the user space area of the document: its viewBox,
// or else the rectangle of origin (0, 0) and of size its width and height.
// Missing or invalid values are returned as 0.
func ViewBox(attrib map[string]string) (x, y, w, h float64) {
	if vb, ok := attrib["viewBox"]; ok {
		if pts, err := parseNumbers(vb); err == nil && len(pts) == 4 {
			return pts[0], pts[1], pts[2], pts[3]
		}
	}
	w, _ = parseUnit(attrib["width"], 0)
	h, _ = parseUnit(attrib["height"], 0)
	return 0, 0, w, h
}

// Viewport returns the size used to resolve percentages,
// see ViewBox.
func Viewport(attrib map[string]string) (w, h float64) {
	_, _, w, h = ViewBox(attrib)
	return w, h
}

func (cv Converter) handleError(errStr string) error {
	if cv.ErrorMode == StrictErrorMode {
		return fmt.Errorf("%w: %s", ErrUnsupportedElement, errStr)
	} else if cv.ErrorMode == WarnErrorMode {
		log.Println(errStr)
	}
	return nil
}

// ElementPaths converts the drawable element `el` to one path per subpath,
// in canonical form. `attrib` holds the document attributes, used to resolve
// percentages, and `ctm` is the transform inherited from the enclosing groups.
// The own `transform` attribute of the element is applied as well.
func (cv Converter) ElementPaths(el *svgdoc.Element, attrib map[string]string, ctm Matrix2D) ([]string, error) {
	df, ok := drawFuncs[el.Name.Local]
	if !ok || !el.IsSVG() {
		return nil, cv.handleError("Cannot process svg element " + el.String())
	}

	var c elementCursor
	c.width, c.height = Viewport(attrib)
	if err := df(&c, el); err != nil {
		return nil, fmt.Errorf("invalid %s element: %w", el, err)
	}

	m := ctm
	if tr, ok := el.Get("transform"); ok {
		own, err := ParseTransform(tr)
		if err != nil {
			return nil, fmt.Errorf("invalid transform %q: %w", tr, err)
		}
		m = m.Mult(own)
	}
	path := c.path
	if !m.IsIdentity() {
		path = path.Transform(m)
	}

	subpaths := path.Subpaths()
	out := make([]string, len(subpaths))
	for i, sub := range subpaths {
		out[i] = sub.ToSVGPath()
	}
	return out, nil
}

func rectF(c *elementCursor, el *svgdoc.Element) error {
	var x, y, w, h, rx, ry float64
	var err error
	for _, attr := range el.Attr {
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "x":
			x, err = c.parseUnit(attr.Value, widthPercentage)
		case "y":
			y, err = c.parseUnit(attr.Value, heightPercentage)
		case "width":
			w, err = c.parseUnit(attr.Value, widthPercentage)
		case "height":
			h, err = c.parseUnit(attr.Value, heightPercentage)
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if w <= 0 || h <= 0 { // not drawn, but not an error
		return nil
	}
	c.path.addRoundRect(x, y, w+x, h+y, rx, ry)
	return nil
}

func circleF(c *elementCursor, el *svgdoc.Element) error {
	var cx, cy, rx, ry float64
	var err error
	for _, attr := range el.Attr {
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "cx":
			cx, err = c.parseUnit(attr.Value, widthPercentage)
		case "cy":
			cy, err = c.parseUnit(attr.Value, heightPercentage)
		case "r":
			rx, err = c.parseUnit(attr.Value, diagPercentage)
			ry = rx
		case "rx":
			rx, err = c.parseUnit(attr.Value, widthPercentage)
		case "ry":
			ry, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	c.path.addEllipse(cx, cy, rx, ry)
	return nil
}

func lineF(c *elementCursor, el *svgdoc.Element) error {
	var x1, x2, y1, y2 float64
	var err error
	for _, attr := range el.Attr {
		if attr.Name.Space != "" {
			continue
		}
		switch attr.Name.Local {
		case "x1":
			x1, err = c.parseUnit(attr.Value, widthPercentage)
		case "x2":
			x2, err = c.parseUnit(attr.Value, widthPercentage)
		case "y1":
			y1, err = c.parseUnit(attr.Value, heightPercentage)
		case "y2":
			y2, err = c.parseUnit(attr.Value, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	c.path.Start(Point{x1, y1})
	c.path.Line(Point{x2, y2})
	return nil
}

func readPoints(el *svgdoc.Element) ([]float64, error) {
	v, _ := el.Get("points")
	points, err := parseNumbers(v)
	if err != nil {
		return nil, err
	}
	if len(points)%2 != 0 {
		return nil, errors.New("polygon has odd number of points")
	}
	return points, nil
}

func polylineF(c *elementCursor, el *svgdoc.Element) error {
	points, err := readPoints(el)
	if err != nil {
		return err
	}
	if len(points) >= 4 {
		c.path.Start(Point{points[0], points[1]})
		for i := 2; i < len(points)-1; i += 2 {
			c.path.Line(Point{points[i], points[i+1]})
		}
	}
	return nil
}

func polygonF(c *elementCursor, el *svgdoc.Element) error {
	err := polylineF(c, el)
	if len(c.path) != 0 {
		c.path.Stop(true)
	}
	return err
}

func pathF(c *elementCursor, el *svgdoc.Element) error {
	d, _ := el.Get("d")
	path, err := CompilePath(d)
	if err != nil {
		return err
	}
	c.path = append(c.path, path...)
	return nil
}
