package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrParamMismatch is returned for a command or a transform
	// with the wrong number of parameters.
	ErrParamMismatch = errors.New("svgpath: param mismatch")
	// ErrCommandUnknown is returned for an invalid path command.
	ErrCommandUnknown = errors.New("svgpath: unknown command")
)

// number of parameters of each path command
var pathArity = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'T': 2,
	'A': 7, 'Z': 0,
}

// pathCursor is used while compiling the `d` attribute.
type pathCursor struct {
	path             Path
	points           []float64
	placeX, placeY   float64 // current point
	startX, startY   float64 // start of the current subpath
	cntlPtX, cntlPtY float64 // last control point, for smooth curves
	lastKey          byte    // upper case
}

// CompilePath parses the `d` attribute of a <path> element.
// All commands of the SVG path grammar are supported; the result
// only uses absolute MoveTo, LineTo, QuadTo, CubicTo and Close.
func CompilePath(d string) (Path, error) {
	var c pathCursor
	if err := c.compilePath(d); err != nil {
		return nil, err
	}
	return c.path, nil
}

func upper(b byte) byte {
	if 'a' <= b && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func isLetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isSeparator(b byte) bool {
	return b == ' ' || b == ',' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func skipSeparators(s string, i int) int {
	for i < len(s) && isSeparator(s[i]) {
		i++
	}
	return i
}

// readNumber reads a float starting at s[i], and returns
// the index following it.
func readNumber(s string, i int) (float64, int, error) {
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	var digits, seenDot bool
	for ; i < len(s); i++ {
		b := s[i]
		if '0' <= b && b <= '9' {
			digits = true
		} else if b == '.' && !seenDot {
			seenDot = true
		} else {
			break
		}
	}
	if !digits {
		return 0, start, fmt.Errorf("%w: expected number at %q", ErrParamMismatch, s[start:])
	}
	// exponent
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && '0' <= s[j] && s[j] <= '9' {
			for j < len(s) && '0' <= s[j] && s[j] <= '9' {
				j++
			}
			i = j
		}
	}
	f, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0, start, err
	}
	return f, i, nil
}

// readFlag reads an arc flag, which may be written without separator,
// as in "a1 1 0 00 1 1".
func readFlag(s string, i int) (float64, int, error) {
	if i < len(s) {
		switch s[i] {
		case '0':
			return 0, i + 1, nil
		case '1':
			return 1, i + 1, nil
		}
	}
	return 0, i, fmt.Errorf("%w: expected arc flag at %q", ErrParamMismatch, s[i:])
}

// parseNumbers parses a list of numbers separated by commas or spaces.
func parseNumbers(s string) ([]float64, error) {
	var out []float64
	i := skipSeparators(s, 0)
	for i < len(s) {
		f, next, err := readNumber(s, i)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		i = skipSeparators(s, next)
	}
	return out, nil
}

func (c *pathCursor) compilePath(svgPath string) error {
	var key byte
	i := 0
	for {
		i = skipSeparators(svgPath, i)
		if i >= len(svgPath) {
			break
		}
		if ch := svgPath[i]; isLetter(ch) {
			if _, ok := pathArity[upper(ch)]; !ok {
				return fmt.Errorf("%w: %q", ErrCommandUnknown, ch)
			}
			key = ch
			i++
			if upper(key) == 'Z' {
				if err := c.addSeg(key); err != nil {
					return err
				}
				continue
			}
		} else if key == 0 || upper(key) == 'Z' {
			return fmt.Errorf("%w: unexpected %q", ErrParamMismatch, svgPath[i:])
		}

		n := pathArity[upper(key)]
		c.points = c.points[:0]
		for k := 0; k < n; k++ {
			i = skipSeparators(svgPath, i)
			var (
				f   float64
				err error
			)
			if upper(key) == 'A' && (k == 3 || k == 4) {
				f, i, err = readFlag(svgPath, i)
			} else {
				f, i, err = readNumber(svgPath, i)
			}
			if err != nil {
				return err
			}
			c.points = append(c.points, f)
		}
		if err := c.addSeg(key); err != nil {
			return err
		}
		// subsequent pairs after a moveto are implicit linetos
		if key == 'M' {
			key = 'L'
		} else if key == 'm' {
			key = 'l'
		}
	}
	return nil
}

// reflect returns the control point for smooth curves
func (c *pathCursor) reflect(after ...byte) (float64, float64) {
	for _, k := range after {
		if c.lastKey == k {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

// addSeg adds the segment described by `key` and c.points.
func (c *pathCursor) addSeg(key byte) error {
	up := upper(key)
	if len(c.path) == 0 && up != 'M' {
		return fmt.Errorf("%w: path must start with a moveto, got %q", ErrParamMismatch, key)
	}
	if c.lastKey == 'Z' && up != 'M' && up != 'Z' {
		// a subpath following a closepath starts at the same point
		c.path.Start(Point{c.startX, c.startY})
	}

	var offX, offY float64
	if key != up {
		offX, offY = c.placeX, c.placeY
	}
	pt := func(i int) Point { return Point{c.points[i] + offX, c.points[i+1] + offY} }
	p := c.points

	switch up {
	case 'M':
		a := pt(0)
		c.path.Start(a)
		c.startX, c.startY = a.X, a.Y
		c.placeX, c.placeY = a.X, a.Y
	case 'L':
		b := pt(0)
		c.path.Line(b)
		c.placeX, c.placeY = b.X, b.Y
	case 'H':
		x := p[0] + offX
		c.path.Line(Point{x, c.placeY})
		c.placeX = x
	case 'V':
		y := p[0]
		if key != up {
			y += c.placeY
		}
		c.path.Line(Point{c.placeX, y})
		c.placeY = y
	case 'C':
		b, cp, d := pt(0), pt(2), pt(4)
		c.path.CubeBezier(b, cp, d)
		c.cntlPtX, c.cntlPtY = cp.X, cp.Y
		c.placeX, c.placeY = d.X, d.Y
	case 'S':
		bx, by := c.reflect('C', 'S')
		cp, d := pt(0), pt(2)
		c.path.CubeBezier(Point{bx, by}, cp, d)
		c.cntlPtX, c.cntlPtY = cp.X, cp.Y
		c.placeX, c.placeY = d.X, d.Y
	case 'Q':
		b, d := pt(0), pt(2)
		c.path.QuadBezier(b, d)
		c.cntlPtX, c.cntlPtY = b.X, b.Y
		c.placeX, c.placeY = d.X, d.Y
	case 'T':
		bx, by := c.reflect('Q', 'T')
		d := pt(0)
		c.path.QuadBezier(Point{bx, by}, d)
		c.cntlPtX, c.cntlPtY = bx, by
		c.placeX, c.placeY = d.X, d.Y
	case 'A':
		end := pt(5)
		p[5], p[6] = end.X, end.Y
		p[0], p[1] = math.Abs(p[0]), math.Abs(p[1])
		switch {
		case end.X == c.placeX && end.Y == c.placeY:
			// omitted, as required by the SVG implementation notes
		case p[0] == 0 || p[1] == 0:
			c.path.Line(end)
		default:
			cx, cy := findEllipseCenter(&p[0], &p[1], p[2]*math.Pi/180, c.placeX,
				c.placeY, p[5], p[6], p[4] == 0, p[3] == 0)
			c.path.addArc(p, cx, cy, c.placeX, c.placeY)
		}
		c.placeX, c.placeY = end.X, end.Y
	case 'Z':
		if c.lastKey != 'Z' {
			c.path.Stop(true)
		}
		c.placeX, c.placeY = c.startX, c.startY
	}
	c.lastKey = up
	return nil
}

func (m Matrix2D) readTransformAttr(points []float64, k string) (Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m = m.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m = m.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m, ErrParamMismatch
		}
	case "translate":
		if ln == 1 {
			m = m.Translate(points[0], 0)
		} else if ln == 2 {
			m = m.Translate(points[0], points[1])
		} else {
			return m, ErrParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m = m.SkewX(points[0] * math.Pi / 180)
		} else {
			return m, ErrParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m = m.SkewY(points[0] * math.Pi / 180)
		} else {
			return m, ErrParamMismatch
		}
	case "scale":
		if ln == 1 {
			m = m.Scale(points[0], points[0])
		} else if ln == 2 {
			m = m.Scale(points[0], points[1])
		} else {
			return m, ErrParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m = m.Mult(Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m, ErrParamMismatch
		}
	default:
		return m, fmt.Errorf("%w: unknown transform %q", ErrParamMismatch, k)
	}
	return m, nil
}

// ParseTransform parses the content of a `transform` attribute,
// such as "translate(10 20) rotate(45)".
func ParseTransform(v string) (Matrix2D, error) {
	m := Identity
	ts := strings.Split(v, ")")
	for i, t := range ts {
		t = strings.TrimSpace(strings.TrimLeft(t, ", \t\n\r"))
		if len(t) == 0 {
			continue
		}
		if i == len(ts)-1 {
			return m, ErrParamMismatch // missing closing parenthesis
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m, ErrParamMismatch // badly formed transformation
		}
		points, err := parseNumbers(d[1])
		if err != nil {
			return m, err
		}
		m, err = m.readTransformAttr(points, strings.ToLower(strings.TrimSpace(d[0])))
		if err != nil {
			return m, err
		}
	}
	return m, nil
}

// length units, in user units (px at 96 dpi)
var unitScales = map[string]float64{
	"":   1,
	"px": 1,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
	"pt": 96. / 72,
	"pc": 16,
}

// parseUnit parses a length, resolving percentages against `base`.
func parseUnit(v string, base float64) (float64, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "%")), 64)
		if err != nil {
			return 0, err
		}
		return f * base / 100, nil
	}
	i := len(v)
	for i > 0 && isLetter(v[i-1]) && v[i-1] != 'e' && v[i-1] != 'E' {
		i--
	}
	scale, ok := unitScales[strings.ToLower(v[i:])]
	if !ok {
		return 0, fmt.Errorf("svgpath: unsupported unit in %q", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v[:i]), 64)
	if err != nil {
		return 0, err
	}
	return f * scale, nil
}
