package svgpath

import "math"

// Matrix2D represents an SVG style matrix
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Matrix2D struct {
	A, B, C, D, E, F float64
}

// Identity is the identity matrix
var Identity = Matrix2D{1, 0, 0, 1, 0, 0}

// Transform multiplies the input vector by matrix m and outputs the results vector
// components.
func (m Matrix2D) Transform(x1, y1 float64) (x2, y2 float64) {
	x2 = x1*m.A + y1*m.C + m.E
	y2 = x1*m.B + y1*m.D + m.F
	return
}

// TransformPoint applies m to p.
func (m Matrix2D) TransformPoint(p Point) Point {
	x, y := m.Transform(p.X, p.Y)
	return Point{x, y}
}

// Mult returns m multiplied by n
func (m Matrix2D) Mult(n Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

// Scale matrix in x and y dimensions
func (m Matrix2D) Scale(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: x, D: y})
}

// SkewY skews the matrix in the Y dimension
func (m Matrix2D) SkewY(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, B: math.Tan(theta), D: 1})
}

// SkewX skews the matrix in the X dimension
func (m Matrix2D) SkewX(theta float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, C: math.Tan(theta), D: 1})
}

// Translate translates the matrix to the x, y point
func (m Matrix2D) Translate(x, y float64) Matrix2D {
	return m.Mult(Matrix2D{A: 1, D: 1, E: x, F: y})
}

// Rotate rotates the matrix by theta
func (m Matrix2D) Rotate(theta float64) Matrix2D {
	s, c := math.Sin(theta), math.Cos(theta)
	return m.Mult(Matrix2D{A: c, B: s, C: -s, D: c})
}

// IsIdentity returns true if m does not move any point.
func (m Matrix2D) IsIdentity() bool { return m == Identity }
