// Implements a raster backend to preview laser cutting
// models, by wrapping rasterx.
package svgraster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/benoitkugler/lasersvg/internal/fsutil"
	"github.com/benoitkugler/lasersvg/svgmodel"
	"github.com/benoitkugler/lasersvg/svgpath"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ svgpath.Drawer = (*Renderer)(nil) // assert interface conformance

// ErrEmptyModel is returned when the size of the image can't be deduced
// from the model.
var ErrEmptyModel = errors.New("svgraster: model has no size and no paths")

// Renderer draws svgpath.Path values with rasterx.
// The path commands go to the filler or the dasher,
// depending on the current operation.
type Renderer struct {
	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance
	pen    svgpath.Drawer  // receives the path commands
}

// NewRenderer returns a renderer with default values.
// In addition to rasterizing lines like a Scanner,
// it can also rasterize quadratic and cubic bezier curves.
func NewRenderer(width, height int, scanner rasterx.Scanner) *Renderer {
	rd := &Renderer{dasher: rasterx.NewDasher(width, height, scanner), filler: rasterx.NewFiller(width, height, scanner)}
	rd.pen = rd.filler
	return rd
}

func (rd *Renderer) Clear() {
	rd.dasher.Clear()
	rd.filler.Clear()
}

func (rd *Renderer) SetWinding(useNonZeroWinding bool) {
	rd.dasher.SetWinding(useNonZeroWinding)
	rd.filler.SetWinding(useNonZeroWinding)
}

func (rd *Renderer) SetFillColor(c color.Color, opacity float64) {
	rd.filler.Scanner.SetColor(rasterx.ApplyOpacity(c, opacity))
}

func (rd *Renderer) SetStrokeColor(c color.Color, opacity float64) {
	rd.dasher.Scanner.SetColor(rasterx.ApplyOpacity(c, opacity))
}

// SetStrokeOptions configures the dasher, with a line width
// already scaled to pixels. Dashes are scaled by `scale`.
func (rd *Renderer) SetStrokeOptions(style PathStyle, lineWidth, scale float64) {
	var dash []float64
	for _, d := range style.Dash {
		dash = append(dash, d*scale)
	}
	lineCap := style.LineCap
	if lineCap == nil {
		lineCap = rasterx.ButtCap
	}
	rd.dasher.SetStroke(
		fixed.Int26_6(lineWidth*64), fixed.Int26_6(style.MiterLimit*64), lineCap,
		lineCap, rasterx.FlatGap, style.LineJoin, dash, style.DashOffset*scale,
	)
}

func (rd *Renderer) Start(a fixed.Point26_6) { rd.pen.Start(a) }

func (rd *Renderer) Line(b fixed.Point26_6) { rd.pen.Line(b) }

func (rd *Renderer) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) { rd.pen.QuadBezier(b, c) }

func (rd *Renderer) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	rd.pen.CubeBezier(b, c, d)
}

func (rd *Renderer) Stop(closeLoop bool) { rd.pen.Stop(closeLoop) }

// Fill fills the path, transformed by mat, with the current fill color.
func (rd *Renderer) Fill(p svgpath.Path, mat svgpath.Matrix2D) {
	rd.filler.Clear()
	rd.pen = rd.filler
	p.AddTo(rd, mat)
	rd.filler.Draw()
}

// Stroke outlines the path, transformed by mat, with the current
// stroke color and options.
func (rd *Renderer) Stroke(p svgpath.Path, mat svgpath.Matrix2D) {
	rd.dasher.Clear()
	rd.pen = rd.dasher
	p.AddTo(rd, mat)
	rd.dasher.Draw()
}

// Options controls the preview image.
type Options struct {
	// Width and Height of the image, in pixels. When one is zero, it is deduced
	// from the other and the aspect ratio of the model. When both are zero,
	// one user unit is one pixel.
	Width, Height int
	Background    color.Color // nil for a transparent background
	// Stroke is used for paths whose style has no stroke.
	// Defaults to black.
	Stroke color.Color
	// StrokeWidth, in pixels, is used for paths whose style has no
	// stroke width. Defaults to 1.
	StrokeWidth float64
}

// modelBox returns the area to render: the viewBox of the model,
// or the bounding box of its paths.
func modelBox(m *svgmodel.Model) (x, y, w, h float64, err error) {
	x, y, w, h = svgpath.ViewBox(m.Attrib)
	if w > 0 && h > 0 {
		return x, y, w, h, nil
	}
	var (
		box   fixed.Rectangle26_6
		found bool
	)
	err = m.Tree.Walk(func(path []string, node *svgmodel.Node) error {
		if node.Leaf() == nil {
			return nil
		}
		for _, d := range node.Leaf().Paths {
			p, err := svgpath.CompilePath(d)
			if err != nil {
				return fmt.Errorf("invalid path at /%s: %w", strings.Join(path, "/"), err)
			}
			if len(p) == 0 {
				continue
			}
			b := p.Bounds()
			if !found {
				box, found = b, true
				continue
			}
			box.Min.X, box.Min.Y = min26(box.Min.X, b.Min.X), min26(box.Min.Y, b.Min.Y)
			box.Max.X, box.Max.Y = max26(box.Max.X, b.Max.X), max26(box.Max.Y, b.Max.Y)
		}
		return nil
	})
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if !found || box.Max.X == box.Min.X || box.Max.Y == box.Min.Y {
		return 0, 0, 0, 0, ErrEmptyModel
	}
	x, y = float64(box.Min.X)/64, float64(box.Min.Y)/64
	return x, y, float64(box.Max.X-box.Min.X) / 64, float64(box.Max.Y-box.Min.Y) / 64, nil
}

func min26(a, b fixed.Int26_6) fixed.Int26_6 {
	if a < b {
		return a
	}
	return b
}

func max26(a, b fixed.Int26_6) fixed.Int26_6 {
	if a > b {
		return a
	}
	return b
}

// RasterModel draws the paths of the model into a new image, using the
// style of each leaf. The model area (its viewBox, or the bounding box of
// its paths) is scaled to fit the image, preserving its aspect ratio.
//
// Since a laser cutter follows the outline of the shapes, paths are
// not filled unless their style has a fill color.
func RasterModel(m *svgmodel.Model, opts Options) (*image.RGBA, error) {
	if m == nil || m.Tree == nil {
		return nil, &svgmodel.ModelShapeError{Reason: "missing tree"}
	}
	vx, vy, vw, vh, err := modelBox(m)
	if err != nil {
		return nil, err
	}

	w, h := opts.Width, opts.Height
	switch {
	case w <= 0 && h <= 0:
		w, h = int(math.Ceil(vw)), int(math.Ceil(vh))
	case h <= 0:
		h = int(math.Ceil(float64(w) * vh / vw))
	case w <= 0:
		w = int(math.Ceil(float64(h) * vw / vh))
	}
	scale := math.Min(float64(w)/vw, float64(h)/vh)
	mat := svgpath.Identity.Scale(scale, scale).Translate(-vx, -vy)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	base := PathStyle{
		FillOpacity: 1,
		LineOpacity: 1,
		LineWidth:   -1, // use opts.StrokeWidth
		MiterLimit:  4,
		LineJoin:    rasterx.Round,
		LineCap:     rasterx.RoundCap,
		LinerColor:  opts.Stroke,
	}
	if base.LinerColor == nil {
		base.LinerColor = color.Black
	}
	defaultWidth := opts.StrokeWidth
	if defaultWidth <= 0 {
		defaultWidth = 1
	}

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	rd := NewRenderer(w, h, scanner)
	err = m.Tree.Walk(func(path []string, node *svgmodel.Node) error {
		leaf := node.Leaf()
		if leaf == nil {
			return nil
		}
		style, err := ParseStyle(leaf.Style, base)
		if err != nil {
			return fmt.Errorf("at /%s: %w", strings.Join(path, "/"), err)
		}
		lineWidth := defaultWidth
		if style.LineWidth >= 0 {
			lineWidth = math.Max(style.LineWidth*scale, 1) // hairlines stay visible
		}
		for _, d := range leaf.Paths {
			p, err := svgpath.CompilePath(d)
			if err != nil {
				return fmt.Errorf("invalid path at /%s: %w", strings.Join(path, "/"), err)
			}
			rd.drawPath(p, style, mat, lineWidth, scale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (rd *Renderer) drawPath(p svgpath.Path, style PathStyle, mat svgpath.Matrix2D, lineWidth, scale float64) {
	if style.FillerColor != nil {
		rd.SetWinding(true)
		rd.SetFillColor(style.FillerColor, style.FillOpacity)
		rd.Fill(p, mat)
	}
	if style.LinerColor != nil {
		rd.SetStrokeOptions(style, lineWidth, scale)
		rd.SetStrokeColor(style.LinerColor, style.LineOpacity)
		rd.Stroke(p, mat)
	}
}

// EncodePNG writes the image in PNG format.
func EncodePNG(w io.Writer, img image.Image) error { return png.Encode(w, img) }

// WritePNGFile writes the image to `filename`, in PNG format.
// The file is either completely written or left unchanged.
func WritePNGFile(filename string, img image.Image) error {
	return fsutil.WriteFileAtomic(filename, func(w io.Writer) error {
		return EncodePNG(w, img)
	})
}
