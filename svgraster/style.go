package svgraster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"
)

// PathStyle holds the subset of the SVG presentation attributes
// used to preview cut paths.
type PathStyle struct {
	FillOpacity, LineOpacity float64
	LineWidth                float64 // in user units
	MiterLimit               float64

	LineJoin rasterx.JoinMode
	LineCap  rasterx.CapFunc

	Dash       []float64 // nil for no dashes
	DashOffset float64

	FillerColor, LinerColor color.Color // nil disables filling or stroking
}

// ParseColor parses an SVG color: a name, "#rgb", "#rrggbb" or "rgb(r, g, b)".
// "none" is returned as a nil color.
func ParseColor(v string) (color.Color, error) {
	v = strings.TrimSpace(v)
	low := strings.ToLower(v)
	switch {
	case low == "none" || low == "transparent":
		return nil, nil
	case low == "currentcolor":
		return color.Black, nil
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v[1:])
	case strings.HasPrefix(low, "rgb(") && strings.HasSuffix(low, ")"):
		return parseRGBColor(low[4 : len(low)-1])
	}
	if c, ok := colornames.Map[low]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("invalid color %q", v)
}

func parseHexColor(hex string) (color.Color, error) {
	if len(hex) == 3 { // #rgb stands for #rrggbb
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil, fmt.Errorf("invalid color #%s", hex)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color #%s: %s", hex, err)
	}
	return color.NRGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

func parseRGBColor(args string) (color.Color, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid color rgb(%s)", args)
	}
	var comps [3]uint8
	for i, part := range parts {
		part = strings.TrimSpace(part)
		scale := 1.
		if strings.HasSuffix(part, "%") {
			part = strings.TrimSuffix(part, "%")
			scale = 255. / 100
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid color rgb(%s): %s", args, err)
		}
		f *= scale
		if f < 0 {
			f = 0
		} else if f > 255 {
			f = 255
		}
		comps[i] = uint8(f + 0.5)
	}
	return color.NRGBA{R: comps[0], G: comps[1], B: comps[2], A: 0xff}, nil
}

func parseFloats(v string) ([]float64, error) {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]float64, len(fields))
	for i, f := range fields {
		var err error
		out[i], err = strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (st *PathStyle) readStyleAttr(k, v string) error {
	switch k {
	case "fill":
		c, err := ParseColor(v)
		if err != nil {
			return err
		}
		st.FillerColor = c
	case "stroke":
		c, err := ParseColor(v)
		if err != nil {
			return err
		}
		st.LinerColor = c
	case "stroke-linecap":
		switch v {
		case "butt":
			st.LineCap = rasterx.ButtCap
		case "round":
			st.LineCap = rasterx.RoundCap
		case "square":
			st.LineCap = rasterx.SquareCap
		}
	case "stroke-linejoin":
		switch v {
		case "miter":
			st.LineJoin = rasterx.Miter
		case "miter-clip":
			st.LineJoin = rasterx.MiterClip
		case "arc-clip":
			st.LineJoin = rasterx.ArcClip
		case "round":
			st.LineJoin = rasterx.Round
		case "arc":
			st.LineJoin = rasterx.Arc
		case "bevel":
			st.LineJoin = rasterx.Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		st.MiterLimit = mLimit
	case "stroke-width":
		width, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64)
		if err != nil {
			return err
		}
		st.LineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		st.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			st.Dash = nil
			break
		}
		dashes, err := parseFloats(v)
		if err != nil {
			return err
		}
		st.Dash = dashes
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		if k != "stroke-opacity" {
			st.FillOpacity *= op
		}
		if k != "fill-opacity" {
			st.LineOpacity *= op
		}
	}
	return nil
}

// ParseStyle applies the declarations of a style attribute,
// such as "fill:none;stroke:#ff0000", on top of `base`.
// Unknown properties are ignored.
func ParseStyle(style string, base PathStyle) (PathStyle, error) {
	out := base
	for _, pair := range strings.Split(style, ";") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if err := out.readStyleAttr(k, v); err != nil {
			return base, fmt.Errorf("invalid style property %s: %w", k, err)
		}
	}
	return out, nil
}
