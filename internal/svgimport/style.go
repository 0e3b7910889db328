package svgimport

import (
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

// style is the inherited presentation state of an element.
type style struct {
	fill             string
	fillRule         string
	stroke           string
	strokeWidth      float64
	strokeDashArray  []float64
	strokeLineCap    string
	strokeLineJoin   string
	strokeMiterLimit float64
	opacity          float64

	fontFamily string
	fontSize   float64
	fontWeight string
	fontStyle  string
	textAnchor string

	// hidden is display:none and drops the subtree. invisible is
	// visibility, which descendants can override.
	hidden    bool
	invisible bool
}

func defaultStyle() style {
	return style{
		fill:             "rgb(0,0,0)",
		fillRule:         "nonzero",
		strokeWidth:      1,
		strokeLineCap:    "butt",
		strokeLineJoin:   "miter",
		strokeMiterLimit: 4,
		opacity:          1,
		fontFamily:       "Times New Roman",
		fontSize:         16,
		fontWeight:       "normal",
		fontStyle:        "normal",
		textAnchor:       "start",
	}
}

// attributes merges presentation attributes with the style attribute,
// which wins.
func attributes(attrs map[string]string) map[string]string {
	css, ok := attrs["style"]
	if !ok {
		return attrs
	}
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	for _, decl := range strings.Split(css, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

func paint(v string) string {
	// Gradients and patterns are not imported; their fallback is none.
	if v == "none" || v == "transparent" || strings.HasPrefix(v, "url(") {
		return ""
	}
	return v
}

// inherit returns the style of a child with attrs.
func (s style) inherit(attrs map[string]string) (style, error) {
	for k, v := range attrs {
		if v == "inherit" {
			continue
		}
		var err error
		switch k {
		case "fill":
			s.fill = paint(v)
		case "fill-rule":
			s.fillRule = v
		case "stroke":
			s.stroke = paint(v)
		case "stroke-width":
			s.strokeWidth, err = parseNumber(v)
		case "stroke-dasharray":
			if v == "none" {
				s.strokeDashArray = nil
			} else {
				s.strokeDashArray, err = parseNumbers(v)
			}
		case "stroke-linecap":
			s.strokeLineCap = v
		case "stroke-linejoin":
			s.strokeLineJoin = v
		case "stroke-miterlimit":
			s.strokeMiterLimit, err = parseNumber(v)
		case "opacity":
			var o float64
			o, err = parseNumber(v)
			s.opacity *= o
		case "font-family":
			s.fontFamily = strings.Trim(v, `'"`)
		case "font-size":
			s.fontSize, err = parseNumber(v)
		case "font-weight":
			s.fontWeight = v
		case "font-style":
			s.fontStyle = v
		case "text-anchor":
			s.textAnchor = v
		case "display":
			s.hidden = s.hidden || v == "none"
		case "visibility":
			s.invisible = v == "hidden" || v == "collapse"
		}
		if err != nil {
			return s, err
		}
	}
	return s, nil
}

func (s style) apply(o *scene.Object) {
	o.Fill = s.fill
	o.FillRule = s.fillRule
	o.Stroke = s.stroke
	o.SetStrokeWidth(s.strokeWidth)
	o.StrokeDashArray = s.strokeDashArray
	o.StrokeLineCap = s.strokeLineCap
	o.StrokeLineJoin = s.strokeLineJoin
	o.StrokeMiterLimit = s.strokeMiterLimit
	o.Opacity = s.opacity
}

func (s style) anchor() geom.Origin {
	switch s.textAnchor {
	case "middle":
		return geom.OriginCenter
	case "end":
		return geom.OriginRight
	}
	return geom.OriginLeft
}
