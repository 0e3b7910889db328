package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/color"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// Shadow is the drop shadow attached to an object.
type Shadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
	// AffectStroke keeps the shadow on while the stroke paints.
	AffectStroke bool `json:"affectStroke"`
	// NonScaling ignores the object's scale when sizing the shadow.
	NonScaling bool `json:"nonScaling"`
}

// NewShadow returns the default shadow: black, no blur, no offset.
func NewShadow() *Shadow {
	return &Shadow{Color: "rgb(0,0,0)"}
}

// ParseShadow reads the CSS text-shadow shorthand
// "color offsetX offsetY blur" in any order of color and lengths.
func ParseShadow(s string) *Shadow {
	sh := NewShadow()
	var lengths []float64
	var colorParts []string
	for _, tok := range splitTopLevel(strings.TrimSpace(s)) {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(tok, "px"), 64); err == nil {
			lengths = append(lengths, v)
			continue
		}
		colorParts = append(colorParts, tok)
	}
	if len(colorParts) > 0 {
		sh.Color = strings.Join(colorParts, " ")
	}
	if len(lengths) > 0 {
		sh.OffsetX = lengths[0]
	}
	if len(lengths) > 1 {
		sh.OffsetY = lengths[1]
	}
	if len(lengths) > 2 {
		sh.Blur = lengths[2]
	}
	return sh
}

// splitTopLevel splits on whitespace outside parentheses.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

func (s *Shadow) String() string {
	return fmt.Sprintf("%gpx %gpx %gpx %s", s.OffsetX, s.OffsetY, s.Blur, s.Color)
}

// ToObject returns the persisted record.
func (s *Shadow) ToObject() map[string]any {
	return map[string]any{
		"color":        s.Color,
		"blur":         s.Blur,
		"offsetX":      s.OffsetX,
		"offsetY":      s.OffsetY,
		"affectStroke": s.AffectStroke,
		"nonScaling":   s.NonScaling,
	}
}

// ToSVG renders an SVG filter that reproduces the shadow for obj.
func (s *Shadow) ToSVG(id string, obj *Object, digits int) string {
	const fBoxX, fBoxY = 40.0, 40.0
	offset := geom.Pt(s.OffsetX, s.OffsetY).Rotate(-geom.DegreesToRadians(obj.angle), geom.Point{})
	c := color.Parse(s.Color)
	w, h := obj.width, obj.height
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	x := fBoxX + 100*geom.ToFixed(max(abs(offset.X)+s.Blur, 0)/w, digits)
	y := fBoxY + 100*geom.ToFixed(max(abs(offset.Y)+s.Blur, 0)/h, digits)
	dx, dy := offset.X, offset.Y
	if obj.flipX {
		dx = -dx
	}
	if obj.flipY {
		dy = -dy
	}
	return fmt.Sprintf(
		"<filter id=\"SVGID_%s\" y=\"-%g%%\" height=\"%g%%\" x=\"-%g%%\" width=\"%g%%\" >\n"+
			"\t<feGaussianBlur in=\"SourceAlpha\" stdDeviation=\"%g\"></feGaussianBlur>\n"+
			"\t<feOffset dx=\"%g\" dy=\"%g\" result=\"oBlur\" ></feOffset>\n"+
			"\t<feFlood flood-color=\"%s\" flood-opacity=\"%g\"/>\n"+
			"\t<feComposite in2=\"oBlur\" operator=\"in\" />\n"+
			"\t<feMerge>\n\t\t<feMergeNode></feMergeNode>\n\t\t<feMergeNode in=\"SourceGraphic\"></feMergeNode>\n\t</feMerge>\n"+
			"</filter>\n",
		id, y, 100+2*y, x, 100+2*x,
		geom.ToFixed(s.Blur/2, digits),
		geom.ToFixed(dx, digits), geom.ToFixed(dy, digits),
		c.ToRgb(), c.A,
	)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
