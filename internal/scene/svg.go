package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/color"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

type svgElementer interface {
	// svgElement returns the element markup with common inserted among
	// its attributes.
	svgElement(common string, digits int) string
}

// colorPropToSVG renders a paint as an SVG style declaration.
func colorPropToSVG(prop, value string) string {
	if value == "" {
		return prop + ": none; "
	}
	c := color.Parse(value)
	s := fmt.Sprintf("%s: %s; ", prop, c.ToRgb())
	if c.A != 1 {
		s += fmt.Sprintf("%s-opacity: %s; ", prop, num(c.A))
	}
	return s
}

func (o *Object) svgFilter() string {
	if o.Shadow == nil {
		return ""
	}
	return fmt.Sprintf("filter: url(#SVGID_%s);", o.ID)
}

func (o *Object) svgVisibility() string {
	if o.Visible {
		return ""
	}
	return " visibility: hidden;"
}

// SVGStyles is the style attribute value for the object's paint.
func (o *Object) SVGStyles() string {
	if s, ok := o.self.(interface{ svgStyles() string }); ok {
		return s.svgStyles()
	}
	dash := "none"
	if len(o.StrokeDashArray) > 0 {
		parts := make([]string, len(o.StrokeDashArray))
		for i, v := range o.StrokeDashArray {
			parts[i] = num(v)
		}
		dash = strings.Join(parts, " ")
	}
	var b strings.Builder
	b.WriteString(colorPropToSVG("stroke", o.Stroke))
	fmt.Fprintf(&b, "stroke-width: %s; ", num(o.strokeWidth))
	fmt.Fprintf(&b, "stroke-dasharray: %s; ", dash)
	fmt.Fprintf(&b, "stroke-linecap: %s; ", o.StrokeLineCap)
	fmt.Fprintf(&b, "stroke-dashoffset: %s; ", num(o.StrokeDashOffset))
	fmt.Fprintf(&b, "stroke-linejoin: %s; ", o.StrokeLineJoin)
	fmt.Fprintf(&b, "stroke-miterlimit: %s; ", num(o.StrokeMiterLimit))
	b.WriteString(colorPropToSVG("fill", o.Fill))
	fmt.Fprintf(&b, "fill-rule: %s; ", o.FillRule)
	fmt.Fprintf(&b, "opacity: %s;", num(o.Opacity))
	b.WriteString(o.svgFilter())
	b.WriteString(o.svgVisibility())
	return b.String()
}

func (g *Group) svgStyles() string {
	s := ""
	if g.Opacity != 1 {
		s = fmt.Sprintf("opacity: %s;", num(g.Opacity))
	}
	return s + g.svgFilter() + g.svgVisibility()
}

func (o *Object) clipPathID() string {
	return "CLIPPATH_" + o.ID
}

func (o *Object) svgCommons() string {
	var b strings.Builder
	if o.ID != "" {
		fmt.Fprintf(&b, `id="%s" `, o.ID)
	}
	if o.ClipPath != nil {
		fmt.Fprintf(&b, `clip-path="url(#%s)" `, o.ClipPath.Base().clipPathID())
	}
	return b.String()
}

func (o *Object) additionalTransform(digits int) string {
	if a, ok := o.self.(interface{ svgAdditionalTransform(int) string }); ok {
		return a.svgAdditionalTransform(digits)
	}
	return ""
}

// ToSVG renders the object as an SVG fragment in its parent's plane.
func (o *Object) ToSVG() string { return o.toSVG(o.digits()) }

func (o *Object) toSVG(digits int) string {
	el, ok := o.self.(svgElementer)
	if !ok {
		return ""
	}
	var b strings.Builder
	absoluteClip := o.ClipPath != nil && o.ClipPath.Base().AbsolutePositioned
	if absoluteClip {
		fmt.Fprintf(&b, "<g %s >\n", o.svgCommons())
	}
	b.WriteString(`<g transform="` + o.CalcOwnMatrix().ToSVG(digits) + `" `)
	if !absoluteClip {
		b.WriteString(o.svgCommons())
	}
	b.WriteString(" >\n")

	var common strings.Builder
	fmt.Fprintf(&common, `style="%s" `, o.SVGStyles())
	if o.strokeUniform {
		common.WriteString(`vector-effect="non-scaling-stroke" `)
	}
	if o.PaintFirst != "" && o.PaintFirst != "fill" {
		fmt.Fprintf(&common, `paint-order="%s" `, o.PaintFirst)
	}
	common.WriteString(" ")
	if t := o.additionalTransform(digits); t != "" {
		fmt.Fprintf(&common, `transform="%s" `, t)
	}

	if o.ClipPath != nil {
		_, def := ClipPathDef(o.ClipPath)
		b.WriteString(def)
	}
	if o.Shadow != nil {
		b.WriteString(o.Shadow.ToSVG(o.ID, o, digits))
	}
	b.WriteString(el.svgElement(common.String(), digits))
	b.WriteString("</g>\n")
	if absoluteClip {
		b.WriteString("</g>\n")
	}
	return b.String()
}

// ClipPathDef renders clip as a clipPath element and returns the id it
// is referenced by.
func ClipPathDef(clip Drawable) (id, def string) {
	o := clip.Base()
	id = o.clipPathID()
	return id, fmt.Sprintf("<clipPath id=\"%s\" >\n%s</clipPath>\n", id, o.toClipPathSVG(o.digits()))
}

// toClipPathSVG renders the shape unstyled with its full transform, for
// use inside a clipPath element.
func (o *Object) toClipPathSVG(digits int) string {
	el, ok := o.self.(svgElementer)
	if !ok {
		return ""
	}
	t := o.CalcTransformMatrix(false).ToSVG(digits)
	if extra := o.additionalTransform(digits); extra != "" {
		t += " " + extra
	}
	common := fmt.Sprintf(`transform="%s" `, t) + o.svgCommons()
	return "\t" + el.svgElement(common, digits)
}

func (g *Group) svgElement(common string, digits int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<g %s>\n", common)
	if g.BackgroundColor != "" {
		c := color.Parse(g.BackgroundColor)
		fmt.Fprintf(&b, "\t\t<rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" style=\"fill: %s; fill-opacity: %s;\"></rect>\n",
			num(geom.ToFixed(-g.width/2, digits)), num(geom.ToFixed(-g.height/2, digits)),
			num(geom.ToFixed(g.width, digits)), num(geom.ToFixed(g.height, digits)),
			c.ToRgb(), num(c.A))
	}
	for _, d := range g.objects {
		o := d.Base()
		if o.ExcludeFromExport || o.group != g {
			continue
		}
		b.WriteString("\t\t")
		b.WriteString(o.toSVG(digits))
	}
	b.WriteString("</g>\n")
	return b.String()
}
