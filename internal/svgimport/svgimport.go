// Package svgimport turns SVG documents into scene objects.
//
// Shapes, paths, polylines, text and images are imported. Groups are
// flattened: each object carries the composed transform and the inherited
// presentation attributes of its ancestors. Definitions, gradients,
// clipping and <use> references are skipped.
package svgimport

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

var (
	// ErrNotSVG is returned when the root element is not <svg>.
	ErrNotSVG = errors.New("not an svg document")
	// ErrSyntax is returned for malformed attribute values.
	ErrSyntax = errors.New("svg syntax error")
)

// skipped elements are not rendered directly.
var skipped = map[string]bool{
	"defs": true, "title": true, "desc": true, "metadata": true, "style": true,
	"script": true, "clipPath": true, "mask": true, "pattern": true, "marker": true,
	"symbol": true, "linearGradient": true, "radialGradient": true, "filter": true,
	"use": true, "foreignObject": true,
}

// Size of documents that give no size of their own.
const (
	defaultWidth  = 1280
	defaultHeight = 720
)

// Result is an imported document.
type Result struct {
	Objects []scene.Drawable
	// Width and Height are the outer size, from width/height or the
	// viewBox. Zero when the document gives neither.
	Width, Height float64
}

// Records serializes the objects back to front.
func (r *Result) Records() ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(r.Objects))
	for _, d := range r.Objects {
		raw, err := json.Marshal(d.Base())
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", d.Type(), err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// Parse reads an SVG document.
func Parse(r io.Reader) (*Result, error) {
	p := &parser{dec: xml.NewDecoder(r)}
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil, ErrNotSVG
		}
		if err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "svg" {
			return nil, fmt.Errorf("%w: root is <%s>", ErrNotSVG, se.Name.Local)
		}
		if err := p.root(se); err != nil {
			return nil, fmt.Errorf("parse svg: %w", err)
		}
		return &p.result, nil
	}
}

// ParseDocument reads an SVG document into a canvas document of the SVG's
// size.
func ParseDocument(r io.Reader) (*document.Document, error) {
	res, err := Parse(r)
	if err != nil {
		return nil, err
	}
	records, err := res.Records()
	if err != nil {
		return nil, err
	}
	width, height := int(res.Width+0.5), int(res.Height+0.5)
	if width <= 0 || height <= 0 {
		width, height = defaultWidth, defaultHeight
	}
	doc := document.NewEmpty(width, height)
	doc.Objects = records
	return doc, nil
}

type parser struct {
	dec    *xml.Decoder
	result Result
}

func attrMap(se xml.StartElement) map[string]string {
	m := make(map[string]string, len(se.Attr))
	for _, a := range se.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}

func (p *parser) root(se xml.StartElement) error {
	attrs := attributes(attrMap(se))
	st, err := defaultStyle().inherit(attrs)
	if err != nil {
		return err
	}

	var width, height float64
	if v, ok := attrs["width"]; ok && !strings.HasSuffix(v, "%") {
		if width, err = parseNumber(v); err != nil {
			return err
		}
	}
	if v, ok := attrs["height"]; ok && !strings.HasSuffix(v, "%") {
		if height, err = parseNumber(v); err != nil {
			return err
		}
	}

	m := geom.Identity()
	if v, ok := attrs["viewBox"]; ok {
		vb, err := parseNumbers(v)
		if err != nil {
			return err
		}
		if len(vb) != 4 || vb[2] <= 0 || vb[3] <= 0 {
			return fmt.Errorf("%w: viewBox %q", ErrSyntax, v)
		}
		if width == 0 {
			width = vb[2]
		}
		if height == 0 {
			height = vb[3]
		}
		// Uniform scale, centered: the preserveAspectRatio default.
		scale := min(width/vb[2], height/vb[3])
		dx := (width - vb[2]*scale) / 2
		dy := (height - vb[3]*scale) / 2
		m = geom.Multiply(geom.Translate(dx-vb[0]*scale, dy-vb[1]*scale), geom.Scale(scale, scale), false)
	}
	p.result.Width, p.result.Height = width, height

	if st.hidden {
		return p.dec.Skip()
	}
	return p.children(st, m)
}

// children reads elements until the end tag of the current element.
func (p *parser) children(st style, m geom.Matrix2D) error {
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := p.element(t, st, m); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *parser) element(se xml.StartElement, parent style, m geom.Matrix2D) error {
	name := se.Name.Local
	if skipped[name] {
		return p.dec.Skip()
	}
	attrs := attributes(attrMap(se))
	st, err := parent.inherit(attrs)
	if err != nil {
		return fmt.Errorf("<%s>: %w", name, err)
	}
	if v, ok := attrs["transform"]; ok {
		local, err := parseTransform(v)
		if err != nil {
			return fmt.Errorf("<%s>: %w", name, err)
		}
		m = geom.Multiply(m, local, false)
	}

	switch name {
	case "g", "a", "svg", "switch":
		if st.hidden {
			return p.dec.Skip()
		}
		return p.children(st, m)
	case "text":
		content, err := p.text()
		if err != nil {
			return err
		}
		if st.hidden || st.invisible || content == "" {
			return nil
		}
		d, err := newText(content, attrs, st)
		if err != nil {
			return fmt.Errorf("<text>: %w", err)
		}
		p.add(d, m)
		return nil
	}

	d, err := newShape(name, attrs, st)
	if err != nil {
		return fmt.Errorf("<%s>: %w", name, err)
	}
	if d != nil && !st.hidden && !st.invisible {
		p.add(d, m)
	}
	return p.dec.Skip()
}

func (p *parser) add(d scene.Drawable, m geom.Matrix2D) {
	o := d.Base()
	if !m.IsIdentity() {
		scene.ApplyTransform(o, m)
	}
	o.SetCoords()
	p.result.Objects = append(p.result.Objects, d)
}

// text collects the character data of a text element and its tspans,
// with whitespace collapsed.
func (p *parser) text() (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		tok, err := p.dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			sb.Write(t)
			sb.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(sb.String()), " "), nil
}

func numbers(attrs map[string]string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		v, ok := attrs[n]
		if !ok {
			continue
		}
		f, err := parseNumber(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

// newShape builds the object for a shape element. It returns nil for
// elements that draw nothing, such as a rect without area.
func newShape(name string, attrs map[string]string, st style) (scene.Drawable, error) {
	var d scene.Drawable
	switch name {
	case "rect":
		v, err := numbers(attrs, "x", "y", "width", "height", "rx", "ry")
		if err != nil {
			return nil, err
		}
		if v[2] <= 0 || v[3] <= 0 {
			return nil, nil
		}
		rx, ry := v[4], v[5]
		_, hasRx := attrs["rx"]
		_, hasRy := attrs["ry"]
		if hasRx && !hasRy {
			ry = rx
		} else if hasRy && !hasRx {
			rx = ry
		}
		r := scene.NewRect(v[0], v[1], v[2], v[3])
		r.SetRx(min(rx, v[2]/2))
		r.SetRy(min(ry, v[3]/2))
		d = r
	case "circle":
		v, err := numbers(attrs, "cx", "cy", "r")
		if err != nil {
			return nil, err
		}
		if v[2] <= 0 {
			return nil, nil
		}
		d = scene.NewCircle(v[0]-v[2], v[1]-v[2], v[2])
	case "ellipse":
		v, err := numbers(attrs, "cx", "cy", "rx", "ry")
		if err != nil {
			return nil, err
		}
		if v[2] <= 0 || v[3] <= 0 {
			return nil, nil
		}
		d = scene.NewEllipse(v[0]-v[2], v[1]-v[3], v[2], v[3])
	case "line":
		v, err := numbers(attrs, "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, err
		}
		d = scene.NewLine(v[0], v[1], v[2], v[3])
	case "polyline", "polygon":
		points, err := parsePoints(attrs["points"])
		if err != nil {
			return nil, err
		}
		if len(points) < 2 {
			return nil, nil
		}
		if name == "polygon" {
			d = scene.NewPolygon(points)
		} else {
			d = scene.NewPolyline(points)
		}
	case "path":
		if strings.TrimSpace(attrs["d"]) == "" {
			return nil, nil
		}
		path, err := scene.NewPath(attrs["d"])
		if err != nil {
			return nil, err
		}
		d = path
	case "image":
		return newImage(attrs, st)
	default:
		return nil, nil
	}
	st.apply(d.Base())
	return d, nil
}

func newImage(attrs map[string]string, st style) (scene.Drawable, error) {
	href := attrs["href"]
	if href == "" {
		return nil, nil
	}
	v, err := numbers(attrs, "x", "y", "width", "height")
	if err != nil {
		return nil, err
	}
	img := scene.NewImage(nil, href)
	o := img.Base()
	o.SetPosition(v[0], v[1])
	o.SetWidth(v[2])
	o.SetHeight(v[3])
	o.Opacity = st.opacity
	return img, nil
}

// ascent is the share of the font size above the baseline, used to place
// the text box from the SVG baseline position.
const ascent = 0.8

func newText(content string, attrs map[string]string, st style) (scene.Drawable, error) {
	v, err := numbers(attrs, "x", "y")
	if err != nil {
		return nil, err
	}
	t := scene.NewText(content, v[0], v[1])
	t.SetFontFamily(st.fontFamily)
	t.SetFontSize(st.fontSize)
	t.SetFontWeight(st.fontWeight)
	t.SetFontStyle(st.fontStyle)
	st.apply(t.Base())
	o := t.Base()
	o.SetOriginX(st.anchor())
	o.SetPosition(v[0], v[1]-st.fontSize*ascent)
	return t, nil
}
