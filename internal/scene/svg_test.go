package scene

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectSVG(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	svg := r.ToSVG()

	assert.True(t, strings.HasPrefix(svg, `<g transform="matrix(1 0 0 1 25.5 40.5)" id="`+r.ID+`"`), svg)
	assert.Contains(t, svg, `x="-15" y="-20" rx="0" ry="0" width="30" height="40"`)
	assert.Contains(t, svg, `style="stroke: none; stroke-width: 1; stroke-dasharray: none; stroke-linecap: butt; `)
	assert.Contains(t, svg, `fill: rgb(0,0,0); fill-rule: nonzero; opacity: 1;"`)
	assert.True(t, strings.HasSuffix(svg, "</g>\n"))
}

func TestSVGStyles(t *testing.T) {
	r := NewRect(0, 0, 10, 10)
	r.Fill = "rgba(255,0,0,0.5)"
	r.Stroke = ""
	r.StrokeDashArray = []float64{5, 2.5}
	r.Visible = false
	styles := r.SVGStyles()

	assert.Contains(t, styles, "fill: rgb(255,0,0); fill-opacity: 0.5; ")
	assert.Contains(t, styles, "stroke: none; ")
	assert.Contains(t, styles, "stroke-dasharray: 5 2.5; ")
	assert.True(t, strings.HasSuffix(styles, " visibility: hidden;"))

	r.Fill = ""
	assert.Contains(t, r.SVGStyles(), "fill: none; ")
}

func TestPathSVG(t *testing.T) {
	p, err := NewPath("M 0 0 L 100 0 L 100 50 z")
	assert.NoError(t, err)
	svg := p.ToSVG()

	assert.Contains(t, svg, `transform="translate(-50, -25)"`)
	assert.Contains(t, svg, `d="M 0 0 L 100 0 L 100 50 Z"`)
}

func TestSVGClipPathAndShadow(t *testing.T) {
	r := strokeless(0, 0, 100, 100)
	clip := NewCircle(-25, -25, 25)
	r.ClipPath = clip
	r.Shadow = &Shadow{Color: "black", Blur: 5}
	svg := r.ToSVG()

	assert.Contains(t, svg, `clip-path="url(#CLIPPATH_`+clip.ID+`)"`)
	assert.Contains(t, svg, `<clipPath id="CLIPPATH_`+clip.ID+`" >`)
	assert.Contains(t, svg, `<circle transform="matrix(`)
	assert.Contains(t, svg, `<filter id="SVGID_`+r.ID+`"`)
	assert.Contains(t, svg, `filter: url(#SVGID_`+r.ID+`);`)
	assert.Less(t, strings.Index(svg, "<clipPath"), strings.Index(svg, "<rect"))

	clip.AbsolutePositioned = true
	svg = r.ToSVG()
	assert.True(t, strings.HasPrefix(svg, `<g id="`+r.ID+`" clip-path=`), svg)
	assert.Equal(t, 2, strings.Count(svg, "<g "))
}

func TestGroupSVG(t *testing.T) {
	a := strokeless(0, 0, 50, 50)
	b := strokeless(60, 60, 50, 50)
	b.ExcludeFromExport = true
	g := NewGroup([]Drawable{a, b}, GroupOptions{})
	g.Opacity = 0.5
	svg := g.ToSVG()

	assert.Contains(t, svg, `transform="matrix(1 0 0 1 55 55)"`)
	assert.Contains(t, svg, `style="opacity: 0.5;"`)
	assert.Contains(t, svg, `transform="matrix(1 0 0 1 -30 -30)"`)
	assert.Contains(t, svg, `id="`+a.ID+`"`)
	assert.NotContains(t, svg, `id="`+b.ID+`"`)
}
