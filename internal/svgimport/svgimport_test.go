package svgimport

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/geom"
	"github.com/inamate/inamate/canvas-go/internal/scene"
)

func parse(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return res
}

func TestParseShapes(t *testing.T) {
	res := parse(t, `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="300" height="200">
  <title>shapes</title>
  <rect x="10" y="20" width="30" height="40" rx="5" fill="red"/>
  <circle cx="50" cy="50" r="10" stroke="blue" stroke-width="2"/>
  <ellipse cx="100" cy="100" rx="20" ry="10"/>
  <line x1="0" y1="0" x2="10" y2="10" stroke="black"/>
  <polygon points="0,0 10,0 10,10"/>
  <polyline points="0 0 5 5 10 0"/>
  <path d="M 0 0 L 10 10 Z"/>
</svg>`)

	assert.Equal(t, 300.0, res.Width)
	assert.Equal(t, 200.0, res.Height)
	require.Len(t, res.Objects, 7)

	types := make([]string, len(res.Objects))
	for i, d := range res.Objects {
		types[i] = d.Type()
	}
	assert.Equal(t, []string{"rect", "circle", "ellipse", "line", "polygon", "polyline", "path"}, types)

	rect := res.Objects[0].(*scene.Rect)
	assert.Equal(t, 10.0, rect.Left())
	assert.Equal(t, 20.0, rect.Top())
	assert.Equal(t, 30.0, rect.Width())
	assert.Equal(t, 5.0, rect.Rx())
	assert.Equal(t, 5.0, rect.Ry(), "a missing ry mirrors rx")
	assert.Equal(t, "red", rect.Fill)
	assert.Empty(t, rect.Stroke)

	circle := res.Objects[1].(*scene.Circle)
	assert.Equal(t, 40.0, circle.Left())
	assert.Equal(t, 40.0, circle.Top())
	assert.Equal(t, 10.0, circle.Radius())
	assert.Equal(t, "blue", circle.Stroke)
	assert.Equal(t, 2.0, circle.StrokeWidth())
	assert.Equal(t, "rgb(0,0,0)", circle.Fill)

	assert.Len(t, res.Objects[4].(*scene.Polygon).Points(), 3)
}

func TestParseSkipsEmptyShapes(t *testing.T) {
	res := parse(t, `<svg>
  <rect width="0" height="10"/>
  <circle r="0"/>
  <polyline points="1 2"/>
  <path d=""/>
  <unknown/>
</svg>`)
	assert.Empty(t, res.Objects)
}

func TestParseStyles(t *testing.T) {
	res := parse(t, `<svg width="100" height="100">
  <g fill="green" stroke="navy" opacity="0.5">
    <rect width="10" height="10" opacity="0.5"/>
    <rect width="10" height="10" fill="red" style="fill: blue; stroke-dasharray: 4 2"/>
    <rect width="10" height="10" fill="none" stroke="url(#grad)"/>
  </g>
</svg>`)
	require.Len(t, res.Objects, 3)

	inherited := res.Objects[0].Base()
	assert.Equal(t, "green", inherited.Fill)
	assert.Equal(t, "navy", inherited.Stroke)
	assert.InDelta(t, 0.25, inherited.Opacity, 1e-9)

	overridden := res.Objects[1].Base()
	assert.Equal(t, "blue", overridden.Fill)
	assert.Equal(t, []float64{4, 2}, overridden.StrokeDashArray)

	unpainted := res.Objects[2].Base()
	assert.Empty(t, unpainted.Fill)
	assert.Empty(t, unpainted.Stroke)
}

func TestParseTransforms(t *testing.T) {
	tests := []struct {
		name      string
		transform string
		left, top float64
		scale     float64
		angle     float64
	}{
		{name: "translate", transform: "translate(5,5)", left: 15, top: 15, scale: 1},
		{name: "translate x only", transform: "translate(5)", left: 15, top: 10, scale: 1},
		{name: "scale", transform: "scale(2)", left: 20, top: 20, scale: 2},
		{name: "list applies right to left", transform: "translate(10 0) scale(2)", left: 30, top: 20, scale: 2},
		{name: "rotate about center", transform: "rotate(90 15 15)", left: 20, top: 10, scale: 1, angle: 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, `<svg><rect x="10" y="10" width="10" height="10" stroke-width="0" transform="`+tt.transform+`"/></svg>`)
			require.Len(t, res.Objects, 1)
			o := res.Objects[0].Base()
			assert.InDelta(t, tt.scale, o.ScaleX(), 1e-9)
			assert.InDelta(t, tt.scale, o.ScaleY(), 1e-9)
			assert.InDelta(t, tt.angle, o.Angle(), 1e-9)
			assert.InDelta(t, tt.left, o.Left(), 1e-9)
			assert.InDelta(t, tt.top, o.Top(), 1e-9)
		})
	}
}

func TestParseNestedTransforms(t *testing.T) {
	res := parse(t, `<svg>
  <g transform="translate(100 0)">
    <g transform="scale(2)">
      <rect x="0" y="0" width="10" height="10" stroke-width="0"/>
    </g>
  </g>
</svg>`)
	require.Len(t, res.Objects, 1)
	o := res.Objects[0].Base()
	assert.InDelta(t, 100, o.Left(), 1e-9)
	assert.InDelta(t, 0, o.Top(), 1e-9)
	assert.InDelta(t, 2, o.ScaleX(), 1e-9)
	c := o.CenterPoint()
	assert.InDelta(t, 110, c.X, 1e-9)
	assert.InDelta(t, 10, c.Y, 1e-9)
}

func TestParseViewBox(t *testing.T) {
	res := parse(t, `<svg width="200" height="100" viewBox="0 0 100 50">
  <rect x="10" y="10" width="10" height="10" stroke-width="0"/>
</svg>`)
	assert.Equal(t, 200.0, res.Width)
	require.Len(t, res.Objects, 1)
	o := res.Objects[0].Base()
	assert.InDelta(t, 20, o.Left(), 1e-9)
	assert.InDelta(t, 20, o.Top(), 1e-9)
	assert.InDelta(t, 2, o.ScaleX(), 1e-9)

	sized := parse(t, `<svg viewBox="-10 -10 50 40"><rect x="-10" y="-10" width="5" height="5" stroke-width="0"/></svg>`)
	assert.Equal(t, 50.0, sized.Width)
	assert.Equal(t, 40.0, sized.Height)
	require.Len(t, sized.Objects, 1)
	assert.InDelta(t, 0, sized.Objects[0].Base().Left(), 1e-9)
}

func TestParseSkipsHiddenAndDefinitions(t *testing.T) {
	res := parse(t, `<svg>
  <defs><rect id="proto" width="10" height="10"/></defs>
  <linearGradient id="grad"><stop offset="0"/></linearGradient>
  <use href="#proto"/>
  <g display="none"><rect width="10" height="10"/></g>
  <rect width="10" height="10" visibility="hidden"/>
  <g visibility="hidden"><rect width="10" height="10" visibility="visible"/></g>
  <rect width="10" height="10" fill="teal"/>
</svg>`)
	require.Len(t, res.Objects, 2)
	assert.True(t, res.Objects[0].Base().Visible)
	assert.Equal(t, "teal", res.Objects[1].Base().Fill)
}

func TestParseText(t *testing.T) {
	res := parse(t, `<svg>
  <text x="10" y="50" font-family="'Open Sans'" font-size="20" font-weight="bold" text-anchor="middle">
    Hello <tspan fill="red">world</tspan>
  </text>
  <text x="0" y="0">   </text>
</svg>`)
	require.Len(t, res.Objects, 1)
	txt := res.Objects[0].(*scene.Text)
	assert.Equal(t, "Hello world", txt.Text())
	assert.Equal(t, "Open Sans", txt.FontFamily())
	assert.Equal(t, 20.0, txt.FontSize())
	assert.Equal(t, "bold", txt.FontWeight())
	assert.Equal(t, geom.OriginCenter, txt.OriginX())
	assert.Equal(t, 10.0, txt.Left())
	assert.InDelta(t, 34, txt.Top(), 1e-9)
}

func TestParseImage(t *testing.T) {
	res := parse(t, `<svg xmlns:xlink="http://www.w3.org/1999/xlink">
  <image xlink:href="assets/cat.png" x="5" y="6" width="50" height="40" opacity="0.5"/>
  <image x="0" y="0" width="10" height="10"/>
</svg>`)
	require.Len(t, res.Objects, 1)
	img := res.Objects[0].(*scene.Image)
	assert.Equal(t, 5.0, img.Left())
	assert.Equal(t, 6.0, img.Top())
	assert.Equal(t, 50.0, img.Width())
	assert.Equal(t, 0.5, img.Opacity)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "empty", src: "", want: ErrNotSVG},
		{name: "html root", src: "<html><body/></html>", want: ErrNotSVG},
		{name: "bad number", src: `<svg><rect width="wide" height="10"/></svg>`, want: ErrSyntax},
		{name: "bad transform", src: `<svg><g transform="spin(10)"/></svg>`, want: ErrSyntax},
		{name: "transform arity", src: `<svg><g transform="rotate(1 2)"/></svg>`, want: ErrSyntax},
		{name: "bad viewBox", src: `<svg viewBox="0 0 10"/>`, want: ErrSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := Parse(strings.NewReader(`<svg><rect`))
	assert.Error(t, err)
}

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<svg width="640" height="480"><circle cx="5" cy="5" r="5"/></svg>`))
	require.NoError(t, err)
	assert.Equal(t, 640, doc.Width)
	assert.Equal(t, 480, doc.Height)
	require.Len(t, doc.Objects, 1)

	var head struct {
		Type   string  `json:"type"`
		Radius float64 `json:"radius"`
	}
	require.NoError(t, json.Unmarshal(doc.Objects[0], &head))
	assert.Equal(t, "circle", head.Type)
	assert.Equal(t, 5.0, head.Radius)

	unsized, err := ParseDocument(strings.NewReader(`<svg/>`))
	require.NoError(t, err)
	assert.Equal(t, 1280, unsized.Width)
	assert.Equal(t, 720, unsized.Height)
	assert.Empty(t, unsized.Objects)
}
