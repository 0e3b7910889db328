package scene

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/filter"
	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// fakeLoader serves solid images sized by name and counts requests.
type fakeLoader struct {
	sizes map[string]image.Point
	calls int
}

func (l *fakeLoader) LoadImage(_ context.Context, src string) (image.Image, error) {
	l.calls++
	size, ok := l.sizes[src]
	if !ok {
		return nil, errors.New("not found")
	}
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img, nil
}

func marshal(t *testing.T, d Drawable) []byte {
	t.Helper()
	data, err := json.Marshal(d.Base())
	require.NoError(t, err)
	return data
}

func TestRectRecord(t *testing.T) {
	r := NewRect(10.123456, 20, 30, 40)
	r.Stroke = "blue"
	r.SetAngle(15)
	r.SetRx(4)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(marshal(t, r), &rec))
	assert.Equal(t, "rect", rec["type"])
	assert.Equal(t, Version, rec["version"])
	assert.Equal(t, 10.1235, rec["left"])
	assert.Equal(t, "rgb(0,0,0)", rec["fill"])
	assert.Equal(t, "blue", rec["stroke"])
	assert.Equal(t, 4.0, rec["rx"])
	assert.Equal(t, "left", rec["originX"])
	assert.Nil(t, rec["shadow"])
	assert.NotContains(t, rec, "clipPath")
	assert.Equal(t, r.ID, rec["id"])

	r.Fill = ""
	require.NoError(t, json.Unmarshal(marshal(t, r), &rec))
	assert.Contains(t, rec, "fill")
	assert.Nil(t, rec["fill"])
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	shapes := []Drawable{
		NewRect(10, 20, 30, 40),
		NewCircle(5, 5, 25),
		NewEllipse(0, 0, 20, 10),
		NewLine(10, 10, 110, 60),
		NewPolygon([]geom.Point{{X: 0, Y: 0}, {X: 40, Y: 0}, {X: 20, Y: 30}}),
		NewPolyline([]geom.Point{{X: 0, Y: 0}, {X: 40, Y: 10}}),
	}
	p, err := NewPath("M 0 0 L 100 0 L 100 50 z")
	require.NoError(t, err)
	shapes = append(shapes, p)

	for _, d := range shapes {
		t.Run(d.Type(), func(t *testing.T) {
			d.Base().SetAngle(30)
			d.Base().SetScaleX(-2)
			d.Base().Shadow = &Shadow{Color: "rgba(0,0,0,0.5)", Blur: 4, OffsetX: 2}

			data := marshal(t, d)
			back, err := reg.Enliven(ctx, data)
			require.NoError(t, err)

			assert.Equal(t, d.Type(), back.Type())
			o, b := d.Base(), back.Base()
			assert.Equal(t, o.ID, b.ID)
			assert.InDelta(t, o.Left(), b.Left(), 1e-4)
			assert.InDelta(t, o.Top(), b.Top(), 1e-4)
			assert.InDelta(t, o.Width(), b.Width(), 1e-4)
			assert.InDelta(t, o.Height(), b.Height(), 1e-4)
			assert.Equal(t, 2.0, b.ScaleX())
			assert.True(t, b.FlipX())
			assert.Equal(t, 30.0, b.Angle())
			assert.Equal(t, o.Shadow, b.Shadow)
			assertPointInDelta(t, o.CenterPoint(), b.CenterPoint(), 1e-3)
			assert.JSONEq(t, string(data), string(marshal(t, back)))
		})
	}
}

func TestRoundTripKinds(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	c := NewCircle(0, 0, 10)
	c.EndAngle = 180
	back, err := reg.Enliven(ctx, marshal(t, c))
	require.NoError(t, err)
	require.IsType(t, &Circle{}, back)
	assert.Equal(t, 10.0, back.(*Circle).Radius())
	assert.Equal(t, 180.0, back.(*Circle).EndAngle)

	l := NewLine(10, 10, 110, 60)
	back, err = reg.Enliven(ctx, marshal(t, l))
	require.NoError(t, err)
	x1, y1, x2, y2 := back.(*Line).Points()
	assert.Equal(t, []float64{10, 10, 110, 60}, []float64{x1, y1, x2, y2})

	p, err := NewPath("M0 0 Q 50 100 100 0")
	require.NoError(t, err)
	back, err = reg.Enliven(ctx, marshal(t, p))
	require.NoError(t, err)
	assert.Equal(t, argsOf(p.Commands()), argsOf(back.(*Path).Commands()))
	assertPointInDelta(t, p.PathOffset(), back.(*Path).PathOffset(), 1e-9)

	txt := NewTextbox("hello world", 0, 0, 300)
	txt.SetFontSize(12)
	txt.Underline = true
	txt.MinWidth = 40
	back, err = reg.Enliven(ctx, marshal(t, txt))
	require.NoError(t, err)
	tb := back.(*Textbox)
	assert.Equal(t, "hello world", tb.Text.Text())
	assert.Equal(t, 12.0, tb.FontSize())
	assert.True(t, tb.Underline)
	assert.Equal(t, 40.0, tb.MinWidth)
	assert.Equal(t, 300.0, tb.Width())
}

func TestGroupRoundTrip(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	a := strokeless(0, 0, 50, 50)
	b := strokeless(60, 60, 50, 50)
	g := NewGroup([]Drawable{a, b}, GroupOptions{Layout: NewLayoutManager(Fixed)})
	g.SubTargetCheck = true

	var rec GroupRecord
	require.NoError(t, json.Unmarshal(marshal(t, g), &rec))
	require.Len(t, rec.Objects, 2)
	require.NotNil(t, rec.LayoutManager)
	assert.Equal(t, "fixed", rec.LayoutManager.Strategy)

	back, err := reg.Enliven(ctx, marshal(t, g))
	require.NoError(t, err)
	bg := back.(*Group)
	require.Equal(t, 2, bg.Size())
	assert.Equal(t, Fixed, bg.LayoutManager.Strategy)
	assert.True(t, bg.SubTargetCheck)
	assert.Equal(t, 110.0, bg.Width())

	m := bg.Item(0).Base()
	assert.Same(t, bg, m.Group())
	assert.Equal(t, -55.0, m.Left())
	assertPointInDelta(t, geom.Pt(25, 25), m.CenterPoint(), 1e-9)
	assertPointInDelta(t, geom.Pt(85, 85), bg.Item(1).Base().CenterPoint(), 1e-9)
}

func TestClipPathRecord(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	r := strokeless(0, 0, 100, 100)
	clip := NewCircle(-25, -25, 25)
	clip.Inverted = true
	r.ClipPath = clip

	back, err := reg.Enliven(ctx, marshal(t, r))
	require.NoError(t, err)
	require.NotNil(t, back.Base().ClipPath)
	assert.Equal(t, "circle", back.Base().ClipPath.Type())
	assert.True(t, back.Base().ClipPath.Base().Inverted)
	assert.Equal(t, 25.0, back.Base().ClipPath.(*Circle).Radius())

	require.NoError(t, Patch(ctx, reg, back, []byte(`{"left": 5}`)))
	assert.NotNil(t, back.Base().ClipPath, "an absent clipPath keeps the clip")

	require.NoError(t, Patch(ctx, reg, back, []byte(`{"clipPath": null}`)))
	assert.Nil(t, back.Base().ClipPath)
}

func TestPatch(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	r := NewRect(10, 20, 30, 40)
	r.SetAngle(45)
	r.Stroke = "red"
	r.SetRx(3)

	require.NoError(t, Patch(ctx, reg, r, []byte(`{"left": 99, "fill": "green"}`)))
	assert.Equal(t, 99.0, r.Left())
	assert.Equal(t, "green", r.Fill)
	assert.Equal(t, 20.0, r.Top())
	assert.Equal(t, 30.0, r.Width())
	assert.Equal(t, 45.0, r.Angle())
	assert.Equal(t, "red", r.Stroke)
	assert.Equal(t, 3.0, r.Rx())
	assert.Equal(t, r.CalcACoords(), r.ACoords(), "coords are refreshed")

	require.NoError(t, Patch(ctx, reg, r, []byte(`{"fill": null, "scaleY": -3}`)))
	assert.Equal(t, "", r.Fill)
	assert.Equal(t, 3.0, r.ScaleY())
	assert.True(t, r.FlipY())

	err := Patch(ctx, reg, r, []byte(`{"left": "x"}`))
	assert.Error(t, err)
}

func TestRecordScaleNeverZero(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	r := NewRect(0, 0, 10, 10)
	require.NoError(t, Patch(ctx, reg, r, []byte(`{"scaleX": 0, "scaleY": -0}`)))
	assert.Equal(t, 0.0001, r.ScaleX())
	assert.Equal(t, 0.0001, r.ScaleY())
	assert.NotZero(t, r.CalcTransformMatrix(false).Determinant())

	back, err := reg.Enliven(ctx, []byte(`{"type": "rect", "width": 10, "height": 10, "scaleX": 0, "scaleY": -2}`))
	require.NoError(t, err)
	assert.Equal(t, 0.0001, back.Base().ScaleX())
	assert.Equal(t, 2.0, back.Base().ScaleY())
	assert.True(t, back.Base().FlipY())

	r.MinScaleLimit = 0.5
	require.NoError(t, Patch(ctx, reg, r, []byte(`{"scaleX": 0.1, "scaleY": -0.2}`)))
	assert.Equal(t, 0.5, r.ScaleX())
	assert.Equal(t, 0.5, r.ScaleY())
	assert.True(t, r.FlipY())
}

func TestPatchText(t *testing.T) {
	reg := DefaultRegistry()
	txt := monoText("one")
	require.NoError(t, Patch(context.Background(), reg, txt, []byte(`{"text": "one\ntwo"}`)))
	assert.Equal(t, []string{"one", "two"}, txt.Lines())
	assert.Equal(t, 40.0, txt.FontSize())
	assert.Equal(t, 60.0, txt.Width())
}

func TestRegistryErrors(t *testing.T) {
	reg := DefaultRegistry()

	_, err := reg.Enliven(context.Background(), []byte(`{"type": "hexagon"}`))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = reg.Enliven(context.Background(), []byte(`{`))
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.Enliven(ctx, []byte(`{"type": "rect"}`))
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)

	objs, err := reg.EnlivenObjects(ctx, []json.RawMessage{json.RawMessage(`{"type": "rect"}`)})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Nil(t, objs)
}

func TestEnlivenObjectsKeepsOrder(t *testing.T) {
	reg := DefaultRegistry()
	records := []json.RawMessage{
		json.RawMessage(`{"type": "rect", "left": 1}`),
		json.RawMessage(`{"type": "circle", "radius": 4}`),
		json.RawMessage(`{"type": "path", "path": [["M", 0, 0], ["L", 10, 10]]}`),
		json.RawMessage(`{"type": "group", "objects": [{"type": "rect"}]}`),
	}
	objs, err := reg.EnlivenObjects(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, objs, 4)
	assert.Equal(t, "rect", objs[0].Type())
	assert.Equal(t, 1.0, objs[0].Base().Left())
	assert.Equal(t, "circle", objs[1].Type())
	assert.Equal(t, 8.0, objs[1].Base().Width())
	assert.Equal(t, "path", objs[2].Type())
	assert.Equal(t, 10.0, objs[2].Base().Width())
	assert.Equal(t, 1, objs[3].(*Group).Size())

	records = append(records, json.RawMessage(`{"type": "nope"}`))
	objs, err = reg.EnlivenObjects(context.Background(), records)
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Nil(t, objs)
}

func TestRegistryCustomType(t *testing.T) {
	reg := NewRegistry()
	assert.Empty(t, reg.Types())
	reg.Register("rect", func() Drawable { return NewRect(0, 0, 1, 1) })
	assert.Equal(t, []string{"rect"}, reg.Types())

	d, err := reg.New("rect")
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Base().Width())

	assert.Contains(t, DefaultRegistry().Types(), "activeselection")
}

func TestImageRecord(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{sizes: map[string]image.Point{"a.png": {X: 8, Y: 6}, "b.png": {X: 4, Y: 4}}}
	reg := DefaultRegistry()
	reg.Loader = loader

	back, err := reg.Enliven(ctx, []byte(`{"type": "image", "src": "a.png"}`))
	require.NoError(t, err)
	img := back.(*Image)
	assert.Equal(t, "a.png", img.Src())
	assert.Equal(t, 8.0, img.Width())
	assert.Equal(t, 6.0, img.Height())
	assert.Equal(t, 1, loader.calls)

	require.NoError(t, Patch(ctx, reg, img, []byte(`{"cropX": 2, "filters": [{"type": "Grayscale"}]}`)))
	assert.Equal(t, 1, loader.calls, "an unchanged src is not reloaded")
	assert.Equal(t, 2.0, img.CropX)
	require.Len(t, img.Filters, 1)
	assert.Equal(t, filter.TypeGrayscale, img.Filters[0].Type)

	require.NoError(t, Patch(ctx, reg, img, []byte(`{"src": "b.png", "width": 3}`)))
	assert.Equal(t, 2, loader.calls)
	assert.Equal(t, 3.0, img.Width())
	assert.Equal(t, 4.0, img.Height())

	_, err = reg.Enliven(ctx, []byte(`{"type": "image", "src": "missing.png"}`))
	assert.Error(t, err)

	var rec ImageRecord
	require.NoError(t, json.Unmarshal(marshal(t, img), &rec))
	assert.Equal(t, "b.png", rec.Src)
	assert.Equal(t, 2.0, rec.CropX)
}

func TestNewImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 5))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	img := NewImage(src, "")
	assert.Equal(t, 10.0, img.Width())
	assert.Equal(t, 5.0, img.Height())
	assert.Equal(t, 0.0, img.StrokeWidth())

	svg := img.ToSVG()
	assert.Contains(t, svg, `xlink:href="data:image/png;base64,`)
	assert.Contains(t, svg, `width="10" height="5"`)
}

func TestClone(t *testing.T) {
	ctx := context.Background()
	reg := DefaultRegistry()

	r := NewRect(10, 20, 30, 40)
	r.LockRotation = true
	r.Padding = 5
	r.BorderDashArray = []float64{2, 2}
	r.HasControls = false

	d, err := Clone(ctx, reg, r)
	require.NoError(t, err)
	c := d.(*Rect)
	assert.NotEqual(t, r.ID, c.ID)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, r.Left(), c.Left())
	assert.True(t, c.LockRotation)
	assert.Equal(t, 5.0, c.Padding)
	assert.False(t, c.HasControls)
	assert.Equal(t, []float64{2, 2}, c.BorderDashArray)

	c.BorderDashArray[0] = 9
	assert.Equal(t, 2.0, r.BorderDashArray[0], "the copy owns its slices")

	g := NewGroup([]Drawable{strokeless(0, 0, 10, 10), strokeless(20, 20, 10, 10)}, GroupOptions{})
	gd, err := Clone(ctx, reg, g)
	require.NoError(t, err)
	gc := gd.(*Group)
	require.Equal(t, 2, gc.Size())
	assert.NotEqual(t, g.Item(0).Base().ID, gc.Item(0).Base().ID)
	assert.NotSame(t, g.Item(0), gc.Item(0))
	assert.Equal(t, g.Width(), gc.Width())
}
