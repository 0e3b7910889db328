package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

func assertPointInDelta(t *testing.T, expected, actual geom.Point, delta float64, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, delta, msgAndArgs...)
	assert.InDelta(t, expected.Y, actual.Y, delta, msgAndArgs...)
}

func TestRotateKeepsCenter(t *testing.T) {
	r := NewRect(0, 0, 100, 50)
	before := r.CenterPoint()
	assertPointInDelta(t, geom.Pt(50.5, 25.5), before, 1e-9)

	r.Rotate(90)
	r.SetCoords()

	assert.Equal(t, 90.0, r.Angle())
	assertPointInDelta(t, before, r.CenterPoint(), 1e-9)
	box := r.BoundingRect()
	assert.InDelta(t, 51, box.Width, 1e-9)
	assert.InDelta(t, 101, box.Height, 1e-9)
}

func TestRotateWithoutCenteredRotation(t *testing.T) {
	r := strokeless(10, 10, 100, 50)
	r.CenteredRotation = false
	r.Rotate(90)
	assert.Equal(t, 10.0, r.Left())
	assert.Equal(t, 10.0, r.Top())
	// the top-left corner is the pivot
	assertPointInDelta(t, geom.Pt(-15, 60), r.CenterPoint(), 1e-9)
}

func TestSetCoordsIsIdempotent(t *testing.T) {
	r := NewRect(20, 30, 40, 50)
	r.SetAngle(33)
	r.SetScaleX(1.5)
	r.SetCoords()
	first := r.ACoords()
	r.SetCoords()
	assert.Equal(t, first, r.ACoords())
}

func TestTranslateToOriginRoundTrip(t *testing.T) {
	r := strokeless(0, 0, 100, 40)
	r.SetAngle(30)
	origins := []geom.Origin{geom.OriginLeft, geom.OriginCenter, geom.OriginRight}
	center := r.RelativeCenterPoint()
	for _, ox := range origins {
		for _, oy := range []geom.Origin{geom.OriginTop, geom.OriginCenter, geom.OriginBottom} {
			p := r.TranslateToOriginPoint(center, ox, oy)
			assertPointInDelta(t, center, r.TranslateToCenterPoint(p, ox, oy), 1e-9, "%s/%s", ox, oy)
		}
	}
}

func TestSetPositionByOrigin(t *testing.T) {
	r := strokeless(0, 0, 100, 40)
	r.SetPositionByOrigin(geom.Pt(300, 200), geom.OriginRight, geom.OriginBottom)
	assert.Equal(t, 200.0, r.Left())
	assert.Equal(t, 160.0, r.Top())
	assertPointInDelta(t, geom.Pt(300, 200), r.PositionByOrigin(geom.OriginRight, geom.OriginBottom), 1e-9)
}

func TestOwnMatrixTracksGeometry(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	assert.Equal(t, geom.Matrix2D{1, 0, 0, 1, 5, 5}, r.CalcOwnMatrix())
	r.SetLeft(10)
	assert.Equal(t, geom.Matrix2D{1, 0, 0, 1, 15, 5}, r.CalcOwnMatrix())
	r.SetScaleX(2)
	assert.Equal(t, geom.Matrix2D{2, 0, 0, 1, 20, 5}, r.CalcOwnMatrix())
}

func TestIsNotVisible(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Rect)
		want   bool
	}{
		{"default", func(*Rect) {}, false},
		{"transparent", func(r *Rect) { r.Opacity = 0 }, true},
		{"hidden", func(r *Rect) { r.Visible = false }, true},
		{"empty box with stroke", func(r *Rect) { r.SetWidth(0); r.SetHeight(0) }, false},
		{"empty box without stroke", func(r *Rect) { r.SetWidth(0); r.SetHeight(0); r.SetStrokeWidth(0) }, true},
		{"zero width only", func(r *Rect) { r.SetWidth(0); r.SetStrokeWidth(0) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRect(0, 0, 10, 10)
			tt.mutate(r)
			assert.Equal(t, tt.want, r.IsNotVisible())
		})
	}
}

func TestContainmentAndIntersection(t *testing.T) {
	a := strokeless(0, 0, 100, 100)
	b := strokeless(50, 50, 100, 100)
	c := strokeless(10, 10, 20, 20)
	far := strokeless(500, 500, 10, 10)
	for _, r := range []*Rect{a, b, c, far} {
		r.SetCoords()
	}

	assert.True(t, a.IntersectsWithObject(&b.Object))
	assert.True(t, a.IsOverlapping(&c.Object))
	assert.True(t, c.IsContainedWithinObject(&a.Object))
	assert.False(t, a.IsContainedWithinObject(&c.Object))
	assert.False(t, a.IntersectsWithObject(&far.Object))

	assert.True(t, a.ContainsPoint(geom.Pt(50, 50)))
	assert.False(t, a.ContainsPoint(geom.Pt(150, 10)))
	assert.True(t, c.IsContainedWithinRect(geom.Pt(0, 0), geom.Pt(100, 100)))
	assert.True(t, b.IntersectsWithRect(geom.Pt(0, 0), geom.Pt(100, 100)))
}

func TestIsOnScreen(t *testing.T) {
	h := newTestHost()
	in := strokeless(10, 10, 20, 20)
	out := strokeless(400, 10, 20, 20)
	edge := strokeless(290, 140, 20, 20)
	for _, r := range []*Rect{in, out, edge} {
		r.SetCanvas(h)
		r.SetCoords()
	}
	assert.True(t, in.IsOnScreen())
	assert.False(t, out.IsOnScreen())
	assert.True(t, edge.IsOnScreen())
	assert.True(t, edge.IsPartiallyOnScreen())
	assert.False(t, in.IsPartiallyOnScreen())

	h.vpt = geom.Translate(-400, 0)
	assert.True(t, out.IsOnScreen())
	assert.False(t, in.IsOnScreen())
}

func TestScaleToWidth(t *testing.T) {
	r := strokeless(0, 0, 50, 20)
	r.ScaleToWidth(200)
	assert.InDelta(t, 4, r.ScaleX(), 1e-9)
	assert.InDelta(t, 4, r.ScaleY(), 1e-9)
	assert.InDelta(t, 200, r.BoundingRect().Width, 1e-9)
}

func TestSendObjectToPlane(t *testing.T) {
	r := strokeless(0, 0, 10, 10)
	before := r.CalcOwnMatrix()
	to := geom.ComposeMatrix(geom.TransformOptions{TranslateX: 30, TranslateY: -5, Angle: 45, ScaleX: 2, ScaleY: 2})
	SendObjectToPlane(&r.Object, nil, &to)
	require.InDelta(t, 0.5, r.ScaleX(), 1e-9)
	got := geom.Multiply(to, r.CalcOwnMatrix(), false)
	assert.InDeltaSlice(t, before.ToSlice(), got.ToSlice(), 1e-9)
}
