package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaneChangeRoundTrip(t *testing.T) {
	a := ComposeMatrix(TransformOptions{TranslateX: 100, TranslateY: 50, Angle: 30, ScaleX: 2, ScaleY: 2})
	b := ComposeMatrix(TransformOptions{TranslateX: -20, Angle: -75, ScaleX: 0.5, ScaleY: 1.5, SkewX: 10})
	points := []Point{{0, 0}, {12.5, -3}, {-400, 1e3}}
	for _, p := range points {
		there := SendPointToPlane(p, &a, &b)
		back := SendPointToPlane(there, &b, &a)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestCalcPlaneChangeMatrixDefaults(t *testing.T) {
	m := Translate(10, 10)
	assert.Equal(t, m, CalcPlaneChangeMatrix(&m, nil))
	assert.Equal(t, Translate(-10, -10), CalcPlaneChangeMatrix(nil, &m))
	assert.Equal(t, Identity(), CalcPlaneChangeMatrix(nil, nil))
}

func TestSendVectorIgnoresTranslation(t *testing.T) {
	m := Translate(10, 10).Multiply(Scale(2, 2))
	v := SendVectorToPlane(Pt(1, 1), nil, &m)
	assert.Equal(t, Pt(0.5, 0.5), v)
}

func TestBoundingBoxAndSize(t *testing.T) {
	r := MakeBoundingBoxFromPoints([]Point{{3, 4}, {-1, 10}, {7, 0}})
	assert.Equal(t, Rect{Left: -1, Top: 0, Width: 8, Height: 10}, r)

	size := SizeAfterTransform(10, 20, Rotate(90, Point{}))
	assert.InDelta(t, 20, size.X, 1e-12)
	assert.InDelta(t, 10, size.Y, 1e-12)
}

func TestResolveOrigin(t *testing.T) {
	assert.Equal(t, -0.5, ResolveOrigin(OriginLeft))
	assert.Equal(t, 0.5, ResolveOrigin(OriginBottom))
	assert.Equal(t, 0.0, ResolveOrigin(OriginCenter))
	assert.Equal(t, 0.25, ResolveOrigin("0.75"))
	assert.Equal(t, 0.5, ResolveOrigin(InvertOrigin(OriginLeft)))
	assert.Equal(t, -0.5, ResolveOrigin(InvertOrigin(OriginBottom)))
}

func TestPointRotate(t *testing.T) {
	p := Pt(10, 0).Rotate(DegreesToRadians(90), Point{})
	assert.Equal(t, Pt(0, 10), p)
}
