package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Matrix2D represents a 2D affine transformation matrix.
// Layout: [a, b, c, d, e, f] representing:
// | a  c  e |
// | b  d  f |
// | 0  0  1 |
type Matrix2D [6]float64

// Identity returns the identity matrix.
func Identity() Matrix2D {
	return Matrix2D{1, 0, 0, 1, 0, 0}
}

// Translate returns a translation matrix.
func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

// Scale returns a scale matrix.
func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Rotate returns a rotation matrix for an angle in degrees around pivot.
func Rotate(degrees float64, pivot Point) Matrix2D {
	rad := DegreesToRadians(degrees)
	cos, sin := Cos(rad), Sin(rad)
	m := Matrix2D{cos, sin, -sin, cos, 0, 0}
	if pivot.X != 0 {
		m[4] = pivot.X - (cos*pivot.X - sin*pivot.Y)
	}
	if pivot.Y != 0 {
		m[5] = pivot.Y - (sin*pivot.X + cos*pivot.Y)
	}
	return m
}

// SkewX returns a horizontal shear for an angle in degrees.
func SkewX(degrees float64) Matrix2D {
	return Matrix2D{1, 0, math.Tan(DegreesToRadians(degrees)), 1, 0, 0}
}

// SkewY returns a vertical shear for an angle in degrees.
func SkewY(degrees float64) Matrix2D {
	return Matrix2D{1, math.Tan(DegreesToRadians(degrees)), 0, 1, 0, 0}
}

// Multiply returns m * other, which applies other first and m second.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Multiply(m, other, false)
}

// Multiply composes a after b. With is2x2 the translation terms are zeroed,
// for combining purely linear parts such as scale and skew.
func Multiply(a, b Matrix2D, is2x2 bool) Matrix2D {
	r := Matrix2D{
		a[0]*b[0] + a[2]*b[1],
		a[1]*b[0] + a[3]*b[1],
		a[0]*b[2] + a[2]*b[3],
		a[1]*b[2] + a[3]*b[3],
	}
	if !is2x2 {
		r[4] = a[0]*b[4] + a[2]*b[5] + a[4]
		r[5] = a[1]*b[4] + a[3]*b[5] + a[5]
	}
	return r
}

// MultiplyAll folds from the right: [A, B, C] yields A(B(C(x))).
// Nil entries are skipped and an empty list yields Identity.
func MultiplyAll(is2x2 bool, matrices ...*Matrix2D) Matrix2D {
	var product *Matrix2D
	for i := len(matrices) - 1; i >= 0; i-- {
		cur := matrices[i]
		if cur == nil {
			continue
		}
		if product == nil {
			v := *cur
			product = &v
			continue
		}
		v := Multiply(*cur, *product, is2x2)
		product = &v
	}
	if product == nil {
		return Identity()
	}
	return *product
}

// TransformPoint applies the matrix to a point.
func (m Matrix2D) TransformPoint(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// TransformRect transforms a rectangle and returns its axis-aligned bounding box.
func (m Matrix2D) TransformRect(r Rect) Rect {
	return MakeBoundingBoxFromPoints([]Point{
		Pt(r.Left, r.Top).Transform(m, false),
		Pt(r.Left+r.Width, r.Top).Transform(m, false),
		Pt(r.Left+r.Width, r.Top+r.Height).Transform(m, false),
		Pt(r.Left, r.Top+r.Height).Transform(m, false),
	})
}

// Determinant returns the determinant of the linear part.
func (m Matrix2D) Determinant() float64 {
	return m[0]*m[3] - m[1]*m[2]
}

// Invert returns the inverse of the matrix, or Identity if not invertible.
func (m Matrix2D) Invert() Matrix2D {
	det := m.Determinant()
	if det == 0 {
		return Identity()
	}
	a := 1 / det
	r := Matrix2D{a * m[3], -a * m[1], -a * m[2], a * m[0], 0, 0}
	o := Pt(m[4], m[5]).Transform(r, true)
	r[4], r[5] = -o.X, -o.Y
	return r
}

// IsIdentity checks if this is the identity matrix (within epsilon).
func (m Matrix2D) IsIdentity() bool {
	const eps = 1e-10
	return math.Abs(m[0]-1) < eps &&
		math.Abs(m[1]) < eps &&
		math.Abs(m[2]) < eps &&
		math.Abs(m[3]-1) < eps &&
		math.Abs(m[4]) < eps &&
		math.Abs(m[5]) < eps
}

// ToSlice returns the matrix as a float64 slice for JSON serialization.
func (m Matrix2D) ToSlice() []float64 {
	return []float64{m[0], m[1], m[2], m[3], m[4], m[5]}
}

// ToSVG formats the matrix as an SVG transform attribute value.
func (m Matrix2D) ToSVG(fractionDigits int) string {
	parts := make([]string, 6)
	for i, v := range m {
		parts[i] = strconv.FormatFloat(ToFixed(v, fractionDigits), 'f', -1, 64)
	}
	return fmt.Sprintf("matrix(%s)", strings.Join(parts, " "))
}

// ToFixed rounds v to the given number of fraction digits.
func ToFixed(v float64, digits int) float64 {
	if digits < 0 {
		return v
	}
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}

// Decomposition is the result of QRDecompose. Angles are in degrees.
type Decomposition struct {
	Angle      float64
	ScaleX     float64
	ScaleY     float64
	SkewX      float64
	SkewY      float64
	TranslateX float64
	TranslateY float64
}

// QRDecompose extracts rotation, scale and horizontal skew from m.
// SkewY is always reported as 0; its effect is folded into the other terms.
func QRDecompose(m Matrix2D) Decomposition {
	angle := math.Atan2(m[1], m[0])
	denom := m[0]*m[0] + m[1]*m[1]
	scaleX := math.Sqrt(denom)
	scaleY := 0.0
	if scaleX != 0 {
		scaleY = (m[0]*m[3] - m[2]*m[1]) / scaleX
	}
	skewX := math.Atan2(m[0]*m[2]+m[1]*m[3], denom)
	return Decomposition{
		Angle:      RadiansToDegrees(angle),
		ScaleX:     scaleX,
		ScaleY:     scaleY,
		SkewX:      RadiansToDegrees(skewX),
		SkewY:      0,
		TranslateX: m[4],
		TranslateY: m[5],
	}
}

// TransformOptions is the input to ComposeMatrix and CalcDimensionsMatrix.
type TransformOptions struct {
	TranslateX float64
	TranslateY float64
	Angle      float64
	ScaleX     float64
	ScaleY     float64
	SkewX      float64
	SkewY      float64
	FlipX      bool
	FlipY      bool
}

// CalcDimensionsMatrix builds scale(±) * skewX * skewY as a linear matrix.
func CalcDimensionsMatrix(o TransformOptions) Matrix2D {
	sx, sy := o.ScaleX, o.ScaleY
	if o.FlipX {
		sx = -sx
	}
	if o.FlipY {
		sy = -sy
	}
	m := Scale(sx, sy)
	if o.SkewX != 0 {
		m = Multiply(m, SkewX(o.SkewX), true)
	}
	if o.SkewY != 0 {
		m = Multiply(m, SkewY(o.SkewY), true)
	}
	return m
}

// ComposeMatrix is the inverse of QRDecompose: translate, then rotate, then
// scale and skew.
func ComposeMatrix(o TransformOptions) Matrix2D {
	m := Translate(o.TranslateX, o.TranslateY)
	if o.Angle != 0 {
		m = m.Multiply(Rotate(o.Angle, Point{}))
	}
	if dims := CalcDimensionsMatrix(o); !dims.IsIdentity() {
		m = m.Multiply(dims)
	}
	return m
}

// Options converts a decomposition back into compose options.
func (d Decomposition) Options() TransformOptions {
	return TransformOptions{
		TranslateX: d.TranslateX,
		TranslateY: d.TranslateY,
		Angle:      d.Angle,
		ScaleX:     d.ScaleX,
		ScaleY:     d.ScaleY,
		SkewX:      d.SkewX,
		SkewY:      d.SkewY,
	}
}
