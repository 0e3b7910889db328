package geom

import "math"

// Point is a 2D vector. Every method returns a new value.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point      { return Point{p.X + o.X, p.Y + o.Y} }
func (p Point) Subtract(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) Multiply(o Point) Point { return Point{p.X * o.X, p.Y * o.Y} }
func (p Point) Divide(o Point) Point   { return Point{p.X / o.X, p.Y / o.Y} }

func (p Point) ScalarAdd(v float64) Point      { return Point{p.X + v, p.Y + v} }
func (p Point) ScalarSubtract(v float64) Point { return Point{p.X - v, p.Y - v} }
func (p Point) ScalarMultiply(v float64) Point { return Point{p.X * v, p.Y * v} }
func (p Point) ScalarDivide(v float64) Point   { return Point{p.X / v, p.Y / v} }

// Eq reports exact component equality.
func (p Point) Eq(o Point) bool {
	return p.X == o.X && p.Y == o.Y
}

func (p Point) Lt(o Point) bool  { return p.X < o.X && p.Y < o.Y }
func (p Point) Lte(o Point) bool { return p.X <= o.X && p.Y <= o.Y }
func (p Point) Gt(o Point) bool  { return p.X > o.X && p.Y > o.Y }
func (p Point) Gte(o Point) bool { return p.X >= o.X && p.Y >= o.Y }

// Lerp interpolates linearly toward o; t=0.5 is the midpoint.
func (p Point) Lerp(o Point, t float64) Point {
	t = math.Max(math.Min(1, t), 0)
	return Point{p.X + (o.X-p.X)*t, p.Y + (o.Y-p.Y)*t}
}

func (p Point) DistanceFrom(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

func (p Point) MidPointFrom(o Point) Point {
	return p.Lerp(o, 0.5)
}

// Min returns the componentwise minimum.
func (p Point) Min(o Point) Point {
	return Point{math.Min(p.X, o.X), math.Min(p.Y, o.Y)}
}

// Max returns the componentwise maximum.
func (p Point) Max(o Point) Point {
	return Point{math.Max(p.X, o.X), math.Max(p.Y, o.Y)}
}

func (p Point) Abs() Point {
	return Point{math.Abs(p.X), math.Abs(p.Y)}
}

// Rotate rotates p by radians around origin.
func (p Point) Rotate(radians float64, origin Point) Point {
	sinus, cosinus := Sin(radians), Cos(radians)
	p = p.Subtract(origin)
	return Point{
		X: p.X*cosinus - p.Y*sinus + origin.X,
		Y: p.X*sinus + p.Y*cosinus + origin.Y,
	}
}

// Transform applies m to p. With ignoreOffset the translation is dropped,
// which is what vectors need.
func (p Point) Transform(m Matrix2D, ignoreOffset bool) Point {
	if ignoreOffset {
		return Point{m[0]*p.X + m[2]*p.Y, m[1]*p.X + m[3]*p.Y}
	}
	return Point{m[0]*p.X + m[2]*p.Y + m[4], m[1]*p.X + m[3]*p.Y + m[5]}
}
