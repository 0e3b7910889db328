// Package intersect implements line, segment and polygon intersection tests.
// All functions are pure; degenerate input yields an empty result rather than an error.
package intersect

import (
	"math"

	"github.com/inamate/inamate/canvas-go/internal/geom"
)

// Status tags an intersection result. The zero value means no intersection.
type Status string

const (
	None       Status = ""
	Found      Status = "Intersection"
	Coincident Status = "Coincident"
	Parallel   Status = "Parallel"
)

// Result holds the status and the distinct intersection points.
type Result struct {
	Status Status
	Points []geom.Point
}

// Includes reports whether p is one of the result points.
func (r *Result) Includes(p geom.Point) bool {
	for _, q := range r.Points {
		if q.Eq(p) {
			return true
		}
	}
	return false
}

// Append adds points not already present.
func (r *Result) Append(points ...geom.Point) {
	for _, p := range points {
		if !r.Includes(p) {
			r.Points = append(r.Points, p)
		}
	}
}

// IsPointContained reports whether t lies on segment ab (or line ab when
// infinite). A zero-length segment only contains its own point.
func IsPointContained(t, a, b geom.Point, infinite bool) bool {
	if a.Eq(b) {
		return t.Eq(a)
	}
	if a.X == b.X {
		return a.X == t.X && (infinite || (t.Y >= math.Min(a.Y, b.Y) && t.Y <= math.Max(a.Y, b.Y)))
	}
	if a.Y == b.Y {
		return a.Y == t.Y && (infinite || (t.X >= math.Min(a.X, b.X) && t.X <= math.Max(a.X, b.X)))
	}
	cross := (b.X-a.X)*(t.Y-a.Y) - (b.Y-a.Y)*(t.X-a.X)
	if cross != 0 {
		return false
	}
	return infinite || (t.X >= math.Min(a.X, b.X) && t.X <= math.Max(a.X, b.X) &&
		t.Y >= math.Min(a.Y, b.Y) && t.Y <= math.Max(a.Y, b.Y))
}

// LineLine intersects a1a2 with b1b2. Each side is an infinite line or a
// bounded segment depending on its flag.
func LineLine(a1, a2, b1, b2 geom.Point, aInfinite, bInfinite bool) Result {
	a2xa1x, a2ya1y := a2.X-a1.X, a2.Y-a1.Y
	b2xb1x, b2yb1y := b2.X-b1.X, b2.Y-b1.Y
	a1xb1x, a1yb1y := a1.X-b1.X, a1.Y-b1.Y
	uaT := b2xb1x*a1yb1y - b2yb1y*a1xb1x
	ubT := a2xa1x*a1yb1y - a2ya1y*a1xb1x
	uB := b2yb1y*a2xa1x - b2xb1x*a2ya1y

	if uB != 0 {
		ua, ub := uaT/uB, ubT/uB
		if (aInfinite || (0 <= ua && ua <= 1)) && (bInfinite || (0 <= ub && ub <= 1)) {
			return Result{Status: Found, Points: []geom.Point{{X: a1.X + ua*a2xa1x, Y: a1.Y + ua*a2ya1y}}}
		}
		return Result{}
	}
	if uaT == 0 || ubT == 0 {
		coincide := aInfinite || bInfinite ||
			IsPointContained(a1, b1, b2, false) || IsPointContained(a2, b1, b2, false) ||
			IsPointContained(b1, a1, a2, false) || IsPointContained(b2, a1, a2, false)
		if coincide {
			return Result{Status: Coincident}
		}
		return Result{}
	}
	return Result{Status: Parallel}
}

// SegmentLine intersects segment s1s2 with the infinite line l1l2.
func SegmentLine(s1, s2, l1, l2 geom.Point) Result {
	return LineLine(s1, s2, l1, l2, false, true)
}

// SegmentSegment intersects two bounded segments.
func SegmentSegment(a1, a2, b1, b2 geom.Point) Result {
	return LineLine(a1, a2, b1, b2, false, false)
}

// LinePolygon tests a line (or segment) against every polygon edge and
// returns Coincident as soon as one edge is.
func LinePolygon(a1, a2 geom.Point, points []geom.Point, infinite bool) Result {
	var result Result
	n := len(points)
	for i := 0; i < n; i++ {
		b1, b2 := points[i], points[(i+1)%n]
		inter := LineLine(a1, a2, b1, b2, infinite, false)
		if inter.Status == Coincident {
			return inter
		}
		result.Append(inter.Points...)
	}
	if len(result.Points) > 0 {
		result.Status = Found
	}
	return result
}

// SegmentPolygon is LinePolygon restricted to the segment a1a2.
func SegmentPolygon(a1, a2 geom.Point, points []geom.Point) Result {
	return LinePolygon(a1, a2, points, false)
}

// PolygonPolygon tests every edge of p1 against p2. It only reports
// Coincident when every edge of p1 was coincident.
func PolygonPolygon(p1, p2 []geom.Point) Result {
	var result Result
	coincidences := 0
	n := len(p1)
	for i := 0; i < n; i++ {
		a1, a2 := p1[i], p1[(i+1)%n]
		inter := SegmentPolygon(a1, a2, p2)
		if inter.Status == Coincident {
			coincidences++
			result.Append(a1, a2)
		} else {
			result.Append(inter.Points...)
		}
	}
	if coincidences > 0 && coincidences == n {
		return Result{Status: Coincident}
	}
	if len(result.Points) > 0 {
		result.Status = Found
	}
	return result
}

// PolygonRectangle intersects a polygon with the box spanned by r1 and r2.
func PolygonRectangle(points []geom.Point, r1, r2 geom.Point) Result {
	lo, hi := r1.Min(r2), r1.Max(r2)
	return PolygonPolygon(points, []geom.Point{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}})
}

// IsPointInPolygon casts a ray to the left of every vertex and counts edge
// crossings. A point on an edge or vertex is inside.
func IsPointInPolygon(p geom.Point, points []geom.Point) bool {
	if len(points) == 0 {
		return false
	}
	minX := p.X - 1
	for _, q := range points {
		minX = math.Min(minX, q.X)
	}
	other := geom.Pt(minX, p.Y)
	hits := 0
	n := len(points)
	for i := 0; i < n; i++ {
		inter := SegmentSegment(points[i], points[(i+1)%n], p, other)
		if inter.Includes(p) {
			return true
		}
		if inter.Status == Found {
			hits++
		}
	}
	return hits%2 == 1
}
